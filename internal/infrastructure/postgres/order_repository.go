package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// GetLines devuelve las líneas del pedido en orden estable.
func (r *OrderRepo) GetLines(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, qty
		FROM core.order_lines
		WHERE order_id = $1
		  AND tenant_id = current_setting('app.tenant_id')::uuid
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("order lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Qty); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// SetStatus muta el status del pedido (open/allocated). El pedido en sí es
// propiedad de colaboradores externos.
func (r *OrderRepo) SetStatus(ctx context.Context, orderID, status string) error {
	query := `
		UPDATE core.orders
		   SET status = $2
		 WHERE id = $1
		   AND tenant_id = current_setting('app.tenant_id')::uuid`
	if _, err := r.q.Exec(ctx, query, orderID, status); err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	return nil
}
