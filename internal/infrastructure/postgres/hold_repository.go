package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

var _ repository.HoldRepository = (*HoldRepo)(nil)

// HoldRepo implementación de HoldRepository sobre PostgreSQL (usable con pool o tx).
type HoldRepo struct {
	q Querier
}

// NewHoldRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHoldRepository(q Querier) *HoldRepo {
	return &HoldRepo{q: q}
}

// ReleaseActive cierra todos los holds activos del pedido y devuelve los
// cerrados, para que el flujo de liberación escriba los RELEASE compensatorios.
func (r *HoldRepo) ReleaseActive(ctx context.Context, orderID string) ([]*entity.Hold, error) {
	query := `
		UPDATE core.holds
		   SET released_at = now()
		 WHERE order_id = $1
		   AND released_at IS NULL
		   AND tenant_id = current_setting('app.tenant_id')::uuid
		RETURNING id, order_id, order_line_id, product_id, lot_id,
		          warehouse_id, location_id, qty, created_at, released_at`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("release holds: %w", err)
	}
	defer rows.Close()

	var released []*entity.Hold
	for rows.Next() {
		var h entity.Hold
		if err := rows.Scan(&h.ID, &h.OrderID, &h.OrderLineID, &h.ProductID, &h.LotID,
			&h.WarehouseID, &h.LocationID, &h.Qty, &h.CreatedAt, &h.ReleasedAt); err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		released = append(released, &h)
	}
	return released, rows.Err()
}
