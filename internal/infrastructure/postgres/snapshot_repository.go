package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implementación de SnapshotRepository sobre la vista
// materializada dw.current_stock_mv. El refresh completo es determinista y
// suficiente para un ledger pequeño/mediano; el incremental exigiría tablas de
// cambios. La vista mantiene un índice único, así que el refresh concurrente
// está disponible para no bloquear lectores.
type SnapshotRepo struct {
	q Querier
}

// NewSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSnapshotRepository(q Querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

// Refresh recalcula la vista completa.
func (r *SnapshotRepo) Refresh(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, "REFRESH MATERIALIZED VIEW dw.current_stock_mv"); err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	return nil
}

// RefreshConcurrently recalcula sin bloquear lectores. No puede correr dentro
// de una transacción: usarlo con el pool, no con una tx.
func (r *SnapshotRepo) RefreshConcurrently(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, "REFRESH MATERIALIZED VIEW CONCURRENTLY dw.current_stock_mv"); err != nil {
		return fmt.Errorf("refresh snapshot concurrently: %w", err)
	}
	return nil
}

// CurrentStock lee las filas del snapshot para un producto.
func (r *SnapshotRepo) CurrentStock(ctx context.Context, productID string) ([]*entity.StockRow, error) {
	query := `
		SELECT product_id, warehouse_id, location_id, lot_id, qty
		FROM dw.current_stock_mv
		WHERE product_id = $1
		  AND tenant_id = current_setting('app.tenant_id')::uuid
		ORDER BY warehouse_id, location_id, lot_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("current stock: %w", err)
	}
	defer rows.Close()

	var result []*entity.StockRow
	for rows.Next() {
		var s entity.StockRow
		var lotID *string
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.LocationID, &lotID, &s.Qty); err != nil {
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		if lotID != nil {
			s.LotID = *lotID
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}
