package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre PostgreSQL (usable con pool o tx).
// La tabla core.stock_ledger es append-only: nunca UPDATE ni DELETE.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta un evento. El índice único (tenant_id, op_id) convierte el
// reenvío del mismo op_id en domain.ErrDuplicateOperation, que los callers
// tratan como éxito sin efecto.
func (r *LedgerRepo) Append(ctx context.Context, event *entity.LedgerEvent) (string, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	query := `
		INSERT INTO core.stock_ledger
		  (id, tenant_id, event_type, warehouse_id, location_id, product_id, lot_id,
		   order_id, order_line_id, qty_delta, reason, op_id, ts)
		VALUES
		  ($1, current_setting('app.tenant_id')::uuid, $2, $3, $4, $5, $6,
		   $7, $8, $9, $10, $11, COALESCE($12, now()))
		RETURNING id`
	var ts any
	if !event.Ts.IsZero() {
		ts = event.Ts
	}
	var id string
	err := r.q.QueryRow(ctx, query,
		event.ID, event.EventType, event.WarehouseID, nullIfEmpty(event.LocationID),
		event.ProductID, nullIfEmpty(event.LotID), nullIfEmpty(event.OrderID),
		nullIfEmpty(event.OrderLineID), event.QtyDelta, nullIfEmpty(event.Reason),
		event.OpID, ts,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("append ledger: %w", domain.ErrDuplicateOperation)
		}
		return "", fmt.Errorf("append ledger: %w", err)
	}
	return id, nil
}

// CurrentStock devuelve la suma firmada de qty_delta en una coordenada.
func (r *LedgerRepo) CurrentStock(ctx context.Context, warehouseID, locationID, productID, lotID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(qty_delta), 0)
		FROM core.stock_ledger
		WHERE tenant_id = current_setting('app.tenant_id')::uuid
		  AND warehouse_id = $1 AND location_id = $2
		  AND product_id = $3 AND lot_id = $4`
	var sum int64
	if err := r.q.QueryRow(ctx, query, warehouseID, locationID, productID, lotID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("current stock: %w", err)
	}
	return sum, nil
}

// nullIfEmpty mapea "" a NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
