package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo crea el par hold + evento RESERVE dentro de un savepoint de
// la transacción del intento. Requiere pgx.Tx (no pool): tx.Begin sobre una tx
// abierta emite SAVEPOINT, y el Rollback del savepoint revierte solo las
// escrituras de ese candidato.
type ReservationRepo struct {
	tx pgx.Tx
}

// NewReservationRepository construye el adaptador sobre la tx del intento.
func NewReservationRepository(tx pgx.Tx) *ReservationRepo {
	return &ReservationRepo{tx: tx}
}

// Reserve inserta el hold y su evento RESERVE de forma atómica.
// La restricción de exclusión de core.holds rechaza el reclamo si otra
// transacción ya tiene un hold activo sobre la misma coordenada: eso revierte
// el savepoint y devuelve domain.ErrHoldOverlap para que el motor pase al
// siguiente candidato.
func (r *ReservationRepo) Reserve(ctx context.Context, hold *entity.Hold, reserve *entity.LedgerEvent) error {
	sp, err := r.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("abrir savepoint: %w", err)
	}

	if err := insertHold(ctx, sp, hold); err != nil {
		_ = sp.Rollback(ctx)
		if isExclusionViolation(err) {
			return fmt.Errorf("reservar candidato: %w", domain.ErrHoldOverlap)
		}
		return err
	}
	if _, err := NewLedgerRepository(sp).Append(ctx, reserve); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("commit savepoint: %w", err)
	}
	return nil
}

func insertHold(ctx context.Context, q Querier, hold *entity.Hold) error {
	query := `
		INSERT INTO core.holds
		  (id, tenant_id, order_id, order_line_id, product_id, lot_id,
		   warehouse_id, location_id, qty, created_at)
		VALUES
		  ($1, current_setting('app.tenant_id')::uuid, $2, $3, $4, $5,
		   $6, $7, $8, now())`
	_, err := q.Exec(ctx, query,
		hold.ID, hold.OrderID, hold.OrderLineID, hold.ProductID, hold.LotID,
		hold.WarehouseID, hold.LocationID, hold.Qty,
	)
	if err != nil {
		return fmt.Errorf("insert hold: %w", err)
	}
	return nil
}
