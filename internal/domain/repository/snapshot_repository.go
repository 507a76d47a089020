package repository

import (
	"context"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
)

// SnapshotRepository define el puerto sobre la vista denormalizada de stock
// actual. Refresh recalcula la vista completa (no incremental); se invoca a lo
// sumo una vez por intento que mutó el ledger.
type SnapshotRepository interface {
	Refresh(ctx context.Context) error
	// RefreshConcurrently no bloquea lectores; requiere el índice único de la MV.
	RefreshConcurrently(ctx context.Context) error
	CurrentStock(ctx context.Context, productID string) ([]*entity.StockRow, error)
}
