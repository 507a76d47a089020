package repository

import (
	"context"

	"github.com/jhoicas/Asignador-api/internal/domain/entity"
)

// LedgerRepository define el puerto de escritura/lectura del stock ledger
// (append-only). Append es idempotente por (tenant_id, op_id): un reenvío del
// mismo op_id devuelve domain.ErrDuplicateOperation y el caller lo trata como
// éxito sin efecto.
type LedgerRepository interface {
	Append(ctx context.Context, event *entity.LedgerEvent) (string, error)
	// CurrentStock devuelve la suma firmada de qty_delta en una coordenada.
	CurrentStock(ctx context.Context, warehouseID, locationID, productID, lotID string) (int64, error)
}
