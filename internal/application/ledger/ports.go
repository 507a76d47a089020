package ledger

import (
	"context"

	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el tenant fijado, con
// repositorios de ledger y snapshot atados a esa tx.
type TxRunner interface {
	RunTenant(ctx context.Context, tenantID string, fn func(
		ledgerRepo repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error) error
}
