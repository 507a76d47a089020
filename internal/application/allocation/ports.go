package allocation

import (
	"context"

	"github.com/jhoicas/Asignador-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con el tenant
// fijado (app.tenant_id), pasando repositorios atados a esa tx. Garantiza
// atomicidad por intento: nada muta fuera de una transacción.
type TxRunner interface {
	// RunTenant abre la transacción mínima para escrituras de ledger y refresh
	// de snapshot (eventos manuales).
	RunTenant(ctx context.Context, tenantID string, fn func(
		ledgerRepo repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error) error

	// RunOrder añade la disciplina de concurrencia por pedido: budgets de
	// lock_timeout/statement_timeout y advisory lock transaccional derivado de
	// (tenant_id, order_id). Si el entorno no soporta el advisory lock se
	// degrada a warning (el bloqueo de filas de los candidatos sigue evitando
	// double-booking; solo se pierde la serialización entre intentos del
	// mismo pedido).
	RunOrder(ctx context.Context, tenantID, orderID string, fn func(
		orderRepo repository.OrderRepository,
		candidateRepo repository.CandidateRepository,
		reservationRepo repository.ReservationRepository,
		holdRepo repository.HoldRepository,
		ledgerRepo repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error) error
}
