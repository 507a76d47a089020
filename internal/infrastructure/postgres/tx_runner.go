package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Asignador-api/internal/application/allocation"
	appledger "github.com/jhoicas/Asignador-api/internal/application/ledger"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
	"github.com/jhoicas/Asignador-api/pkg/logger"
)

// Ensure TxRunner implements allocation.TxRunner y ledger.TxRunner.
var _ allocation.TxRunner = (*TxRunner)(nil)
var _ appledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con el
// tenant fijado vía set_config (RLS protege cada statement). RunOrder añade la
// disciplina de concurrencia por pedido: budgets de espera y advisory lock
// transaccional.
type TxRunner struct {
	pool             *pgxpool.Pool
	lockTimeout      time.Duration
	statementTimeout time.Duration
	log              *logger.Logger
}

// NewTxRunner construye el runner. Los timeouts acotan cada intento: fallar
// rápido bajo contención y dejar que el loop de reintentos haga el trabajo.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout, statementTimeout time.Duration, log *logger.Logger) *TxRunner {
	if lockTimeout <= 0 {
		lockTimeout = 200 * time.Millisecond
	}
	if statementTimeout <= 0 {
		statementTimeout = 4 * time.Second
	}
	return &TxRunner{
		pool:             pool,
		lockTimeout:      lockTimeout,
		statementTimeout: statementTimeout,
		log:              log,
	}
}

// RunTenant inicia una transacción, fija app.tenant_id, ejecuta fn con repos
// atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunTenant(ctx context.Context, tenantID string, fn func(
	ledgerRepo repository.LedgerRepository,
	snapshotRepo repository.SnapshotRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return err
	}
	if err := fn(NewLedgerRepository(tx), NewSnapshotRepository(tx)); err != nil {
		return classifyTxErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyTxErr(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// RunOrder inicia la transacción de un intento de asignación/liberación:
// tenant + budgets cortos + advisory lock por (tenant, order) + repos atados
// a la tx. Un lock no soportado por el entorno degrada a warning: el bloqueo
// de filas de los candidatos sigue impidiendo double-booking, solo se pierde
// la serialización entre intentos del mismo pedido.
func (r *TxRunner) RunOrder(ctx context.Context, tenantID, orderID string, fn func(
	orderRepo repository.OrderRepository,
	candidateRepo repository.CandidateRepository,
	reservationRepo repository.ReservationRepository,
	holdRepo repository.HoldRepository,
	ledgerRepo repository.LedgerRepository,
	snapshotRepo repository.SnapshotRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := setTenant(ctx, tx, tenantID); err != nil {
		return err
	}
	if err := r.setTimeouts(ctx, tx); err != nil {
		return err
	}
	if err := r.advisoryLockOrder(ctx, tx, tenantID, orderID); err != nil {
		return err
	}

	err = fn(
		NewOrderRepository(tx),
		NewCandidateRepository(tx),
		NewReservationRepository(tx),
		NewHoldRepository(tx),
		NewLedgerRepository(tx),
		NewSnapshotRepository(tx),
	)
	if err != nil {
		return classifyTxErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyTxErr(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// setTenant fija app.tenant_id para toda la transacción (local=false dentro
// de la tx igual expira con ella, como en el sistema original).
func setTenant(ctx context.Context, tx pgx.Tx, tenantID string) error {
	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, false)", tenantID); err != nil {
		return fmt.Errorf("set tenant: %w", err)
	}
	return nil
}

// setTimeouts aplica budgets locales a la transacción:
// lock_timeout corto para no encolar bajo contención y statement_timeout como
// tope de cualquier statement patológico.
func (r *TxRunner) setTimeouts(ctx context.Context, tx pgx.Tx) error {
	for key, d := range map[string]time.Duration{
		"lock_timeout":      r.lockTimeout,
		"statement_timeout": r.statementTimeout,
	} {
		value := fmt.Sprintf("%dms", d.Milliseconds())
		if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// advisoryLockOrder toma pg_advisory_xact_lock con la clave derivada de
// (tenant_id, order_id). Se libera solo, al terminar la transacción.
func (r *TxRunner) advisoryLockOrder(ctx context.Context, tx pgx.Tx, tenantID, orderID string) error {
	key, err := allocation.OrderLockKey(tenantID, orderID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
		if isLockUnsupported(err) {
			// Modo degradado (domain.ErrLockUnavailable): seguimos sin el lock.
			r.log.Warn().Err(err).
				Str("order_id", orderID).
				Msg("advisory lock no disponible; continuando en modo degradado")
			return nil
		}
		return classifyTxErr(fmt.Errorf("advisory lock: %w", err))
	}
	return nil
}

// classifyTxErr marca deadlocks y fallos de serialización como reintentables
// para el loop de backoff; cualquier otro error pasa sin tocar.
func classifyTxErr(err error) error {
	if isRetryableConflict(err) {
		return fmt.Errorf("%w: %w", domain.ErrRetryableConflict, err)
	}
	return err
}
