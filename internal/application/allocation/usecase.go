package allocation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
	"github.com/jhoicas/Asignador-api/pkg/logger"
	"github.com/jhoicas/Asignador-api/pkg/metrics"
)

// LineResult es el resultado de asignación de una línea. allocated < requested
// señala faltante; nunca es un error.
type LineResult struct {
	OrderLineID string `json:"order_line_id"`
	Requested   int64  `json:"requested"`
	Allocated   int64  `json:"allocated"`
}

// Result es el resultado de asignación de un pedido completo.
type Result struct {
	OrderID string       `json:"order_id"`
	Lines   []LineResult `json:"lines"`
}

// AllocateOrderUseCase orquesta la asignación de un pedido: lock por pedido,
// lectura de líneas, recorrido de candidatos en orden fijo, par hold+RESERVE
// por candidato y un refresh de snapshot al final del intento exitoso.
//
// Diseño de concurrencia (heredado del ledger original):
//   - Orden estable de candidatos (warehouse → lot → location → vencimiento)
//     para que todos los workers pidan locks de fila en la misma secuencia.
//   - SKIP LOCKED: las filas a medio reclamar por otro worker se ven como no
//     disponibles y se pasa al siguiente candidato, sin bloquear.
//   - Advisory lock transaccional por (tenant, order): un solo worker por pedido.
//   - Idempotencia: unique (tenant_id, op_id) en el ledger; un reintento que
//     repita un insert no duplica filas.
//   - Reintentos con backoff ante deadlock / fallo de serialización.
type AllocateOrderUseCase struct {
	txRunner       TxRunner
	policy         RetryPolicy
	candidateLimit int
	log            *logger.Logger
}

// NewAllocateOrderUseCase construye el caso de uso. candidateLimit <= 0 usa el
// límite por defecto (64).
func NewAllocateOrderUseCase(txRunner TxRunner, policy RetryPolicy, candidateLimit int, log *logger.Logger) *AllocateOrderUseCase {
	if candidateLimit <= 0 {
		candidateLimit = repository.DefaultCandidateLimit
	}
	return &AllocateOrderUseCase{
		txRunner:       txRunner,
		policy:         policy,
		candidateLimit: candidateLimit,
		log:            log,
	}
}

// Allocate ejecuta la asignación de punta a punta para un pedido. Retorna al
// commit; la asignación parcial es un resultado normal. Llamar dos veces sobre
// un pedido ya asignado es seguro: los holds previos ya redujeron la
// disponibilidad de los candidatos.
//
// hint se acepta por contrato de la API pero el motor no lo usa: el orden de
// candidatos es fijo y determinista.
func (uc *AllocateOrderUseCase) Allocate(ctx context.Context, tenantID, orderID string, hint map[string]any) (*Result, error) {
	if tenantID == "" || orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	_ = hint

	start := time.Now()
	var res *Result
	err := uc.policy.Do(ctx, func() error {
		r, err := uc.attempt(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	metrics.AllocationDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.AllocationAttempts.WithLabelValues("success").Inc()
		return res, nil
	case errors.Is(err, domain.ErrAllocationFailed):
		metrics.AllocationAttempts.WithLabelValues("exhausted").Inc()
		uc.log.Error().Err(err).Str("order_id", orderID).Msg("asignación agotó reintentos")
		return nil, err
	default:
		metrics.AllocationAttempts.WithLabelValues("fatal").Inc()
		uc.log.Error().Err(err).Str("order_id", orderID).Msg("asignación abortada")
		return nil, err
	}
}

// attempt es un intento completo dentro de una transacción nueva. Un conflicto
// reintentable descarta todo (rollback) y el loop de Do vuelve a empezar.
func (uc *AllocateOrderUseCase) attempt(ctx context.Context, tenantID, orderID string) (*Result, error) {
	res := &Result{OrderID: orderID}
	err := uc.txRunner.RunOrder(ctx, tenantID, orderID, func(
		orderRepo repository.OrderRepository,
		candidateRepo repository.CandidateRepository,
		reservationRepo repository.ReservationRepository,
		holdRepo repository.HoldRepository,
		ledgerRepo repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error {
		lines, err := orderRepo.GetLines(ctx, orderID)
		if err != nil {
			return err
		}

		res.Lines = res.Lines[:0]
		ledgerChanged := false
		anyAllocated := false

		for _, line := range lines {
			remaining := line.Qty
			candidates, err := candidateRepo.Candidates(ctx, line.ProductID, uc.candidateLimit)
			if err != nil {
				return err
			}
			for _, c := range candidates {
				if remaining <= 0 {
					break
				}
				if c.AvailableQty <= 0 {
					continue
				}
				take := min(c.AvailableQty, remaining)
				if err := uc.reserve(ctx, reservationRepo, tenantID, orderID, line, c, take); err != nil {
					if errors.Is(err, domain.ErrHoldOverlap) {
						// Otro worker reclamó esa coordenada: siguiente candidato.
						metrics.OverlapConflicts.Inc()
						continue
					}
					return err
				}
				ledgerChanged = true
				remaining -= take
			}

			allocated := line.Qty - remaining
			if allocated > 0 {
				anyAllocated = true
			}
			res.Lines = append(res.Lines, LineResult{
				OrderLineID: line.ID,
				Requested:   line.Qty,
				Allocated:   allocated,
			})
		}

		if anyAllocated {
			if err := orderRepo.SetStatus(ctx, orderID, entity.OrderStatusAllocated); err != nil {
				return err
			}
		}
		if ledgerChanged {
			// Una sola vez por intento, no por línea.
			return snapshotRepo.Refresh(ctx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// reserve crea el par atómico hold + evento RESERVE (hold.Qty == -QtyDelta)
// con un op_id fresco.
func (uc *AllocateOrderUseCase) reserve(
	ctx context.Context,
	reservationRepo repository.ReservationRepository,
	tenantID, orderID string,
	line *entity.OrderLine,
	c *entity.Candidate,
	take int64,
) error {
	hold := &entity.Hold{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		OrderID:     orderID,
		OrderLineID: line.ID,
		ProductID:   line.ProductID,
		LotID:       c.LotID,
		WarehouseID: c.WarehouseID,
		LocationID:  c.LocationID,
		Qty:         take,
	}
	reserve := &entity.LedgerEvent{
		TenantID:    tenantID,
		EventType:   entity.EventTypeRESERVE,
		WarehouseID: c.WarehouseID,
		LocationID:  c.LocationID,
		ProductID:   line.ProductID,
		LotID:       c.LotID,
		OrderID:     orderID,
		OrderLineID: line.ID,
		QtyDelta:    -take,
		Reason:      "allocation reserve",
		OpID:        uuid.New().String(),
	}
	return reservationRepo.Reserve(ctx, hold, reserve)
}
