package allocation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
	"github.com/jhoicas/Asignador-api/pkg/logger"
	"github.com/jhoicas/Asignador-api/pkg/metrics"
)

// ReleaseResult es el resultado del flujo de liberación.
type ReleaseResult struct {
	OrderID       string `json:"order_id"`
	ReleasedLines int    `json:"released_lines"`
	ReleasedQty   int64  `json:"released_qty"`
}

// ReleaseOrderUseCase revierte los holds activos de un pedido: los cierra,
// escribe eventos RELEASE compensatorios (+qty, op_id fresco) y devuelve el
// pedido a open. Corre bajo el mismo lock por pedido que la asignación.
type ReleaseOrderUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReleaseOrderUseCase construye el caso de uso.
func NewReleaseOrderUseCase(txRunner TxRunner, log *logger.Logger) *ReleaseOrderUseCase {
	return &ReleaseOrderUseCase{txRunner: txRunner, log: log}
}

// Release libera los holds activos del pedido. Sin holds activos es un no-op
// que devuelve contadores en cero, no un error.
func (uc *ReleaseOrderUseCase) Release(ctx context.Context, tenantID, orderID string) (*ReleaseResult, error) {
	if tenantID == "" || orderID == "" {
		return nil, domain.ErrInvalidInput
	}

	res := &ReleaseResult{OrderID: orderID}
	err := uc.txRunner.RunOrder(ctx, tenantID, orderID, func(
		orderRepo repository.OrderRepository,
		_ repository.CandidateRepository,
		_ repository.ReservationRepository,
		holdRepo repository.HoldRepository,
		ledgerRepo repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error {
		holds, err := holdRepo.ReleaseActive(ctx, orderID)
		if err != nil {
			return err
		}

		for _, h := range holds {
			event := &entity.LedgerEvent{
				TenantID:    tenantID,
				EventType:   entity.EventTypeRELEASE,
				WarehouseID: h.WarehouseID,
				LocationID:  h.LocationID,
				ProductID:   h.ProductID,
				LotID:       h.LotID,
				OrderID:     orderID,
				OrderLineID: h.OrderLineID,
				QtyDelta:    h.Qty,
				Reason:      "manual release",
				OpID:        uuid.New().String(),
			}
			if _, err := ledgerRepo.Append(ctx, event); err != nil && !errors.Is(err, domain.ErrDuplicateOperation) {
				return err
			}
			res.ReleasedQty += h.Qty
		}
		res.ReleasedLines = len(holds)

		if len(holds) > 0 {
			if err := orderRepo.SetStatus(ctx, orderID, entity.OrderStatusOpen); err != nil {
				return err
			}
			return snapshotRepo.Refresh(ctx)
		}
		return nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("order_id", orderID).Msg("liberación fallida")
		return nil, err
	}

	metrics.ReleasedQty.Add(float64(res.ReleasedQty))
	return res, nil
}
