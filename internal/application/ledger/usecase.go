package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/entity"
	"github.com/jhoicas/Asignador-api/internal/domain/repository"
	"github.com/jhoicas/Asignador-api/pkg/logger"
)

// Tipos de evento admitidos para escritura manual. RESERVE y RELEASE son
// exclusivos del motor de asignación.
var manualEventTypes = map[string]bool{
	entity.EventTypeRECEIPT:   true,
	entity.EventTypeSHIP:      true,
	entity.EventTypeADJUSTIN:  true,
	entity.EventTypeADJUSTOUT: true,
}

// EventInput entrada para registrar un evento manual de stock.
// Qty es siempre positivo; el signo del delta lo decide el tipo de evento.
// OpID vacío genera una clave de idempotencia fresca.
type EventInput struct {
	TenantID    string
	EventType   string
	WarehouseID string
	LocationID  string
	ProductID   string
	LotID       string
	Qty         int64
	Reason      string
	OpID        string
}

// EventResult resultado del registro.
type EventResult struct {
	EventID   string `json:"id"`
	OpID      string `json:"op_id"`
	QtyDelta  int64  `json:"qty_delta"`
	Duplicate bool   `json:"duplicate"`
}

// RegisterEventUseCase registra eventos manuales en el stock ledger
// (RECEIPT, SHIP, ADJUST_IN, ADJUST_OUT) y refresca el snapshot.
type RegisterEventUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewRegisterEventUseCase construye el caso de uso.
func NewRegisterEventUseCase(txRunner TxRunner, log *logger.Logger) *RegisterEventUseCase {
	return &RegisterEventUseCase{txRunner: txRunner, log: log}
}

// RegisterEvent valida, deriva el signo del delta según el tipo y hace el
// append idempotente. Un op_id repetido es éxito sin efecto (Duplicate=true)
// y no refresca el snapshot: el ledger no cambió.
func (uc *RegisterEventUseCase) RegisterEvent(ctx context.Context, in EventInput) (*EventResult, error) {
	if !manualEventTypes[in.EventType] {
		return nil, domain.ErrInvalidInput
	}
	if in.Qty <= 0 || in.TenantID == "" || in.WarehouseID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}

	qtyDelta := in.Qty
	if in.EventType == entity.EventTypeSHIP || in.EventType == entity.EventTypeADJUSTOUT {
		qtyDelta = -in.Qty
	}
	opID := in.OpID
	if opID == "" {
		opID = uuid.New().String()
	}

	res := &EventResult{OpID: opID, QtyDelta: qtyDelta}
	err := uc.txRunner.RunTenant(ctx, in.TenantID, func(
		ledgerRepo repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error {
		event := &entity.LedgerEvent{
			TenantID:    in.TenantID,
			EventType:   in.EventType,
			WarehouseID: in.WarehouseID,
			LocationID:  in.LocationID,
			ProductID:   in.ProductID,
			LotID:       in.LotID,
			QtyDelta:    qtyDelta,
			Reason:      in.Reason,
			OpID:        opID,
		}
		id, err := ledgerRepo.Append(ctx, event)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateOperation) {
				res.Duplicate = true
				return nil
			}
			return err
		}
		res.EventID = id
		return snapshotRepo.Refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if res.Duplicate {
		uc.log.Debug().Str("op_id", opID).Msg("evento duplicado ignorado")
	}
	return res, nil
}

// CurrentStock lee el snapshot de stock actual para un producto.
func (uc *RegisterEventUseCase) CurrentStock(ctx context.Context, tenantID, productID string) ([]*entity.StockRow, error) {
	if tenantID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var rows []*entity.StockRow
	err := uc.txRunner.RunTenant(ctx, tenantID, func(
		_ repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error {
		var err error
		rows, err = snapshotRepo.CurrentStock(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RefreshSnapshot fuerza un recálculo completo de la vista de stock actual.
func (uc *RegisterEventUseCase) RefreshSnapshot(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.RunTenant(ctx, tenantID, func(
		_ repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
	) error {
		return snapshotRepo.Refresh(ctx)
	})
}
