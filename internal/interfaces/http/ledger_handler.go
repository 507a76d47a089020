package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Asignador-api/internal/application/dto"
	appledger "github.com/jhoicas/Asignador-api/internal/application/ledger"
	"github.com/jhoicas/Asignador-api/internal/domain"
	"github.com/jhoicas/Asignador-api/internal/domain/entity"
)

// EventRegistrar es el puerto del handler hacia el caso de uso del ledger.
type EventRegistrar interface {
	RegisterEvent(ctx context.Context, in appledger.EventInput) (*appledger.EventResult, error)
	CurrentStock(ctx context.Context, tenantID, productID string) ([]*entity.StockRow, error)
	RefreshSnapshot(ctx context.Context, tenantID string) error
}

// LedgerHandler maneja eventos manuales de stock y lecturas del snapshot (protegido).
type LedgerHandler struct {
	uc EventRegistrar
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc EventRegistrar) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// RegisterEvent godoc
// @Summary      Registrar un evento manual de stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterEventRequest  true  "event_type (RECEIPT|SHIP|ADJUST_IN|ADJUST_OUT), warehouse_id, product_id, qty > 0"
// @Success      201   {object}  ledger.EventResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock_events [post]
func (h *LedgerHandler) RegisterEvent(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	res, err := h.uc.RegisterEvent(c.Context(), appledger.EventInput{
		TenantID:    tenantID,
		EventType:   in.EventType,
		WarehouseID: in.WarehouseID,
		LocationID:  in.LocationID,
		ProductID:   in.ProductID,
		LotID:       in.LotID,
		Qty:         in.Qty,
		Reason:      in.Reason,
		OpID:        in.OpID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// CurrentStock godoc
// @Summary      Stock actual por producto (snapshot)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto (UUID)"
// @Success      200  {object}  map[string][]dto.StockRowResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/current_stock [get]
func (h *LedgerHandler) CurrentStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id requerido"})
	}

	rows, err := h.uc.CurrentStock(c.Context(), tenantID, productID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	items := make([]dto.StockRowResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.StockRowResponse{
			ProductID:   r.ProductID,
			WarehouseID: r.WarehouseID,
			LocationID:  r.LocationID,
			LotID:       r.LotID,
			Qty:         r.Qty,
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

// RefreshSnapshot godoc
// @Summary      Recalcular el snapshot de stock actual
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /api/refresh_current_stock [post]
func (h *LedgerHandler) RefreshSnapshot(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.RefreshSnapshot(c.Context(), tenantID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"refreshed": true})
}
