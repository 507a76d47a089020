package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Asignador-api/internal/application/allocation"
	"github.com/jhoicas/Asignador-api/internal/application/dto"
	"github.com/jhoicas/Asignador-api/internal/domain"
)

// Allocator y Releaser son los puertos del handler hacia el motor de
// asignación (los implementan los casos de uso).
type Allocator interface {
	Allocate(ctx context.Context, tenantID, orderID string, hint map[string]any) (*allocation.Result, error)
}

type Releaser interface {
	Release(ctx context.Context, tenantID, orderID string) (*allocation.ReleaseResult, error)
}

// AllocationHandler maneja las peticiones HTTP de asignación y liberación (protegido).
type AllocationHandler struct {
	allocator Allocator
	releaser  Releaser
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(allocator Allocator, releaser Releaser) *AllocationHandler {
	return &AllocationHandler{allocator: allocator, releaser: releaser}
}

// Allocate godoc
// @Summary      Asignar stock a un pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido (UUID)"
// @Success      200   {object}  allocation.Result
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/allocate [post]
func (h *AllocationHandler) Allocate(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	orderID := c.Params("id")

	// Hint opcional; el motor lo acepta pero no altera el orden de candidatos.
	var hint map[string]any
	_ = c.BodyParser(&hint)

	res, err := h.allocator.Allocate(c.Context(), tenantID, orderID, hint)
	if err != nil {
		return allocationError(c, err)
	}
	return c.JSON(res)
}

// Release godoc
// @Summary      Liberar los holds activos de un pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id    path  string  true  "ID del pedido (UUID)"
// @Success      200   {object}  allocation.ReleaseResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/release [post]
func (h *AllocationHandler) Release(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	orderID := c.Params("id")

	res, err := h.releaser.Release(c.Context(), tenantID, orderID)
	if err != nil {
		return allocationError(c, err)
	}
	return c.JSON(res)
}

// allocationError mapea la taxonomía del motor a HTTP: agotamiento de
// reintentos es un 409 reintentable por el cliente; lo demás según el error.
func allocationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido no encontrado"})
	case errors.Is(err, domain.ErrAllocationFailed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RETRYABLE", Message: "conflicto de concurrencia; reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
