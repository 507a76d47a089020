package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Allocator      Allocator
	Releaser       Releaser
	EventRegistrar EventRegistrar
	JWTSecret      string
}

// Router registra las rutas de la API. Todas las rutas de negocio van detrás
// del Bearer Token; el tenant sale del claim, nunca del cuerpo.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Asignación y liberación de pedidos (protegido)
	allocationHandler := NewAllocationHandler(deps.Allocator, deps.Releaser)
	orders := api.Group("/orders")
	orders.Post("/:id/allocate", allocationHandler.Allocate)
	orders.Post("/:id/release", allocationHandler.Release)

	// Ledger y snapshot (protegido)
	ledgerHandler := NewLedgerHandler(deps.EventRegistrar)
	api.Post("/stock_events", ledgerHandler.RegisterEvent)
	api.Get("/current_stock", ledgerHandler.CurrentStock)
	api.Post("/refresh_current_stock", ledgerHandler.RefreshSnapshot)
}
