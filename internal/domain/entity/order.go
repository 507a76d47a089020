package entity

// Estados de un pedido durante el ciclo allocate/release.
const (
	OrderStatusOpen      = "open"
	OrderStatusAllocated = "allocated"
)

// OrderLine es una línea de pedido: producto y cantidad solicitada.
// Inmutable una vez creada; el pedido en sí es propiedad de colaboradores externos,
// este núcleo solo muta su status.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Qty       int64
}
