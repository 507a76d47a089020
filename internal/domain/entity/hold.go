package entity

import "time"

// Hold es un reclamo temporal de stock reservado para una línea de pedido.
// Se crea de forma atómica junto con su evento RESERVE (hold.Qty == -reserve.QtyDelta)
// y solo lo cierra el flujo de liberación (ReleasedAt).
// La restricción de exclusión en storage impide dos holds activos sobre la misma
// coordenada (producto, lote, ubicación); la aplicación no re-verifica eso.
type Hold struct {
	ID          string
	TenantID    string
	OrderID     string
	OrderLineID string
	ProductID   string
	LotID       string
	WarehouseID string
	LocationID  string
	Qty         int64 // siempre positivo
	CreatedAt   time.Time
	ReleasedAt  *time.Time
}
