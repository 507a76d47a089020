package entity

import "time"

// Tipos de evento del stock ledger.
const (
	EventTypeRECEIPT   = "RECEIPT"    // entrada de mercancía
	EventTypeSHIP      = "SHIP"       // despacho
	EventTypeADJUSTIN  = "ADJUST_IN"  // ajuste positivo
	EventTypeADJUSTOUT = "ADJUST_OUT" // ajuste negativo
	EventTypeRESERVE   = "RESERVE"    // reserva para una línea de pedido
	EventTypeRELEASE   = "RELEASE"    // compensación de una reserva
)

// LedgerEvent es un registro inmutable del stock ledger (append-only).
// El stock actual de una coordenada es la suma firmada de sus QtyDelta;
// los eventos nunca se actualizan ni se borran.
type LedgerEvent struct {
	ID          string
	TenantID    string
	EventType   string
	WarehouseID string
	LocationID  string
	ProductID   string
	LotID       string
	OrderID     string // vacío en eventos manuales
	OrderLineID string
	QtyDelta    int64
	Reason      string
	OpID        string // clave de idempotencia, única por (tenant_id, op_id)
	Ts          time.Time
}
