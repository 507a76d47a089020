package entity

// Candidate es una coordenada de stock disponible para satisfacer una línea,
// derivada del ledger (no se persiste). AvailableQty ya descuenta los holds
// activos porque los eventos RESERVE/RELEASE netean en la suma del ledger.
//
// El proveedor de candidatos los entrega SIEMPRE en el mismo orden
// (warehouse_id, lot_id, location_id, expiry asc): es el contrato de
// prevención de deadlocks — todos los workers piden locks de fila en la
// misma secuencia global.
type Candidate struct {
	WarehouseID  string
	LocationID   string
	LotID        string
	AvailableQty int64
}
