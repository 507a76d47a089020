package dto

// RegisterEventRequest cuerpo de POST /api/stock_events.
// qty siempre positivo; el signo lo decide event_type
// (RECEIPT/ADJUST_IN suman, SHIP/ADJUST_OUT restan).
type RegisterEventRequest struct {
	EventType   string `json:"event_type"`
	WarehouseID string `json:"warehouse_id"`
	LocationID  string `json:"location_id"`
	ProductID   string `json:"product_id"`
	LotID       string `json:"lot_id"`
	Qty         int64  `json:"qty"`
	Reason      string `json:"reason"`
	OpID        string `json:"op_id"` // opcional: clave de idempotencia propia del caller
}

// StockRowResponse fila de GET /api/current_stock.
type StockRowResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	LocationID  string `json:"location_id"`
	LotID       string `json:"lot_id,omitempty"`
	Qty         int64  `json:"qty"`
}
