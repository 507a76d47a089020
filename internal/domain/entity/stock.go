package entity

// StockRow es una fila del snapshot denormalizado de stock actual.
// Derivada y reconstruible desde el ledger en cualquier momento; no es
// autoritativa y puede ir rezagada entre refresh y refresh.
type StockRow struct {
	ProductID   string
	WarehouseID string
	LocationID  string
	LotID       string
	Qty         int64
}
