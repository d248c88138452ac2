package models

// TransactionIntent is a requested change to one holding.
// Positive Delta buys, negative Delta sells, zero is a null operation.
type TransactionIntent struct {
	Team    string `json:"player" bson:"player"`
	StockID int    `json:"stock_id" bson:"stock_id"`
	Delta   int    `json:"delta" bson:"delta"`
}

// SaleRecord is written exactly once for every accepted sell and never
// modified afterwards.
type SaleRecord struct {
	ID               string  `json:"sale_id" bson:"sale_id"`
	StockID          int     `json:"stock_id" bson:"stock_id"`
	StockName        string  `json:"stock_name" bson:"stock_name"`
	PricePurchased   float64 `json:"price_purchased" bson:"price_purchased"`
	QuantitySold     int     `json:"quantity_sold" bson:"quantity_sold"`
	PriceSold        float64 `json:"price_sold" bson:"price_sold"`
	Profit           float64 `json:"profit" bson:"profit"`
	PercentageReturn float64 `json:"percentage_return" bson:"percentage_return"`
	SaleYear         int     `json:"sale_year" bson:"sale_year"`
}

// WatchListEntry holds a team's alert settings for one stock.
type WatchListEntry struct {
	StockID           int      `json:"stock_id" bson:"stock_id"`
	BirthAlert        bool     `json:"birthAlert" bson:"birthAlert"`
	ValueAlert        *float64 `json:"valueAlert" bson:"valueAlert"`
	ValueAlertEnabled bool     `json:"valueAlertEnabled" bson:"valueAlertEnabled"`
}

// Active reports whether the entry still asks for any alert.
func (e WatchListEntry) Active() bool {
	return e.BirthAlert || e.ValueAlertEnabled
}

// Alert kinds.
const (
	AlertBirth     = "birth"
	AlertThreshold = "threshold"
)

// AlertEvent is one alert produced by a single evaluation tick.
type AlertEvent struct {
	Kind      string `json:"kind"`
	StockID   int    `json:"stock_id"`
	StockName string `json:"stockName"`
	Detail    string `json:"detail"`
}
