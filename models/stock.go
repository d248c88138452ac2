package models

// Stock is one tradeable line of the catalog as seen in the current year.
// A stock with Price == 0 has not been born yet (or has been delisted).
type Stock struct {
	StockID       int     `json:"stock_id" bson:"stock_id"`
	Name          string  `json:"name" bson:"name"`
	Category      string  `json:"category" bson:"category"`
	Price         float64 `json:"price" bson:"price"`
	PreviousPrice float64 `json:"previousPrice" bson:"previousPrice"`
}

// PricePoint is a single entry of the externally supplied price timeline.
type PricePoint struct {
	StockID  int     `json:"stock_id" bson:"stock_id"`
	Name     string  `json:"name" bson:"name"`
	Category string  `json:"category" bson:"category"`
	Year     int     `json:"year" bson:"year"`
	Price    float64 `json:"price" bson:"price"`
}
