// Package engine holds the trading rules of the game: transaction
// validation and application, portfolio valuation and watch-list alerts.
// Everything here is computed from in-memory snapshots; loading and saving
// those snapshots is the caller's job.
package engine

const (
	// PerStockCap is the most units of a single stock a team may hold.
	PerStockCap = 75
	// PortfolioCap is the most units a team may hold across all stocks.
	PortfolioCap = 600
	// BirthPrice is the offering price a stock is listed at when it is born.
	BirthPrice = 8.0
)

// Policy is the rule set shared by every call site that trades.
type Policy struct {
	PerStockCap  int
	PortfolioCap int
	// AllowAveragingUp permits buying more of a stock that is already held.
	// The cost basis becomes the quantity-weighted average.
	AllowAveragingUp bool
	// AllowDelistedSell permits selling a holding whose price is 0.
	AllowDelistedSell bool
	BirthPrice        float64
}

// DefaultPolicy returns the rules of the live game.
func DefaultPolicy() Policy {
	return Policy{
		PerStockCap:       PerStockCap,
		PortfolioCap:      PortfolioCap,
		AllowAveragingUp:  true,
		AllowDelistedSell: true,
		BirthPrice:        BirthPrice,
	}
}
