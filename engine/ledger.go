package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"stock-exchange-game/models"
)

// PositionValuation is the read model of one holding at current prices.
type PositionValuation struct {
	StockID         int     `json:"stock_id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Owned           int     `json:"owned"`
	PurchasePrice   float64 `json:"purchase_price"`
	Price           float64 `json:"price"`
	CurrentValue    float64 `json:"current_value"`
	PotentialProfit float64 `json:"potential_profit"`
	YearPurchased   int     `json:"year_purchased"`
}

// CurrentValue is what the holding is worth at the stock's current price.
func CurrentValue(h models.Holding, s models.Stock) float64 {
	return float64(h.Owned) * s.Price
}

// PotentialProfit is the unrealized gain of the holding against its cost basis.
func PotentialProfit(h models.Holding, s models.Stock) float64 {
	return CurrentValue(h, s) - h.PurchasePrice*float64(h.Owned)
}

// TotalOwned sums units across every holding of the team.
func TotalOwned(team *models.Team) int {
	total := 0
	for _, h := range team.Holdings {
		total += h.Owned
	}
	return total
}

// TotalValue is the market value of all positions. Holdings of stocks
// missing from the catalog count as worth 0.
func TotalValue(team *models.Team, catalog *Catalog) float64 {
	total := 0.0
	for id, h := range team.Holdings {
		total += float64(h.Owned) * catalog.Price(id)
	}
	return total
}

// TotalProfit is the unrealized profit across all positions.
func TotalProfit(team *models.Team, catalog *Catalog) float64 {
	total := 0.0
	for id, h := range team.Holdings {
		total += float64(h.Owned)*catalog.Price(id) - h.PurchasePrice*float64(h.Owned)
	}
	return total
}

// NetWorth is cash plus the market value of all positions.
func NetWorth(team *models.Team, catalog *Catalog) float64 {
	return team.Balance + TotalValue(team, catalog)
}

// Valuate lists every open position with its value and unrealized profit,
// in ascending stock id order.
func Valuate(team *models.Team, catalog *Catalog) []PositionValuation {
	ids := make([]int, 0, len(team.Holdings))
	for id, h := range team.Holdings {
		if h.Owned > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	rows := make([]PositionValuation, 0, len(ids))
	for _, id := range ids {
		h := team.Holdings[id]
		s, err := catalog.Lookup(id)
		if err != nil {
			s = models.Stock{StockID: id, Name: "Unknown"}
		}
		rows = append(rows, PositionValuation{
			StockID:         id,
			Name:            s.Name,
			Category:        s.Category,
			Owned:           h.Owned,
			PurchasePrice:   h.PurchasePrice,
			Price:           s.Price,
			CurrentValue:    CurrentValue(h, s),
			PotentialProfit: PotentialProfit(h, s),
			YearPurchased:   h.YearPurchased,
		})
	}
	return rows
}

// ByProfitDesc sorts valuations by descending potential profit; ties keep
// stock id order.
func ByProfitDesc(rows []PositionValuation) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PotentialProfit > rows[j].PotentialProfit
	})
}

// NewSaleRecord computes the realized result of selling qty units of the
// holding at the stock's current price.
func NewSaleRecord(h models.Holding, s models.Stock, qty int, year int) models.SaleRecord {
	cost := h.PurchasePrice * float64(qty)
	profit := (s.Price - h.PurchasePrice) * float64(qty)
	pct := 0.0
	if h.PurchasePrice > 0 {
		pct = profit / cost * 100
	}
	return models.SaleRecord{
		StockID:          s.StockID,
		StockName:        s.Name,
		PricePurchased:   h.PurchasePrice,
		QuantitySold:     qty,
		PriceSold:        s.Price,
		Profit:           profit,
		PercentageReturn: pct,
		SaleYear:         year,
	}
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// amount is price × qty in decimal, so cash comparisons and debits agree
// with the prices as written.
func amount(price float64, qty int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
}
