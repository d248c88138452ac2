package engine

import (
	"fmt"
	"sort"

	"stock-exchange-game/models"
)

// Catalog is a read-only snapshot of all stocks for one tick of the timeline.
type Catalog struct {
	byID  map[int]models.Stock
	order []int
}

// NewCatalog indexes stocks by id. Duplicate ids and negative prices are
// rejected with ErrInvalidSnapshot.
func NewCatalog(stocks []models.Stock) (*Catalog, error) {
	c := &Catalog{
		byID:  make(map[int]models.Stock, len(stocks)),
		order: make([]int, 0, len(stocks)),
	}
	for _, s := range stocks {
		if _, dup := c.byID[s.StockID]; dup {
			return nil, fmt.Errorf("%w: duplicate stock id %d", ErrInvalidSnapshot, s.StockID)
		}
		if s.Price < 0 || s.PreviousPrice < 0 {
			return nil, fmt.Errorf("%w: negative price for stock %d", ErrInvalidSnapshot, s.StockID)
		}
		c.byID[s.StockID] = s
		c.order = append(c.order, s.StockID)
	}
	sort.Ints(c.order)
	return c, nil
}

// CatalogFromSeries builds the snapshot for year from a price timeline.
// PreviousPrice is the price at year-1, or 0 when the stock had no entry.
// Name and category come from the current-year entry.
func CatalogFromSeries(points []models.PricePoint, year int) (*Catalog, error) {
	current := make(map[int]models.PricePoint)
	previous := make(map[int]float64)
	for _, p := range points {
		switch p.Year {
		case year:
			if _, dup := current[p.StockID]; dup {
				return nil, fmt.Errorf("%w: duplicate price for stock %d in %d", ErrInvalidSnapshot, p.StockID, year)
			}
			current[p.StockID] = p
		case year - 1:
			previous[p.StockID] = p.Price
		}
	}

	stocks := make([]models.Stock, 0, len(current))
	for id, p := range current {
		stocks = append(stocks, models.Stock{
			StockID:       id,
			Name:          p.Name,
			Category:      p.Category,
			Price:         p.Price,
			PreviousPrice: previous[id],
		})
	}
	return NewCatalog(stocks)
}

// Lookup returns the stock for id. An unknown id is a caller error, never a
// transaction outcome.
func (c *Catalog) Lookup(id int) (models.Stock, error) {
	s, ok := c.byID[id]
	if !ok {
		return models.Stock{}, fmt.Errorf("%w: %d", ErrUnknownStock, id)
	}
	return s, nil
}

// Price returns the current price of id, or 0 for unknown ids.
func (c *Catalog) Price(id int) float64 {
	return c.byID[id].Price
}

// Len returns the number of stocks.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Stocks returns every stock in ascending id order.
func (c *Catalog) Stocks() []models.Stock {
	out := make([]models.Stock, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ByCategory returns the stocks of one category in ascending id order.
func (c *Catalog) ByCategory(category string) []models.Stock {
	var out []models.Stock
	for _, id := range c.order {
		if s := c.byID[id]; s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Categories lists the distinct categories in order of first appearance by id.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range c.order {
		cat := c.byID[id].Category
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

// Born reports whether the stock can currently be bought.
func Born(s models.Stock) bool {
	return s.Price > 0
}
