package engine

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stock-exchange-game/models"
)

// Result is the outcome of an applied transaction.
type Result struct {
	Holding models.Holding     `json:"holding"`
	Sale    *models.SaleRecord `json:"sale,omitempty"`
	Balance float64            `json:"balance"`
}

// Applier mutates a team aggregate for transactions that passed validation.
type Applier struct {
	validator *Validator
	newID     func() string
}

// NewApplier returns an applier that re-validates with v before mutating.
func NewApplier(v *Validator) *Applier {
	return &Applier{validator: v, newID: uuid.NewString}
}

// Apply performs delta units of stock on team at the stock's current price.
//
// The transaction is re-validated first. A rule failure at this point means
// the snapshot changed since the caller validated it, so it is reported as
// StaleStateRejected with the failing rule as Cause and team is left as is.
// Holding, balance and the sale log are written together after every value
// has been computed.
func (a *Applier) Apply(team *models.Team, stock models.Stock, delta int, year int) (Result, error) {
	if err := a.validator.Validate(team, stock, delta); err != nil {
		var r *Rejection
		if errors.As(err, &r) {
			return Result{}, &Rejection{
				Reason:  StaleStateRejected,
				StockID: stock.StockID,
				Delta:   delta,
				Cause:   r.Reason,
			}
		}
		return Result{}, err
	}

	old := team.Holding(stock.StockID)
	next := old
	cash := decimal.NewFromFloat(team.Balance)
	var sale *models.SaleRecord

	if delta > 0 {
		cost := stock.Price * float64(delta)
		if old.Owned == 0 {
			next.PurchasePrice = stock.Price
			next.YearPurchased = year
		} else {
			basis := old.PurchasePrice*float64(old.Owned) + cost
			next.PurchasePrice = basis / float64(old.Owned+delta)
		}
		next.Owned = old.Owned + delta
		cash = cash.Sub(amount(stock.Price, delta))
	} else {
		qty := -delta
		record := NewSaleRecord(old, stock, qty, year)
		record.ID = a.newID()
		sale = &record

		next.Owned = old.Owned - qty
		cash = cash.Add(amount(stock.Price, qty))
		if next.Owned == 0 {
			next = models.Holding{}
		}
	}

	if team.Holdings == nil {
		team.Holdings = make(map[int]models.Holding)
	}
	if next.Owned == 0 {
		delete(team.Holdings, stock.StockID)
	} else {
		team.Holdings[stock.StockID] = next
	}
	balance := cash.InexactFloat64()
	team.Balance = balance
	if sale != nil {
		team.CompletedSales = append(team.CompletedSales, *sale)
	}

	return Result{Holding: next, Sale: sale, Balance: balance}, nil
}
