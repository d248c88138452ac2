package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stock-exchange-game/models"
)

// Validator decides whether a requested change to a holding is legal.
type Validator struct {
	policy Policy
}

// NewValidator returns a validator enforcing policy.
func NewValidator(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Policy returns the rules the validator enforces.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate checks delta units of stock against the team snapshot. It
// returns nil to accept, a *Rejection for a broken rule, or
// ErrInvalidSnapshot for malformed input. The team is never modified.
//
// Checks run in a fixed order and the first failure is reported:
// null operation, availability, holdings, per-stock cap, portfolio cap,
// averaging-up, balance.
func (v *Validator) Validate(team *models.Team, stock models.Stock, delta int) error {
	if team == nil {
		return fmt.Errorf("%w: nil team", ErrInvalidSnapshot)
	}
	if team.Balance < 0 {
		return fmt.Errorf("%w: team %q has negative balance", ErrInvalidSnapshot, team.Name)
	}

	holding := team.Holding(stock.StockID)
	if holding.Owned < 0 {
		return fmt.Errorf("%w: team %q owns %d of stock %d", ErrInvalidSnapshot, team.Name, holding.Owned, stock.StockID)
	}

	reject := func(r Reason) error {
		return &Rejection{Reason: r, StockID: stock.StockID, Delta: delta}
	}

	if delta == 0 {
		return reject(NullOperation)
	}
	if stock.Price <= 0 {
		if delta > 0 || !v.policy.AllowDelistedSell {
			return reject(Unavailable)
		}
	}
	if holding.Owned+delta < 0 {
		return reject(InsufficientHoldings)
	}
	if holding.Owned+delta > v.policy.PerStockCap {
		return reject(PerStockCapExceeded)
	}
	if delta > 0 && TotalOwned(team)+delta > v.policy.PortfolioCap {
		return reject(PortfolioCapExceeded)
	}
	if delta > 0 && !v.policy.AllowAveragingUp && (holding.Owned > 0 || holding.PurchasePrice > 0) {
		return reject(AveragingUpDisallowed)
	}
	if delta > 0 && amount(stock.Price, delta).GreaterThan(decimal.NewFromFloat(team.Balance)) {
		return reject(InsufficientBalance)
	}
	return nil
}
