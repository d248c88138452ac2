package engine

import (
	"errors"
	"fmt"
)

// Reason identifies why a transaction was rejected.
type Reason string

const (
	NullOperation         Reason = "NullOperation"
	Unavailable           Reason = "Unavailable"
	InsufficientHoldings  Reason = "InsufficientHoldings"
	PerStockCapExceeded   Reason = "PerStockCapExceeded"
	PortfolioCapExceeded  Reason = "PortfolioCapExceeded"
	AveragingUpDisallowed Reason = "AveragingUpDisallowed"
	InsufficientBalance   Reason = "InsufficientBalance"
	StaleStateRejected    Reason = "StaleStateRejected"
)

var (
	// ErrUnknownStock is returned when a stock id is not in the catalog.
	ErrUnknownStock = errors.New("unknown stock")
	// ErrInvalidSnapshot is returned for malformed catalog or team input.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Rejection is the expected, recoverable outcome of a transaction that
// breaks a rule. Cause is set on StaleStateRejected to the rule that failed
// on re-validation.
type Rejection struct {
	Reason  Reason
	StockID int
	Delta   int
	Cause   Reason
}

func (r *Rejection) Error() string {
	if r.Cause != "" {
		return fmt.Sprintf("transaction rejected: %s (%s) for stock %d delta %d", r.Reason, r.Cause, r.StockID, r.Delta)
	}
	return fmt.Sprintf("transaction rejected: %s for stock %d delta %d", r.Reason, r.StockID, r.Delta)
}

// ReasonOf extracts the rejection reason from err.
func ReasonOf(err error) (Reason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}

// IsStale reports whether err asks the caller to retry on a fresh snapshot.
func IsStale(err error) bool {
	reason, ok := ReasonOf(err)
	return ok && reason == StaleStateRejected
}
