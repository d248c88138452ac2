package engine

import (
	"fmt"
	"strconv"

	"stock-exchange-game/models"
)

// AlertEvaluator turns watch-list settings and a price snapshot into alert
// events. It keeps no state between calls.
type AlertEvaluator struct {
	// BirthPrice is the exact price a stock must show, coming from 0, for a
	// birth alert to fire.
	BirthPrice float64
}

// NewAlertEvaluator returns an evaluator using the policy's birth price.
func NewAlertEvaluator(policy Policy) *AlertEvaluator {
	return &AlertEvaluator{BirthPrice: policy.BirthPrice}
}

// Evaluate returns every alert that holds for the given snapshot, in
// watch-list order. Entries whose stock is not in stocks are skipped.
func (e *AlertEvaluator) Evaluate(watchList []models.WatchListEntry, stocks []models.Stock) []models.AlertEvent {
	byID := make(map[int]models.Stock, len(stocks))
	for _, s := range stocks {
		byID[s.StockID] = s
	}

	events := []models.AlertEvent{}
	for _, entry := range watchList {
		stock, ok := byID[entry.StockID]
		if !ok {
			continue
		}
		if entry.BirthAlert && stock.Price == e.BirthPrice && stock.PreviousPrice == 0 {
			events = append(events, models.AlertEvent{
				Kind:      models.AlertBirth,
				StockID:   stock.StockID,
				StockName: stock.Name,
				Detail:    fmt.Sprintf("Birth! %s has been born and is now available to buy", stock.Name),
			})
		}
		if entry.ValueAlertEnabled && entry.ValueAlert != nil && stock.Price >= *entry.ValueAlert {
			events = append(events, models.AlertEvent{
				Kind:      models.AlertThreshold,
				StockID:   stock.StockID,
				StockName: stock.Name,
				Detail:    fmt.Sprintf("Alert! %s is valued at or above %s!", stock.Name, strconv.FormatFloat(*entry.ValueAlert, 'f', -1, 64)),
			})
		}
	}
	return events
}

// Evaluate runs the default evaluator.
func Evaluate(watchList []models.WatchListEntry, stocks []models.Stock) []models.AlertEvent {
	return (&AlertEvaluator{BirthPrice: BirthPrice}).Evaluate(watchList, stocks)
}
