package jobs

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stock-exchange-game/db"
	"stock-exchange-game/engine"
	"stock-exchange-game/models"
)

// EventAlerts is the websocket event carrying a team's alert set.
const EventAlerts = "alerts"

// Publisher broadcasts an event to connected clients.
type Publisher interface {
	Publish(event string, data interface{})
}

// CatalogSource yields the stock snapshot of the current game year.
type CatalogSource interface {
	Catalog(ctx context.Context) (*engine.Catalog, int, error)
}

// AlertsPayload is the data of an alerts event.
type AlertsPayload struct {
	Team   string              `json:"team"`
	Year   int                 `json:"year"`
	Alerts []models.AlertEvent `json:"alerts"`
}

// AlertJob evaluates every team's watch list against the current prices
// and publishes the result when it differs from what was last sent to that
// team.
type AlertJob struct {
	store     db.Store
	catalogs  CatalogSource
	evaluator *engine.AlertEvaluator
	publisher Publisher
	timeout   time.Duration

	mu   sync.Mutex
	last map[string][]models.AlertEvent
	log  zerolog.Logger
}

// NewAlertJob wires the alert evaluation tick.
func NewAlertJob(store db.Store, catalogs CatalogSource, policy engine.Policy, publisher Publisher, log zerolog.Logger) *AlertJob {
	return &AlertJob{
		store:     store,
		catalogs:  catalogs,
		evaluator: engine.NewAlertEvaluator(policy),
		publisher: publisher,
		timeout:   10 * time.Second,
		last:      make(map[string][]models.AlertEvent),
		log:       log.With().Str("job", "alerts").Logger(),
	}
}

func (j *AlertJob) Name() string { return "alerts" }

func (j *AlertJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	catalog, year, err := j.catalogs.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	teams, err := j.store.ListTeams(ctx)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}
	stocks := catalog.Stocks()

	j.mu.Lock()
	defer j.mu.Unlock()

	seen := make(map[string]bool, len(teams))
	for _, team := range teams {
		seen[team.Name] = true

		watch, err := j.store.GetWatchList(ctx, team.Name)
		if err != nil {
			return fmt.Errorf("failed to load watch list of %s: %w", team.Name, err)
		}
		events := j.evaluator.Evaluate(watch, stocks)
		if slices.Equal(events, j.last[team.Name]) {
			continue
		}
		j.last[team.Name] = events
		j.publisher.Publish(EventAlerts, AlertsPayload{Team: team.Name, Year: year, Alerts: events})
		j.log.Debug().Str("team", team.Name).Int("alerts", len(events)).Msg("Alerts changed")
	}
	for name := range j.last {
		if !seen[name] {
			delete(j.last, name)
		}
	}
	return nil
}

// Current returns the alert set last published for team.
func (j *AlertJob) Current(team string) []models.AlertEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.AlertEvent{}, j.last[team]...)
}
