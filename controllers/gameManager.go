package controllers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stock-exchange-game/db"
	"stock-exchange-game/engine"
	"stock-exchange-game/models"
	"stock-exchange-game/trading"
)

// ErrYearOutOfRange is returned when a year outside the timeline is set.
var ErrYearOutOfRange = errors.New("year out of range")

// YearInterval returns how many interval units the given year lasts.
// Turns of the decade and the late century get more time.
func YearInterval(year int) int {
	switch {
	case year < models.FirstYear || year > models.LastYear:
		return 60
	case year == 2024:
		return 60
	case year >= 2020:
		return 45
	case year == 2010:
		return 45
	case year > 2010:
		return 40
	case year == 2000:
		return 45
	case year > 2000:
		return 30
	case year == 1990:
		return 40
	case year > 1990:
		return 30
	case year%10 == 0:
		return 30
	case year > 1950:
		return 25
	default:
		return 18
	}
}

// GameManager drives the year clock and the whole-game operations: start,
// stop with liquidation, set year, restart and scoring.
type GameManager struct {
	store db.Store
	desk  *trading.Desk
	hub   Broadcaster
	unit  time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	log   zerolog.Logger
}

// NewGameManager returns a stopped clock. Each year lasts
// YearInterval(year) multiples of unit.
func NewGameManager(store db.Store, desk *trading.Desk, hub Broadcaster, unit time.Duration, log zerolog.Logger) *GameManager {
	return &GameManager{
		store: store,
		desk:  desk,
		hub:   hub,
		unit:  unit,
		log:   log.With().Str("component", "game_clock").Logger(),
	}
}

// NextInterval is how long year lasts on this clock.
func (gm *GameManager) NextInterval(year int) time.Duration {
	return time.Duration(YearInterval(year)) * gm.unit
}

// State returns the persisted game state.
func (gm *GameManager) State(ctx context.Context) (models.GameState, error) {
	return gm.store.GetGame(ctx)
}

// Start marks the game running and schedules the next year. Starting a
// running game is a no-op.
func (gm *GameManager) Start(ctx context.Context) (models.GameState, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	state, err := gm.store.GetGame(ctx)
	if err != nil {
		return models.GameState{}, err
	}
	if state.Running && gm.timer != nil {
		return state, nil
	}

	state.Running = true
	state.UpdatedAt = time.Now().UTC()
	if err := gm.store.SaveGame(ctx, state); err != nil {
		return models.GameState{}, err
	}
	gm.schedule(state.CurrentYear)

	gm.log.Info().Int("year", state.CurrentYear).Msg("Game started")
	gm.hub.Publish(EventGameStarted, gin.H{"current_year": state.CurrentYear})
	return state, nil
}

// Resume restarts the clock after a process restart if the stored game is
// still running.
func (gm *GameManager) Resume(ctx context.Context) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	state, err := gm.store.GetGame(ctx)
	if err != nil {
		return err
	}
	if state.Running && gm.timer == nil {
		gm.schedule(state.CurrentYear)
		gm.log.Info().Int("year", state.CurrentYear).Msg("Game clock resumed")
	}
	return nil
}

// Stop halts the clock, sells every team's positions at current prices and
// marks the game stopped. It returns the sale records per team.
func (gm *GameManager) Stop(ctx context.Context) (map[string][]models.SaleRecord, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.stopTimer()

	teams, err := gm.store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	sales := make(map[string][]models.SaleRecord, len(teams))
	for _, team := range teams {
		records, err := gm.desk.Liquidate(ctx, team.Name)
		if err != nil {
			return sales, fmt.Errorf("failed to liquidate %s: %w", team.Name, err)
		}
		sales[team.Name] = records
	}

	state, err := gm.store.GetGame(ctx)
	if err != nil {
		return sales, err
	}
	state.Running = false
	state.UpdatedAt = time.Now().UTC()
	if err := gm.store.SaveGame(ctx, state); err != nil {
		return sales, err
	}

	gm.log.Info().Int("year", state.CurrentYear).Int("teams", len(teams)).Msg("Game stopped")
	gm.hub.Publish(EventGameStopped, gin.H{"current_year": state.CurrentYear})
	return sales, nil
}

// SetYear moves the clock to year. A running clock restarts its interval
// from the new year.
func (gm *GameManager) SetYear(ctx context.Context, year int) (models.GameState, error) {
	if year < models.FirstYear || year > models.LastYear {
		return models.GameState{}, fmt.Errorf("%w: %d not in %d-%d", ErrYearOutOfRange, year, models.FirstYear, models.LastYear)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	state, err := gm.store.GetGame(ctx)
	if err != nil {
		return models.GameState{}, err
	}
	state.CurrentYear = year
	state.UpdatedAt = time.Now().UTC()
	if err := gm.store.SaveGame(ctx, state); err != nil {
		return models.GameState{}, err
	}
	if state.Running {
		gm.schedule(year)
	}

	gm.log.Info().Int("year", year).Msg("Year set")
	gm.publishYear(year)
	return state, nil
}

// Restart stops the clock, rewinds to the first year and clears every team
// and watch list. Price data and high scores are kept.
func (gm *GameManager) Restart(ctx context.Context) (models.GameState, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.stopTimer()

	if err := gm.store.ResetTeams(ctx); err != nil {
		return models.GameState{}, err
	}
	if err := gm.store.ResetWatchLists(ctx); err != nil {
		return models.GameState{}, err
	}
	state := models.GameState{CurrentYear: models.FirstYear, UpdatedAt: time.Now().UTC()}
	if err := gm.store.SaveGame(ctx, state); err != nil {
		return models.GameState{}, err
	}

	gm.log.Info().Msg("Game restarted")
	gm.hub.Publish(EventGameStopped, gin.H{"current_year": state.CurrentYear})
	gm.publishYear(state.CurrentYear)
	return state, nil
}

// Leaderboard ranks teams by net worth at current prices, rounded to one
// decimal.
func (gm *GameManager) Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	teams, err := gm.store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	catalog, _, err := gm.desk.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.LeaderboardRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, models.LeaderboardRow{
			Name:       t.Name,
			TotalValue: engine.Round(engine.NetWorth(t, catalog), 1),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalValue > rows[j].TotalValue
	})
	return rows, nil
}

// RecordScores stores every team's current net worth as a high score.
func (gm *GameManager) RecordScores(ctx context.Context) ([]models.HighScore, error) {
	teams, err := gm.store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	catalog, _, err := gm.desk.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	scores := make([]models.HighScore, 0, len(teams))
	for _, t := range teams {
		scores = append(scores, models.HighScore{
			TeamName:   t.Name,
			TotalValue: engine.NetWorth(t, catalog),
			RecordedAt: now,
		})
	}
	if err := gm.store.AddHighScores(ctx, scores); err != nil {
		return nil, err
	}
	gm.log.Info().Int("teams", len(scores)).Msg("Scores recorded")
	return scores, nil
}

// Close stops the clock without touching the stored state.
func (gm *GameManager) Close() {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.stopTimer()
}

// schedule arms the timer that ends year. Callers hold gm.mu.
func (gm *GameManager) schedule(year int) {
	gm.stopTimer()
	if year >= models.LastYear {
		return
	}
	gm.gen++
	gen := gm.gen
	gm.timer = time.AfterFunc(gm.NextInterval(year), func() {
		gm.advance(gen)
	})
}

// stopTimer disarms the clock. Callers hold gm.mu.
func (gm *GameManager) stopTimer() {
	gm.gen++
	if gm.timer != nil {
		gm.timer.Stop()
		gm.timer = nil
	}
}

func (gm *GameManager) advance(gen uint64) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// superseded by a stop, restart or set year
	if gen != gm.gen {
		return
	}
	gm.timer = nil

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	state, err := gm.store.GetGame(ctx)
	if err != nil {
		gm.log.Error().Err(err).Msg("Failed to load game state, retrying")
		gm.retryLater()
		return
	}
	if !state.Running || state.CurrentYear >= models.LastYear {
		return
	}

	state.CurrentYear++
	state.UpdatedAt = time.Now().UTC()
	if err := gm.store.SaveGame(ctx, state); err != nil {
		gm.log.Error().Err(err).Int("year", state.CurrentYear).Msg("Failed to advance year")
		gm.retryLater()
		return
	}

	gm.log.Info().Int("year", state.CurrentYear).Msg("Year advanced")
	gm.publishYear(state.CurrentYear)
	gm.schedule(state.CurrentYear)
}

// retryLater re-arms the clock for a default interval after a store error.
// Callers hold gm.mu.
func (gm *GameManager) retryLater() {
	gm.gen++
	gen := gm.gen
	gm.timer = time.AfterFunc(gm.NextInterval(0), func() {
		gm.advance(gen)
	})
}

func (gm *GameManager) publishYear(year int) {
	gm.hub.Publish(EventYearUpdated, gin.H{
		"current_year":  year,
		"next_interval": YearInterval(year),
	})
}
