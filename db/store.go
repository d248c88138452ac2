// Package db persists the game: teams, the price timeline, watch lists,
// the game clock and high scores.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"stock-exchange-game/config"
	"stock-exchange-game/models"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamExists   = errors.New("team already exists")
	// ErrStaleState is returned by SaveTeam when the stored version no
	// longer matches the version the caller loaded.
	ErrStaleState = errors.New("team was modified concurrently")
)

// Store is the persistence boundary of the game.
type Store interface {
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, name string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	// SaveTeam replaces the team if its stored version equals team.Version
	// and increments team.Version on success.
	SaveTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, name string) error
	ResetTeams(ctx context.Context) error

	UpsertPricePoints(ctx context.Context, points []models.PricePoint) error
	// PricePoints returns the timeline entries for year and year-1.
	PricePoints(ctx context.Context, year int) ([]models.PricePoint, error)

	GetWatchList(ctx context.Context, team string) ([]models.WatchListEntry, error)
	SaveWatchList(ctx context.Context, team string, entries []models.WatchListEntry) error
	ResetWatchLists(ctx context.Context) error

	GetGame(ctx context.Context) (models.GameState, error)
	SaveGame(ctx context.Context, state models.GameState) error

	AddHighScores(ctx context.Context, scores []models.HighScore) error
	HighScores(ctx context.Context) ([]models.HighScore, error)

	Close(ctx context.Context) error
}

// Open connects the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case "mongo":
		return ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath, log)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func defaultGame() models.GameState {
	return models.GameState{CurrentYear: models.FirstYear}
}
