package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-exchange-game/config"
	"stock-exchange-game/models"
)

type storeFactory func(t *testing.T) Store

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), ":memory:", zerolog.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close(context.Background()) })
			return s
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func fv(v float64) *float64 { return &v }

func TestStore_TeamLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		require.NoError(t, s.CreateTeam(ctx, models.NewTeam("alpha", 1000)))
		err := s.CreateTeam(ctx, models.NewTeam("alpha", 1000))
		assert.ErrorIs(t, err, ErrTeamExists)

		team, err := s.GetTeam(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, team.Balance)
		assert.Empty(t, team.Holdings)
		assert.Equal(t, int64(0), team.Version)

		team.Balance = 880
		team.Holdings[3] = models.Holding{Owned: 10, PurchasePrice: 12, YearPurchased: 1910}
		require.NoError(t, s.SaveTeam(ctx, team))
		assert.Equal(t, int64(1), team.Version)

		team.Balance = 940
		team.Holdings[3] = models.Holding{Owned: 5, PurchasePrice: 12, YearPurchased: 1910}
		team.CompletedSales = append(team.CompletedSales, models.SaleRecord{
			ID: "s-1", StockID: 3, StockName: "Ford", PricePurchased: 12, QuantitySold: 5,
			PriceSold: 12, Profit: 0, PercentageReturn: 0, SaleYear: 1911,
		})
		require.NoError(t, s.SaveTeam(ctx, team))

		got, err := s.GetTeam(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 940.0, got.Balance)
		assert.Equal(t, models.Holding{Owned: 5, PurchasePrice: 12, YearPurchased: 1910}, got.Holdings[3])
		require.Len(t, got.CompletedSales, 1)
		assert.Equal(t, "s-1", got.CompletedSales[0].ID)
		assert.Equal(t, int64(2), got.Version)

		require.NoError(t, s.CreateTeam(ctx, models.NewTeam("beta", 500)))
		teams, err := s.ListTeams(ctx)
		require.NoError(t, err)
		require.Len(t, teams, 2)
		assert.Equal(t, "alpha", teams[0].Name)
		assert.Equal(t, "beta", teams[1].Name)

		require.NoError(t, s.DeleteTeam(ctx, "beta"))
		_, err = s.GetTeam(ctx, "beta")
		assert.ErrorIs(t, err, ErrTeamNotFound)
		assert.ErrorIs(t, s.DeleteTeam(ctx, "beta"), ErrTeamNotFound)

		require.NoError(t, s.ResetTeams(ctx))
		teams, err = s.ListTeams(ctx)
		require.NoError(t, err)
		assert.Empty(t, teams)
	})
}

func TestStore_SaveTeamVersionConflict(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTeam(ctx, models.NewTeam("alpha", 1000)))

		first, err := s.GetTeam(ctx, "alpha")
		require.NoError(t, err)
		second, err := s.GetTeam(ctx, "alpha")
		require.NoError(t, err)

		first.Balance = 900
		require.NoError(t, s.SaveTeam(ctx, first))

		second.Balance = 100
		err = s.SaveTeam(ctx, second)
		assert.ErrorIs(t, err, ErrStaleState)

		got, err := s.GetTeam(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 900.0, got.Balance)

		assert.ErrorIs(t, s.SaveTeam(ctx, models.NewTeam("ghost", 1)), ErrTeamNotFound)
	})
}

func TestStore_ReturnedTeamIsACopy(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTeam(ctx, models.NewTeam("alpha", 1000)))

		team, err := s.GetTeam(ctx, "alpha")
		require.NoError(t, err)
		team.Holdings[1] = models.Holding{Owned: 10, PurchasePrice: 1}
		team.Balance = 0

		again, err := s.GetTeam(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, again.Balance)
		assert.Empty(t, again.Holdings)
	})
}

func TestStore_PricePoints(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.UpsertPricePoints(ctx, []models.PricePoint{
			{StockID: 2, Name: "Ford", Category: "automotive", Year: 1910, Price: 8},
			{StockID: 1, Name: "GE", Category: "energy", Year: 1910, Price: 20},
			{StockID: 1, Name: "GE", Category: "energy", Year: 1909, Price: 18},
			{StockID: 1, Name: "GE", Category: "energy", Year: 1950, Price: 99},
		}))
		// upsert replaces
		require.NoError(t, s.UpsertPricePoints(ctx, []models.PricePoint{
			{StockID: 1, Name: "GE", Category: "energy", Year: 1910, Price: 21},
		}))

		points, err := s.PricePoints(ctx, 1910)
		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.Equal(t, 1909, points[0].Year)
		assert.Equal(t, 1, points[1].StockID)
		assert.Equal(t, 21.0, points[1].Price)
		assert.Equal(t, 2, points[2].StockID)
	})
}

func TestStore_WatchList(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.CreateTeam(ctx, models.NewTeam("alpha", 1000)))

		list, err := s.GetWatchList(ctx, "alpha")
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.NotNil(t, list)

		entries := []models.WatchListEntry{
			{StockID: 5, ValueAlert: fv(42.5), ValueAlertEnabled: true},
			{StockID: 2, BirthAlert: true},
		}
		require.NoError(t, s.SaveWatchList(ctx, "alpha", entries))

		list, err = s.GetWatchList(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, entries, list)

		require.NoError(t, s.DeleteTeam(ctx, "alpha"))
		list, err = s.GetWatchList(ctx, "alpha")
		require.NoError(t, err)
		assert.Empty(t, list)

		require.NoError(t, s.SaveWatchList(ctx, "beta", entries))
		require.NoError(t, s.ResetWatchLists(ctx))
		list, err = s.GetWatchList(ctx, "beta")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestStore_GameAndScores(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		game, err := s.GetGame(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.FirstYear, game.CurrentYear)
		assert.False(t, game.Running)

		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, s.SaveGame(ctx, models.GameState{CurrentYear: 1955, Running: true, UpdatedAt: now}))
		game, err = s.GetGame(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1955, game.CurrentYear)
		assert.True(t, game.Running)
		assert.True(t, now.Equal(game.UpdatedAt))

		require.NoError(t, s.AddHighScores(ctx, []models.HighScore{
			{TeamName: "low", TotalValue: 10, RecordedAt: now},
			{TeamName: "high", TotalValue: 3000, RecordedAt: now},
		}))
		scores, err := s.HighScores(ctx)
		require.NoError(t, err)
		require.Len(t, scores, 2)
		assert.Equal(t, "high", scores[0].TeamName)
		assert.Equal(t, "low", scores[1].TeamName)
	})
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prices.json")
	body := `[
		{"stock_id": 1, "name": "GE", "category": "energy", "year": 1900, "price": 8},
		{"stock_id": 1, "name": "GE", "category": "energy", "year": 1901, "price": 9.5}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s := NewMemoryStore()
	n, err := LoadSeed(context.Background(), s, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	points, err := s.PricePoints(context.Background(), 1901)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 9.5, points[1].Price)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"stock_id": 1, "year": 1800, "price": 1}]`), 0o644))
	_, err = LoadSeed(context.Background(), s, bad)
	assert.Error(t, err)

	_, err = LoadSeed(context.Background(), s, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, &config.Config{StoreDriver: "memory"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, &config.Config{StoreDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "game.db")}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close(ctx))

	_, err = Open(ctx, &config.Config{StoreDriver: "postgres"}, zerolog.Nop())
	assert.Error(t, err)
}
