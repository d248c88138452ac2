package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"stock-exchange-game/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS teams (
	name       TEXT PRIMARY KEY,
	balance    REAL NOT NULL,
	version    INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS holdings (
	team           TEXT NOT NULL REFERENCES teams(name) ON DELETE CASCADE,
	stock_id       INTEGER NOT NULL,
	owned          INTEGER NOT NULL,
	purchase_price REAL NOT NULL,
	year_purchased INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (team, stock_id)
);
CREATE TABLE IF NOT EXISTS completed_sales (
	seq               INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_id           TEXT NOT NULL UNIQUE,
	team              TEXT NOT NULL REFERENCES teams(name) ON DELETE CASCADE,
	stock_id          INTEGER NOT NULL,
	stock_name        TEXT NOT NULL,
	price_purchased   REAL NOT NULL,
	quantity_sold     INTEGER NOT NULL,
	price_sold        REAL NOT NULL,
	profit            REAL NOT NULL,
	percentage_return REAL NOT NULL,
	sale_year         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS prices (
	stock_id INTEGER NOT NULL,
	year     INTEGER NOT NULL,
	name     TEXT NOT NULL,
	category TEXT NOT NULL,
	price    REAL NOT NULL,
	PRIMARY KEY (stock_id, year)
);
CREATE INDEX IF NOT EXISTS idx_prices_year ON prices(year);
CREATE TABLE IF NOT EXISTS watch_lists (
	team                TEXT NOT NULL,
	position            INTEGER NOT NULL,
	stock_id            INTEGER NOT NULL,
	birth_alert         INTEGER NOT NULL,
	value_alert         REAL,
	value_alert_enabled INTEGER NOT NULL,
	PRIMARY KEY (team, stock_id)
);
CREATE TABLE IF NOT EXISTS game (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	current_year INTEGER NOT NULL,
	running      INTEGER NOT NULL,
	updated_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS high_scores (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	team_name   TEXT NOT NULL,
	total_value REAL NOT NULL,
	recorded_at TEXT NOT NULL
);
`

// SQLiteStore persists the game in a single SQLite file. A team row carries
// the version used for optimistic concurrency; its holdings and sales are
// rewritten in the same transaction as the version bump.
type SQLiteStore struct {
	conn *sql.DB
	path string
	log  zerolog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. ":memory:" and "file::memory:" give a private in-memory
// database.
func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*SQLiteStore, error) {
	memory := strings.Contains(path, ":memory:")

	dsn := path
	if memory {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps an in-memory
	// database alive and shared.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &SQLiteStore{
		conn: conn,
		path: path,
		log:  log.With().Str("component", "sqlite_store").Logger(),
	}
	s.log.Info().Str("path", path).Msg("Opened SQLite database")
	return s, nil
}

func (s *SQLiteStore) CreateTeam(ctx context.Context, team *models.Team) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO teams (name, balance, version, created_at) VALUES (?, ?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		team.Name, team.Balance, team.Version, formatTime(team.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrTeamExists, team.Name)
	}
	if err := writePositions(ctx, tx, team); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetTeam(ctx context.Context, name string) (*models.Team, error) {
	team, err := s.loadTeam(ctx, s.conn, name)
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *SQLiteStore) ListTeams(ctx context.Context) ([]*models.Team, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT name FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}

	teams := make([]*models.Team, 0, len(names))
	for _, name := range names {
		team, err := s.loadTeam(ctx, s.conn, name)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (s *SQLiteStore) SaveTeam(ctx context.Context, team *models.Team) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE teams SET balance = ?, version = version + 1 WHERE name = ? AND version = ?`,
		team.Balance, team.Name, team.Version)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE name = ?`, team.Name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check team: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, team.Name)
		}
		return fmt.Errorf("%w: %s", ErrStaleState, team.Name)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings WHERE team = ?`, team.Name); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}
	if err := writePositions(ctx, tx, team); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team: %w", err)
	}
	team.Version++
	return nil
}

func (s *SQLiteStore) DeleteTeam(ctx context.Context, name string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, name)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM watch_lists WHERE team = ?`, name); err != nil {
		return fmt.Errorf("failed to delete watch list: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ResetTeams(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM teams`); err != nil {
		return fmt.Errorf("failed to delete teams: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertPricePoints(ctx context.Context, points []models.PricePoint) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prices (stock_id, year, name, category, price) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(stock_id, year) DO UPDATE SET name = excluded.name, category = excluded.category, price = excluded.price`)
	if err != nil {
		return fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.StockID, p.Year, p.Name, p.Category, p.Price); err != nil {
			return fmt.Errorf("failed to store price point %d/%d: %w", p.StockID, p.Year, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) PricePoints(ctx context.Context, year int) ([]models.PricePoint, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT stock_id, name, category, year, price FROM prices
		WHERE year IN (?, ?) ORDER BY year, stock_id`, year-1, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.StockID, &p.Name, &p.Category, &p.Year, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *SQLiteStore) GetWatchList(ctx context.Context, team string) ([]models.WatchListEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT stock_id, birth_alert, value_alert, value_alert_enabled FROM watch_lists
		WHERE team = ? ORDER BY position`, team)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch list: %w", err)
	}
	defer rows.Close()

	entries := []models.WatchListEntry{}
	for rows.Next() {
		var (
			e     models.WatchListEntry
			value sql.NullFloat64
		)
		if err := rows.Scan(&e.StockID, &e.BirthAlert, &value, &e.ValueAlertEnabled); err != nil {
			return nil, fmt.Errorf("failed to scan watch list entry: %w", err)
		}
		if value.Valid {
			v := value.Float64
			e.ValueAlert = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) SaveWatchList(ctx context.Context, team string, entries []models.WatchListEntry) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM watch_lists WHERE team = ?`, team); err != nil {
		return fmt.Errorf("failed to clear watch list: %w", err)
	}
	for i, e := range entries {
		var value sql.NullFloat64
		if e.ValueAlert != nil {
			value = sql.NullFloat64{Float64: *e.ValueAlert, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO watch_lists (team, position, stock_id, birth_alert, value_alert, value_alert_enabled)
			VALUES (?, ?, ?, ?, ?, ?)`,
			team, i, e.StockID, e.BirthAlert, value, e.ValueAlertEnabled)
		if err != nil {
			return fmt.Errorf("failed to store watch list entry: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ResetWatchLists(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM watch_lists`); err != nil {
		return fmt.Errorf("failed to delete watch lists: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGame(ctx context.Context) (models.GameState, error) {
	var (
		state   models.GameState
		updated string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT current_year, running, updated_at FROM game WHERE id = 1`).
		Scan(&state.CurrentYear, &state.Running, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultGame(), nil
	}
	if err != nil {
		return models.GameState{}, fmt.Errorf("failed to query game: %w", err)
	}
	state.UpdatedAt = parseTime(updated)
	return state, nil
}

func (s *SQLiteStore) SaveGame(ctx context.Context, state models.GameState) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO game (id, current_year, running, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET current_year = excluded.current_year,
			running = excluded.running, updated_at = excluded.updated_at`,
		state.CurrentYear, state.Running, formatTime(state.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddHighScores(ctx context.Context, scores []models.HighScore) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sc := range scores {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO high_scores (team_name, total_value, recorded_at) VALUES (?, ?, ?)`,
			sc.TeamName, sc.TotalValue, formatTime(sc.RecordedAt))
		if err != nil {
			return fmt.Errorf("failed to record high score: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) HighScores(ctx context.Context) ([]models.HighScore, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT team_name, total_value, recorded_at FROM high_scores ORDER BY total_value DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query high scores: %w", err)
	}
	defer rows.Close()

	scores := []models.HighScore{}
	for rows.Next() {
		var (
			sc       models.HighScore
			recorded string
		)
		if err := rows.Scan(&sc.TeamName, &sc.TotalValue, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan high score: %w", err)
		}
		sc.RecordedAt = parseTime(recorded)
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.conn.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (s *SQLiteStore) loadTeam(ctx context.Context, q querier, name string) (*models.Team, error) {
	var created string
	team := models.NewTeam(name, 0)
	err := q.QueryRowContext(ctx,
		`SELECT balance, version, created_at FROM teams WHERE name = ?`, name).
		Scan(&team.Balance, &team.Version, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query team: %w", err)
	}
	team.CreatedAt = parseTime(created)

	rows, err := q.QueryContext(ctx,
		`SELECT stock_id, owned, purchase_price, year_purchased FROM holdings WHERE team = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	for rows.Next() {
		var (
			id int
			h  models.Holding
		)
		if err := rows.Scan(&id, &h.Owned, &h.PurchasePrice, &h.YearPurchased); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		team.Holdings[id] = h
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	rows, err = q.QueryContext(ctx, `
		SELECT sale_id, stock_id, stock_name, price_purchased, quantity_sold, price_sold,
			profit, percentage_return, sale_year
		FROM completed_sales WHERE team = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r models.SaleRecord
		err := rows.Scan(&r.ID, &r.StockID, &r.StockName, &r.PricePurchased, &r.QuantitySold,
			&r.PriceSold, &r.Profit, &r.PercentageReturn, &r.SaleYear)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		team.CompletedSales = append(team.CompletedSales, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}
	return team, nil
}

// writePositions inserts the holdings of team and any sale records not yet
// stored. Sale records are append-only, so existing ids are left alone.
func writePositions(ctx context.Context, tx *sql.Tx, team *models.Team) error {
	for id, h := range team.Holdings {
		if h.Owned == 0 {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO holdings (team, stock_id, owned, purchase_price, year_purchased)
			VALUES (?, ?, ?, ?, ?)`,
			team.Name, id, h.Owned, h.PurchasePrice, h.YearPurchased)
		if err != nil {
			return fmt.Errorf("failed to store holding %d: %w", id, err)
		}
	}
	for _, r := range team.CompletedSales {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO completed_sales (sale_id, team, stock_id, stock_name, price_purchased,
				quantity_sold, price_sold, profit, percentage_return, sale_year)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(sale_id) DO NOTHING`,
			r.ID, team.Name, r.StockID, r.StockName, r.PricePurchased,
			r.QuantitySold, r.PriceSold, r.Profit, r.PercentageReturn, r.SaleYear)
		if err != nil {
			return fmt.Errorf("failed to store sale %s: %w", r.ID, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
