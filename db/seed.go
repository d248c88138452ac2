package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"stock-exchange-game/models"
)

// LoadSeed reads a JSON array of price points from path and upserts them
// into store. It returns the number of points loaded.
func LoadSeed(ctx context.Context, store Store, path string) (int, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var points []models.PricePoint
	if err := json.Unmarshal(body, &points); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := ValidatePricePoints(points); err != nil {
		return 0, fmt.Errorf("seed file %s: %w", path, err)
	}

	if err := store.UpsertPricePoints(ctx, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// ErrInvalidPricePoint is returned for timeline entries that can never be
// part of a game.
var ErrInvalidPricePoint = errors.New("invalid price point")

// ValidatePricePoints checks ids, years and prices of a timeline batch.
func ValidatePricePoints(points []models.PricePoint) error {
	for _, p := range points {
		switch {
		case p.StockID <= 0:
			return fmt.Errorf("%w: stock id %d", ErrInvalidPricePoint, p.StockID)
		case p.Price < 0:
			return fmt.Errorf("%w: negative price for stock %d in %d", ErrInvalidPricePoint, p.StockID, p.Year)
		case p.Year < models.FirstYear || p.Year > models.LastYear:
			return fmt.Errorf("%w: year %d out of range for stock %d", ErrInvalidPricePoint, p.Year, p.StockID)
		}
	}
	return nil
}
