// Package trading runs transactions against persisted teams. It loads a
// snapshot from the store, hands it to the engine and writes the result
// back, one team at a time.
package trading

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"stock-exchange-game/db"
	"stock-exchange-game/engine"
	"stock-exchange-game/models"
)

// MaxRetries bounds how often a transaction is replayed after losing a race.
const MaxRetries = 3

// Desk is the single entry point for trades. Transactions of one team are
// serialized in process; the store's version check covers everything else.
type Desk struct {
	store      db.Store
	validator  *engine.Validator
	applier    *engine.Applier
	locks      *teamLocks
	maxRetries int
	log        zerolog.Logger
}

// NewDesk returns a desk trading under policy.
func NewDesk(store db.Store, policy engine.Policy, log zerolog.Logger) *Desk {
	v := engine.NewValidator(policy)
	return &Desk{
		store:      store,
		validator:  v,
		applier:    engine.NewApplier(v),
		locks:      newTeamLocks(),
		maxRetries: MaxRetries,
		log:        log.With().Str("service", "trade_desk").Logger(),
	}
}

// Policy returns the rules the desk trades under.
func (d *Desk) Policy() engine.Policy {
	return d.validator.Policy()
}

// Catalog returns the stock snapshot of the current game year.
func (d *Desk) Catalog(ctx context.Context) (*engine.Catalog, int, error) {
	game, err := d.store.GetGame(ctx)
	if err != nil {
		return nil, 0, err
	}
	catalog, err := d.CatalogAt(ctx, game.CurrentYear)
	if err != nil {
		return nil, 0, err
	}
	return catalog, game.CurrentYear, nil
}

// CatalogAt returns the stock snapshot of year.
func (d *Desk) CatalogAt(ctx context.Context, year int) (*engine.Catalog, error) {
	points, err := d.store.PricePoints(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %d: %w", year, err)
	}
	return engine.CatalogFromSeries(points, year)
}

// Validate is a dry run of delta units of stockID for team.
func (d *Desk) Validate(ctx context.Context, team string, stockID, delta int) error {
	t, err := d.store.GetTeam(ctx, team)
	if err != nil {
		return err
	}
	catalog, _, err := d.Catalog(ctx)
	if err != nil {
		return err
	}
	stock, err := catalog.Lookup(stockID)
	if err != nil {
		return err
	}
	return d.validator.Validate(t, stock, delta)
}

// Execute validates and applies intent and persists the team.
func (d *Desk) Execute(ctx context.Context, intent models.TransactionIntent) (engine.Result, error) {
	unlock := d.locks.Lock(intent.Team)
	defer unlock()
	return d.execute(ctx, intent)
}

// ExecuteBatch applies intents for team in order. It stops at the first
// failure; intents accepted before it stay applied.
func (d *Desk) ExecuteBatch(ctx context.Context, team string, intents []models.TransactionIntent) ([]engine.Result, error) {
	unlock := d.locks.Lock(team)
	defer unlock()

	results := make([]engine.Result, 0, len(intents))
	for _, intent := range intents {
		intent.Team = team
		res, err := d.execute(ctx, intent)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (d *Desk) execute(ctx context.Context, intent models.TransactionIntent) (engine.Result, error) {
	log := d.log.With().
		Str("team", intent.Team).
		Int("stock_id", intent.StockID).
		Int("delta", intent.Delta).
		Logger()

	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return engine.Result{}, err
		}

		team, err := d.store.GetTeam(ctx, intent.Team)
		if err != nil {
			return engine.Result{}, err
		}
		catalog, year, err := d.Catalog(ctx)
		if err != nil {
			return engine.Result{}, err
		}
		stock, err := catalog.Lookup(intent.StockID)
		if err != nil {
			return engine.Result{}, err
		}

		if err := d.validator.Validate(team, stock, intent.Delta); err != nil {
			if reason, ok := engine.ReasonOf(err); ok {
				log.Debug().Str("reason", string(reason)).Msg("Trade rejected")
			}
			return engine.Result{}, err
		}

		res, err := d.applier.Apply(team, stock, intent.Delta, year)
		if engine.IsStale(err) {
			log.Debug().Int("attempt", attempt+1).Err(err).Msg("Snapshot changed, retrying")
			continue
		}
		if err != nil {
			return engine.Result{}, err
		}

		err = d.store.SaveTeam(ctx, team)
		if errors.Is(err, db.ErrStaleState) {
			log.Debug().Int("attempt", attempt+1).Msg("Team modified concurrently, retrying")
			continue
		}
		if err != nil {
			return engine.Result{}, err
		}

		log.Info().
			Float64("price", stock.Price).
			Float64("balance", res.Balance).
			Int("owned", res.Holding.Owned).
			Msg("Trade executed")
		return res, nil
	}

	log.Warn().Int("attempts", d.maxRetries).Msg("Trade abandoned after repeated conflicts")
	return engine.Result{}, &engine.Rejection{
		Reason:  engine.StaleStateRejected,
		StockID: intent.StockID,
		Delta:   intent.Delta,
	}
}

// Liquidate sells every position of team at the current price and returns
// the sale records written. Positions without a price this year, or that
// the policy refuses to sell, are left in place.
func (d *Desk) Liquidate(ctx context.Context, team string) ([]models.SaleRecord, error) {
	unlock := d.locks.Lock(team)
	defer unlock()

	log := d.log.With().Str("team", team).Logger()

	for attempt := 0; attempt < d.maxRetries; attempt++ {
		t, err := d.store.GetTeam(ctx, team)
		if err != nil {
			return nil, err
		}
		catalog, year, err := d.Catalog(ctx)
		if err != nil {
			return nil, err
		}

		ids := make([]int, 0, len(t.Holdings))
		for id, h := range t.Holdings {
			if h.Owned > 0 {
				ids = append(ids, id)
			}
		}
		sort.Ints(ids)
		if len(ids) == 0 {
			return []models.SaleRecord{}, nil
		}

		sales := make([]models.SaleRecord, 0, len(ids))
		for _, id := range ids {
			stock, err := catalog.Lookup(id)
			if err != nil {
				// no price this year, nothing to sell at
				log.Warn().Int("stock_id", id).Msg("Position has no price, not liquidated")
				continue
			}
			res, err := d.applier.Apply(t, stock, -t.Holdings[id].Owned, year)
			if err != nil {
				log.Warn().Int("stock_id", id).Err(err).Msg("Position not liquidated")
				continue
			}
			sales = append(sales, *res.Sale)
		}
		if len(sales) == 0 {
			return sales, nil
		}

		err = d.store.SaveTeam(ctx, t)
		if errors.Is(err, db.ErrStaleState) {
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Info().Int("sales", len(sales)).Float64("balance", t.Balance).Msg("Portfolio liquidated")
		return sales, nil
	}

	return nil, &engine.Rejection{Reason: engine.StaleStateRejected}
}
