package trading

import (
	"context"

	"stock-exchange-game/engine"
	"stock-exchange-game/models"
)

// UpdateWatchList upserts entry into team's watch list under the team lock,
// so concurrent edits of one list never overwrite each other.
func (d *Desk) UpdateWatchList(ctx context.Context, team string, entry models.WatchListEntry) (engine.WatchOutcome, error) {
	unlock := d.locks.Lock(team)
	defer unlock()

	if _, err := d.store.GetTeam(ctx, team); err != nil {
		return "", err
	}
	list, err := d.store.GetWatchList(ctx, team)
	if err != nil {
		return "", err
	}

	next, outcome := engine.UpsertWatch(list, entry)
	if outcome == engine.WatchNotFound {
		return outcome, nil
	}
	if err := d.store.SaveWatchList(ctx, team, next); err != nil {
		return "", err
	}
	d.log.Debug().Str("team", team).Int("stock_id", entry.StockID).Str("outcome", string(outcome)).Msg("Watch list updated")
	return outcome, nil
}
