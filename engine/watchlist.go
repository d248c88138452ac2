package engine

import "stock-exchange-game/models"

// WatchOutcome describes what UpsertWatch did to the list.
type WatchOutcome string

const (
	WatchCreated  WatchOutcome = "created"
	WatchUpdated  WatchOutcome = "updated"
	WatchDeleted  WatchOutcome = "deleted"
	WatchNotFound WatchOutcome = "not_found"
)

// UpsertWatch applies entry to a team's watch list, keeping at most one
// entry per stock. An entry with no alert switched on removes the stock
// from the list. The input slice is not modified.
func UpsertWatch(list []models.WatchListEntry, entry models.WatchListEntry) ([]models.WatchListEntry, WatchOutcome) {
	out := make([]models.WatchListEntry, 0, len(list)+1)
	found := false
	for _, e := range list {
		if e.StockID != entry.StockID {
			out = append(out, e)
			continue
		}
		if found {
			continue
		}
		found = true
		if entry.Active() {
			out = append(out, entry)
		}
	}

	switch {
	case !entry.Active() && found:
		return out, WatchDeleted
	case !entry.Active():
		return out, WatchNotFound
	case found:
		return out, WatchUpdated
	default:
		return append(out, entry), WatchCreated
	}
}
