package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"stock-exchange-game/models"
)

type priceKey struct {
	stockID int
	year    int
}

// MemoryStore keeps everything in process. Values are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	teams      map[string]*models.Team
	prices     map[priceKey]models.PricePoint
	watchLists map[string][]models.WatchListEntry
	game       models.GameState
	scores     []models.HighScore
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:      make(map[string]*models.Team),
		prices:     make(map[priceKey]models.PricePoint),
		watchLists: make(map[string][]models.WatchListEntry),
		game:       defaultGame(),
	}
}

func (s *MemoryStore) CreateTeam(_ context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[team.Name]; ok {
		return fmt.Errorf("%w: %s", ErrTeamExists, team.Name)
	}
	s.teams[team.Name] = team.Clone()
	return nil
}

func (s *MemoryStore) GetTeam(_ context.Context, name string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, name)
	}
	return team.Clone(), nil
}

func (s *MemoryStore) ListTeams(_ context.Context) ([]*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) SaveTeam(_ context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.teams[team.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, team.Name)
	}
	if stored.Version != team.Version {
		return fmt.Errorf("%w: %s at version %d, have %d", ErrStaleState, team.Name, stored.Version, team.Version)
	}
	team.Version++
	s.teams[team.Name] = team.Clone()
	return nil
}

func (s *MemoryStore) DeleteTeam(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[name]; !ok {
		return fmt.Errorf("%w: %s", ErrTeamNotFound, name)
	}
	delete(s.teams, name)
	delete(s.watchLists, name)
	return nil
}

func (s *MemoryStore) ResetTeams(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = make(map[string]*models.Team)
	return nil
}

func (s *MemoryStore) UpsertPricePoints(_ context.Context, points []models.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		s.prices[priceKey{p.StockID, p.Year}] = p
	}
	return nil
}

func (s *MemoryStore) PricePoints(_ context.Context, year int) ([]models.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PricePoint
	for k, p := range s.prices {
		if k.year == year || k.year == year-1 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].StockID < out[j].StockID
	})
	return out, nil
}

func (s *MemoryStore) GetWatchList(_ context.Context, team string) ([]models.WatchListEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEntries(s.watchLists[team]), nil
}

func (s *MemoryStore) SaveWatchList(_ context.Context, team string, entries []models.WatchListEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchLists[team] = copyEntries(entries)
	return nil
}

func (s *MemoryStore) ResetWatchLists(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchLists = make(map[string][]models.WatchListEntry)
	return nil
}

func (s *MemoryStore) GetGame(_ context.Context) (models.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game, nil
}

func (s *MemoryStore) SaveGame(_ context.Context, state models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = state
	return nil
}

func (s *MemoryStore) AddHighScores(_ context.Context, scores []models.HighScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, scores...)
	return nil
}

func (s *MemoryStore) HighScores(_ context.Context) ([]models.HighScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.HighScore{}, s.scores...)
	sortScores(out)
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func copyEntries(entries []models.WatchListEntry) []models.WatchListEntry {
	out := make([]models.WatchListEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.ValueAlert != nil {
			v := *e.ValueAlert
			out[i].ValueAlert = &v
		}
	}
	return out
}

func sortScores(scores []models.HighScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalValue > scores[j].TotalValue
	})
}
