package trading

import "sync"

// teamLocks hands out one mutex per team name. Entries are reference
// counted and dropped once nobody holds or waits on them.
type teamLocks struct {
	mu    sync.Mutex
	locks map[string]*teamLock
}

type teamLock struct {
	sync.Mutex
	refs int
}

func newTeamLocks() *teamLocks {
	return &teamLocks{locks: make(map[string]*teamLock)}
}

// Lock blocks until the caller holds team's mutex and returns its release.
func (l *teamLocks) Lock(team string) func() {
	l.mu.Lock()
	lk, ok := l.locks[team]
	if !ok {
		lk = &teamLock{}
		l.locks[team] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.Lock()
	return func() {
		lk.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, team)
		}
		l.mu.Unlock()
	}
}

func (l *teamLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
