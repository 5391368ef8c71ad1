package history

import (
	"fmt"
	"sync"
	"time"

	"market-signal-engine/internal/odds"
)

// Snapshot is one observation of a game's lines at a point in time.
// Immutable once appended.
type Snapshot struct {
	GameID        string
	Market        odds.Market
	Timestamp     time.Time
	Spread        float64
	Total         float64
	MoneylineHome int
	MoneylineAway int
	Bookmaker     string
}

// Value returns the tracked line value for a market: the spread point, the
// total point, or the home moneyline price.
func (s Snapshot) Value(market odds.Market) float64 {
	switch market {
	case odds.MarketSpread:
		return s.Spread
	case odds.MarketTotal:
		return s.Total
	case odds.MarketMoneyline:
		return float64(s.MoneylineHome)
	}
	return 0
}

// History owns the append-only snapshot sequence for one (gameID, market)
// pair. The first snapshot ever appended is the opening line and is never
// overwritten. All appends to one History are serialized by its mutex;
// histories for different keys share nothing.
type History struct {
	mu        sync.Mutex
	gameID    string
	market    odds.Market
	snapshots []Snapshot
}

// Append records a snapshot. Timestamps must be monotonically non-decreasing
// within one history; an out-of-order snapshot is rejected rather than
// silently reordered, because it would corrupt movement math downstream.
func (h *History) Append(snap Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.snapshots); n > 0 && snap.Timestamp.Before(h.snapshots[n-1].Timestamp) {
		return fmt.Errorf("snapshot for %s/%s at %s is older than last recorded %s",
			h.gameID, h.market, snap.Timestamp.Format(time.RFC3339), h.snapshots[n-1].Timestamp.Format(time.RFC3339))
	}

	h.snapshots = append(h.snapshots, snap)
	return nil
}

// OpeningLine returns the first snapshot ever recorded, or false when the
// history is still empty.
func (h *History) OpeningLine() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.snapshots) == 0 {
		return Snapshot{}, false
	}
	return h.snapshots[0], true
}

// Snapshots returns a copy of the full sequence. Readers never observe a
// partially-appended history.
func (h *History) Snapshots() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Snapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// Window returns a copy of the snapshots observed within d of the most recent
// snapshot's timestamp.
func (h *History) Window(d time.Duration) []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.snapshots)
	if n == 0 {
		return nil
	}

	cutoff := h.snapshots[n-1].Timestamp.Add(-d)
	start := n
	for i := n - 1; i >= 0; i-- {
		if h.snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		start = i
	}

	out := make([]Snapshot, n-start)
	copy(out, h.snapshots[start:])
	return out
}

// Len returns the number of recorded snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.snapshots)
}

type key struct {
	gameID string
	market odds.Market
}

// Store holds one History per (gameID, market) key. The map itself is guarded
// by an RWMutex; appends to different keys proceed in parallel once each
// History handle is resolved.
type Store struct {
	mu        sync.RWMutex
	histories map[key]*History
	archive   *Archive // optional, nil when persistence is disabled
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{histories: make(map[key]*History)}
}

// NewStoreWithArchive creates a store that mirrors every append into the
// sqlite archive and replays previously archived snapshots on open.
func NewStoreWithArchive(archive *Archive) (*Store, error) {
	s := NewStore()
	s.archive = archive

	snaps, err := archive.AllSnapshots()
	if err != nil {
		return nil, fmt.Errorf("replaying archive: %w", err)
	}
	for _, snap := range snaps {
		if err := s.History(snap.GameID, snap.Market).Append(snap); err != nil {
			return nil, fmt.Errorf("replaying archive: %w", err)
		}
	}

	return s, nil
}

// History returns the history for a key, creating it on first use.
func (s *Store) History(gameID string, market odds.Market) *History {
	k := key{gameID, market}

	s.mu.RLock()
	h, ok := s.histories[k]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.histories[k]; ok {
		return h
	}
	h = &History{gameID: gameID, market: market}
	s.histories[k] = h
	return h
}

// Append records a snapshot under its (gameID, market) key and mirrors it to
// the archive when one is configured.
func (s *Store) Append(snap Snapshot) error {
	if err := s.History(snap.GameID, snap.Market).Append(snap); err != nil {
		return err
	}

	if s.archive != nil {
		if err := s.archive.AddSnapshot(snap); err != nil {
			return fmt.Errorf("archiving snapshot: %w", err)
		}
	}
	return nil
}

// DropGame removes all in-memory histories for a game. Called by the external
// retention policy; archived rows are pruned separately via Archive.PruneBefore.
func (s *Store) DropGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.histories {
		if k.gameID == gameID {
			delete(s.histories, k)
		}
	}
}

// Keys returns the (gameID, market) pairs currently tracked.
func (s *Store) Keys() []struct {
	GameID string
	Market odds.Market
} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]struct {
		GameID string
		Market odds.Market
	}, 0, len(s.histories))
	for k := range s.histories {
		out = append(out, struct {
			GameID string
			Market odds.Market
		}{k.gameID, k.market})
	}
	return out
}
