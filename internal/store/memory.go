package store

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"example.com/gallows-bot/internal/game"
)

// MemoryResultStore keeps results for the life of the process. It is used
// when no DATABASE_URL is configured.
type MemoryResultStore struct {
	mu      sync.RWMutex
	results []game.Result
	seen    map[string]struct{}
}

var _ Results = (*MemoryResultStore)(nil)

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{seen: make(map[string]struct{})}
}

func (m *MemoryResultStore) Record(ctx context.Context, res game.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[res.SessionID]; ok {
		return nil
	}
	m.seen[res.SessionID] = struct{}{}
	m.results = append(m.results, res)
	return nil
}

func (m *MemoryResultStore) Summary(ctx context.Context) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sum := Summary{
		Played: len(m.results),
		Won:    lo.CountBy(m.results, func(r game.Result) bool { return r.Status == game.StatusWon }),
		Lost:   lo.CountBy(m.results, func(r game.Result) bool { return r.Status == game.StatusLost }),
	}
	sum.WinRate = winRate(sum.Won, sum.Played)
	return sum, nil
}

// Recent returns the newest results first.
func (m *MemoryResultStore) Recent(ctx context.Context, limit int) ([]game.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(clampLimit(limit), len(m.results))
	out := make([]game.Result, 0, n)
	for i := len(m.results) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}
