package limits

import (
	"sync"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/daterange"
)

type periodKey struct {
	g     Granularity
	start int64 // unix seconds of the period start
}

// Manager tracks which calendar periods are exhausted by a limit within a
// single computation. Keys are write-once; marking an exhausted period
// again is a no-op. The global pass's manager is merged (unioned) into
// each per-user manager, never the other direction.
type Manager struct {
	mu        sync.Mutex
	exhausted map[periodKey]struct{}
}

func NewManager() *Manager {
	return &Manager{exhausted: make(map[periodKey]struct{})}
}

func (m *Manager) MarkExhausted(g Granularity, start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted[periodKey{g: g, start: start.Unix()}] = struct{}{}
}

func (m *Manager) Exhausted(g Granularity, start time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.exhausted[periodKey{g: g, start: start.Unix()}]
	return ok
}

// Merge unions the other manager's exhausted set into m.
func (m *Manager) Merge(other *Manager) {
	if other == nil {
		return
	}
	other.mu.Lock()
	keys := make([]periodKey, 0, len(other.exhausted))
	for k := range other.exhausted {
		keys = append(keys, k)
	}
	other.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.exhausted[k] = struct{}{}
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.exhausted)
}

// BusyRanges converts every exhausted period into a busy interval so the
// aggregator can subtract it from a host's free time.
func (m *Manager) BusyRanges(loc *time.Location) []daterange.Range {
	m.mu.Lock()
	keys := make([]periodKey, 0, len(m.exhausted))
	for k := range m.exhausted {
		keys = append(keys, k)
	}
	m.mu.Unlock()

	out := make([]daterange.Range, 0, len(keys))
	for _, k := range keys {
		start := time.Unix(k.start, 0).In(loc)
		out = append(out, daterange.Range{
			Start: start.UTC(),
			End:   PeriodEnd(k.g, start, loc).UTC(),
		})
	}
	return daterange.Merge(out)
}
