package history

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"trisk/internal/findings"
	"trisk/internal/objects"
)

// MemoryStore is an in-memory Store with the same semantics as the SQLite
// implementation. It backs tests and throwaway analyses.
type MemoryStore struct {
	mu     sync.RWMutex
	limits Limits
	snaps  map[string]*findings.Findings

	// Now is overridable so window tests can pin the clock.
	Now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(limits Limits) *MemoryStore {
	return &MemoryStore{
		limits: limits.orDefaults(),
		snaps:  make(map[string]*findings.Findings),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Save upserts the snapshot under its change id.
func (m *MemoryStore) Save(changeID string, f *findings.Findings) error {
	if changeID == "" {
		return fmt.Errorf("change id must not be empty")
	}
	if f == nil {
		return fmt.Errorf("findings must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *f
	m.snaps[changeID] = &copied
	return nil
}

// Get returns the stored snapshot, or nil when absent.
func (m *MemoryStore) Get(changeID string) (*findings.Findings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.snaps[changeID]
	if !ok {
		return nil, nil
	}
	copied := *f
	return &copied, nil
}

// List returns stored change ids, newest first.
func (m *MemoryStore) List() ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, len(m.snaps))
	for id, f := range m.snaps {
		entries = append(entries, Entry{ChangeID: id, GeneratedAt: f.GeneratedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GeneratedAt != entries[j].GeneratedAt {
			return entries[i].GeneratedAt > entries[j].GeneratedAt
		}
		return entries[i].ChangeID < entries[j].ChangeID
	})
	return entries, nil
}

// FindOverlaps reports shared objects against all other stored changes.
func (m *MemoryStore) FindOverlaps(changeID string, objs []objects.Object, windowDays int) ([]findings.OverlapRecord, error) {
	keys := objects.KeySet(objs)

	m.mu.RLock()
	snaps := make([]snapshot, 0, len(m.snaps))
	for id, f := range m.snaps {
		snaps = append(snaps, snapshot{changeID: id, generatedAt: f.GeneratedAt, f: f})
	}
	m.mu.RUnlock()

	return computeOverlaps(changeID, keys, snaps, windowDays, m.limits, m.Now()), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
