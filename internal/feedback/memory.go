package feedback

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Payload = slices.Clone(rec.Payload)
	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryStore) List(_ context.Context, kind Kind, limit int) ([]Record, error) {
	limit = normalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, min(limit, len(m.records)))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if kind == "" || m.records[i].Kind == kind {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
