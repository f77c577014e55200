package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-process store for running without a database. It keeps at most
// capacity records and drops the oldest first.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	records  []Record // oldest first
}

// NewMemory creates a Memory store. capacity <= 0 means MaxLimit.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = MaxLimit
	}
	return &Memory{capacity: capacity}
}

func (m *Memory) Insert(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) >= m.capacity {
		m.records = slices.Delete(m.records, 0, len(m.records)-m.capacity+1)
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) SetExplanation(_ context.Context, id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Explanation = text
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (m *Memory) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.records {
		if m.records[i].ID == id {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (m *Memory) List(_ context.Context, f Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := f.limit()
	var out []Record
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.Module == "" || m.records[i].Module == f.Module {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}
