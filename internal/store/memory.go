package store

import (
	"context"
	"sync"

	"github.com/hospintel/hospintel_backend/internal/model"
)

// MemoryBackend keeps records in process memory. Contents are lost on exit.
type MemoryBackend struct {
	mu         sync.RWMutex
	stores     map[string]map[string]model.Record
	maxRecords int
	closed     bool
}

// NewMemoryBackend returns an empty backend. maxRecords <= 0 means no limit.
func NewMemoryBackend(maxRecords int) *MemoryBackend {
	return &MemoryBackend{
		stores:     make(map[string]map[string]model.Record),
		maxRecords: maxRecords,
	}
}

func (m *MemoryBackend) GetAll(_ context.Context, store string) ([]model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrUnavailable
	}
	out := make([]model.Record, 0, len(m.stores[store]))
	for _, r := range m.stores[store] {
		out = append(out, r)
	}
	return out, nil
}

func (m *MemoryBackend) Get(_ context.Context, store, id string) (*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrUnavailable
	}
	r, ok := m.stores[store][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryBackend) Add(_ context.Context, store string, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	s, ok := m.stores[store]
	if !ok {
		s = make(map[string]model.Record)
		m.stores[store] = s
	}
	if _, exists := s[rec.ID]; exists {
		return ErrDuplicate
	}
	if m.maxRecords > 0 && len(s) >= m.maxRecords {
		return ErrQuotaExceeded
	}
	s[rec.ID] = rec
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, store, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrUnavailable
	}
	if _, ok := m.stores[store][id]; !ok {
		return ErrNotFound
	}
	delete(m.stores[store], id)
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
