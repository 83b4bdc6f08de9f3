package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/flowr-app/flowr/internal/catalog"
)

// Memory is an in-process document store.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]map[string]catalog.Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{cols: map[string]map[string]catalog.Record{}}
}

// Get returns a copy of a document.
func (m *Memory) Get(_ context.Context, collection, id string) (catalog.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.cols[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, catalog.ErrNotFound)
	}
	return withID(maps.Clone(rec), id), nil
}

// Query returns copies of matching documents ordered by id.
func (m *Memory) Query(_ context.Context, collection string, where ...catalog.Where) ([]catalog.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.cols[collection]
	ids := slices.Sorted(maps.Keys(docs))
	out := make([]catalog.Record, 0, len(ids))
	for _, id := range ids {
		rec := withID(maps.Clone(docs[id]), id)
		if catalog.MatchesAll(rec, where) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Put stores a copy of rec.
func (m *Memory) Put(_ context.Context, collection, id string, rec catalog.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cols[collection] == nil {
		m.cols[collection] = map[string]catalog.Record{}
	}
	m.cols[collection][id] = maps.Clone(rec)
	return nil
}

// Delete removes a document.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cols[collection][id]; !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, catalog.ErrNotFound)
	}
	delete(m.cols[collection], id)
	return nil
}

func withID(rec catalog.Record, id string) catalog.Record {
	if rec == nil {
		rec = catalog.Record{}
	}
	rec["id"] = id
	return rec
}
