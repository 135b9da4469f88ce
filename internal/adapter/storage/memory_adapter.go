package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

// MemoryAdapter keeps documents in process memory. Documents are copied on
// the way in and out so callers never share maps with the store.
type MemoryAdapter struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Document
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{collections: make(map[string]map[string]domain.Document)}
}

func (m *MemoryAdapter) Get(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

func (m *MemoryAdapter) List(ctx context.Context, collection string) ([]port.StoredDocument, error) {
	return m.filter(collection, func(domain.Document) bool { return true }), nil
}

func (m *MemoryAdapter) ListWhereEquals(ctx context.Context, collection, field string, value any) ([]port.StoredDocument, error) {
	return m.filter(collection, func(doc domain.Document) bool {
		return fieldEquals(doc, field, value)
	}), nil
}

func (m *MemoryAdapter) Insert(ctx context.Context, collection string, fields domain.Document) (string, error) {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]domain.Document)
		m.collections[collection] = docs
	}
	docs[id] = fields.Clone()
	return id, nil
}

func (m *MemoryAdapter) Update(ctx context.Context, collection, id string, fields domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
	return nil
}

func (m *MemoryAdapter) filter(collection string, keep func(domain.Document) bool) []port.StoredDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []port.StoredDocument
	for id, doc := range m.collections[collection] {
		if keep(doc) {
			out = append(out, port.StoredDocument{ID: id, Data: doc.Clone()})
		}
	}
	sortByID(out)
	return out
}

func sortByID(docs []port.StoredDocument) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
