package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/library/internal/core/domain"
)

func TestMemoryAdapter(t *testing.T) {
	testDocumentStore(t, NewMemoryAdapter())
}

func TestMemoryAdapter_DocumentsAreDetached(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAdapter()

	fields := domain.Document{"title": "Dune"}
	id, err := store.Insert(ctx, "books", fields)
	require.NoError(t, err)

	fields["title"] = "changed by caller"
	got, _, _ := store.Get(ctx, "books", id)
	assert.Equal(t, "Dune", got["title"])

	got["title"] = "changed again"
	again, _, _ := store.Get(ctx, "books", id)
	assert.Equal(t, "Dune", again["title"])
}

func TestMemoryAdapter_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAdapter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id, err := store.Insert(ctx, "loans", domain.Document{"n": n})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			store.Update(ctx, "loans", id, domain.Document{"returned": true})
		}(i)
	}
	wg.Wait()

	docs, err := store.ListWhereEquals(ctx, "loans", "returned", true)
	require.NoError(t, err)
	assert.Len(t, docs, 50)
}
