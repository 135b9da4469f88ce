package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

// testDocumentStore runs the behaviour every DocumentStore must share.
// Each subtest uses its own collection so that shared servers stay clean.
func testDocumentStore(t *testing.T, store port.DocumentStore) {
	ctx := context.Background()

	newCollection := func(t *testing.T) string {
		collection := "test-" + uuid.NewString()
		t.Cleanup(func() {
			docs, _ := store.List(ctx, collection)
			for _, d := range docs {
				store.Delete(ctx, collection, d.ID)
			}
		})
		return collection
	}

	t.Run("GetMissing", func(t *testing.T) {
		doc, ok, err := store.Get(ctx, newCollection(t), uuid.NewString())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, doc)
	})

	t.Run("InsertAndGet", func(t *testing.T) {
		collection := newCollection(t)
		fields := domain.Document{
			"title":            "Dune",
			"publication_year": float64(1965),
			"is_available":     true,
			"isbn":             nil,
		}

		id, err := store.Insert(ctx, collection, fields)
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		got, ok, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Dune", got["title"])
		assert.Equal(t, float64(1965), got["publication_year"])
		assert.Equal(t, true, got["is_available"])
		assert.NotContains(t, got, "id")
	})

	t.Run("InsertGeneratesUniqueIDs", func(t *testing.T) {
		collection := newCollection(t)
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			id, err := store.Insert(ctx, collection, domain.Document{"n": float64(i)})
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}

		docs, err := store.List(ctx, collection)
		require.NoError(t, err)
		assert.Len(t, docs, 20)
	})

	t.Run("ListIsSortedAndScopedToCollection", func(t *testing.T) {
		books := newCollection(t)
		members := newCollection(t)

		for _, title := range []string{"a", "b", "c"} {
			_, err := store.Insert(ctx, books, domain.Document{"title": title})
			require.NoError(t, err)
		}
		_, err := store.Insert(ctx, members, domain.Document{"first_name": "Ada"})
		require.NoError(t, err)

		docs, err := store.List(ctx, books)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for i := 1; i < len(docs); i++ {
			assert.Less(t, docs[i-1].ID, docs[i].ID)
		}

		empty, err := store.List(ctx, newCollection(t))
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ListWhereEquals", func(t *testing.T) {
		collection := newCollection(t)
		mustInsert := func(doc domain.Document) string {
			id, err := store.Insert(ctx, collection, doc)
			require.NoError(t, err)
			return id
		}
		available := mustInsert(domain.Document{"is_available": true, "author": "Herbert", "year": float64(1965)})
		mustInsert(domain.Document{"is_available": false, "author": "Herbert", "year": float64(1976)})
		mustInsert(domain.Document{"author": "Austen"})

		docs, err := store.ListWhereEquals(ctx, collection, "is_available", true)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, available, docs[0].ID)

		docs, err = store.ListWhereEquals(ctx, collection, "author", "Herbert")
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		docs, err = store.ListWhereEquals(ctx, collection, "year", 1965)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, available, docs[0].ID)

		docs, err = store.ListWhereEquals(ctx, collection, "author", "Tolkien")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("UpdateMerges", func(t *testing.T) {
		collection := newCollection(t)
		id, err := store.Insert(ctx, collection, domain.Document{"title": "Dune", "is_available": true})
		require.NoError(t, err)

		err = store.Update(ctx, collection, id, domain.Document{"is_available": false, "category": "sf"})
		require.NoError(t, err)

		got, ok, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Dune", got["title"])
		assert.Equal(t, false, got["is_available"])
		assert.Equal(t, "sf", got["category"])
	})

	t.Run("UpdateMissingIsNoop", func(t *testing.T) {
		collection := newCollection(t)
		id := uuid.NewString()

		require.NoError(t, store.Update(ctx, collection, id, domain.Document{"title": "ghost"}))

		_, ok, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		collection := newCollection(t)
		id, err := store.Insert(ctx, collection, domain.Document{"title": "Dune"})
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, collection, id))
		require.NoError(t, store.Delete(ctx, collection, id))

		_, ok, err := store.Get(ctx, collection, id)
		require.NoError(t, err)
		assert.False(t, ok)

		docs, err := store.List(ctx, collection)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}
