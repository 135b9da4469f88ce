package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/library/internal/config"
	"github.com/rl1809/library/internal/core/domain"
)

func TestOpen_Memory(t *testing.T) {
	store, closeStore, err := Open(context.Background(), config.Config{Store: config.StoreMemory})
	require.NoError(t, err)
	defer closeStore()

	assert.IsType(t, &MemoryAdapter{}, store)
}

func TestOpen_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		Store: config.StoreSQLite,
		DSN:   filepath.Join(t.TempDir(), "library.db"),
	}

	store, closeStore, err := Open(ctx, cfg)
	require.NoError(t, err)

	id, err := store.Insert(ctx, domain.BooksCollection, domain.Document{"title": "Dune"})
	require.NoError(t, err)
	require.NoError(t, closeStore())

	store, closeStore, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer closeStore()

	doc, ok, err := store.Get(ctx, domain.BooksCollection, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Dune", doc["title"])
}

func TestOpen_UnknownStore(t *testing.T) {
	_, closeStore, err := Open(context.Background(), config.Config{Store: "firestore"})
	assert.Error(t, err)
	assert.NotNil(t, closeStore)
}
