package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/library/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisAdapter(t *testing.T) {
	testDocumentStore(t, NewRedisAdapter(getRedisClient(t)))
}

func TestRedisAdapter_ListSkipsDanglingIDs(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	collection := "test-dangling"
	client.Del(ctx, idsKey(collection))
	t.Cleanup(func() { client.Del(ctx, idsKey(collection)) })

	id, err := adapter.Insert(ctx, collection, domain.Document{"title": "Dune"})
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Delete(ctx, collection, id) })

	// id present in the set with no document behind it
	client.SAdd(ctx, idsKey(collection), "gone")

	docs, err := adapter.List(ctx, collection)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
}

func TestRedisAdapter_UpdateKeepsNulls(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	id, err := adapter.Insert(ctx, "test-nulls", domain.Document{"title": "Dune", "isbn": "123"})
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Delete(ctx, "test-nulls", id) })

	require.NoError(t, adapter.Update(ctx, "test-nulls", id, domain.Document{"isbn": nil}))

	got, ok, err := adapter.Get(ctx, "test-nulls", id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got["isbn"])
	assert.Equal(t, "Dune", got["title"])
}
