package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

const keyPrefix = "library:"

var documentJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// mergeDocumentScript applies a shallow patch to a stored JSON document in
// one step. Returns 0 when the document does not exist.
var mergeDocumentScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	return 0
end

local doc = cjson.decode(current)
local patch = cjson.decode(ARGV[1])
for k, v in pairs(patch) do
	doc[k] = v
end

redis.call('SET', KEYS[1], cjson.encode(doc))
return 1
`)

// RedisAdapter stores each document as a JSON string and tracks the ids of
// a collection in a set.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) Get(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	raw, err := r.client.Get(ctx, docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	doc, err := unmarshalDocument(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return doc, true, nil
}

func (r *RedisAdapter) List(ctx context.Context, collection string) ([]port.StoredDocument, error) {
	ids, err := r.client.SMembers(ctx, idsKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", collection, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]port.StoredDocument, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// id left in the set by a concurrent delete
			continue
		}
		doc, err := unmarshalDocument([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, ids[i], err)
		}
		docs = append(docs, port.StoredDocument{ID: ids[i], Data: doc})
	}
	sortByID(docs)
	return docs, nil
}

// ListWhereEquals filters client-side; Redis keeps no index on document fields.
func (r *RedisAdapter) ListWhereEquals(ctx context.Context, collection, field string, value any) ([]port.StoredDocument, error) {
	all, err := r.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	var out []port.StoredDocument
	for _, d := range all {
		if fieldEquals(d.Data, field, value) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *RedisAdapter) Insert(ctx context.Context, collection string, fields domain.Document) (string, error) {
	raw, err := documentJSON.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}

	id := uuid.NewString()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKey(collection, id), raw, 0)
		pipe.SAdd(ctx, idsKey(collection), id)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

func (r *RedisAdapter) Update(ctx context.Context, collection, id string, fields domain.Document) error {
	patch, err := documentJSON.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s patch: %w", collection, id, err)
	}

	if err := mergeDocumentScript.Run(ctx, r.client, []string{docKey(collection, id)}, patch).Err(); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *RedisAdapter) Delete(ctx context.Context, collection, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, docKey(collection, id))
		pipe.SRem(ctx, idsKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func docKey(collection, id string) string {
	return keyPrefix + collection + ":doc:" + id
}

func idsKey(collection string) string {
	return keyPrefix + collection + ":ids"
}

func unmarshalDocument(raw []byte) (domain.Document, error) {
	var doc domain.Document
	if err := documentJSON.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
