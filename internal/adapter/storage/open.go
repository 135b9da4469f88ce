package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/library/internal/config"
	"github.com/rl1809/library/internal/port"
)

// Open connects the store selected by cfg. The returned close function
// releases its connections and is never nil.
func Open(ctx context.Context, cfg config.Config) (port.DocumentStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return NewMemoryAdapter(), noop, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisAdapter(rdb), rdb.Close, nil

	case config.StoreMySQL, config.StorePostgres, config.StoreSQLite:
		dialect := Dialect(cfg.Store)
		dsn := cfg.DSN
		if dialect == DialectSQLite {
			dsn = cfg.SQLiteDSN()
		}

		db, err := OpenSQL(ctx, dialect, dsn)
		if err != nil {
			return nil, noop, err
		}
		if dialect != DialectSQLite {
			db.SetMaxOpenConns(50)
			db.SetMaxIdleConns(25)
			db.SetConnMaxLifetime(5 * time.Minute)
		}

		adapter, err := NewSQLAdapter(db, dialect)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return adapter, db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
