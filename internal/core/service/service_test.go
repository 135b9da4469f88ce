package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rl1809/library/internal/adapter/storage"
	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: t0}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errStoreDown = errors.New("store unavailable")

// failingStore wraps the memory adapter and fails updates to one collection.
type failingStore struct {
	*storage.MemoryAdapter
	failUpdates string
}

func (f *failingStore) Update(ctx context.Context, collection, id string, fields domain.Document) error {
	if collection == f.failUpdates {
		return errStoreDown
	}
	return f.MemoryAdapter.Update(ctx, collection, id, fields)
}

type services struct {
	store   port.DocumentStore
	clock   *fakeClock
	books   *BookService
	members *MemberService
	loans   *LoanService
	stats   *StatsService
}

func newServices(store port.DocumentStore) services {
	clock := newFakeClock()
	books := NewBookService(store, WithClock(clock.Now))
	return services{
		store:   store,
		clock:   clock,
		books:   books,
		members: NewMemberService(store, WithClock(clock.Now)),
		loans:   NewLoanService(store, books, WithClock(clock.Now)),
		stats:   NewStatsService(store),
	}
}

func ptr[T any](v T) *T { return &v }
