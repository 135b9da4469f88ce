package service

import (
	"context"
	"fmt"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

type Stats struct {
	TotalBooks     int
	AvailableBooks int
	TotalMembers   int
	ActiveLoans    int
}

type StatsService struct {
	store port.DocumentStore
}

func NewStatsService(store port.DocumentStore) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	books, err := s.store.List(ctx, domain.BooksCollection)
	if err != nil {
		return Stats{}, fmt.Errorf("count books: %w", err)
	}
	st.TotalBooks = len(books)

	available, err := s.store.ListWhereEquals(ctx, domain.BooksCollection, domain.FieldIsAvailable, true)
	if err != nil {
		return Stats{}, fmt.Errorf("count available books: %w", err)
	}
	st.AvailableBooks = len(available)

	members, err := s.store.List(ctx, domain.MembersCollection)
	if err != nil {
		return Stats{}, fmt.Errorf("count members: %w", err)
	}
	st.TotalMembers = len(members)

	active, err := s.store.ListWhereEquals(ctx, domain.LoansCollection, domain.FieldReturned, false)
	if err != nil {
		return Stats{}, fmt.Errorf("count active loans: %w", err)
	}
	st.ActiveLoans = len(active)

	return st, nil
}
