package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

type BookService struct {
	store port.DocumentStore
	now   func() time.Time
}

func NewBookService(store port.DocumentStore, opts ...Option) *BookService {
	o := buildOptions(opts)
	return &BookService{store: store, now: o.now}
}

func (s *BookService) Create(ctx context.Context, draft domain.BookDraft) (domain.Book, error) {
	book := domain.NewBook(draft, s.now())

	id, err := s.store.Insert(ctx, domain.BooksCollection, domain.EncodeBook(book))
	if err != nil {
		return domain.Book{}, fmt.Errorf("insert book: %w", err)
	}
	book.ID = id
	return book, nil
}

// Get returns nil, nil when the book does not exist.
func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	doc, ok, err := s.store.Get(ctx, domain.BooksCollection, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if !ok {
		return nil, nil
	}

	book, err := domain.DecodeBook(doc, id, s.now())
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	docs, err := s.store.List(ctx, domain.BooksCollection)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return decodeAll(docs, s.now(), domain.DecodeBook)
}

// Update applies the present fields of patch and always advances UpdatedAt.
func (s *BookService) Update(ctx context.Context, book domain.Book, patch domain.BookPatch) (domain.Book, error) {
	book.Apply(patch)
	book.UpdatedAt = s.now()

	if err := s.store.Update(ctx, domain.BooksCollection, book.ID, domain.EncodeBookPatch(patch, book.UpdatedAt)); err != nil {
		return domain.Book{}, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, book domain.Book) error {
	if err := s.store.Delete(ctx, domain.BooksCollection, book.ID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

func decodeAll[T any](docs []port.StoredDocument, now time.Time, decode func(domain.Document, string, time.Time) (T, error)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		rec, err := decode(d.Data, d.ID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
