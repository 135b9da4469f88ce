package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

type LendRequest struct {
	BookID   string
	MemberID string
	LoanDate *time.Time
	DueDate  *time.Time
}

// LoanService keeps Book.IsAvailable in step with loans. The loan write and
// the book write are separate store calls: if the second one fails the
// error is returned but the first write stays in place.
type LoanService struct {
	store port.DocumentStore
	books *BookService
	now   func() time.Time
}

func NewLoanService(store port.DocumentStore, books *BookService, opts ...Option) *LoanService {
	o := buildOptions(opts)
	return &LoanService{store: store, books: books, now: o.now}
}

// Now is the clock used for overdue checks when loans are rendered.
func (s *LoanService) Now() time.Time {
	return s.now()
}

func (s *LoanService) Get(ctx context.Context, id string) (*domain.Loan, error) {
	doc, ok, err := s.store.Get(ctx, domain.LoansCollection, id)
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	if !ok {
		return nil, nil
	}

	loan, err := domain.DecodeLoan(doc, id, s.now())
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (s *LoanService) List(ctx context.Context) ([]domain.Loan, error) {
	docs, err := s.store.List(ctx, domain.LoansCollection)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return decodeAll(docs, s.now(), domain.DecodeLoan)
}

// CreateLoan stores an active loan and then marks the book unavailable.
// It does not check that the book exists or is available; see Lend.
func (s *LoanService) CreateLoan(ctx context.Context, bookID, memberID string, loanDate, dueDate *time.Time) (domain.Loan, error) {
	loan := domain.NewLoan(bookID, memberID, loanDate, dueDate, s.now())
	if domain.CheckTimestamp(loan.LoanDate) != nil {
		return domain.Loan{}, Invalid(domain.FieldLoanDate, "must fall between years 0000 and 9999")
	}
	if domain.CheckTimestamp(loan.DueDate) != nil {
		return domain.Loan{}, Invalid(domain.FieldDueDate, "must fall between years 0000 and 9999")
	}

	id, err := s.store.Insert(ctx, domain.LoansCollection, domain.EncodeStoredLoan(loan))
	if err != nil {
		return domain.Loan{}, fmt.Errorf("insert loan: %w", err)
	}
	loan.ID = id

	if err := s.setAvailability(ctx, bookID, false); err != nil {
		return loan, err
	}
	return loan, nil
}

// ReturnLoan closes the loan and then marks the book available again.
func (s *LoanService) ReturnLoan(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	if loan.Returned {
		return loan, ErrLoanAlreadyReturned
	}
	loan.MarkReturned(s.now())

	err := s.store.Update(ctx, domain.LoansCollection, loan.ID, domain.Document{
		domain.FieldReturned:   true,
		domain.FieldReturnDate: domain.FormatTimestamp(*loan.ReturnDate),
	})
	if err != nil {
		return domain.Loan{}, fmt.Errorf("update loan: %w", err)
	}

	if err := s.setAvailability(ctx, loan.BookID, true); err != nil {
		return loan, err
	}
	return loan, nil
}

// Lend checks that the book exists and is available before creating the loan.
// Two concurrent calls for the same book can both pass the check.
func (s *LoanService) Lend(ctx context.Context, req LendRequest) (domain.Loan, error) {
	book, err := s.books.Get(ctx, req.BookID)
	if err != nil {
		return domain.Loan{}, err
	}
	if book == nil {
		return domain.Loan{}, ErrBookNotFound
	}
	if !book.IsAvailable {
		return domain.Loan{}, ErrBookUnavailable
	}

	return s.CreateLoan(ctx, req.BookID, req.MemberID, req.LoanDate, req.DueDate)
}

// Return looks up the loan and returns it if it is still active.
func (s *LoanService) Return(ctx context.Context, loanID string) (domain.Loan, error) {
	loan, err := s.Get(ctx, loanID)
	if err != nil {
		return domain.Loan{}, err
	}
	if loan == nil {
		return domain.Loan{}, ErrLoanNotFound
	}
	return s.ReturnLoan(ctx, *loan)
}

func (s *LoanService) setAvailability(ctx context.Context, bookID string, available bool) error {
	err := s.store.Update(ctx, domain.BooksCollection, bookID, domain.Document{
		domain.FieldIsAvailable: available,
	})
	if err != nil {
		return fmt.Errorf("update book %s availability: %w", bookID, err)
	}
	return nil
}
