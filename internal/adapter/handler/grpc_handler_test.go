package handler

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/library/internal/adapter/storage"
	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

type loanDeskFixture struct {
	client *LoanDeskClient
	books  *service.BookService
}

func newLoanDeskFixture(t *testing.T) loanDeskFixture {
	t.Helper()
	store := storage.NewMemoryAdapter()
	clock := func() time.Time { return testNow }
	books := service.NewBookService(store, service.WithClock(clock))
	loans := service.NewLoanService(store, books, service.WithClock(clock))
	stats := service.NewStatsService(store)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryLoggingInterceptor(logger)))
	RegisterLoanDeskServer(srv, NewGRPCHandler(loans, stats, logger))

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return loanDeskFixture{client: NewLoanDeskClient(conn), books: books}
}

func TestLoanDesk_LendAndReturn(t *testing.T) {
	fx := newLoanDeskFixture(t)
	ctx := context.Background()

	book, err := fx.books.Create(ctx, domain.BookDraft{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	loan, err := fx.client.Lend(ctx, &LendRequest{BookID: book.ID, MemberID: "m-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, book.ID, loan.BookID)
	assert.Equal(t, domain.FormatTimestamp(testNow.Add(domain.LoanPeriod)), loan.DueDate)
	assert.False(t, loan.Returned)
	assert.Nil(t, loan.ReturnDate)

	_, err = fx.client.Lend(ctx, &LendRequest{BookID: book.ID, MemberID: "m-2"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	stats, err := fx.client.Stats(ctx, &StatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, &StatsReply{TotalBooks: 1, AvailableBooks: 0, TotalMembers: 0, ActiveLoans: 1}, stats)

	returned, err := fx.client.Return(ctx, &ReturnRequest{LoanID: loan.ID})
	require.NoError(t, err)
	assert.True(t, returned.Returned)
	require.NotNil(t, returned.ReturnDate)

	_, err = fx.client.Return(ctx, &ReturnRequest{LoanID: loan.ID})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestLoanDesk_Errors(t *testing.T) {
	fx := newLoanDeskFixture(t)
	ctx := context.Background()

	_, err := fx.client.Lend(ctx, &LendRequest{MemberID: "m-1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "book_id")

	_, err = fx.client.Lend(ctx, &LendRequest{BookID: "b", MemberID: "m", DueDate: "soon"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = fx.client.Lend(ctx, &LendRequest{BookID: "missing", MemberID: "m-1"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = fx.client.Return(ctx, &ReturnRequest{LoanID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestLoanDesk_DueDateBeyondYear9999(t *testing.T) {
	fx := newLoanDeskFixture(t)
	ctx := context.Background()

	book, err := fx.books.Create(ctx, domain.BookDraft{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	_, err = fx.client.Lend(ctx, &LendRequest{BookID: book.ID, MemberID: "m-1", LoanDate: "9999-12-25T00:00:00Z"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "due_date")

	_, err = fx.client.Lend(ctx, &LendRequest{BookID: book.ID, MemberID: "m-1", DueDate: "10000-01-08T00:00:00Z"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	stats, err := fx.client.Stats(ctx, &StatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ActiveLoans)
	assert.Equal(t, 1, stats.AvailableBooks)
}
