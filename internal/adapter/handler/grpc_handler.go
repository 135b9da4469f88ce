package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

const loanDeskServiceName = "library.v1.LoanDesk"

type LendRequest struct {
	BookID   string `json:"book_id"`
	MemberID string `json:"member_id"`
	LoanDate string `json:"loan_date,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
}

type ReturnRequest struct {
	LoanID string `json:"loan_id"`
}

type LoanReply struct {
	ID         string  `json:"id"`
	BookID     string  `json:"book_id"`
	MemberID   string  `json:"member_id"`
	LoanDate   string  `json:"loan_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date,omitempty"`
	Returned   bool    `json:"returned"`
	IsOverdue  bool    `json:"is_overdue"`
}

type StatsRequest struct{}

type StatsReply struct {
	TotalBooks     int `json:"totalBooks"`
	AvailableBooks int `json:"availableBooks"`
	TotalMembers   int `json:"totalMembers"`
	ActiveLoans    int `json:"activeLoans"`
}

type LoanDeskServer interface {
	Lend(context.Context, *LendRequest) (*LoanReply, error)
	Return(context.Context, *ReturnRequest) (*LoanReply, error)
	Stats(context.Context, *StatsRequest) (*StatsReply, error)
}

// GRPCHandler serves the loan desk: the lend/return protocol and the stats
// summary, sharing the services behind the HTTP API.
type GRPCHandler struct {
	loans  *service.LoanService
	stats  *service.StatsService
	logger *slog.Logger
}

func NewGRPCHandler(loans *service.LoanService, stats *service.StatsService, logger *slog.Logger) *GRPCHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCHandler{loans: loans, stats: stats, logger: logger}
}

func (h *GRPCHandler) Lend(ctx context.Context, req *LendRequest) (*LoanReply, error) {
	if req.BookID == "" {
		return nil, h.toStatus(ctx, service.Required(domain.FieldBookID))
	}
	if req.MemberID == "" {
		return nil, h.toStatus(ctx, service.Required(domain.FieldMemberID))
	}

	lend := service.LendRequest{BookID: req.BookID, MemberID: req.MemberID}
	var err error
	if lend.LoanDate, err = parseOptionalTimestamp(domain.FieldLoanDate, req.LoanDate); err != nil {
		return nil, h.toStatus(ctx, err)
	}
	if lend.DueDate, err = parseOptionalTimestamp(domain.FieldDueDate, req.DueDate); err != nil {
		return nil, h.toStatus(ctx, err)
	}

	loan, err := h.loans.Lend(ctx, lend)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.loanReply(loan), nil
}

func (h *GRPCHandler) Return(ctx context.Context, req *ReturnRequest) (*LoanReply, error) {
	if req.LoanID == "" {
		return nil, h.toStatus(ctx, service.Required("loan_id"))
	}

	loan, err := h.loans.Return(ctx, req.LoanID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return h.loanReply(loan), nil
}

func (h *GRPCHandler) Stats(ctx context.Context, _ *StatsRequest) (*StatsReply, error) {
	st, err := h.stats.Stats(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &StatsReply{
		TotalBooks:     st.TotalBooks,
		AvailableBooks: st.AvailableBooks,
		TotalMembers:   st.TotalMembers,
		ActiveLoans:    st.ActiveLoans,
	}, nil
}

func (h *GRPCHandler) loanReply(l domain.Loan) *LoanReply {
	reply := &LoanReply{
		ID:        l.ID,
		BookID:    l.BookID,
		MemberID:  l.MemberID,
		LoanDate:  domain.FormatTimestamp(l.LoanDate),
		DueDate:   domain.FormatTimestamp(l.DueDate),
		Returned:  l.Returned,
		IsOverdue: l.IsOverdue(h.loans.Now()),
	}
	if l.ReturnDate != nil {
		s := domain.FormatTimestamp(*l.ReturnDate)
		reply.ReturnDate = &s
	}
	return reply
}

func (h *GRPCHandler) toStatus(ctx context.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		h.logger.ErrorContext(ctx, "grpc call failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func parseOptionalTimestamp(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseTimestamp(s)
	if err != nil {
		return nil, service.Invalid(field, "must be an ISO-8601 timestamp")
	}
	return &t, nil
}

// RegisterLoanDeskServer attaches srv to s under library.v1.LoanDesk.
func RegisterLoanDeskServer(s grpc.ServiceRegistrar, srv LoanDeskServer) {
	s.RegisterService(&loanDeskServiceDesc, srv)
}

var loanDeskServiceDesc = grpc.ServiceDesc{
	ServiceName: loanDeskServiceName,
	HandlerType: (*LoanDeskServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Lend", Handler: lendHandler},
		{MethodName: "Return", Handler: returnHandler},
		{MethodName: "Stats", Handler: statsHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func lendHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LendRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LoanDeskServer).Lend(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + loanDeskServiceName + "/Lend"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LoanDeskServer).Lend(ctx, req.(*LendRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func returnHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReturnRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LoanDeskServer).Return(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + loanDeskServiceName + "/Return"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LoanDeskServer).Return(ctx, req.(*ReturnRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func statsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LoanDeskServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + loanDeskServiceName + "/Stats"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LoanDeskServer).Stats(ctx, req.(*StatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// LoanDeskClient calls the loan desk over a connection using the JSON codec.
type LoanDeskClient struct {
	cc grpc.ClientConnInterface
}

func NewLoanDeskClient(cc grpc.ClientConnInterface) *LoanDeskClient {
	return &LoanDeskClient{cc: cc}
}

func (c *LoanDeskClient) Lend(ctx context.Context, in *LendRequest, opts ...grpc.CallOption) (*LoanReply, error) {
	out := new(LoanReply)
	if err := c.invoke(ctx, "Lend", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LoanDeskClient) Return(ctx context.Context, in *ReturnRequest, opts ...grpc.CallOption) (*LoanReply, error) {
	out := new(LoanReply)
	if err := c.invoke(ctx, "Return", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LoanDeskClient) Stats(ctx context.Context, in *StatsRequest, opts ...grpc.CallOption) (*StatsReply, error) {
	out := new(StatsReply)
	if err := c.invoke(ctx, "Stats", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LoanDeskClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{JSONCallOption()}, opts...)
	return c.cc.Invoke(ctx, "/"+loanDeskServiceName+"/"+method, in, out, opts...)
}

// UnaryLoggingInterceptor logs method, status code and duration per call.
func UnaryLoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.InfoContext(ctx, "grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		return resp, err
	}
}
