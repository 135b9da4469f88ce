package handler

import (
	"net/http"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

func (h *HTTPHandler) loanResponse(l domain.Loan) domain.Document {
	return withID(domain.EncodeLoan(l, h.loans.Now()), l.ID)
}

// ListLoans handles GET /api/loans.
func (h *HTTPHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]domain.Document, 0, len(loans))
	for _, l := range loans {
		out = append(out, h.loanResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetLoan handles GET /api/loans/{id}.
func (h *HTTPHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.loans.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if loan == nil {
		h.writeError(w, r, service.ErrLoanNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.loanResponse(*loan))
}

// CreateLoan handles POST /api/loans. The book must exist and be available.
func (h *HTTPHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r)
	if err != nil {
		writeInvalidBody(w)
		return
	}

	f := fieldReader{b: b}
	req := service.LendRequest{
		BookID:   f.required(domain.FieldBookID),
		MemberID: f.required(domain.FieldMemberID),
		LoanDate: f.timestamp(domain.FieldLoanDate),
		DueDate:  f.timestamp(domain.FieldDueDate),
	}
	if f.err != nil {
		h.writeError(w, r, f.err)
		return
	}

	loan, err := h.loans.Lend(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.loanResponse(loan))
}

// ReturnLoan handles PUT /api/loans/{id}/return.
func (h *HTTPHandler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.loans.Return(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.loanResponse(loan))
}
