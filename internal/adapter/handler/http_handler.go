package handler

import (
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type HTTPHandler struct {
	books   *service.BookService
	members *service.MemberService
	loans   *service.LoanService
	stats   *service.StatsService
	logger  *slog.Logger
}

func NewHTTPHandler(books *service.BookService, members *service.MemberService, loans *service.LoanService, stats *service.StatsService, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		books:   books,
		members: members,
		loans:   loans,
		stats:   stats,
		logger:  logger,
	}
}

// Routes registers every endpoint and wraps the mux in CORS and request
// logging.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HealthCheck)
	mux.HandleFunc("GET /api/stats", h.Stats)

	mux.HandleFunc("GET /api/books", h.ListBooks)
	mux.HandleFunc("POST /api/books", h.CreateBook)
	mux.HandleFunc("GET /api/books/{id}", h.GetBook)
	mux.HandleFunc("PUT /api/books/{id}", h.UpdateBook)
	mux.HandleFunc("DELETE /api/books/{id}", h.DeleteBook)

	mux.HandleFunc("GET /api/members", h.ListMembers)
	mux.HandleFunc("POST /api/members", h.CreateMember)
	mux.HandleFunc("GET /api/members/{id}", h.GetMember)
	mux.HandleFunc("PUT /api/members/{id}", h.UpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", h.DeleteMember)

	mux.HandleFunc("GET /api/loans", h.ListLoans)
	mux.HandleFunc("POST /api/loans", h.CreateLoan)
	mux.HandleFunc("GET /api/loans/{id}", h.GetLoan)
	mux.HandleFunc("PUT /api/loans/{id}/return", h.ReturnLoan)

	return CORS(LoggingMiddleware(h.logger)(mux))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statsResponse struct {
	TotalBooks     int `json:"totalBooks"`
	AvailableBooks int `json:"availableBooks"`
	TotalMembers   int `json:"totalMembers"`
	ActiveLoans    int `json:"activeLoans"`
}

func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.stats.Stats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalBooks:     st.TotalBooks,
		AvailableBooks: st.AvailableBooks,
		TotalMembers:   st.TotalMembers,
		ActiveLoans:    st.ActiveLoans,
	})
}

// writeError maps service errors onto status codes. Anything unrecognized is
// logged and reported as a generic 500.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErrorMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeInvalidBody(w http.ResponseWriter) {
	writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
}

// withID returns the encoded record with its identity injected.
func withID(doc domain.Document, id string) domain.Document {
	doc["id"] = id
	return doc
}
