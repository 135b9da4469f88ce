package handler

import (
	"net/http"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

func bookResponse(b domain.Book) domain.Document {
	return withID(domain.EncodeBook(b), b.ID)
}

// ListBooks handles GET /api/books.
func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]domain.Document, 0, len(books))
	for _, b := range books {
		out = append(out, bookResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetBook handles GET /api/books/{id}.
func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.lookupBook(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, bookResponse(*book))
}

// CreateBook handles POST /api/books.
func (h *HTTPHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r)
	if err != nil {
		writeInvalidBody(w)
		return
	}

	f := fieldReader{b: b}
	draft := domain.BookDraft{
		Title:           f.required(domain.FieldTitle),
		Author:          f.required(domain.FieldAuthor),
		ISBN:            f.str(domain.FieldISBN),
		PublicationYear: f.integer(domain.FieldPublicationYear),
		Category:        f.str(domain.FieldCategory),
		Description:     f.str(domain.FieldDescription),
	}
	if f.err != nil {
		h.writeError(w, r, f.err)
		return
	}

	book, err := h.books.Create(r.Context(), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookResponse(book))
}

// UpdateBook handles PUT /api/books/{id}.
func (h *HTTPHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.lookupBook(w, r)
	if !ok {
		return
	}

	b, err := decodeBody(r)
	if err != nil {
		writeInvalidBody(w)
		return
	}

	f := fieldReader{b: b}
	patch := domain.BookPatch{
		Title:           f.patchString(domain.FieldTitle),
		Author:          f.patchString(domain.FieldAuthor),
		ISBN:            f.patchOptionalString(domain.FieldISBN),
		PublicationYear: f.patchOptionalInt(domain.FieldPublicationYear),
		Category:        f.patchOptionalString(domain.FieldCategory),
		Description:     f.patchOptionalString(domain.FieldDescription),
		IsAvailable:     f.patchBool(domain.FieldIsAvailable),
	}
	if f.err != nil {
		h.writeError(w, r, f.err)
		return
	}

	updated, err := h.books.Update(r.Context(), *book, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookResponse(updated))
}

// DeleteBook handles DELETE /api/books/{id}.
func (h *HTTPHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	book, ok := h.lookupBook(w, r)
	if !ok {
		return
	}

	if err := h.books.Delete(r.Context(), *book); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

func (h *HTTPHandler) lookupBook(w http.ResponseWriter, r *http.Request) (*domain.Book, bool) {
	book, err := h.books.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	if book == nil {
		h.writeError(w, r, service.ErrBookNotFound)
		return nil, false
	}
	return book, true
}
