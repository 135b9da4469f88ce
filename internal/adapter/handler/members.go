package handler

import (
	"net/http"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

func memberResponse(m domain.Member) domain.Document {
	return withID(domain.EncodeMember(m), m.ID)
}

// ListMembers handles GET /api/members.
func (h *HTTPHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]domain.Document, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetMember handles GET /api/members/{id}.
func (h *HTTPHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, ok := h.lookupMember(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, memberResponse(*member))
}

// CreateMember handles POST /api/members.
func (h *HTTPHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r)
	if err != nil {
		writeInvalidBody(w)
		return
	}

	f := fieldReader{b: b}
	draft := domain.MemberDraft{
		FirstName:    f.required(domain.FieldFirstName),
		LastName:     f.required(domain.FieldLastName),
		Email:        f.required(domain.FieldEmail),
		Phone:        f.str(domain.FieldPhone),
		Address:      f.str(domain.FieldAddress),
		IDCardNumber: f.str(domain.FieldIDCardNumber),
	}
	if f.err != nil {
		h.writeError(w, r, f.err)
		return
	}

	member, err := h.members.Create(r.Context(), draft)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberResponse(member))
}

// UpdateMember handles PUT /api/members/{id}.
func (h *HTTPHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	member, ok := h.lookupMember(w, r)
	if !ok {
		return
	}

	b, err := decodeBody(r)
	if err != nil {
		writeInvalidBody(w)
		return
	}

	f := fieldReader{b: b}
	patch := domain.MemberPatch{
		FirstName:    f.patchString(domain.FieldFirstName),
		LastName:     f.patchString(domain.FieldLastName),
		Email:        f.patchString(domain.FieldEmail),
		Phone:        f.patchOptionalString(domain.FieldPhone),
		Address:      f.patchOptionalString(domain.FieldAddress),
		IDCardNumber: f.patchOptionalString(domain.FieldIDCardNumber),
	}
	if f.err != nil {
		h.writeError(w, r, f.err)
		return
	}

	updated, err := h.members.Update(r.Context(), *member, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberResponse(updated))
}

// DeleteMember handles DELETE /api/members/{id}.
func (h *HTTPHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	member, ok := h.lookupMember(w, r)
	if !ok {
		return
	}

	if err := h.members.Delete(r.Context(), *member); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "member deleted"})
}

func (h *HTTPHandler) lookupMember(w http.ResponseWriter, r *http.Request) (*domain.Member, bool) {
	member, err := h.members.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	if member == nil {
		h.writeError(w, r, service.ErrMemberNotFound)
		return nil, false
	}
	return member, true
}
