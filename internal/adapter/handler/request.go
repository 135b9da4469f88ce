package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

// body is a decoded JSON object. Key presence matters for patches, so
// requests are read as maps rather than structs.
type body map[string]any

func decodeBody(r *http.Request) (body, error) {
	defer r.Body.Close()
	var b body
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		return nil, err
	}
	if b == nil {
		b = body{}
	}
	return b, nil
}

func (b body) requiredString(field string) (string, error) {
	v, ok := b[field]
	if !ok || v == nil {
		return "", service.Required(field)
	}
	s, ok := v.(string)
	if !ok {
		return "", service.Invalid(field, "must be a string")
	}
	return s, nil
}

func (b body) optionalString(field string) (*string, error) {
	v, ok := b[field]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, service.Invalid(field, "must be a string")
	}
	return &s, nil
}

func (b body) optionalInt(field string) (*int, error) {
	v, ok := b[field]
	if !ok || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || !domain.InIntRange(f) {
		return nil, service.Invalid(field, "must be an integer")
	}
	n := int(f)
	return &n, nil
}

func (b body) optionalTime(field string) (*time.Time, error) {
	s, err := b.optionalString(field)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := domain.ParseTimestamp(*s)
	if err != nil {
		return nil, service.Invalid(field, "must be an ISO-8601 timestamp")
	}
	return &t, nil
}

// Patch readers return an unset Optional when the key is absent. A null
// clears optional fields and is rejected for required ones.

func (b body) patchString(field string) (domain.Optional[string], error) {
	v, ok := b[field]
	if !ok {
		return domain.Optional[string]{}, nil
	}
	s, ok := v.(string)
	if !ok {
		return domain.Optional[string]{}, service.Invalid(field, "must be a string")
	}
	return domain.Some(s), nil
}

func (b body) patchOptionalString(field string) (domain.Optional[*string], error) {
	if _, ok := b[field]; !ok {
		return domain.Optional[*string]{}, nil
	}
	s, err := b.optionalString(field)
	if err != nil {
		return domain.Optional[*string]{}, err
	}
	return domain.Some(s), nil
}

func (b body) patchOptionalInt(field string) (domain.Optional[*int], error) {
	if _, ok := b[field]; !ok {
		return domain.Optional[*int]{}, nil
	}
	n, err := b.optionalInt(field)
	if err != nil {
		return domain.Optional[*int]{}, err
	}
	return domain.Some(n), nil
}

func (b body) patchBool(field string) (domain.Optional[bool], error) {
	v, ok := b[field]
	if !ok {
		return domain.Optional[bool]{}, nil
	}
	flag, ok := v.(bool)
	if !ok {
		return domain.Optional[bool]{}, service.Invalid(field, "must be a boolean")
	}
	return domain.Some(flag), nil
}

// fieldReader collects the first error across a run of field reads.
type fieldReader struct {
	b   body
	err error
}

func (f *fieldReader) required(field string) string {
	if f.err != nil {
		return ""
	}
	s, err := f.b.requiredString(field)
	f.err = err
	return s
}

func (f *fieldReader) str(field string) *string {
	if f.err != nil {
		return nil
	}
	s, err := f.b.optionalString(field)
	f.err = err
	return s
}

func (f *fieldReader) integer(field string) *int {
	if f.err != nil {
		return nil
	}
	n, err := f.b.optionalInt(field)
	f.err = err
	return n
}

func (f *fieldReader) timestamp(field string) *time.Time {
	if f.err != nil {
		return nil
	}
	t, err := f.b.optionalTime(field)
	f.err = err
	return t
}

func (f *fieldReader) patchString(field string) domain.Optional[string] {
	if f.err != nil {
		return domain.Optional[string]{}
	}
	o, err := f.b.patchString(field)
	f.err = err
	return o
}

func (f *fieldReader) patchOptionalString(field string) domain.Optional[*string] {
	if f.err != nil {
		return domain.Optional[*string]{}
	}
	o, err := f.b.patchOptionalString(field)
	f.err = err
	return o
}

func (f *fieldReader) patchOptionalInt(field string) domain.Optional[*int] {
	if f.err != nil {
		return domain.Optional[*int]{}
	}
	o, err := f.b.patchOptionalInt(field)
	f.err = err
	return o
}

func (f *fieldReader) patchBool(field string) domain.Optional[bool] {
	if f.err != nil {
		return domain.Optional[bool]{}
	}
	o, err := f.b.patchBool(field)
	f.err = err
	return o
}
