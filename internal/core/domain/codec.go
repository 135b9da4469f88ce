package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Stored field names.
const (
	FieldTitle           = "title"
	FieldAuthor          = "author"
	FieldISBN            = "isbn"
	FieldPublicationYear = "publication_year"
	FieldCategory        = "category"
	FieldDescription     = "description"
	FieldIsAvailable     = "is_available"
	FieldCreatedAt       = "created_at"
	FieldUpdatedAt       = "updated_at"

	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldIDCardNumber = "id_card_number"

	FieldBookID     = "book_id"
	FieldMemberID   = "member_id"
	FieldLoanDate   = "loan_date"
	FieldDueDate    = "due_date"
	FieldReturnDate = "return_date"
	FieldReturned   = "returned"
	FieldIsOverdue  = "is_overdue"
)

// timestampLayouts are tried in order when a stored timestamp is textual.
// Layouts without an offset are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ErrTimestampRange is returned for instants whose UTC year has more than
// four digits or is negative. FormatTimestamp output for those cannot be
// parsed back.
var ErrTimestampRange = errors.New("timestamp outside years 0000-9999")

// ParseTimestamp parses an ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if err := CheckTimestamp(t); err != nil {
				return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// CheckTimestamp returns ErrTimestampRange when t would not survive a
// FormatTimestamp and ParseTimestamp round trip.
func CheckTimestamp(t time.Time) error {
	if y := t.UTC().Year(); y < 0 || y > 9999 {
		return ErrTimestampRange
	}
	return nil
}

// FormatTimestamp renders t as RFC 3339 in UTC with nanoseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func DecodeBook(doc Document, id string, now time.Time) (Book, error) {
	b := Book{
		ID:          id,
		Title:       stringValue(doc, FieldTitle),
		Author:      stringValue(doc, FieldAuthor),
		ISBN:        optionalString(doc, FieldISBN),
		Category:    optionalString(doc, FieldCategory),
		Description: optionalString(doc, FieldDescription),
		IsAvailable: boolValue(doc, FieldIsAvailable, true),
	}

	var err error
	if b.PublicationYear, err = optionalInt(doc, FieldPublicationYear); err != nil {
		return Book{}, fmt.Errorf("book %s: %w", id, err)
	}
	if b.CreatedAt, err = timeValue(doc, FieldCreatedAt, now); err != nil {
		return Book{}, fmt.Errorf("book %s: %w", id, err)
	}
	if b.UpdatedAt, err = timeValue(doc, FieldUpdatedAt, now); err != nil {
		return Book{}, fmt.Errorf("book %s: %w", id, err)
	}
	return b, nil
}

func EncodeBook(b Book) Document {
	return Document{
		FieldTitle:           b.Title,
		FieldAuthor:          b.Author,
		FieldISBN:            derefOrNil(b.ISBN),
		FieldPublicationYear: derefOrNil(b.PublicationYear),
		FieldCategory:        derefOrNil(b.Category),
		FieldDescription:     derefOrNil(b.Description),
		FieldIsAvailable:     b.IsAvailable,
		FieldCreatedAt:       FormatTimestamp(b.CreatedAt),
		FieldUpdatedAt:       FormatTimestamp(b.UpdatedAt),
	}
}

// EncodeBookPatch holds only the fields present in p plus updated_at, so a
// write does not overwrite fields changed since the book was read.
func EncodeBookPatch(p BookPatch, updatedAt time.Time) Document {
	doc := Document{FieldUpdatedAt: FormatTimestamp(updatedAt)}
	putSet(doc, FieldTitle, p.Title)
	putSet(doc, FieldAuthor, p.Author)
	putSetPtr(doc, FieldISBN, p.ISBN)
	putSetPtr(doc, FieldPublicationYear, p.PublicationYear)
	putSetPtr(doc, FieldCategory, p.Category)
	putSetPtr(doc, FieldDescription, p.Description)
	putSet(doc, FieldIsAvailable, p.IsAvailable)
	return doc
}

func DecodeMember(doc Document, id string, now time.Time) (Member, error) {
	m := Member{
		ID:           id,
		FirstName:    stringValue(doc, FieldFirstName),
		LastName:     stringValue(doc, FieldLastName),
		Email:        stringValue(doc, FieldEmail),
		Phone:        optionalString(doc, FieldPhone),
		Address:      optionalString(doc, FieldAddress),
		IDCardNumber: optionalString(doc, FieldIDCardNumber),
	}

	var err error
	if m.CreatedAt, err = timeValue(doc, FieldCreatedAt, now); err != nil {
		return Member{}, fmt.Errorf("member %s: %w", id, err)
	}
	if m.UpdatedAt, err = timeValue(doc, FieldUpdatedAt, now); err != nil {
		return Member{}, fmt.Errorf("member %s: %w", id, err)
	}
	return m, nil
}

func EncodeMember(m Member) Document {
	return Document{
		FieldFirstName:    m.FirstName,
		FieldLastName:     m.LastName,
		FieldEmail:        m.Email,
		FieldPhone:        derefOrNil(m.Phone),
		FieldAddress:      derefOrNil(m.Address),
		FieldIDCardNumber: derefOrNil(m.IDCardNumber),
		FieldCreatedAt:    FormatTimestamp(m.CreatedAt),
		FieldUpdatedAt:    FormatTimestamp(m.UpdatedAt),
	}
}

func EncodeMemberPatch(p MemberPatch, updatedAt time.Time) Document {
	doc := Document{FieldUpdatedAt: FormatTimestamp(updatedAt)}
	putSet(doc, FieldFirstName, p.FirstName)
	putSet(doc, FieldLastName, p.LastName)
	putSet(doc, FieldEmail, p.Email)
	putSetPtr(doc, FieldPhone, p.Phone)
	putSetPtr(doc, FieldAddress, p.Address)
	putSetPtr(doc, FieldIDCardNumber, p.IDCardNumber)
	return doc
}

// DecodeLoan fills missing dates the same way NewLoan does: loan date now,
// due date loan date plus LoanPeriod.
func DecodeLoan(doc Document, id string, now time.Time) (Loan, error) {
	l := Loan{
		ID:       id,
		BookID:   stringValue(doc, FieldBookID),
		MemberID: stringValue(doc, FieldMemberID),
		Returned: boolValue(doc, FieldReturned, false),
	}

	var err error
	if l.LoanDate, err = timeValue(doc, FieldLoanDate, now); err != nil {
		return Loan{}, fmt.Errorf("loan %s: %w", id, err)
	}
	if l.DueDate, err = timeValue(doc, FieldDueDate, l.LoanDate.Add(LoanPeriod)); err != nil {
		return Loan{}, fmt.Errorf("loan %s: %w", id, err)
	}
	if l.ReturnDate, err = optionalTime(doc, FieldReturnDate); err != nil {
		return Loan{}, fmt.Errorf("loan %s: %w", id, err)
	}
	return l, nil
}

// EncodeLoan renders l for output, with is_overdue derived from now.
// DecodeLoan ignores is_overdue.
func EncodeLoan(l Loan, now time.Time) Document {
	doc := EncodeStoredLoan(l)
	doc[FieldIsOverdue] = l.IsOverdue(now)
	return doc
}

// EncodeStoredLoan renders the stored fields of l only.
func EncodeStoredLoan(l Loan) Document {
	doc := Document{
		FieldBookID:   l.BookID,
		FieldMemberID: l.MemberID,
		FieldLoanDate: FormatTimestamp(l.LoanDate),
		FieldDueDate:  FormatTimestamp(l.DueDate),
		FieldReturned: l.Returned,
	}
	if l.ReturnDate != nil {
		doc[FieldReturnDate] = FormatTimestamp(*l.ReturnDate)
	}
	return doc
}

func stringValue(doc Document, key string) string {
	if s := optionalString(doc, key); s != nil {
		return *s
	}
	return ""
}

func optionalString(doc Document, key string) *string {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case *string:
		if t == nil {
			return nil
		}
		s = *t
	default:
		s = fmt.Sprint(t)
	}
	return &s
}

func boolValue(doc Document, key string, def bool) bool {
	if b, ok := doc[key].(bool); ok {
		return b
	}
	return def
}

func optionalInt(doc Document, key string) (*int, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}

	var i int64
	switch t := v.(type) {
	case int:
		i = int64(t)
	case int32:
		i = int64(t)
	case int64:
		i = t
	case float64:
		if t != math.Trunc(t) || !InIntRange(t) {
			return nil, fmt.Errorf("field %s: %v is not an integer", key, t)
		}
		i = int64(t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		i = n
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		i = n
	default:
		return nil, fmt.Errorf("field %s: unsupported type %T", key, v)
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return nil, fmt.Errorf("field %s: %d is out of range", key, i)
	}
	n := int(i)
	return &n, nil
}

// InIntRange reports whether f fits the 32-bit range accepted for integer
// fields.
func InIntRange(f float64) bool {
	return f >= math.MinInt32 && f <= math.MaxInt32
}

func timeValue(doc Document, key string, def time.Time) (time.Time, error) {
	t, err := optionalTime(doc, key)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return def, nil
	}
	return *t, nil
}

func optionalTime(doc Document, key string) (*time.Time, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}

	switch t := v.(type) {
	case time.Time:
		return &t, nil
	case *time.Time:
		return t, nil
	case string:
		parsed, err := ParseTimestamp(t)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("field %s: unsupported type %T", key, v)
	}
}

func derefOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func putSet[T any](doc Document, key string, o Optional[T]) {
	if v, ok := o.Get(); ok {
		doc[key] = v
	}
}

func putSetPtr[T any](doc Document, key string, o Optional[*T]) {
	if v, ok := o.Get(); ok {
		doc[key] = derefOrNil(v)
	}
}
