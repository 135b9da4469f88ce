package domain

// Collection names used by the document store.
const (
	BooksCollection   = "books"
	MembersCollection = "members"
	LoansCollection   = "loans"
)

// Document is the stored representation of a record: field name to value.
// The record id is never part of a Document.
type Document map[string]any

// Clone returns a shallow copy. Values held by documents are scalars,
// strings or timestamps, so a shallow copy is enough to detach it.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
