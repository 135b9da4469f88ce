package port

import (
	"context"

	"github.com/rl1809/library/internal/core/domain"
)

// StoredDocument is a document together with its identity in a collection.
type StoredDocument struct {
	ID   string
	Data domain.Document
}

type DocumentStore interface {
	// Get returns the document, or ok=false if it does not exist
	Get(ctx context.Context, collection, id string) (doc domain.Document, ok bool, err error)

	// List returns every document in the collection
	List(ctx context.Context, collection string) ([]StoredDocument, error)

	// ListWhereEquals returns the documents whose field equals value
	ListWhereEquals(ctx context.Context, collection, field string, value any) ([]StoredDocument, error)

	// Insert stores fields under a newly generated id and returns it
	Insert(ctx context.Context, collection string, fields domain.Document) (string, error)

	// Update merges fields into an existing document, no-op if absent
	Update(ctx context.Context, collection, id string, fields domain.Document) error

	// Delete removes the document, no-op if absent
	Delete(ctx context.Context, collection, id string) error
}
