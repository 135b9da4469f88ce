package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // goqu dialect
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // goqu dialect
	"github.com/doug-martin/goqu/v9/exp"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

const (
	documentsTable = "documents"
	colCollection  = "collection"
	colID          = "id"
	colData        = "data"
)

// Dialect names a SQL backend able to hold JSON documents.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

var ErrUnknownDialect = errors.New("unknown sql dialect")

type sqlDialect struct {
	driver string
	goqu   string
	schema string

	// equals matches documents whose field equals the JSON-encoded value
	equals func(field, value string) exp.Expression

	// merge returns the expression that folds a JSON patch into data
	merge func(patch string) exp.LiteralExpression
}

var dialects = map[Dialect]sqlDialect{
	DialectMySQL: {
		driver: "mysql",
		goqu:   "mysql",
		schema: `CREATE TABLE IF NOT EXISTS documents (
    collection VARCHAR(64) NOT NULL,
    id         VARCHAR(64) NOT NULL,
    data       JSON NOT NULL,
    PRIMARY KEY (collection, id)
)`,
		equals: func(field, value string) exp.Expression {
			return goqu.L("JSON_CONTAINS(data, ?, ?)", value, jsonPath(field))
		},
		merge: func(patch string) exp.LiteralExpression {
			return goqu.L("JSON_MERGE_PATCH(data, ?)", patch)
		},
	},
	DialectPostgres: {
		driver: "pgx",
		goqu:   "postgres",
		schema: `CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id         TEXT NOT NULL,
    data       JSONB NOT NULL,
    PRIMARY KEY (collection, id)
)`,
		equals: func(field, value string) exp.Expression {
			return goqu.L("data -> ? = ?::jsonb", field, value)
		},
		merge: func(patch string) exp.LiteralExpression {
			return goqu.L("data || ?::jsonb", patch)
		},
	},
	DialectSQLite: {
		driver: "sqlite",
		goqu:   "sqlite3",
		schema: `CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id         TEXT NOT NULL,
    data       TEXT NOT NULL,
    PRIMARY KEY (collection, id)
)`,
		equals: func(field, value string) exp.Expression {
			return goqu.L("json_extract(data, ?) = json_extract(?, '$')", jsonPath(field), value)
		},
		merge: func(patch string) exp.LiteralExpression {
			return goqu.L("json_patch(data, ?)", patch)
		},
	},
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

// SQLAdapter keeps every collection in one documents table with a JSON
// data column.
type SQLAdapter struct {
	db      *sqlx.DB
	dialect sqlDialect
	builder goqu.DialectWrapper
}

// OpenSQL opens a connection pool for the dialect's driver and checks it.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*sqlx.DB, error) {
	d, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}

	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// in-memory databases are per connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, nil
}

func NewSQLAdapter(db *sqlx.DB, dialect Dialect) (*SQLAdapter, error) {
	d, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	return &SQLAdapter{db: db, dialect: d, builder: goqu.Dialect(d.goqu)}, nil
}

// EnsureSchema creates the documents table if it does not exist yet.
func (s *SQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	return nil
}

func (s *SQLAdapter) Get(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	query, args, err := s.builder.From(documentsTable).
		Select(colData).
		Where(documentKey(collection, id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get query: %w", err)
	}

	var raw []byte
	err = s.db.GetContext(ctx, &raw, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	doc, err := unmarshalDocument(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return doc, true, nil
}

func (s *SQLAdapter) List(ctx context.Context, collection string) ([]port.StoredDocument, error) {
	return s.selectDocuments(ctx, collection, goqu.Ex{colCollection: collection})
}

func (s *SQLAdapter) ListWhereEquals(ctx context.Context, collection, field string, value any) ([]port.StoredDocument, error) {
	raw, err := documentJSON.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode filter value: %w", err)
	}
	return s.selectDocuments(ctx, collection, goqu.Ex{colCollection: collection}, s.dialect.equals(field, string(raw)))
}

func (s *SQLAdapter) Insert(ctx context.Context, collection string, fields domain.Document) (string, error) {
	raw, err := documentJSON.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}

	id := uuid.NewString()
	query, args, err := s.builder.Insert(documentsTable).
		Rows(goqu.Record{colCollection: collection, colID: id, colData: string(raw)}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

func (s *SQLAdapter) Update(ctx context.Context, collection, id string, fields domain.Document) error {
	patch, err := documentJSON.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s patch: %w", collection, id, err)
	}

	query, args, err := s.builder.Update(documentsTable).
		Set(goqu.Record{colData: s.dialect.merge(string(patch))}).
		Where(documentKey(collection, id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLAdapter) Delete(ctx context.Context, collection, id string) error {
	query, args, err := s.builder.Delete(documentsTable).
		Where(documentKey(collection, id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLAdapter) selectDocuments(ctx context.Context, collection string, where ...exp.Expression) ([]port.StoredDocument, error) {
	query, args, err := s.builder.From(documentsTable).
		Select(colID, colData).
		Where(where...).
		Order(goqu.C(colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]port.StoredDocument, 0, len(rows))
	for _, row := range rows {
		doc, err := unmarshalDocument(row.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, row.ID, err)
		}
		docs = append(docs, port.StoredDocument{ID: row.ID, Data: doc})
	}
	return docs, nil
}

func documentKey(collection, id string) goqu.Ex {
	return goqu.Ex{colCollection: collection, colID: id}
}

func jsonPath(field string) string {
	return `$."` + field + `"`
}
