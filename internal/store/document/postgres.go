// Package document implements the document metadata store. The pipeline
// mutates records through this package but never deletes them.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docflow/internal/models"
	"docflow/internal/store"
)

var _ store.DocumentStore = (*PostgresStore)(nil)

// PostgresStore implements store.DocumentStore using PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id                 TEXT PRIMARY KEY,
	owner_id           TEXT NOT NULL,
	original_name      TEXT NOT NULL,
	mime_type          TEXT NOT NULL,
	size_bytes         BIGINT NOT NULL DEFAULT 0,
	original_location  TEXT NOT NULL DEFAULT '',
	processed_location TEXT NOT NULL DEFAULT '',
	extracted_text     TEXT NOT NULL DEFAULT '',
	summary            TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	error_message      TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents (owner_id, created_at DESC);
`

// NewPostgresStore creates a connection pool, verifies connectivity and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := dbpool.Exec(ctx, schema); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}

	return &PostgresStore{db: dbpool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `
		INSERT INTO documents (
			id, owner_id, original_name, mime_type, size_bytes,
			original_location, processed_location, extracted_text, summary,
			status, error_message, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.Exec(ctx, query,
		doc.ID, doc.OwnerID, doc.OriginalName, doc.MimeType, doc.SizeBytes,
		doc.OriginalLocation, doc.ProcessedLocation, doc.ExtractedText, doc.Summary,
		doc.Status, doc.ErrorMessage, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, owner_id, original_name, mime_type, size_bytes,
		       original_location, processed_location, extracted_text, summary,
		       status, error_message, created_at, updated_at
		FROM documents WHERE id = $1`

	var doc models.Document
	err := s.db.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.OwnerID, &doc.OriginalName, &doc.MimeType, &doc.SizeBytes,
		&doc.OriginalLocation, &doc.ProcessedLocation, &doc.ExtractedText, &doc.Summary,
		&doc.Status, &doc.ErrorMessage, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", id, err)
	}
	return &doc, nil
}

// Update persists every mutable field of the record. Last writer wins at
// the record level; callers enforce the state machine before saving.
func (s *PostgresStore) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now()

	query := `
		UPDATE documents SET
			owner_id = $2, original_name = $3, mime_type = $4, size_bytes = $5,
			original_location = $6, processed_location = $7, extracted_text = $8,
			summary = $9, status = $10, error_message = $11, updated_at = $12
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query,
		doc.ID, doc.OwnerID, doc.OriginalName, doc.MimeType, doc.SizeBytes,
		doc.OriginalLocation, doc.ProcessedLocation, doc.ExtractedText,
		doc.Summary, doc.Status, doc.ErrorMessage, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, owner_id, original_name, mime_type, size_bytes,
		       original_location, processed_location, extracted_text, summary,
		       status, error_message, created_at, updated_at
		FROM documents
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID, &doc.OwnerID, &doc.OriginalName, &doc.MimeType, &doc.SizeBytes,
			&doc.OriginalLocation, &doc.ProcessedLocation, &doc.ExtractedText, &doc.Summary,
			&doc.Status, &doc.ErrorMessage, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
