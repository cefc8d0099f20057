package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/legalease/legalease/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	original_name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	storage_key TEXT NOT NULL,
	owner_id TEXT,
	status TEXT NOT NULL,
	error_message TEXT,
	original_text TEXT,
	simplified_clauses JSONB NOT NULL DEFAULT '[]'::jsonb,
	summary TEXT,
	key_terms JSONB NOT NULL DEFAULT '[]'::jsonb,
	uploaded_at TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at DESC);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT 'en',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_document_id ON conversations(document_id, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	clausesJSON, err := json.Marshal(clausesOrEmpty(doc.Clauses))
	if err != nil {
		return fmt.Errorf("marshal clauses: %w", err)
	}
	termsJSON, err := json.Marshal(termsOrEmpty(doc.KeyTerms))
	if err != nil {
		return fmt.Errorf("marshal key terms: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, file_name, original_name, content_type, size_bytes, storage_key, owner_id, status, error_message,
	original_text, simplified_clauses, summary, key_terms, uploaded_at, processed_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		doc.ID, doc.FileName, doc.OriginalName, doc.ContentType, doc.SizeBytes, doc.StorageKey,
		nullableString(doc.OwnerID), string(doc.Status), doc.Error,
		doc.OriginalText, clausesJSON, doc.Summary, termsJSON, doc.UploadedAt, doc.ProcessedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, file_name, original_name, content_type, size_bytes, storage_key, COALESCE(owner_id, ''), status,
	COALESCE(error_message, ''), COALESCE(original_text, ''), simplified_clauses, COALESCE(summary, ''), key_terms,
	uploaded_at, processed_at, updated_at
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return nil
}

func (r *DocumentRepository) SaveResults(ctx context.Context, id string, result domain.ProcessingResult) error {
	clausesJSON, err := json.Marshal(clausesOrEmpty(result.Clauses))
	if err != nil {
		return fmt.Errorf("marshal clauses: %w", err)
	}
	termsJSON, err := json.Marshal(termsOrEmpty(result.KeyTerms))
	if err != nil {
		return fmt.Errorf("marshal key terms: %w", err)
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET original_text = $2, simplified_clauses = $3, summary = $4, key_terms = $5, processed_at = $6, updated_at = $6
WHERE id = $1
`, id, result.OriginalText, clausesJSON, result.Summary, termsJSON, now)
	if err != nil {
		return fmt.Errorf("save processing results: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, id)
	}
	return nil
}

func (r *DocumentRepository) ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, file_name, original_name, content_type, size_bytes, storage_key, COALESCE(owner_id, ''), status,
	COALESCE(error_message, ''), COALESCE(original_text, ''), simplified_clauses, COALESCE(summary, ''), key_terms,
	uploaded_at, processed_at, updated_at
FROM documents
WHERE status = $1
ORDER BY uploaded_at ASC
`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list documents by status: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var clausesRaw, termsRaw []byte

	err := row.Scan(
		&doc.ID, &doc.FileName, &doc.OriginalName, &doc.ContentType, &doc.SizeBytes, &doc.StorageKey,
		&doc.OwnerID, &status, &doc.Error, &doc.OriginalText, &clausesRaw, &doc.Summary, &termsRaw,
		&doc.UploadedAt, &doc.ProcessedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(clausesRaw, &doc.Clauses); err != nil {
		return nil, fmt.Errorf("unmarshal clauses: %w", err)
	}
	if err := json.Unmarshal(termsRaw, &doc.KeyTerms); err != nil {
		return nil, fmt.Errorf("unmarshal key terms: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func clausesOrEmpty(clauses []domain.SimplifiedClause) []domain.SimplifiedClause {
	if clauses == nil {
		return []domain.SimplifiedClause{}
	}
	return clauses
}

func termsOrEmpty(terms []string) []string {
	if terms == nil {
		return []string{}
	}
	return terms
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
