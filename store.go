package blockpress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ourstreets/blockpress/document"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store wraps a SQLite database holding document records. Records cross the
// Store boundary as loosely-typed maps (the store's wire shape, snake_case
// field names); document.Normalize is the only permitted consumer of that
// raw shape.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, a busy timeout so writers wait
	// instead of failing with SQLITE_BUSY, and synchronous=NORMAL which is
	// safe under WAL without an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    status TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_slug ON documents(slug);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
`)
	return err
}

// Load returns the raw record for a document id.
func (s *Store) Load(ctx context.Context, id string) (map[string]any, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(payload)
}

// Create persists a new document record under a fresh identity and returns
// the stored record.
func (s *Store) Create(ctx context.Context, record map[string]any) (map[string]any, error) {
	doc := document.Normalize(record)
	doc.ID = uuid.NewString()
	return s.persist(ctx, doc)
}

// Update overwrites the record with the given identity and returns the
// stored record.
func (s *Store) Update(ctx context.Context, id string, record map[string]any) (map[string]any, error) {
	doc := document.Normalize(record)
	doc.ID = id
	return s.persist(ctx, doc)
}

// persist upserts the normalized document. The payload column holds the full
// serialized document; slug, status, and updated_at are denormalized for
// indexed lookups.
func (s *Store) persist(ctx context.Context, doc document.Document) (map[string]any, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, slug, status, updated_at, payload) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Meta.Slug, string(doc.Meta.Status), doc.Meta.UpdatedAt, string(payload))
	if err != nil {
		return nil, err
	}
	return decodeRecord(string(payload))
}

// Delete removes a document by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// GetPublishedBySlug returns the raw record for a published document.
func (s *Store) GetPublishedBySlug(ctx context.Context, slug string) (map[string]any, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE slug = ? AND status = ?`,
		slug, string(document.StatusPublished)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(payload)
}

// ListPublished returns raw records for all published documents, newest
// update first.
func (s *Store) ListPublished(ctx context.Context) ([]map[string]any, error) {
	return s.list(ctx, `SELECT payload FROM documents WHERE status = ? ORDER BY updated_at DESC`,
		string(document.StatusPublished))
}

// ListAll returns raw records for every document regardless of status, for
// the admin dashboard.
func (s *Store) ListAll(ctx context.Context) ([]map[string]any, error) {
	return s.list(ctx, `SELECT payload FROM documents ORDER BY updated_at DESC`)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []map[string]any
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		record, err := decodeRecord(payload)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func decodeRecord(payload string) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("decode document record: %w", err)
	}
	return record, nil
}
