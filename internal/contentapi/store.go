package contentapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/db"
)

// ErrNotFound is returned by Store.Raw when nothing has been stored yet.
var ErrNotFound = errors.New("no content stored")

// Store keeps the single published content document.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Raw returns the stored payload exactly as it was written.
func (s *Store) Raw(ctx context.Context) (json.RawMessage, string, error) {
	var data, updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT content_json, updated_at FROM site_content WHERE id = 1`).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading site content: %w", err)
	}
	return json.RawMessage(data), updatedAt, nil
}

// Document returns the stored document, normalized. A missing or unparsable
// row yields the default document.
func (s *Store) Document(ctx context.Context) (*content.Document, error) {
	raw, _, err := s.Raw(ctx)
	if errors.Is(err, ErrNotFound) {
		return content.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	doc, err := content.Parse(raw)
	if err != nil {
		return content.Default(), nil
	}
	return doc, nil
}

// Put replaces the stored payload and returns its update timestamp.
func (s *Store) Put(ctx context.Context, payload json.RawMessage) (string, error) {
	updatedAt := s.now().UTC().Format(content.TimestampLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_content (id, content_json, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_json = excluded.content_json,
			updated_at = excluded.updated_at`,
		string(payload), updatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("writing site content: %w", err)
	}
	return updatedAt, nil
}
