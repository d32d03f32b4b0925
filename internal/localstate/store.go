// Package localstate keeps the operator-side state that survives restarts:
// the working draft, the preview snapshot and the remembered Drive file id
// and API base URL.
package localstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/db"
)

// Fixed keys of the local_state table.
const (
	KeyDraft       = "draft"
	KeyPreview     = "preview"
	KeyDriveFileID = "drive_file_id"
	KeyAPIBaseURL  = "api_base_url"
)

// ErrNotFound is returned when a key holds no (usable) value.
var ErrNotFound = errors.New("local state not found")

// Store is a string key/value store over the local_state table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Get returns the value stored under key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM local_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_state (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM local_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// SaveDraft stores doc as the working draft.
func (s *Store) SaveDraft(ctx context.Context, doc *content.Document) error {
	return s.saveDocument(ctx, KeyDraft, doc)
}

// LoadDraft returns the stored draft. A draft that no longer parses is
// discarded and reported as ErrNotFound.
func (s *Store) LoadDraft(ctx context.Context) (*content.Document, error) {
	raw, err := s.Get(ctx, KeyDraft)
	if err != nil {
		return nil, err
	}
	doc, err := content.Parse([]byte(raw))
	if err != nil {
		if delErr := s.Delete(ctx, KeyDraft); delErr != nil {
			return nil, delErr
		}
		return nil, ErrNotFound
	}
	return doc, nil
}

// ClearDraft discards the working draft.
func (s *Store) ClearDraft(ctx context.Context) error {
	return s.Delete(ctx, KeyDraft)
}

// SavePreview stores doc as the preview snapshot shown by ?preview=1.
func (s *Store) SavePreview(ctx context.Context, doc *content.Document) error {
	return s.saveDocument(ctx, KeyPreview, doc)
}

// LoadPreview returns the preview snapshot. Unlike the draft, an unparsable
// preview is kept and reported as an error.
func (s *Store) LoadPreview(ctx context.Context) (*content.Document, error) {
	raw, err := s.Get(ctx, KeyPreview)
	if err != nil {
		return nil, err
	}
	doc, err := content.Parse([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("reading preview: %w", err)
	}
	return doc, nil
}

// DriveFileID returns the remembered Drive content file id, or "" when none.
func (s *Store) DriveFileID(ctx context.Context) (string, error) {
	return s.optional(ctx, KeyDriveFileID)
}

// SetDriveFileID remembers the Drive content file id. An empty id forgets it.
func (s *Store) SetDriveFileID(ctx context.Context, id string) error {
	if id == "" {
		return s.Delete(ctx, KeyDriveFileID)
	}
	return s.Set(ctx, KeyDriveFileID, id)
}

// APIBaseURL returns the remembered content API base URL, or "" when none.
func (s *Store) APIBaseURL(ctx context.Context) (string, error) {
	return s.optional(ctx, KeyAPIBaseURL)
}

// SetAPIBaseURL remembers the content API base URL. An empty URL forgets it.
func (s *Store) SetAPIBaseURL(ctx context.Context, base string) error {
	if base == "" {
		return s.Delete(ctx, KeyAPIBaseURL)
	}
	return s.Set(ctx, KeyAPIBaseURL, base)
}

func (s *Store) optional(ctx context.Context, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *Store) saveDocument(ctx context.Context, key string, doc *content.Document) error {
	data, err := doc.MarshalIndent()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
