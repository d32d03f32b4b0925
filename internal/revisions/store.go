package revisions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/db"
)

// ErrNotFound is returned by GetByID for unknown revision ids.
var ErrNotFound = errors.New("revision not found")

const timestampLayout = "2006-01-02 15:04:05.000"

// Store provides access to the revision trail.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record appends a revision snapshotting doc. The published flag is taken from
// the document's meta. Returns the new revision id.
func (s *Store) Record(ctx context.Context, source Source, actor, summary string, doc *content.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshalling revision content: %w", err)
	}

	rev := Revision{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Source:    source,
		Actor:     actor,
		Summary:   summary,
		Published: doc != nil && doc.Meta.Published,
		Content:   data,
	}
	if err := s.insert(ctx, rev); err != nil {
		return "", err
	}
	return rev.ID, nil
}

func (s *Store) insert(ctx context.Context, rev Revision) error {
	published := 0
	if rev.Published {
		published = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revisions (id, timestamp, source, actor, summary, published, content_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rev.ID,
		rev.Timestamp.UTC().Format(timestampLayout),
		string(rev.Source),
		rev.Actor,
		rev.Summary,
		published,
		string(rev.Content),
	)
	if err != nil {
		return fmt.Errorf("inserting revision: %w", err)
	}
	return nil
}

// GetByID retrieves a single revision including its content snapshot.
func (s *Store) GetByID(ctx context.Context, id string) (*Revision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, source, actor, summary, published, content_json
		FROM revisions WHERE id = ?`, id)

	var (
		rev         Revision
		ts, source  string
		published   int
		contentJSON string
	)
	err := row.Scan(&rev.ID, &ts, &source, &rev.Actor, &rev.Summary, &published, &contentJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading revision: %w", err)
	}

	rev.Source = Source(source)
	rev.Published = published != 0
	rev.Timestamp = parseTimestamp(ts)
	rev.Content = json.RawMessage(contentJSON)
	return &rev, nil
}

// QueryFilter controls which revisions are returned by Query.
type QueryFilter struct {
	Source Source
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// Query returns revisions matching the filter, newest first. Content snapshots
// are not loaded.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Revision, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, string(filter.Source))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(timestampLayout))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(timestampLayout))
	}

	query := "SELECT id, timestamp, source, actor, summary, published FROM revisions"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	revs := []Revision{}
	for rows.Next() {
		var (
			rev        Revision
			ts, source string
			published  int
		)
		if err := rows.Scan(&rev.ID, &ts, &source, &rev.Actor, &rev.Summary, &published); err != nil {
			return nil, err
		}
		rev.Source = Source(source)
		rev.Published = published != 0
		rev.Timestamp = parseTimestamp(ts)
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// DeleteBefore removes revisions older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM revisions WHERE timestamp < ?",
		before.UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old revisions: %w", err)
	}
	return res.RowsAffected()
}

func parseTimestamp(ts string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
