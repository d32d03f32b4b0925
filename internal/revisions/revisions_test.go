package revisions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func publishedDoc(name string) *content.Document {
	doc := content.Default()
	doc.Company.Name = name
	doc.Hero.Headline = "Headline"
	doc.RecomputeMeta(time.Now())
	return doc
}

func TestRecordAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, SourceAPI, "admin", "api put", publishedDoc("Acme"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated ID, got empty string")
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Source != SourceAPI {
		t.Errorf("Source = %q, want %q", got.Source, SourceAPI)
	}
	if got.Actor != "admin" {
		t.Errorf("Actor = %q, want %q", got.Actor, "admin")
	}
	if !got.Published {
		t.Error("Published = false, want true")
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp not parsed")
	}

	doc, err := content.Parse(got.Content)
	if err != nil {
		t.Fatalf("Parse snapshot: %v", err)
	}
	if doc.Company.Name != "Acme" {
		t.Errorf("snapshot company = %q, want %q", doc.Company.Name, "Acme")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestQueryFilterBySource(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, src := range []Source{SourceAdmin, SourceDrive, SourceAdmin} {
		if _, err := store.Record(ctx, src, "", "", content.Default()); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	revs, err := store.Query(ctx, QueryFilter{Source: SourceAdmin})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(revs) != 2 {
		t.Errorf("expected 2 admin revisions, got %d", len(revs))
	}
	for _, rev := range revs {
		if len(rev.Content) != 0 {
			t.Error("Query should not load content snapshots")
		}
	}
}

func TestQueryNewestFirstWithLimitOffset(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := store.Record(ctx, SourceCLI, "", "", content.Default())
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		ids = append(ids, id)
	}

	revs, err := store.Query(ctx, QueryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions with limit, got %d", len(revs))
	}
	if revs[0].ID != ids[4] {
		t.Errorf("first revision = %q, want newest %q", revs[0].ID, ids[4])
	}

	revs, err = store.Query(ctx, QueryFilter{Offset: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(revs) != 2 {
		t.Errorf("expected 2 revisions with offset, got %d", len(revs))
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Record(ctx, SourceAdmin, "", "", content.Default()); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	deleted, err := store.DeleteBefore(ctx, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}
}

// --- HTTP handler tests ---

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)

	id, err := store.Record(context.Background(), SourceImport, "cli", "imported", publishedDoc("Acme"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/revisions/"+id, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got Revision
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Summary != "imported" {
		t.Errorf("Summary = %q, want %q", got.Summary, "imported")
	}
	if len(got.Content) == 0 {
		t.Error("expected content snapshot in response")
	}
}

func TestHTTPGetByIDNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/revisions/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHTTPQueryWithFilter(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	for _, src := range []Source{SourceAPI, SourceAdmin, SourceAPI} {
		if _, err := store.Record(ctx, src, "", "", content.Default()); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/revisions?source=api&limit=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var revs []Revision
	if err := json.NewDecoder(rec.Body).Decode(&revs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(revs) != 2 {
		t.Errorf("expected 2 api revisions, got %d", len(revs))
	}
}
