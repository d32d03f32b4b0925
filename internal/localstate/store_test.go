package localstate

import (
	"context"
	"errors"
	"testing"

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

func TestGetSetDelete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v2" {
		t.Errorf("Get = %q, want %q", got, "v2")
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc := content.Default()
	doc.Company.Name = "Acme"
	doc.Products = append(doc.Products, content.Product{ID: "p1", Name: "P1", Visible: true})

	if err := store.SaveDraft(ctx, doc); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	got, err := store.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("LoadDraft: %v", err)
	}
	if got.Company.Name != "Acme" || len(got.Products) != 1 || got.Products[0].ID != "p1" {
		t.Errorf("LoadDraft = %+v", got)
	}

	if err := store.ClearDraft(ctx); err != nil {
		t.Fatalf("ClearDraft: %v", err)
	}
	if _, err := store.LoadDraft(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadDraft after clear err = %v, want ErrNotFound", err)
	}
}

func TestCorruptedDraftIsDiscarded(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, KeyDraft, "{broken"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := store.LoadDraft(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadDraft err = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, KeyDraft); !errors.Is(err, ErrNotFound) {
		t.Errorf("corrupted draft should have been deleted, Get err = %v", err)
	}
}

func TestCorruptedPreviewIsKept(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, KeyPreview, "{broken"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := store.LoadPreview(ctx); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadPreview err = %v, want parse error", err)
	}
	if _, err := store.Get(ctx, KeyPreview); err != nil {
		t.Errorf("preview should be kept, Get err = %v", err)
	}
}

func TestRememberedValues(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.DriveFileID(ctx)
	if err != nil || id != "" {
		t.Fatalf("DriveFileID = %q, %v; want empty, nil", id, err)
	}

	if err := store.SetDriveFileID(ctx, "file-1"); err != nil {
		t.Fatalf("SetDriveFileID: %v", err)
	}
	if err := store.SetAPIBaseURL(ctx, "http://localhost:8787"); err != nil {
		t.Fatalf("SetAPIBaseURL: %v", err)
	}

	if id, _ := store.DriveFileID(ctx); id != "file-1" {
		t.Errorf("DriveFileID = %q, want %q", id, "file-1")
	}
	if base, _ := store.APIBaseURL(ctx); base != "http://localhost:8787" {
		t.Errorf("APIBaseURL = %q", base)
	}

	if err := store.SetAPIBaseURL(ctx, ""); err != nil {
		t.Fatalf("SetAPIBaseURL(empty): %v", err)
	}
	if base, _ := store.APIBaseURL(ctx); base != "" {
		t.Errorf("APIBaseURL after clear = %q, want empty", base)
	}
}
