package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/udevstartup/sitecms/internal/auth"
	"github.com/udevstartup/sitecms/internal/content"
	"golang.org/x/oauth2"
)

// fakeDrive is an in-memory stand-in for the Drive v3 endpoints used here.
type fakeDrive struct {
	mu          sync.Mutex
	files       map[string][]byte
	names       map[string]string
	owners      map[string]string
	next        int
	creates     int
	updates     int
	permissions int
	failPerms   bool
	lastMeta    FileMetadata
	lastMedia   string
	tokens      []string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{files: map[string][]byte{}, names: map[string]string{}, owners: map[string]string{}}
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, r.Header.Get("Authorization"))
	p := r.URL.Path

	switch {
	case r.Method == http.MethodGet && p == "/drive/v3/files":
		q := r.URL.Query().Get("q")
		files := []File{}
		for id, name := range f.names {
			if strings.Contains(q, "name='"+name+"'") {
				files = append(files, File{ID: id, Name: name})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"files": files})

	case r.Method == http.MethodPost && p == "/upload/drive/v3/files":
		f.next++
		id := fmt.Sprintf("file-%d", f.next)
		f.creates++
		f.store(w, r, id)

	case r.Method == http.MethodPatch && strings.HasPrefix(p, "/upload/drive/v3/files/"):
		id := strings.TrimPrefix(p, "/upload/drive/v3/files/")
		if _, ok := f.files[id]; !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		f.updates++
		f.store(w, r, id)

	case r.Method == http.MethodPost && strings.HasSuffix(p, "/permissions"):
		f.permissions++
		if f.failPerms {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"id":"anyoneWithLink"}`))

	case r.Method == http.MethodGet && strings.HasPrefix(p, "/drive/v3/files/"):
		id := strings.TrimPrefix(p, "/drive/v3/files/")
		data, ok := f.files[id]
		if !ok {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("alt") == "media" {
			w.Write(data)
			return
		}
		json.NewEncoder(w).Encode(File{ID: id, Name: f.names[id], Owners: []Owner{{EmailAddress: f.owners[id]}}})

	default:
		http.Error(w, "unexpected "+r.Method+" "+p, http.StatusTeapot)
	}
}

func (f *fakeDrive) store(w http.ResponseWriter, r *http.Request, id string) {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mr := multipart.NewReader(r.Body, params["boundary"])

	metaPart, err := mr.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := json.NewDecoder(metaPart).Decode(&f.lastMeta); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mediaPart, err := mr.NextPart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.lastMedia = mediaPart.Header.Get("Content-Type")
	data, _ := io.ReadAll(mediaPart)

	f.files[id] = data
	f.names[id] = f.lastMeta.Name
	json.NewEncoder(w).Encode(File{ID: id, Name: f.lastMeta.Name})
}

type memIDs struct{ id string }

func (m *memIDs) DriveFileID(context.Context) (string, error) { return m.id, nil }

func (m *memIDs) SetDriveFileID(_ context.Context, id string) error {
	m.id = id
	return nil
}

func connectedHolder(t *testing.T) *TokenHolder {
	t.Helper()
	h := NewTokenHolder(auth.GoogleClient{ClientID: "id", ClientSecret: "secret"}, nil)
	if err := h.Set(&oauth2.Token{AccessToken: "tok"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return h
}

func setupSyncer(t *testing.T, opts Options) (*Syncer, *fakeDrive, *memIDs) {
	t.Helper()
	fake := newFakeDrive()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ids := &memIDs{}
	return NewSyncer(NewClient(srv.URL, srv.Client()), connectedHolder(t), ids, opts), fake, ids
}

func sampleDoc() *content.Document {
	doc := content.Default()
	doc.Company.Name = "Acme"
	doc.Products = append(doc.Products, content.Product{ID: "p1", Name: "P1", Visible: true})
	return doc
}

func TestSaveContentCreatesThenUpdates(t *testing.T) {
	s, fake, ids := setupSyncer(t, Options{})
	ctx := context.Background()

	id, err := s.SaveContent(ctx, sampleDoc(), "")
	if err != nil {
		t.Fatalf("first SaveContent: %v", err)
	}
	if fake.creates != 1 || fake.updates != 0 {
		t.Fatalf("after first save creates=%d updates=%d, want 1/0", fake.creates, fake.updates)
	}
	if ids.id != id {
		t.Errorf("remembered id = %q, want %q", ids.id, id)
	}
	if fake.lastMeta.Name != "udev-site-content.json" || fake.lastMedia != "application/json" {
		t.Errorf("unexpected upload meta %+v media %q", fake.lastMeta, fake.lastMedia)
	}
	if fake.permissions != 1 {
		t.Errorf("permissions = %d, want 1", fake.permissions)
	}

	again, err := s.SaveContent(ctx, sampleDoc(), "")
	if err != nil {
		t.Fatalf("second SaveContent: %v", err)
	}
	if again != id {
		t.Errorf("second save id = %q, want %q", again, id)
	}
	if fake.creates != 1 || fake.updates != 1 {
		t.Errorf("after second save creates=%d updates=%d, want 1/1", fake.creates, fake.updates)
	}
}

func TestSaveContentWithKnownIDNeverCreates(t *testing.T) {
	s, fake, _ := setupSyncer(t, Options{})
	ctx := context.Background()

	fake.files["known"] = []byte("{}")
	fake.names["known"] = "udev-site-content.json"

	for i := 0; i < 2; i++ {
		if _, err := s.SaveContent(ctx, sampleDoc(), "known"); err != nil {
			t.Fatalf("SaveContent #%d: %v", i+1, err)
		}
	}
	if fake.updates != 2 || fake.creates != 0 {
		t.Errorf("updates=%d creates=%d, want 2/0", fake.updates, fake.creates)
	}
}

func TestSaveContentFindsExistingFileByName(t *testing.T) {
	s, fake, ids := setupSyncer(t, Options{})

	fake.files["existing"] = []byte("{}")
	fake.names["existing"] = "udev-site-content.json"

	id, err := s.SaveContent(context.Background(), sampleDoc(), "")
	if err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	if id != "existing" || fake.creates != 0 {
		t.Errorf("id=%q creates=%d, want existing/0", id, fake.creates)
	}
	if ids.id != "existing" {
		t.Errorf("remembered id = %q", ids.id)
	}
}

func TestSaveContentSwallowsPermissionFailure(t *testing.T) {
	s, fake, _ := setupSyncer(t, Options{})
	fake.failPerms = true

	if _, err := s.SaveContent(context.Background(), sampleDoc(), ""); err != nil {
		t.Fatalf("SaveContent should ignore permission failures: %v", err)
	}
}

func TestLoadContent(t *testing.T) {
	s, fake, _ := setupSyncer(t, Options{})
	ctx := context.Background()

	if _, _, err := s.LoadContent(ctx, ""); !errors.Is(err, ErrNoContentFile) {
		t.Fatalf("LoadContent on empty drive err = %v, want ErrNoContentFile", err)
	}

	id, err := s.SaveContent(ctx, sampleDoc(), "")
	if err != nil {
		t.Fatalf("SaveContent: %v", err)
	}

	doc, gotID, err := s.LoadContent(ctx, "")
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if gotID != id {
		t.Errorf("id = %q, want %q", gotID, id)
	}
	if doc.Company.Name != "Acme" || len(doc.Products) != 1 {
		t.Errorf("unexpected document %+v", doc)
	}

	fake.files[id] = []byte("not json")
	if _, _, err := s.LoadContent(ctx, id); !errors.Is(err, content.ErrInvalidJSON) {
		t.Errorf("corrupted file err = %v, want ErrInvalidJSON", err)
	}
}

func TestUploadImage(t *testing.T) {
	s, fake, _ := setupSyncer(t, Options{})

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	url, err := s.UploadImage(context.Background(), `C:\fakepath\banner.png`, png)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if url != "https://drive.google.com/uc?export=view&id=file-1" {
		t.Errorf("url = %q", url)
	}
	if fake.lastMeta.Name != "banner.png" || fake.lastMedia != "image/png" {
		t.Errorf("meta = %+v media = %q", fake.lastMeta, fake.lastMedia)
	}
	if fake.permissions != 1 {
		t.Errorf("permissions = %d, want 1", fake.permissions)
	}

	if _, err := s.UploadImage(context.Background(), "notes.txt", []byte("plain text")); !errors.Is(err, ErrNotImage) {
		t.Errorf("text upload err = %v, want ErrNotImage", err)
	}
}

func TestVerifyOwnership(t *testing.T) {
	s, fake, _ := setupSyncer(t, Options{OwnerEmail: "owner@example.com"})
	ctx := context.Background()

	fake.files["mine"] = []byte("x")
	fake.owners["mine"] = "Owner@Example.com"
	fake.files["theirs"] = []byte("x")
	fake.owners["theirs"] = "someone@example.com"

	if err := s.VerifyOwnership(ctx, "mine"); err != nil {
		t.Errorf("VerifyOwnership(mine): %v", err)
	}
	if err := s.VerifyOwnership(ctx, "theirs"); !errors.Is(err, ErrNotOwned) {
		t.Errorf("VerifyOwnership(theirs) err = %v, want ErrNotOwned", err)
	}

	var apiErr *APIError
	if err := s.VerifyOwnership(ctx, "missing"); !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("VerifyOwnership(missing) err = %v, want 404 APIError", err)
	}
}

func TestVerifyOwnershipDisabled(t *testing.T) {
	s, fake, _ := setupSyncer(t, Options{})
	if err := s.VerifyOwnership(context.Background(), "anything"); err != nil {
		t.Errorf("VerifyOwnership without owner: %v", err)
	}
	if len(fake.tokens) != 0 {
		t.Errorf("expected no drive calls, got %d", len(fake.tokens))
	}
}

func TestEnsureToken(t *testing.T) {
	ctx := context.Background()
	calls := 0
	consent := func(context.Context, auth.GoogleClient) (*oauth2.Token, error) {
		calls++
		return &oauth2.Token{AccessToken: "fresh"}, nil
	}
	h := NewTokenHolder(auth.GoogleClient{ClientID: "id", ClientSecret: "secret"}, consent)

	if _, err := h.EnsureToken(ctx, false); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("non-interactive err = %v, want ErrUnauthenticated", err)
	}
	if calls != 0 {
		t.Fatalf("consent ran %d times in non-interactive mode", calls)
	}

	tok, err := h.EnsureToken(ctx, true)
	if err != nil || tok != "fresh" {
		t.Fatalf("interactive EnsureToken = %q, %v", tok, err)
	}
	if _, err := h.EnsureToken(ctx, true); err != nil {
		t.Fatalf("cached EnsureToken: %v", err)
	}
	if calls != 1 {
		t.Errorf("consent calls = %d, want 1", calls)
	}
	if !h.Connected() {
		t.Error("Connected() = false after consent")
	}

	h.Disconnect()
	if h.Connected() {
		t.Error("Connected() = true after Disconnect")
	}
}

func TestEnsureTokenConsentFailures(t *testing.T) {
	tests := []struct {
		name    string
		consent ConsentFunc
		want    error
	}{
		{"denied", func(context.Context, auth.GoogleClient) (*oauth2.Token, error) {
			return nil, fmt.Errorf("%w: access_denied", ErrConsentDenied)
		}, ErrConsentDenied},
		{"timeout", func(context.Context, auth.GoogleClient) (*oauth2.Token, error) {
			return nil, ErrConsentTimeout
		}, ErrConsentTimeout},
		{"empty token", func(context.Context, auth.GoogleClient) (*oauth2.Token, error) {
			return &oauth2.Token{}, nil
		}, ErrMalformedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTokenHolder(auth.GoogleClient{}, tt.consent)
			if _, err := h.EnsureToken(context.Background(), true); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if h.Connected() {
				t.Error("failed consent must not leave a token")
			}
		})
	}
}

func TestMultipartBuild(t *testing.T) {
	body, contentType, err := new(Multipart).
		Add("application/json; charset=UTF-8", []byte(`{"name":"a"}`)).
		Add("text/plain", []byte("hello")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("ParseMediaType: %v", err)
	}
	if mediaType != "multipart/related" {
		t.Errorf("media type = %q, want multipart/related", mediaType)
	}

	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	var got []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		data, _ := io.ReadAll(p)
		got = append(got, p.Header.Get("Content-Type")+"|"+string(data))
	}
	want := []string{`application/json; charset=UTF-8|{"name":"a"}`, "text/plain|hello"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("parts = %q, want %q", got, want)
	}

	_, second, _ := new(Multipart).Add("text/plain", nil).Build()
	if second == contentType {
		t.Error("expected a fresh boundary per build")
	}
}
