// Package admin binds the content document to the admin page: a field table
// for the top-level sections, edit state machines for the collections and the
// actions that move the document between draft, preview, file, API and Drive.
package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/udevstartup/sitecms/internal/auth"
	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/drive"
	"github.com/udevstartup/sitecms/internal/localstate"
	"github.com/udevstartup/sitecms/internal/revisions"
	"github.com/udevstartup/sitecms/internal/source"
	"go.uber.org/zap"
)

// ExportFileName is the name offered for exported documents.
const ExportFileName = "udev-site-content.json"

// Notifier is told when a new preview is stored.
type Notifier interface {
	NotifyReload()
}

// Options wires an Admin to its collaborators. Drive, Revisions and Notifier may be nil.
type Options struct {
	State     *localstate.Store
	Loader    *source.Loader
	Drive     *drive.Syncer
	Revisions *revisions.Store
	Notifier  Notifier
	// Tokens, when set, puts the admin behind a session login. API writes
	// forward the caller's own session token.
	Tokens     *auth.TokenService
	HTTPClient *http.Client
	Actor      string
	Logger     *zap.Logger
	Now        func() time.Time
}

// Admin runs admin actions against a single Session.
type Admin struct {
	session *Session
	opts    Options
	http    *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

// New creates an Admin editing the default document. Call Init to load the
// working document.
func New(opts Options) *Admin {
	a := &Admin{session: NewSession(content.Default()), opts: opts, http: opts.HTTPClient, logger: opts.Logger, now: opts.Now}
	if a.http == nil {
		a.http = &http.Client{Timeout: 15 * time.Second}
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.opts.Actor == "" {
		a.opts.Actor = "admin"
	}
	a.session.products.kind.Guard = a.productGuard
	return a
}

// Init loads the working document: the stored draft, else the first content
// source that resolves, else the defaults.
func (a *Admin) Init(ctx context.Context) {
	s := a.lock()
	defer s.mu.Unlock()

	if a.opts.Loader == nil {
		s.replace(content.Default())
		s.setStatus(RegionLocal, "Dados locais ausentes. Preencha e publique.", true)
		return
	}

	doc, origin := a.opts.Loader.LoadForAdmin(ctx)
	s.replace(doc)
	switch origin {
	case source.OriginDraft:
		s.setStatus(RegionLocal, "Rascunho local carregado.", false)
	case source.OriginDefaults:
		s.setStatus(RegionLocal, "Dados locais ausentes. Preencha e publique.", true)
	default:
		s.setStatus(RegionLocal, "Dados locais carregados.", false)
	}

	if a.opts.State != nil {
		if id, err := a.opts.State.DriveFileID(ctx); err == nil && id != "" {
			s.setTop(DriveFileIDControl, id)
		}
	}
	s.setTop(APIBaseControl, a.opts.Loader.APIBaseURL(ctx))
}

// Snapshot returns a copy of the session state for rendering.
func (a *Admin) Snapshot() Snapshot {
	s := a.lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Connected reports whether a Drive token is held.
func (a *Admin) Connected() bool {
	return a.opts.Drive != nil && a.opts.Drive.Tokens().Connected()
}

// Update stores submitted form values without changing the document.
func (a *Admin) Update(values Form) {
	s := a.lock()
	defer s.mu.Unlock()
	s.update(values)
}

func (a *Admin) lock() *Session {
	a.session.mu.Lock()
	return a.session
}

// syncTop copies the top form into the document and returns a snapshot of it.
func (a *Admin) syncTop(s *Session) *content.Document {
	SyncFormToDocument(s.doc, s.top, a.now())
	return s.doc.Clone()
}

func (a *Admin) record(ctx context.Context, src revisions.Source, summary string, doc *content.Document) {
	if a.opts.Revisions == nil {
		return
	}
	actor := auth.Subject(ctx)
	if actor == "" {
		actor = a.opts.Actor
	}
	if _, err := a.opts.Revisions.Record(ctx, src, actor, summary, doc); err != nil {
		a.logger.Warn("recording revision", zap.String("source", string(src)), zap.Error(err))
	}
}

// SaveDraft stores the working document as the local draft.
func (a *Admin) SaveDraft(ctx context.Context) error {
	s := a.lock()
	defer s.mu.Unlock()

	doc := a.syncTop(s)
	if err := a.opts.State.SaveDraft(ctx, doc); err != nil {
		s.setStatus(RegionLocal, "Falha ao salvar rascunho: "+err.Error(), true)
		return err
	}
	a.record(ctx, revisions.SourceAdmin, "draft saved", doc)
	s.setStatus(RegionLocal, "Rascunho salvo localmente.", false)
	return nil
}

// ApplyPreview stores the working document as the preview snapshot and
// tells open public pages to reload.
func (a *Admin) ApplyPreview(ctx context.Context) error {
	s := a.lock()
	defer s.mu.Unlock()

	doc := a.syncTop(s)
	if err := a.opts.State.SavePreview(ctx, doc); err != nil {
		s.setStatus(RegionLocal, "Falha ao salvar preview: "+err.Error(), true)
		return err
	}
	a.record(ctx, revisions.SourceAdmin, "preview applied", doc)
	if a.opts.Notifier != nil {
		a.opts.Notifier.NotifyReload()
	}
	s.setStatus(RegionLocal, "Preview local salvo. Abra páginas públicas com ?preview=1.", false)
	return nil
}

// Export returns the working document as indented JSON.
func (a *Admin) Export(ctx context.Context) ([]byte, error) {
	s := a.lock()
	defer s.mu.Unlock()

	data, err := a.syncTop(s).MarshalIndent()
	if err != nil {
		s.setStatus(RegionLocal, err.Error(), true)
		return nil, err
	}
	s.setStatus(RegionLocal, "JSON exportado.", false)
	return data, nil
}

// Import replaces the working document with data. On failure the current
// document is kept.
func (a *Admin) Import(ctx context.Context, data []byte) error {
	s := a.lock()
	defer s.mu.Unlock()

	doc, err := content.Parse(data)
	if err != nil {
		s.setStatus(RegionLocal, "Falha ao importar: "+err.Error(), true)
		return err
	}
	s.replace(doc)
	a.record(ctx, revisions.SourceImport, "json imported", doc)
	s.setStatus(RegionLocal, "JSON importado com sucesso.", false)
	return nil
}

// ReloadBundled replaces the working document with the bundled content asset.
func (a *Admin) ReloadBundled(ctx context.Context) error {
	s := a.lock()
	defer s.mu.Unlock()

	doc, err := a.opts.Loader.LoadStatic(ctx)
	if err != nil {
		a.logger.Warn("reloading bundled content", zap.Error(err))
		s.setStatus(RegionLocal, "Não foi possível carregar os dados locais.", true)
		return err
	}
	s.replace(doc)
	s.setStatus(RegionLocal, "Dados locais recarregados.", false)
	return nil
}

// ErrNoAPIBase is returned by API actions when no base URL is known.
var ErrNoAPIBase = errors.New("api base url required")

func (a *Admin) apiBase(ctx context.Context, s *Session) string {
	if base := strings.TrimSpace(s.top.Get(APIBaseControl)); base != "" {
		return strings.TrimRight(base, "/")
	}
	if a.opts.Loader != nil {
		return strings.TrimRight(a.opts.Loader.APIBaseURL(ctx), "/")
	}
	return ""
}

func (a *Admin) rememberAPIBase(ctx context.Context, s *Session, base string) {
	s.setTop(APIBaseControl, base)
	if a.opts.State == nil {
		return
	}
	if err := a.opts.State.SetAPIBaseURL(ctx, base); err != nil {
		a.logger.Warn("remembering api base url", zap.Error(err))
	}
}

// LoadAPI replaces the working document with the one served by the content API.
func (a *Admin) LoadAPI(ctx context.Context) error {
	s := a.lock()
	defer s.mu.Unlock()

	base := a.apiBase(ctx, s)
	if base == "" {
		s.setStatus(RegionLocal, "Informe a API base.", true)
		return ErrNoAPIBase
	}
	doc, err := a.opts.Loader.FetchAPI(ctx, base)
	if err != nil {
		s.setStatus(RegionLocal, "Falha ao carregar da API ("+err.Error()+").", true)
		return err
	}
	s.replace(doc)
	a.rememberAPIBase(ctx, s, base)
	s.setStatus(RegionLocal, "Dados carregados da API.", false)
	return nil
}

// SaveAPI writes the working document to the content API.
func (a *Admin) SaveAPI(ctx context.Context) error {
	s := a.lock()
	defer s.mu.Unlock()

	base := a.apiBase(ctx, s)
	if base == "" {
		s.setStatus(RegionLocal, "Informe a API base.", true)
		return ErrNoAPIBase
	}
	data, err := a.syncTop(s).MarshalIndent()
	if err != nil {
		s.setStatus(RegionLocal, err.Error(), true)
		return err
	}

	if err := a.putContent(ctx, base, data); err != nil {
		s.setStatus(RegionLocal, "Falha ao salvar na API: "+err.Error(), true)
		return err
	}
	a.rememberAPIBase(ctx, s, base)
	s.setStatus(RegionLocal, "Dados salvos na API.", false)
	return nil
}

func (a *Admin) putContent(ctx context.Context, base string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, source.ContentURL(base), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := auth.TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return errors.New(msg)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
