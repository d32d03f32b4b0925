package admin

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/udevstartup/sitecms/internal/auth"
	"go.uber.org/zap"
)

//go:embed admin.html
var pageHTML string

var pageTemplate = template.Must(template.New("admin").Parse(pageHTML))

// maxUploadBytes bounds imported documents and uploaded images.
const maxUploadBytes = 10 << 20

// topField is one labelled control of the top form.
type topField struct {
	ID        string
	Label     string
	Value     string
	Multiline bool
}

var topLabels = map[string]string{
	"js-company-name":         "Nome da empresa",
	"js-company-summary":      "Resumo da empresa (Markdown)",
	"js-hero-eyebrow":         "Chamada",
	"js-hero-headline":        "Título principal",
	"js-hero-subheadline":     "Subtítulo",
	"js-company-email":        "E-mail da empresa",
	"js-company-instagram":    "Instagram",
	"js-company-whatsapp":     "WhatsApp",
	"js-company-whatsapp-url": "Link do WhatsApp",
	"js-support-email":        "E-mail de suporte",
	"js-support-phone":        "Telefone de suporte",
	"js-support-hours":        "Horário de suporte",
	"js-dev-name":             "Nome do desenvolvedor",
	"js-dev-role":             "Cargo do desenvolvedor",
	"js-dev-email":            "E-mail do desenvolvedor",
	"js-dev-phone":            "Telefone do desenvolvedor",
	"js-sales-line":           "Linha comercial",
}

type pageData struct {
	Snapshot
	Fields       []topField
	APIBase      string
	DriveFileID  string
	DriveEnabled bool
	Connected    bool
	LoginEnabled bool
}

func (d pageData) LocalStatus() Status { return d.Status[RegionLocal] }
func (d pageData) DriveStatus() Status { return d.Status[RegionDrive] }
func (d pageData) AuthStatus() Status  { return d.Status[RegionAuth] }

// LoginPath is the admin login page, reachable without a session.
const LoginPath = "/admin/login"

// RegisterRoutes mounts the admin page and its actions under /admin. When a
// token service is configured every action requires a session cookie.
func (a *Admin) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", a.handleLoginPage)
		r.Post("/login", a.handleLogin)
		r.Post("/logout", a.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(a.opts.Tokens, LoginPath))
			r.Get("/", a.handlePage)
			r.Post("/draft", a.action(a.SaveDraft))
			r.Post("/preview", a.action(a.ApplyPreview))
			r.Post("/reload", a.action(a.ReloadBundled))
			r.Post("/export", a.handleExport)
			r.Post("/import", a.handleImport)
			r.Post("/api/load", a.action(a.LoadAPI))
			r.Post("/api/save", a.action(a.SaveAPI))
			r.Post("/drive/load", a.action(a.LoadDrive))
			r.Post("/drive/save", a.action(a.SaveDrive))
			r.Post("/google/connect", a.handleConnect)
			r.Get("/google/callback", a.handleCallback)
			r.Post("/google/disconnect", a.handleDisconnect)
			r.Post("/banners/image", a.handleUpload("js-banner-image-file", a.UploadBannerImage))
			r.Post("/products/image", a.handleUpload("js-product-image-file", a.UploadProductImage))
			r.Post("/{collection}/submit", a.handleSubmit)
			r.Post("/{collection}/clear", a.handleClear)
			r.Post("/{collection}/edit/{index}", a.handleEdit)
			r.Post("/{collection}/remove/{index}", a.handleRemove)
		})
	})
}

var loginTemplate = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Entrar no painel</title></head>
<body>
<main>
<h1>Entrar no painel</h1>
{{if .}}<p role="alert">{{.}}</p>{{end}}
<form method="post" action="/admin/login">
<label for="js-login-token">Token de acesso</label>
<input id="js-login-token" name="token" type="password" autocomplete="off" required>
<button type="submit">Entrar</button>
</form>
<p>Gere um token com <code>sitecms token</code>.</p>
</main>
</body>
</html>`))

func (a *Admin) renderLogin(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := loginTemplate.Execute(w, msg); err != nil {
		a.logger.Error("rendering login page", zap.Error(err))
	}
}

func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if a.opts.Tokens == nil {
		a.back(w, r)
		return
	}
	a.renderLogin(w, http.StatusOK, "")
}

// handleLogin exchanges a signed token for a session cookie.
func (a *Admin) handleLogin(w http.ResponseWriter, r *http.Request) {
	if a.opts.Tokens == nil {
		a.back(w, r)
		return
	}
	token := strings.TrimSpace(r.PostFormValue("token"))
	claims, err := a.opts.Tokens.Parse(token)
	if err != nil {
		a.logger.Info("admin login rejected", zap.Error(err))
		a.renderLogin(w, http.StatusUnauthorized, "Token inválido ou expirado.")
		return
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	auth.SetSessionCookie(w, r, "/admin", token, expires)
	a.logger.Info("admin login", zap.String("subject", claims.Subject))
	a.back(w, r)
}

func (a *Admin) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, "/admin")
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (a *Admin) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := a.Snapshot()
	data := pageData{
		Snapshot:     snap,
		APIBase:      snap.Top.Get(APIBaseControl),
		DriveFileID:  snap.Top.Get(DriveFileIDControl),
		DriveEnabled: a.opts.Drive != nil,
		Connected:    a.Connected(),
		LoginEnabled: a.opts.Tokens != nil,
	}
	for _, f := range Fields {
		data.Fields = append(data.Fields, topField{
			ID:        f.ID,
			Label:     topLabels[f.ID],
			Value:     snap.Top.Get(f.ID),
			Multiline: f.ID == "js-company-summary" || f.ID == "js-hero-subheadline",
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		a.logger.Error("rendering admin page", zap.Error(err))
	}
}

// readForm parses the posted page and stores its values in the session.
func (a *Admin) readForm(r *http.Request) Form {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		a.logger.Warn("parsing admin form", zap.Error(err))
	}
	values := Form{}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}
	a.Update(values)
	return values
}

func (a *Admin) back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

// action adapts a session action to a POST handler. Failures are already
// reported through the session statuses.
func (a *Admin) action(fn func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.readForm(r)
		if err := fn(r.Context()); err != nil {
			a.logger.Debug("admin action failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		a.back(w, r)
	}
}

func (a *Admin) handleExport(w http.ResponseWriter, r *http.Request) {
	a.readForm(r)
	data, err := a.Export(r.Context())
	if err != nil {
		a.back(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFileName+`"`)
	w.Write(data)
}

func (a *Admin) handleImport(w http.ResponseWriter, r *http.Request) {
	a.readForm(r)
	data, ok := a.readFile(r, "js-import-json")
	if ok {
		a.Import(r.Context(), data)
	}
	a.back(w, r)
}

func (a *Admin) handleUpload(field string, upload func(ctx context.Context, name string, data []byte) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.readForm(r)
		if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
			a.back(w, r)
			return
		}
		name := r.MultipartForm.File[field][0].Filename
		if data, ok := a.readFile(r, field); ok {
			upload(r.Context(), name, data)
		}
		a.back(w, r)
	}
}

// readFile returns the contents of an uploaded file. A missing file is not an error.
func (a *Admin) readFile(r *http.Request, field string) ([]byte, bool) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		a.logger.Warn("reading upload", zap.String("field", field), zap.Error(err))
		return nil, false
	}
	return data, true
}

func (a *Admin) handleConnect(w http.ResponseWriter, r *http.Request) {
	a.readForm(r)
	u, err := a.BeginConnect(callbackURL(r))
	if err != nil {
		a.back(w, r)
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}

func (a *Admin) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a.CompleteConnect(r.Context(), callbackURL(r), q.Get("state"), q.Get("code"), q.Get("error"))
	a.back(w, r)
}

func (a *Admin) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	a.readForm(r)
	a.Disconnect()
	a.back(w, r)
}

func (a *Admin) handleSubmit(w http.ResponseWriter, r *http.Request) {
	values := a.readForm(r)
	if err := a.Submit(r.Context(), chi.URLParam(r, "collection"), values); errors.Is(err, ErrUnknownCollection) {
		http.NotFound(w, r)
		return
	}
	a.back(w, r)
}

func (a *Admin) handleClear(w http.ResponseWriter, r *http.Request) {
	a.readForm(r)
	if err := a.Clear(chi.URLParam(r, "collection")); err != nil {
		http.NotFound(w, r)
		return
	}
	a.back(w, r)
}

func (a *Admin) handleEdit(w http.ResponseWriter, r *http.Request) {
	a.indexAction(w, r, a.Edit)
}

func (a *Admin) handleRemove(w http.ResponseWriter, r *http.Request) {
	a.indexAction(w, r, a.Remove)
}

func (a *Admin) indexAction(w http.ResponseWriter, r *http.Request, fn func(string, int) error) {
	a.readForm(r)
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if err := fn(chi.URLParam(r, "collection"), i); errors.Is(err, ErrUnknownCollection) {
		http.NotFound(w, r)
		return
	}
	a.back(w, r)
}

// callbackURL is the OAuth redirect target on the host serving r.
func callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host + "/admin/google/callback"
}
