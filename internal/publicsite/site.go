package publicsite

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/source"
	"go.uber.org/zap"
)

// DocumentLoader resolves the content document for a request.
type DocumentLoader interface {
	Load(ctx context.Context, opts source.LoadOptions) (*content.Document, source.Origin, error)
}

// Site serves the public pages from a templates directory, filling every
// HTML page with the current content document.
type Site struct {
	dir    string
	loader DocumentLoader
	links  map[string]string
	logger *zap.Logger
	files  http.Handler
}

// NewSite creates a Site over the templates in dir.
func NewSite(dir string, loader DocumentLoader, links map[string]string, logger *zap.Logger) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Site{
		dir:    dir,
		loader: loader,
		links:  links,
		logger: logger,
		files:  http.FileServer(http.Dir(dir)),
	}
}

// RegisterRoutes mounts the public pages at the root of r. Routes registered
// elsewhere take precedence.
func (s *Site) RegisterRoutes(r chi.Router) {
	r.Get("/", s.ServeHTTP)
	r.Get("/*", s.ServeHTTP)
}

// ServeHTTP renders HTML pages and serves every other file as is.
// ?preview=1 renders from the stored preview document.
func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	if strings.HasSuffix(name, "/") {
		name += "index.html"
	}
	if !strings.HasSuffix(name, ".html") {
		if info, err := os.Stat(filepath.Join(s.dir, filepath.FromSlash(name))); err == nil && info.IsDir() {
			name = path.Join(name, "index.html")
		} else {
			s.files.ServeHTTP(w, r)
			return
		}
	}

	page, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("reading page template", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	preview := r.URL.Query().Get("preview") == "1"
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	doc, origin, err := s.loader.Load(r.Context(), source.LoadOptions{Preview: preview})
	if err != nil {
		// Without any content the page is served unfilled.
		s.logger.Warn("serving page without content", zap.String("page", name), zap.Error(err))
		w.Write(page)
		return
	}

	out, err := Render(page, doc, Options{Links: s.links, LiveReload: preview})
	if err != nil {
		s.logger.Error("rendering page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.logger.Debug("rendered page", zap.String("page", name), zap.String("origin", string(origin)))
	w.Write(out)
}
