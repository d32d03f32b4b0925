// Package source resolves the content document from the first available
// origin: stored preview, content API, public Drive file, bundled asset.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/udevstartup/sitecms/internal/content"
	"go.uber.org/zap"
)

// ErrNoContent is returned by Load when every origin failed.
var ErrNoContent = errors.New("no content source available")

// Origin names where a document came from.
type Origin string

const (
	OriginPreview  Origin = "preview"
	OriginDraft    Origin = "draft"
	OriginAPI      Origin = "api"
	OriginDrive    Origin = "drive"
	OriginStatic   Origin = "static"
	OriginDefaults Origin = "defaults"
)

// State is the local state the loader reads. *localstate.Store implements it.
type State interface {
	LoadPreview(ctx context.Context) (*content.Document, error)
	LoadDraft(ctx context.Context) (*content.Document, error)
	APIBaseURL(ctx context.Context) (string, error)
}

// Options configures a Loader.
type Options struct {
	// APIBaseURL is used when no base URL is remembered in local state.
	APIBaseURL string
	// DriveFileID is a publicly shared Drive content file.
	DriveFileID string
	// StaticContent is the bundled content asset, an http(s) URL or a file path.
	StaticContent string
	// DriveURL builds the download URL of a Drive file. Defaults to content.DriveDownloadURL.
	DriveURL   func(fileID string) string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Loader resolves the content document.
type Loader struct {
	state  State
	opts   Options
	http   *http.Client
	logger *zap.Logger
}

// NewLoader creates a Loader. state may be nil.
func NewLoader(state State, opts Options) *Loader {
	l := &Loader{state: state, opts: opts, http: opts.HTTPClient, logger: opts.Logger}
	if l.http == nil {
		l.http = &http.Client{Timeout: 15 * time.Second}
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.opts.DriveURL == nil {
		l.opts.DriveURL = content.DriveDownloadURL
	}
	return l
}

// LoadOptions controls a single Load.
type LoadOptions struct {
	// Preview serves the stored preview document when one parses.
	Preview bool
}

type candidate struct {
	origin Origin
	name   string
	load   func(ctx context.Context) (*content.Document, error)
}

// Load returns the first document that resolves, in order: stored preview
// (when requested), content API, public Drive file, bundled asset.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) (*content.Document, Origin, error) {
	if opts.Preview && l.state != nil {
		doc, err := l.state.LoadPreview(ctx)
		if err == nil {
			return doc, OriginPreview, nil
		}
		l.logger.Warn("preview content unavailable", zap.Error(err))
	}

	for _, c := range l.candidates(ctx) {
		doc, err := c.load(ctx)
		if err != nil {
			l.logger.Warn("content source failed", zap.String("source", string(c.origin)), zap.String("location", c.name), zap.Error(err))
			continue
		}
		return doc, c.origin, nil
	}
	return nil, "", ErrNoContent
}

// LoadForAdmin is Load for the admin panel: the stored draft wins, and when
// nothing resolves the default document is returned.
func (l *Loader) LoadForAdmin(ctx context.Context) (*content.Document, Origin) {
	if l.state != nil {
		doc, err := l.state.LoadDraft(ctx)
		if err == nil {
			return doc, OriginDraft
		}
		l.logger.Debug("no usable draft", zap.Error(err))
	}

	doc, origin, err := l.Load(ctx, LoadOptions{})
	if err != nil {
		return content.Default(), OriginDefaults
	}
	return doc, origin
}

// LoadStatic reads only the bundled content asset.
func (l *Loader) LoadStatic(ctx context.Context) (*content.Document, error) {
	static := l.opts.StaticContent
	if static == "" {
		return nil, ErrNoContent
	}
	if isURL(static) {
		return l.fetch(ctx, static)
	}
	return readFile(static)
}

// FetchAPI reads the document from the content API at base.
func (l *Loader) FetchAPI(ctx context.Context, base string) (*content.Document, error) {
	if base == "" {
		return nil, ErrNoContent
	}
	return l.fetch(ctx, ContentURL(base))
}

// APIBaseURL returns the remembered API base URL, or the configured one.
func (l *Loader) APIBaseURL(ctx context.Context) string {
	if l.state != nil {
		base, err := l.state.APIBaseURL(ctx)
		if err != nil {
			l.logger.Warn("reading remembered api base url", zap.Error(err))
		} else if base != "" {
			return base
		}
	}
	return l.opts.APIBaseURL
}

func (l *Loader) candidates(ctx context.Context) []candidate {
	var out []candidate

	if base := l.APIBaseURL(ctx); base != "" {
		u := ContentURL(base)
		out = append(out, candidate{OriginAPI, u, func(ctx context.Context) (*content.Document, error) {
			return l.fetch(ctx, u)
		}})
	}

	if id := l.opts.DriveFileID; id != "" {
		u := l.opts.DriveURL(id)
		out = append(out, candidate{OriginDrive, u, func(ctx context.Context) (*content.Document, error) {
			return l.fetch(ctx, u)
		}})
	}

	if static := l.opts.StaticContent; static != "" {
		out = append(out, candidate{OriginStatic, static, l.LoadStatic})
	}

	return out
}

// ContentURL is the content endpoint of an API base URL.
func ContentURL(base string) string {
	return strings.TrimRight(base, "/") + "/api/content"
}

func (l *Loader) fetch(ctx context.Context, url string) (*content.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return decodeObject(data)
}

func readFile(path string) (*content.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeObject(data)
}

// decodeObject accepts only JSON objects; any other JSON value does not count
// as content.
func decodeObject(data []byte) (*content.Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", content.ErrInvalidJSON, err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("content is not a json object")
	}
	return content.Normalize(raw), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
