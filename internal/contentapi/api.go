// Package contentapi serves the published content document over HTTP.
package contentapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/udevstartup/sitecms/internal/auth"
	"github.com/udevstartup/sitecms/internal/content"
	"github.com/udevstartup/sitecms/internal/revisions"
	"github.com/udevstartup/sitecms/internal/schema"
	"go.uber.org/zap"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "sitecms-api"

const maxBodyBytes = 5 << 20

// Options configures an API.
type Options struct {
	// Revisions, when set, records every accepted write.
	Revisions *revisions.Store
	// Tokens, when set, guards writes with bearer tokens.
	Tokens *auth.TokenService
	Logger *zap.Logger
}

// API exposes the content store.
type API struct {
	store     *Store
	revisions *revisions.Store
	tokens    *auth.TokenService
	logger    *zap.Logger
}

// New creates an API over store.
func New(store *Store, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{store: store, revisions: opts.Revisions, tokens: opts.Tokens, logger: logger}
}

// RegisterRoutes mounts /health and /api/content on r.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/health", a.handleHealth)
	r.Route("/api/content", func(r chi.Router) {
		r.Get("/", a.handleGet)
		r.With(auth.Middleware(a.tokens)).Put("/", a.handlePut)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": ServiceName})
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	raw, _, err := a.store.Raw(r.Context())
	if err != nil && !errors.Is(err, ErrNotFound) {
		a.logger.Error("reading content", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}
	if err != nil || !json.Valid(raw) {
		writeJSON(w, http.StatusOK, content.Default())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (a *API) handlePut(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload_too_large"})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	if err := schema.Validate(payload); err != nil {
		if issues := schema.Issues(err); issues != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_payload", "issues": issues})
			return
		}
		a.logger.Error("validating payload", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}

	updatedAt, err := a.store.Put(r.Context(), compact.Bytes())
	if err != nil {
		a.logger.Error("storing content", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	actor := auth.Subject(r.Context())
	if a.revisions != nil {
		if _, err := a.revisions.Record(r.Context(), revisions.SourceAPI, actor, "content replaced via API", content.Normalize(payload)); err != nil {
			a.logger.Warn("recording revision", zap.Error(err))
		}
	}
	a.logger.Info("content updated", zap.String("actor", actor), zap.String("updated_at", updatedAt))

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updatedAt": updatedAt})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
