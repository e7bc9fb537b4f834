// Package api exposes the question browser and the admin editor over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-questions/internal/admin"
	"github.com/p-n-ai/pai-questions/internal/analytics"
	"github.com/p-n-ai/pai-questions/internal/browse"
	"github.com/p-n-ai/pai-questions/internal/live"
	"github.com/p-n-ai/pai-questions/internal/session"
)

// Config holds the dependencies of the HTTP handlers.
type Config struct {
	Index    *browse.Index
	Sessions session.Store
	Editor   *admin.Editor // nil disables the admin routes
	Live     *live.Hub
	Events   analytics.EventLogger
	Rand     browse.Rand
	Logger   *slog.Logger
}

// Handler holds everything the HTTP handlers need.
type Handler struct {
	index    *browse.Index
	sessions session.Store
	editor   *admin.Editor
	live     *live.Hub
	events   analytics.EventLogger
	rng      browse.Rand
	logger   *slog.Logger
}

// NewHandler creates a Handler, filling in defaults for optional dependencies.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		index:    cfg.Index,
		sessions: cfg.Sessions,
		editor:   cfg.Editor,
		live:     cfg.Live,
		events:   cfg.Events,
		rng:      cfg.Rand,
		logger:   cfg.Logger,
	}
	if h.index == nil {
		h.index = browse.NewIndex(nil, nil)
	}
	if h.sessions == nil {
		h.sessions = session.NewMemoryStore()
	}
	if h.events == nil {
		h.events = analytics.NopEventLogger{}
	}
	if h.rng == nil {
		h.rng = browse.SystemRand{}
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.editor != nil && h.live == nil {
		h.live = live.NewHub(h.editor.Snapshot())
		h.editor.Subscribe(h.live.Publish)
	}
	return h
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.page)
	mux.HandleFunc("GET /api/questions", h.listQuestions)
	mux.HandleFunc("GET /api/options", h.options)

	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("PUT /api/sessions/{id}/filters/{field}", h.setFilter)
	mux.HandleFunc("POST /api/sessions/{id}/reset", h.resetSession)
	mux.HandleFunc("POST /api/sessions/{id}/random", h.randomQuestion)

	if h.editor == nil {
		return
	}
	mux.HandleFunc("GET /api/admin/questions", h.adminList)
	mux.HandleFunc("POST /api/admin/questions", h.adminAdd)
	mux.HandleFunc("DELETE /api/admin/questions/{id}", h.adminDelete)
	mux.HandleFunc("GET /api/admin/export", h.adminExport)
	mux.HandleFunc("GET /api/admin/export.xlsx", h.adminExportXLSX)
	mux.Handle("GET /api/admin/live", h.live)
}

// logEvent records an analytics event; failures never fail the request.
func (h *Handler) logEvent(e analytics.Event) {
	if err := h.events.LogEvent(e); err != nil {
		h.logger.Warn("failed to log event", "type", e.EventType, "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
// Returns false if the caller should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// handleError maps known errors to HTTP statuses. Returns true if an error
// was written.
func (h *Handler) handleError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, browse.ErrUnknownField):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}
