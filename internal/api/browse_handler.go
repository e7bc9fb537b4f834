package api

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/p-n-ai/pai-questions/internal/analytics"
	"github.com/p-n-ai/pai-questions/internal/browse"
	"github.com/p-n-ai/pai-questions/internal/render"
)

type sessionResponse struct {
	ID   string      `json:"id"`
	View browse.View `json:"view"`
}

type setFilterRequest struct {
	Value string `json:"value"`
}

func filterFromQuery(q url.Values) browse.FilterState {
	return browse.FilterState{
		SearchTerm: q.Get("search"),
		Course:     q.Get("course"),
		Topic:      q.Get("topic"),
		Subtopic:   q.Get("subtopic"),
		Difficulty: q.Get("difficulty"),
	}
}

// GET /
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var v browse.View
	if q.Get("random") != "" {
		v = browse.NewSession(h.index, h.rng).Random()
	} else {
		v = h.index.Query(filterFromQuery(q))
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, v); err != nil {
		h.logger.Error("failed to render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// GET /api/questions
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.index.Query(filterFromQuery(r.URL.Query())))
}

// GET /api/options
func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.index.Options(r.URL.Query().Get("topic")))
}

// POST /api/sessions
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.Create(r.Context())
	if h.handleError(w, err) {
		return
	}

	h.logEvent(analytics.Event{SessionID: id, EventType: analytics.SessionStarted})
	respondJSON(w, http.StatusCreated, sessionResponse{
		ID:   id,
		View: browse.NewSession(h.index, h.rng).View(),
	})
}

// GET /api/sessions/{id}
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *browse.Session) (browse.View, error) {
		return s.View(), nil
	})
}

// PUT /api/sessions/{id}/filters/{field}
func (h *Handler) setFilter(w http.ResponseWriter, r *http.Request) {
	var req setFilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	field := browse.Field(r.PathValue("field"))

	v, ok := h.withSession(w, r, func(s *browse.Session) (browse.View, error) {
		return s.SetField(field, req.Value)
	})
	if !ok {
		return
	}
	h.logEvent(analytics.Event{
		SessionID: r.PathValue("id"),
		EventType: analytics.FilterChanged,
		Data:      map[string]any{"field": string(field), "matches": len(v.Records)},
	})
}

// POST /api/sessions/{id}/reset
func (h *Handler) resetSession(w http.ResponseWriter, r *http.Request) {
	_, ok := h.withSession(w, r, func(s *browse.Session) (browse.View, error) {
		return s.Reset(), nil
	})
	if !ok {
		return
	}
	h.logEvent(analytics.Event{SessionID: r.PathValue("id"), EventType: analytics.FiltersReset})
}

// POST /api/sessions/{id}/random
func (h *Handler) randomQuestion(w http.ResponseWriter, r *http.Request) {
	var picked int
	_, ok := h.withSession(w, r, func(s *browse.Session) (browse.View, error) {
		v := s.Random()
		picked = s.State().Pinned
		return v, nil
	})
	if !ok {
		return
	}
	h.logEvent(analytics.Event{
		SessionID: r.PathValue("id"),
		EventType: analytics.RandomPick,
		Data:      map[string]any{"question_id": picked},
	})
}

// withSession loads the session named in the path, applies fn, saves the
// resulting state and writes the view. It reports whether the new state was
// saved.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*browse.Session) (browse.View, error)) (browse.View, bool) {
	id := r.PathValue("id")

	s, err := h.loadSession(r.Context(), id)
	if h.handleError(w, err) {
		return browse.View{}, false
	}

	v, err := fn(s)
	if h.handleError(w, err) {
		return browse.View{}, false
	}

	if err := h.sessions.Save(r.Context(), id, s.State()); h.handleError(w, err) {
		return browse.View{}, false
	}

	respondJSON(w, http.StatusOK, sessionResponse{ID: id, View: v})
	return v, true
}

func (h *Handler) loadSession(ctx context.Context, id string) (*browse.Session, error) {
	st, err := h.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s := browse.NewSession(h.index, h.rng)
	s.Restore(st)
	return s, nil
}
