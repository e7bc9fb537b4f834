package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-questions/internal/admin"
	"github.com/p-n-ai/pai-questions/internal/analytics"
	"github.com/p-n-ai/pai-questions/internal/question"
)

type adminItem struct {
	Summary string          `json:"summary"`
	Record  question.Record `json:"record"`
}

type adminListResponse struct {
	Questions []adminItem `json:"questions"`
	Revision  string      `json:"revision"`
}

// GET /api/admin/questions
func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	records := h.editor.Records()
	items := make([]adminItem, len(records))
	for i, rec := range records {
		items[i] = adminItem{Summary: admin.Summary(rec), Record: rec}
	}
	respondJSON(w, http.StatusOK, adminListResponse{
		Questions: items,
		Revision:  h.editor.Snapshot().Revision,
	})
}

// POST /api/admin/questions
func (h *Handler) adminAdd(w http.ResponseWriter, r *http.Request) {
	var draft question.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}

	rec := h.editor.Add(draft)
	h.logEvent(analytics.Event{
		EventType: analytics.QuestionAdded,
		Data:      map[string]any{"question_id": rec.ID},
	})
	respondJSON(w, http.StatusCreated, rec)
}

// DELETE /api/admin/questions/{id}
func (h *Handler) adminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "question id must be an integer")
		return
	}

	if h.editor.Delete(id) {
		h.logEvent(analytics.Event{
			EventType: analytics.QuestionDeleted,
			Data:      map[string]any{"question_id": id},
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/export
func (h *Handler) adminExport(w http.ResponseWriter, r *http.Request) {
	snap := h.editor.Snapshot()
	etag := strconv.Quote(snap.Revision)

	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline; filename=questions.json")
	w.Write([]byte(snap.Text))
}

// GET /api/admin/export.xlsx
func (h *Handler) adminExportXLSX(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := admin.WriteXLSX(&buf, h.editor.Records()); err != nil {
		h.logger.Error("failed to build spreadsheet", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build spreadsheet")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=questions.xlsx")
	w.Write(buf.Bytes())
}
