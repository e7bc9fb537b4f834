package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-questions/internal/admin"
	"github.com/p-n-ai/pai-questions/internal/analytics"
	"github.com/p-n-ai/pai-questions/internal/api"
	"github.com/p-n-ai/pai-questions/internal/browse"
	"github.com/p-n-ai/pai-questions/internal/question"
	"github.com/p-n-ai/pai-questions/internal/render"
	"github.com/p-n-ai/pai-questions/internal/session"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func calcRecords() []question.Record {
	return []question.Record{
		{ID: 1, Course: "Calc", Topic: "Limits", Subtopic: "Epsilon-Delta", Difficulty: "Hard", QuestionText: "Find the limit...", QuestionImages: []string{}, AnswerImages: []string{}, Tags: []string{"proof"}},
		{ID: 2, Course: "Calc", Topic: "Derivatives", Subtopic: "Chain Rule", Difficulty: "Easy", QuestionText: "Differentiate...", QuestionImages: []string{}, AnswerImages: []string{}},
	}
}

type testServer struct {
	mux    *http.ServeMux
	events *analytics.MemoryEventLogger
	editor *admin.Editor
}

func newTestServer(t *testing.T, loadErr error, withAdmin bool) *testServer {
	t.Helper()
	ts := &testServer{
		mux:    http.NewServeMux(),
		events: analytics.NewMemoryEventLogger(),
	}
	cfg := api.Config{
		Index:  browse.NewIndex(calcRecords(), loadErr),
		Events: ts.events,
		Rand:   fixedRand(1),
	}
	if withAdmin {
		ts.editor = admin.NewEditor(calcRecords())
		cfg.Editor = ts.editor
	}
	api.NewHandler(cfg).Register(ts.mux)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

type sessionResponse struct {
	ID   string      `json:"id"`
	View browse.View `json:"view"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func recordIDs(records []question.Record) []int {
	out := []int{}
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestListQuestions(t *testing.T) {
	ts := newTestServer(t, nil, false)

	tests := []struct {
		name      string
		query     string
		wantIDs   []int
		wantEmpty browse.EmptyReason
	}{
		{"all", "", []int{1, 2}, browse.EmptyNone},
		{"topic", "?topic=Limits", []int{1}, browse.EmptyNone},
		{"token search", "?search=q2", []int{2}, browse.EmptyNone},
		{"no matches", "?difficulty=Medium", []int{}, browse.EmptyNoMatches},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/questions"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			v := decode[browse.View](t, rec)
			if got := recordIDs(v.Records); !equalInts(got, tt.wantIDs) {
				t.Errorf("records = %v, want %v", got, tt.wantIDs)
			}
			if v.Empty != tt.wantEmpty {
				t.Errorf("empty = %q, want %q", v.Empty, tt.wantEmpty)
			}
		})
	}
}

func TestListQuestions_LoadFailed(t *testing.T) {
	ts := newTestServer(t, errors.New("unreachable"), false)

	v := decode[browse.View](t, ts.do(t, http.MethodGet, "/api/questions", nil))
	if v.Empty != browse.EmptyLoadFailed {
		t.Errorf("empty = %q, want load_failed", v.Empty)
	}
}

func TestOptions(t *testing.T) {
	ts := newTestServer(t, nil, false)

	opts := decode[browse.Options](t, ts.do(t, http.MethodGet, "/api/options?topic=Limits", nil))
	if strings.Join(opts.Topics, ",") != "Derivatives,Limits" {
		t.Errorf("topics = %q", opts.Topics)
	}
	if strings.Join(opts.Subtopics, ",") != "Epsilon-Delta" {
		t.Errorf("subtopics = %q", opts.Subtopics)
	}
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t, nil, false)

	rec := ts.do(t, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", rec.Code)
	}
	created := decode[sessionResponse](t, rec)
	base := "/api/sessions/" + created.ID

	rec = ts.do(t, http.MethodPut, base+"/filters/topic", map[string]string{"value": "Limits"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set topic status = %d, body %s", rec.Code, rec.Body.String())
	}
	v := decode[sessionResponse](t, rec).View
	if got := recordIDs(v.Records); !equalInts(got, []int{1}) {
		t.Errorf("records = %v, want [1]", got)
	}
	if strings.Join(v.Options.Subtopics, ",") != "Epsilon-Delta" {
		t.Errorf("subtopics = %q", v.Options.Subtopics)
	}

	// State survives between requests.
	v = decode[sessionResponse](t, ts.do(t, http.MethodGet, base, nil)).View
	if v.State.Topic != "Limits" {
		t.Errorf("state.topic = %q, want Limits", v.State.Topic)
	}

	v = decode[sessionResponse](t, ts.do(t, http.MethodPost, base+"/random", nil)).View
	if got := recordIDs(v.Records); !equalInts(got, []int{2}) {
		t.Errorf("random records = %v, want [2]", got)
	}
	if !v.State.IsZero() {
		t.Errorf("random should reset filters, state = %+v", v.State)
	}

	v = decode[sessionResponse](t, ts.do(t, http.MethodGet, base, nil)).View
	if got := recordIDs(v.Records); !equalInts(got, []int{2}) {
		t.Errorf("pinned record not kept: %v", got)
	}

	v = decode[sessionResponse](t, ts.do(t, http.MethodPost, base+"/reset", nil)).View
	if got := recordIDs(v.Records); !equalInts(got, []int{1, 2}) {
		t.Errorf("reset records = %v, want [1 2]", got)
	}

	types := []string{}
	for _, e := range ts.events.Events() {
		types = append(types, e.EventType)
	}
	want := []string{analytics.SessionStarted, analytics.FilterChanged, analytics.RandomPick, analytics.FiltersReset}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", types, want)
	}
}

func TestSession_Errors(t *testing.T) {
	ts := newTestServer(t, nil, false)
	id := decode[sessionResponse](t, ts.do(t, http.MethodPost, "/api/sessions", nil)).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/nope", nil, http.StatusNotFound},
		{"unknown field", http.MethodPut, "/api/sessions/" + id + "/filters/colour", map[string]string{"value": "red"}, http.StatusBadRequest},
		{"bad body", http.MethodPut, "/api/sessions/" + id + "/filters/topic", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := ts.do(t, tt.method, tt.path, tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// saveFailingStore accepts sessions but refuses to persist any change.
type saveFailingStore struct {
	*session.MemoryStore
}

func (saveFailingStore) Save(context.Context, string, browse.State) error {
	return errors.New("store unavailable")
}

func TestSession_EventsOnlyAfterSave(t *testing.T) {
	events := analytics.NewMemoryEventLogger()
	mux := http.NewServeMux()
	api.NewHandler(api.Config{
		Index:    browse.NewIndex(calcRecords(), nil),
		Sessions: saveFailingStore{session.NewMemoryStore()},
		Events:   events,
		Rand:     fixedRand(0),
	}).Register(mux)
	ts := &testServer{mux: mux, events: events}

	id := decode[sessionResponse](t, ts.do(t, http.MethodPost, "/api/sessions", nil)).ID
	base := "/api/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"set filter", http.MethodPut, base + "/filters/topic", map[string]string{"value": "Limits"}},
		{"reset", http.MethodPost, base + "/reset", nil},
		{"random", http.MethodPost, base + "/random", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := ts.do(t, tt.method, tt.path, tt.body); rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
		})
	}

	got := events.Events()
	if len(got) != 1 || got[0].EventType != analytics.SessionStarted {
		t.Errorf("events = %+v, want only session_started", got)
	}
}

func TestPage(t *testing.T) {
	ts := newTestServer(t, nil, false)

	rec := ts.do(t, http.MethodGet, "/?difficulty=Medium", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), render.MsgNoMatches) {
		t.Error("page should show the no-matches message")
	}

	rec = ts.do(t, http.MethodGet, "/?random=1", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "Q2:") || strings.Contains(body, "Q1:") {
		t.Error("random page should show exactly the picked question")
	}
}

func TestPage_LoadFailed(t *testing.T) {
	ts := newTestServer(t, errors.New("unreachable"), false)
	rec := ts.do(t, http.MethodGet, "/", nil)
	if !strings.Contains(rec.Body.String(), render.MsgLoadFailed) {
		t.Error("page should show the load-failed message")
	}
}

func TestAdminRoutes_DisabledByDefault(t *testing.T) {
	ts := newTestServer(t, nil, false)
	if rec := ts.do(t, http.MethodGet, "/api/admin/export", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when admin is disabled", rec.Code)
	}
}

func TestAdmin_AddDeleteExport(t *testing.T) {
	ts := newTestServer(t, nil, true)

	before := ts.do(t, http.MethodGet, "/api/admin/export", nil)
	etag := before.Header().Get("ETag")
	if etag == "" {
		t.Fatal("export should carry an ETag")
	}

	rec := ts.do(t, http.MethodPost, "/api/admin/questions", question.Draft{
		Course:         "Calc",
		Topic:          "Series",
		QuestionText:   "Does it converge?",
		QuestionImages: "a.png, b.png",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", rec.Code, rec.Body.String())
	}
	added := decode[question.Record](t, rec)
	if added.ID != 3 {
		t.Errorf("added id = %d, want 3", added.ID)
	}

	after := ts.do(t, http.MethodGet, "/api/admin/export", nil)
	if after.Header().Get("ETag") == etag {
		t.Error("ETag should change after a mutation")
	}
	var exported []question.Record
	if err := json.Unmarshal(after.Body.Bytes(), &exported); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(exported) != 3 || exported[2].QuestionImages[1] != "b.png" {
		t.Errorf("exported = %+v", exported)
	}

	if rec := ts.do(t, http.MethodDelete, "/api/admin/questions/"+strconv.Itoa(added.ID), nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	if rec := ts.do(t, http.MethodDelete, "/api/admin/questions/999", nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete of absent id status = %d, want 204", rec.Code)
	}
	if rec := ts.do(t, http.MethodDelete, "/api/admin/questions/abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("delete of bad id status = %d, want 400", rec.Code)
	}

	final := ts.do(t, http.MethodGet, "/api/admin/export", nil)
	if final.Body.String() != before.Body.String() {
		t.Error("add then delete should restore the original export")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/export", nil)
	req.Header.Set("If-None-Match", final.Header().Get("ETag"))
	notModified := httptest.NewRecorder()
	ts.mux.ServeHTTP(notModified, req)
	if notModified.Code != http.StatusNotModified {
		t.Errorf("conditional export status = %d, want 304", notModified.Code)
	}

	types := []string{}
	for _, e := range ts.events.Events() {
		types = append(types, e.EventType)
	}
	if strings.Join(types, ",") != analytics.QuestionAdded+","+analytics.QuestionDeleted {
		t.Errorf("events = %v", types)
	}
}

func TestAdmin_List(t *testing.T) {
	ts := newTestServer(t, nil, true)

	var resp struct {
		Questions []struct {
			Summary string          `json:"summary"`
			Record  question.Record `json:"record"`
		} `json:"questions"`
		Revision string `json:"revision"`
	}
	rec := ts.do(t, http.MethodGet, "/api/admin/questions", nil)
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Questions) != 2 || resp.Questions[0].Summary != "ID 1: Find the limit......" {
		t.Errorf("questions = %+v", resp.Questions)
	}
	if resp.Revision != ts.editor.Snapshot().Revision {
		t.Errorf("revision = %q", resp.Revision)
	}
}

func TestAdmin_ExportXLSX(t *testing.T) {
	ts := newTestServer(t, nil, true)

	rec := ts.do(t, http.MethodGet, "/api/admin/export.xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("spreadsheet should be a zip archive")
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
