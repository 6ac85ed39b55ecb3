package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/therascribe/therascribe/internal/model"
	"github.com/therascribe/therascribe/internal/platform/templating"
)

func newTestHandler(t *testing.T, fs *fakeStore) (*Handler, *Service) {
	t.Helper()
	svc, err := NewService(context.Background(), fs, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return NewHandler(svc), svc
}

func doRequest(h echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandlerStartLive(t *testing.T) {
	fs := &fakeStore{}
	h, svc := newTestHandler(t, fs)
	svc.SetPatientSource(&fakePatients{patients: map[string]model.Patient{"p1": {ID: "p1", Name: "Jane"}}})

	rec := doRequest(h.StartLive, http.MethodPost, "/api/sessions/live",
		`{"patientId":"p1","sessionType":"soap"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var sess model.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if sess.Status != model.SessionInProgress {
		t.Errorf("expected in-progress, got %s", sess.Status)
	}
	if !strings.HasPrefix(sess.Notes, "SUBJECTIVE:") {
		t.Errorf("expected soap skeleton, got %q", sess.Notes)
	}

	rec = doRequest(h.StartLive, http.MethodPost, "/api/sessions/live",
		`{"patientId":"nope","sessionType":"soap"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown patient, got %d", rec.Code)
	}

	rec = doRequest(h.StartLive, http.MethodPost, "/api/sessions/live", `{"patientId":"p1"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing sessionType, got %d", rec.Code)
	}
}

func TestHandlerEnd(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Sessions: []model.Session{
		{ID: "s1", PatientID: "p1", SessionType: "dap", Status: model.SessionInProgress, StartedAt: time.Now().Add(-30 * time.Minute)},
	}}}
	h, _ := newTestHandler(t, fs)

	rec := doRequest(h.End, http.MethodPost, "/api/sessions/s1/end",
		`{"notes":"DATA:\nx\n\nASSESSMENT:\ny\n\nPLAN:\nz\n"}`, map[string]string{"id": "s1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sess model.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if sess.Status != model.SessionCompleted || sess.DurationMinutes <= 0 {
		t.Errorf("unexpected completion state: status=%s duration=%d", sess.Status, sess.DurationMinutes)
	}

	rec = doRequest(h.End, http.MethodPost, "/api/sessions/nope/end", `{"notes":"x"}`, map[string]string{"id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", rec.Code)
	}
}

func TestHandlerSections(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Sessions: []model.Session{
		{ID: "s1", SessionType: "dap", Notes: "DATA:\nx\n\nASSESSMENT:\ny\n\nPLAN:\nz\n"},
		{ID: "s2", SessionType: "soap", Notes: "Hand-edited prose."},
	}}}
	h, _ := newTestHandler(t, fs)

	var resp struct {
		Structured bool                 `json:"structured"`
		Sections   []templating.Section `json:"sections"`
	}

	rec := doRequest(h.Sections, http.MethodGet, "/api/sessions/s1/sections", "", map[string]string{"id": "s1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Structured || len(resp.Sections) != 3 || resp.Sections[0].Label != "DATA" {
		t.Errorf("unexpected structured split: %+v", resp)
	}

	rec = doRequest(h.Sections, http.MethodGet, "/api/sessions/s2/sections", "", map[string]string{"id": "s2"})
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Structured || len(resp.Sections) != 1 || resp.Sections[0].Text != "Hand-edited prose." {
		t.Errorf("expected single-block fallback, got %+v", resp)
	}
}

func TestHandlerActivePointer(t *testing.T) {
	fs := &fakeStore{}
	h, _ := newTestHandler(t, fs)

	rec := doRequest(h.ActivePointer, http.MethodGet, "/api/active-session", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no pointer, got %d", rec.Code)
	}

	fs.pointer = &model.ActivePointer{PatientID: "p1", SessionType: "dap", SessionID: "s1"}
	rec = doRequest(h.ActivePointer, http.MethodGet, "/api/active-session", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var pointer model.ActivePointer
	if err := json.Unmarshal(rec.Body.Bytes(), &pointer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if pointer.SessionID != "s1" {
		t.Errorf("unexpected pointer: %+v", pointer)
	}

	rec = doRequest(h.SaveActivePointer, http.MethodPut, "/api/active-session",
		`{"patientId":"p2","sessionType":"soap","sessionId":"s9"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fs.pointer == nil || fs.pointer.SessionID != "s9" {
		t.Errorf("expected pointer replaced, got %+v", fs.pointer)
	}

	rec = doRequest(h.ClearActivePointer, http.MethodDelete, "/api/active-session", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if fs.pointer != nil {
		t.Error("expected pointer cleared")
	}
}

func TestHandlerCreate_RequiresPatientID(t *testing.T) {
	h, _ := newTestHandler(t, &fakeStore{})
	rec := doRequest(h.Create, http.MethodPost, "/api/sessions", `{"sessionType":"soap"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
