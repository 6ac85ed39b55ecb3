package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

func doRequest(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/notes", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandlerGenerateNote(t *testing.T) {
	gen := NewGenerator(Config{APIKey: "k", Model: "gpt-3.5-turbo"}, zerolog.Nop())
	gen.client = &fakeClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "Draft note."}}},
	}}
	h := NewHandler(gen)

	rec := doRequest(h.GenerateNote, `{"patientInfo":"Jane, 30","sessionType":"soap"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["note"] != "Draft note." {
		t.Errorf("unexpected note: %q", resp["note"])
	}
}

func TestHandlerGenerateNote_UpstreamFailure(t *testing.T) {
	gen := NewGenerator(Config{APIKey: "k"}, zerolog.Nop())
	gen.client = &fakeClient{err: errors.New("rate limited")}
	h := NewHandler(gen)

	rec := doRequest(h.GenerateNote, `{"sessionType":"dap"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rate limited") {
		t.Errorf("expected upstream message surfaced, got %s", rec.Body.String())
	}
}

func TestHandlerGenerateNote_NotConfigured(t *testing.T) {
	h := NewHandler(NewGenerator(Config{}, zerolog.Nop()))
	rec := doRequest(h.GenerateNote, `{"sessionType":"soap"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when no key is configured, got %d", rec.Code)
	}
}

func TestHandlerGenerateNote_MissingSessionType(t *testing.T) {
	h := NewHandler(NewGenerator(Config{APIKey: "k"}, zerolog.Nop()))
	rec := doRequest(h.GenerateNote, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
