package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := paramsFor(t, "limit=100000")
	if p.Limit != MaxLimit {
		t.Errorf("expected max limit %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_ParsesValues(t *testing.T) {
	p := paramsFor(t, "limit=10&offset=30")
	if p.Limit != 10 || p.Offset != 30 {
		t.Errorf("expected 10/30, got %+v", p)
	}
}

func TestWindow(t *testing.T) {
	p := Params{Limit: 10, Offset: 5}
	lo, hi := p.Window(8)
	if lo != 5 || hi != 8 {
		t.Errorf("expected [5,8), got [%d,%d)", lo, hi)
	}
	lo, hi = p.Window(3)
	if lo != 3 || hi != 3 {
		t.Errorf("expected empty window, got [%d,%d)", lo, hi)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 100, 10, 80)
	if !r.HasMore {
		t.Error("expected HasMore true")
	}
	r = NewResponse(nil, 100, 10, 90)
	if r.HasMore {
		t.Error("expected HasMore false")
	}
}
