package ai

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	gen *Generator
}

func NewHandler(gen *Generator) *Handler {
	return &Handler{gen: gen}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/ai/notes", h.GenerateNote)
}

// GenerateNote runs a synchronous draft generation. Upstream model failures
// surface as 502 with the provider's message so the clinician sees why the
// draft did not arrive; a missing API key means the feature is unavailable,
// not that the gateway failed.
func (h *Handler) GenerateNote(c echo.Context) error {
	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SessionType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sessionType is required")
	}

	note, err := h.gen.GenerateNote(c.Request().Context(), req, nil)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "AI note generation is not configured")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"note": note})
}
