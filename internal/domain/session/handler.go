package session

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/therascribe/therascribe/internal/model"
	"github.com/therascribe/therascribe/internal/platform/templating"
	"github.com/therascribe/therascribe/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/sessions", h.List)
	api.POST("/sessions", h.Create)
	api.GET("/sessions/enriched", h.Enriched)
	api.POST("/sessions/live", h.StartLive)
	api.GET("/sessions/:id", h.Get)
	api.PUT("/sessions/:id", h.Update)
	api.DELETE("/sessions/:id", h.Delete)
	api.POST("/sessions/:id/end", h.End)
	api.GET("/sessions/:id/sections", h.Sections)
	api.GET("/patients/:id/sessions", h.PatientSessions)
	api.GET("/active-session", h.ActivePointer)
	api.PUT("/active-session", h.SaveActivePointer)
	api.DELETE("/active-session", h.ClearActivePointer)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	sessions := h.svc.List()
	lo, hi := pg.Window(len(sessions))
	return c.JSON(http.StatusOK, pagination.NewResponse(sessions[lo:hi], len(sessions), pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	sess := h.svc.Get(c.Param("id"))
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) Create(c echo.Context) error {
	var sess model.Session
	if err := c.Bind(&sess); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if sess.PatientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patientId is required")
	}
	created, err := h.svc.Add(c.Request().Context(), sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	var partial Partial
	if err := c.Bind(&partial); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.svc.Update(c.Request().Context(), c.Param("id"), partial)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if updated == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	ok, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) StartLive(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == "" || req.SessionType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patientId and sessionType are required")
	}
	sess, err := h.svc.StartLive(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *Handler) End(c echo.Context) error {
	var req EndRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.EndLive(c.Request().Context(), c.Param("id"), req.Notes)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sess)
}

// Sections splits the session's note body along its skeleton headers. A
// hand-edited body that no longer splits comes back as one unlabeled block
// with structured=false.
func (h *Handler) Sections(c echo.Context) error {
	sess := h.svc.Get(c.Param("id"))
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	sections, ok := templating.SplitSections(sess.Notes, sess.SessionType)
	if !ok {
		sections = []templating.Section{{Label: "", Text: sess.Notes}}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"structured": ok,
		"sections":   sections,
	})
}

func (h *Handler) PatientSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.PatientSessions(c.Param("id")))
}

func (h *Handler) Enriched(c echo.Context) error {
	pg := pagination.FromContext(c)
	enriched := h.svc.EnrichedSessions()
	lo, hi := pg.Window(len(enriched))
	return c.JSON(http.StatusOK, pagination.NewResponse(enriched[lo:hi], len(enriched), pg.Limit, pg.Offset))
}

func (h *Handler) ActivePointer(c echo.Context) error {
	pointer, err := h.svc.ActivePointer(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if pointer == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no active session")
	}
	return c.JSON(http.StatusOK, pointer)
}

// SaveActivePointer lets a client record the resume pointer directly, e.g.
// when re-entering a capture screen for an already started session.
func (h *Handler) SaveActivePointer(c echo.Context) error {
	var pointer model.ActivePointer
	if err := c.Bind(&pointer); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if pointer.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sessionId is required")
	}
	if err := h.svc.SaveActivePointer(c.Request().Context(), &pointer); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pointer)
}

func (h *Handler) ClearActivePointer(c echo.Context) error {
	if err := h.svc.ClearActivePointer(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
