package patient

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/therascribe/therascribe/internal/model"
	"github.com/therascribe/therascribe/pkg/pagination"
)

type Handler struct {
	svc *Service
	// lastSession resolves the "last session" display label for a patient;
	// wired from the session service, may be nil.
	lastSession func(patientID string) string
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// SetLastSessionResolver attaches the optional last-session label source.
func (h *Handler) SetLastSessionResolver(fn func(patientID string) string) {
	h.lastSession = fn
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.List)
	api.POST("/patients", h.Create)
	api.GET("/patients/:id", h.Get)
	api.PUT("/patients/:id", h.Update)
	api.DELETE("/patients/:id", h.Delete)
}

func (h *Handler) view(p model.Patient, now time.Time) View {
	label := ""
	if h.lastSession != nil {
		label = h.lastSession(p.ID)
	}
	return NewView(p, label, now)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients := h.svc.List()
	now := time.Now()

	lo, hi := pg.Window(len(patients))
	views := make([]View, 0, hi-lo)
	for _, p := range patients[lo:hi] {
		views = append(views, h.view(p, now))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, len(patients), pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	p := h.svc.Get(c.Param("id"))
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, h.view(*p, time.Now()))
}

func (h *Handler) Create(c echo.Context) error {
	var p model.Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if p.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	created, err := h.svc.Add(c.Request().Context(), p)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, h.view(*created, time.Now()))
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
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, h.view(*updated, time.Now()))
}

func (h *Handler) Delete(c echo.Context) error {
	ok, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.NoContent(http.StatusNoContent)
}
