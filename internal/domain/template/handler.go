package template

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
	api.GET("/templates", h.List)
	api.POST("/templates", h.Create)
	api.POST("/templates/parse", h.Parse)
	api.GET("/templates/:id", h.Get)
	api.PUT("/templates/:id", h.Update)
	api.DELETE("/templates/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	templates := h.svc.List()
	lo, hi := pg.Window(len(templates))
	return c.JSON(http.StatusOK, pagination.NewResponse(templates[lo:hi], len(templates), pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	t := h.svc.Get(c.Param("id"))
	if t == nil {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Create(c echo.Context) error {
	var t model.Template
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if t.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	created, err := h.svc.Add(c.Request().Context(), t)
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
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	ok, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// Parse previews the field schema a format string would produce, without
// storing anything. The template editor uses it for live feedback.
func (h *Handler) Parse(c echo.Context) error {
	var req struct {
		Format string `json:"format"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fields := templating.ParseFormat(req.Format)
	return c.JSON(http.StatusOK, model.TemplateStructure{Fields: fields})
}
