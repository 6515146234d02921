package notification

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the delivery log over HTTP.
type Handler struct {
	manager *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{manager: mgr}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.List)
	g.GET("/notifications/stats", h.Stats)
	g.GET("/notifications/:id", h.Get)
	g.POST("/notifications/:id/retry", h.Retry)
}

func (h *Handler) Get(c echo.Context) error {
	n, err := h.manager.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) List(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient query parameter is required")
	}

	list, err := h.manager.ListByRecipient(c.Request().Context(), recipient, 100)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) Retry(c echo.Context) error {
	id := c.Param("id")
	if err := h.manager.Retry(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, _ := h.manager.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats(c.Request().Context()))
}
