package account

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the auth endpoints. Register and login are public;
// the skipper exempts them from the JWT middleware.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Me(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	id, err := uuid.Parse(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no account for this token")
	}
	acct, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, acct)
}
