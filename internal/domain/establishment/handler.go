package establishment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/platform/auth"
	"github.com/careflow/careflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleEstablishment, auth.RoleDoctor, auth.RolePatient, auth.RoleInsurer))
	read.GET("/establishments", h.ListEstablishments)
	read.GET("/establishments/:id", h.GetEstablishment)
	read.GET("/establishments/:id/services", h.ListCareServices)
	read.GET("/care-services/:id", h.GetCareService)

	write := api.Group("", auth.RequireRole(auth.RoleEstablishment))
	write.POST("/establishments", h.CreateEstablishment)
	write.PUT("/establishments/:id", h.UpdateEstablishment)
	write.DELETE("/establishments/:id", h.DeleteEstablishment)
	write.POST("/establishments/:id/services", h.CreateCareService)
	write.PUT("/care-services/:id", h.UpdateCareService)
	write.DELETE("/care-services/:id", h.DeleteCareService)
	write.PATCH("/care-services/:id/active", h.SetCareServiceActive)
}

func (h *Handler) CreateEstablishment(c echo.Context) error {
	var est Establishment
	if err := c.Bind(&est); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateEstablishment(c.Request().Context(), &est); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, est)
}

func (h *Handler) GetEstablishment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	est, err := h.svc.GetEstablishment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, est)
}

func (h *Handler) ListEstablishments(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	params := map[string]string{
		"name": c.QueryParam("name"),
		"kind": c.QueryParam("kind"),
		"city": c.QueryParam("city"),
	}
	hasFilter := false
	for _, v := range params {
		if v != "" {
			hasFilter = true
		}
	}

	var (
		ests  []*Establishment
		total int
		err   error
	)
	if hasFilter {
		ests, total, err = h.svc.SearchEstablishments(ctx, params, pg.Limit, pg.Offset)
	} else {
		ests, total, err = h.svc.ListEstablishments(ctx, pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(ests, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateEstablishment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var est Establishment
	if err := c.Bind(&est); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	est.ID = id
	if err := h.svc.UpdateEstablishment(c.Request().Context(), &est); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, est)
}

func (h *Handler) DeleteEstablishment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteEstablishment(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateCareService(c echo.Context) error {
	estID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var cs CareService
	if err := c.Bind(&cs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs.EstablishmentID = estID
	if err := h.svc.CreateCareService(c.Request().Context(), &cs); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, cs)
}

func (h *Handler) GetCareService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cs, err := h.svc.GetCareService(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) ListCareServices(c echo.Context) error {
	estID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	svcs, total, err := h.svc.ListCareServices(c.Request().Context(), estID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(svcs, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateCareService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var cs CareService
	if err := c.Bind(&cs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cs.ID = id
	if err := h.svc.UpdateCareService(c.Request().Context(), &cs); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) DeleteCareService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteCareService(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetCareServiceActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetCareServiceActive(c.Request().Context(), id, body.Active); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"active": body.Active})
}
