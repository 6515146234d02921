package identity

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
	read.GET("/patients", h.ListPatients)
	read.GET("/patients/:id", h.GetPatient)
	read.GET("/doctors", h.ListDoctors)
	read.GET("/doctors/:id", h.GetDoctor)
	read.GET("/doctors/:id/affiliations", h.ListAffiliations)

	write := api.Group("", auth.RequireRole(auth.RoleEstablishment))
	write.POST("/patients", h.CreatePatient)
	write.PUT("/patients/:id", h.UpdatePatient)
	write.DELETE("/patients/:id", h.DeletePatient)
	write.POST("/doctors", h.CreateDoctor)
	write.PUT("/doctors/:id", h.UpdateDoctor)
	write.DELETE("/doctors/:id", h.DeleteDoctor)
	write.POST("/doctors/:id/affiliations", h.AddAffiliation)
	write.DELETE("/affiliations/:id", h.RemoveAffiliation)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	params := map[string]string{
		"name":  c.QueryParam("name"),
		"phone": c.QueryParam("phone"),
		"city":  c.QueryParam("city"),
	}
	if params["name"] != "" || params["phone"] != "" || params["city"] != "" {
		patients, total, err := h.svc.SearchPatients(ctx, params, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
	}

	patients, total, err := h.svc.ListPatients(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	params := map[string]string{
		"name":      c.QueryParam("name"),
		"specialty": c.QueryParam("specialty"),
	}
	if params["name"] != "" || params["specialty"] != "" {
		doctors, total, err := h.svc.SearchDoctors(ctx, params, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, pg.Limit, pg.Offset))
	}

	doctors, total, err := h.svc.ListDoctors(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.UpdateDoctor(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddAffiliation(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a DoctorAffiliation
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.DoctorID = doctorID
	if err := h.svc.AddAffiliation(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAffiliations(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	affs, err := h.svc.ListAffiliationsByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, affs)
}

func (h *Handler) RemoveAffiliation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveAffiliation(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
