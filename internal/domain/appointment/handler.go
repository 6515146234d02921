package appointment

import (
	"context"
	"net/http"
	"time"

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
	read.GET("/appointments", h.List)
	read.GET("/appointments/:id", h.Get)

	book := api.Group("", auth.RequireRole(auth.RolePatient, auth.RoleEstablishment))
	book.POST("/appointments", h.Create)
	book.PATCH("/appointments/:id", h.UpdateDetails)
	book.POST("/appointments/:id/cancel", h.Cancel)

	manage := api.Group("", auth.RequireRole(auth.RoleEstablishment, auth.RoleDoctor))
	manage.POST("/appointments/:id/confirm", h.Confirm)
	manage.POST("/appointments/:id/complete", h.Complete)
	manage.POST("/appointments/:id/no-show", h.MarkNoShow)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f Filter
	if raw := c.QueryParam("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &id
	}
	if raw := c.QueryParam("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		f.DoctorID = &id
	}
	if raw := c.QueryParam("establishment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid establishment_id")
		}
		f.EstablishmentID = &id
	}
	f.Status = c.QueryParam("status")
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from, want RFC 3339")
		}
		f.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to, want RFC 3339")
		}
		f.To = &t
	}

	appts, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDetails(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch UpdateDetailsRequest
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.UpdateDetails(c.Request().Context(), id, patch)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.doTransition(c, h.svc.Confirm)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.doTransition(c, h.svc.Cancel)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.doTransition(c, h.svc.Complete)
}

func (h *Handler) MarkNoShow(c echo.Context) error {
	return h.doTransition(c, h.svc.MarkNoShow)
}

func (h *Handler) doTransition(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := op(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}
