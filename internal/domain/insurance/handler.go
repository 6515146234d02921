package insurance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/domain/establishment"
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
	read.GET("/insurance/companies", h.ListCompanies)
	read.GET("/insurance/companies/:id", h.GetCompany)
	read.GET("/insurance/companies/:id/plans", h.ListPlans)
	read.GET("/insurance/plans/:id", h.GetPlan)
	read.GET("/insurance/quote", h.QuoteCoverage)
	read.GET("/patients/:id/policies", h.ListPoliciesByPatient)
	read.GET("/insurance/policies/:id", h.GetPolicy)
	read.GET("/establishments/:id/agreements", h.ListAgreements)
	read.GET("/insurance/agreements/:id", h.GetAgreement)

	insurer := api.Group("", auth.RequireRole(auth.RoleInsurer))
	insurer.POST("/insurance/companies", h.CreateCompany)
	insurer.PUT("/insurance/companies/:id", h.UpdateCompany)
	insurer.DELETE("/insurance/companies/:id", h.DeleteCompany)
	insurer.POST("/insurance/companies/:id/plans", h.CreatePlan)
	insurer.PUT("/insurance/plans/:id", h.UpdatePlan)
	insurer.DELETE("/insurance/plans/:id", h.DeletePlan)
	insurer.POST("/insurance/agreements", h.CreateAgreement)
	insurer.PUT("/insurance/agreements/:id", h.UpdateAgreement)
	insurer.DELETE("/insurance/agreements/:id", h.DeleteAgreement)

	enroll := api.Group("", auth.RequireRole(auth.RoleInsurer, auth.RoleEstablishment))
	enroll.POST("/insurance/policies", h.EnrollPolicy)
	enroll.POST("/insurance/policies/:id/renew", h.RenewPolicy)
	enroll.POST("/insurance/policies/:id/deactivate", h.DeactivatePolicy)
}

func (h *Handler) CreateCompany(c echo.Context) error {
	var co InsuranceCompany
	if err := c.Bind(&co); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCompany(c.Request().Context(), &co); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, co)
}

func (h *Handler) GetCompany(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	co, err := h.svc.GetCompany(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, co)
}

func (h *Handler) ListCompanies(c echo.Context) error {
	pg := pagination.FromContext(c)
	cos, total, err := h.svc.ListCompanies(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(cos, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateCompany(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var co InsuranceCompany
	if err := c.Bind(&co); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	co.ID = id
	if err := h.svc.UpdateCompany(c.Request().Context(), &co); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, co)
}

func (h *Handler) DeleteCompany(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteCompany(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreatePlan(c echo.Context) error {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var pl InsurancePlan
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pl.CompanyID = companyID
	if err := h.svc.CreatePlan(c.Request().Context(), &pl); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, pl)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pl, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pl)
}

func (h *Handler) ListPlans(c echo.Context) error {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	plans, total, err := h.svc.ListPlansByCompany(c.Request().Context(), companyID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(plans, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var pl InsurancePlan
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pl.ID = id
	if err := h.svc.UpdatePlan(c.Request().Context(), &pl); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pl)
}

func (h *Handler) DeletePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeletePlan(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) EnrollPolicy(c echo.Context) error {
	var p PatientInsurance
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.EnrollPolicy(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPolicy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPolicy(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPoliciesByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	policies, err := h.svc.ListPoliciesByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, policies)
}

func (h *Handler) RenewPolicy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		ValidFrom  time.Time `json:"valid_from"`
		ValidUntil time.Time `json:"valid_until"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RenewPolicy(c.Request().Context(), id, body.ValidFrom, body.ValidUntil)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeactivatePolicy(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeactivatePolicy(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateAgreement(c echo.Context) error {
	var a EstablishmentInsurance
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateAgreement(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAgreement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAgreement(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAgreements(c echo.Context) error {
	estID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	agreements, err := h.svc.ListAgreementsByEstablishment(c.Request().Context(), estID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agreements)
}

func (h *Handler) UpdateAgreement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a EstablishmentInsurance
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.UpdateAgreement(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAgreement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteAgreement(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// QuoteCoverage exposes the coverage calculator without booking anything.
func (h *Handler) QuoteCoverage(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	estID, err := uuid.Parse(c.QueryParam("establishment_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid establishment_id")
	}
	category := c.QueryParam("category")
	if !establishment.ValidCategory(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
	}
	basePrice, err := strconv.ParseInt(c.QueryParam("base_price"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid base_price")
	}

	at := time.Now().UTC()
	if raw := c.QueryParam("at"); raw != "" {
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid at, want RFC 3339")
		}
	}

	bd, policyID, err := h.svc.QuoteFor(c.Request().Context(), patientID, estID, category, basePrice, at)
	if err != nil {
		return echo.NewHTTPError(domainerr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"breakdown": bd,
		"policy_id": policyID,
	})
}
