package insurance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/domainerr"
)

// TxRunner executes fn atomically. The default runner is a passthrough; the
// server wires db.InTx so multi-statement writes share one transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	companies  CompanyRepository
	plans      PlanRepository
	policies   PolicyRepository
	agreements AgreementRepository
	runTx      TxRunner
}

func NewService(companies CompanyRepository, plans PlanRepository, policies PolicyRepository, agreements AgreementRepository) *Service {
	return &Service{
		companies:  companies,
		plans:      plans,
		policies:   policies,
		agreements: agreements,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

// SetTxRunner replaces the transaction runner.
func (s *Service) SetTxRunner(run TxRunner) {
	s.runTx = run
}

func validRate(r int) bool { return r >= 0 && r <= 100 }

func validRatePtr(r *int) bool { return r == nil || validRate(*r) }

func (s *Service) CreateCompany(ctx context.Context, co *InsuranceCompany) error {
	if co.Name == "" {
		return domainerr.InvalidInput("name is required")
	}
	return s.companies.Create(ctx, co)
}

func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (*InsuranceCompany, error) {
	return s.companies.GetByID(ctx, id)
}

func (s *Service) UpdateCompany(ctx context.Context, co *InsuranceCompany) error {
	if _, err := s.companies.GetByID(ctx, co.ID); err != nil {
		return err
	}
	if co.Name == "" {
		return domainerr.InvalidInput("name is required")
	}
	return s.companies.Update(ctx, co)
}

func (s *Service) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	return s.companies.Delete(ctx, id)
}

func (s *Service) ListCompanies(ctx context.Context, limit, offset int) ([]*InsuranceCompany, int, error) {
	return s.companies.List(ctx, limit, offset)
}

func (s *Service) CreatePlan(ctx context.Context, pl *InsurancePlan) error {
	if pl.Name == "" {
		return domainerr.InvalidInput("name is required")
	}
	if pl.MonthlyPremium < 0 {
		return domainerr.InvalidInput("monthly_premium must not be negative")
	}
	if !validRate(pl.ConsultationCoverage) ||
		!validRatePtr(pl.EmergencyCoverage) || !validRatePtr(pl.SurgeryCoverage) ||
		!validRatePtr(pl.MaternityCoverage) || !validRatePtr(pl.LaboratoryCoverage) ||
		!validRatePtr(pl.ImagingCoverage) {
		return domainerr.InvalidInput("coverage percentages must be between 0 and 100")
	}
	if _, err := s.companies.GetByID(ctx, pl.CompanyID); err != nil {
		return err
	}
	return s.plans.Create(ctx, pl)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*InsurancePlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) UpdatePlan(ctx context.Context, pl *InsurancePlan) error {
	existing, err := s.plans.GetByID(ctx, pl.ID)
	if err != nil {
		return err
	}
	if !validRate(pl.ConsultationCoverage) ||
		!validRatePtr(pl.EmergencyCoverage) || !validRatePtr(pl.SurgeryCoverage) ||
		!validRatePtr(pl.MaternityCoverage) || !validRatePtr(pl.LaboratoryCoverage) ||
		!validRatePtr(pl.ImagingCoverage) {
		return domainerr.InvalidInput("coverage percentages must be between 0 and 100")
	}
	pl.CompanyID = existing.CompanyID
	return s.plans.Update(ctx, pl)
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

func (s *Service) ListPlansByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*InsurancePlan, int, error) {
	return s.plans.ListByCompany(ctx, companyID, limit, offset)
}

// EnrollPolicy creates a patient enrollment. When the new policy is primary,
// any previous primary is demoted in the same transaction.
func (s *Service) EnrollPolicy(ctx context.Context, p *PatientInsurance) error {
	if p.PatientID == uuid.Nil {
		return domainerr.InvalidInput("patient_id is required")
	}
	if p.PolicyNumber == "" {
		return domainerr.InvalidInput("policy_number is required")
	}
	if p.ValidFrom.IsZero() || p.ValidUntil.IsZero() || !p.ValidFrom.Before(p.ValidUntil) {
		return domainerr.InvalidInput("validity window must have valid_from before valid_until")
	}
	if _, err := s.plans.GetByID(ctx, p.PlanID); err != nil {
		return err
	}
	p.Active = true
	return s.runTx(ctx, func(ctx context.Context) error {
		if p.IsPrimary {
			if err := s.policies.ClearPrimary(ctx, p.PatientID); err != nil {
				return err
			}
		}
		return s.policies.Create(ctx, p)
	})
}

func (s *Service) GetPolicy(ctx context.Context, id uuid.UUID) (*PatientInsurance, error) {
	return s.policies.GetByID(ctx, id)
}

func (s *Service) ListPoliciesByPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientInsurance, error) {
	return s.policies.ListByPatient(ctx, patientID)
}

// RenewPolicy gives an existing policy a new validity window and reactivates
// it. Other fields are immutable after enrollment.
func (s *Service) RenewPolicy(ctx context.Context, id uuid.UUID, validFrom, validUntil time.Time) (*PatientInsurance, error) {
	if validFrom.IsZero() || validUntil.IsZero() || !validFrom.Before(validUntil) {
		return nil, domainerr.InvalidInput("validity window must have valid_from before valid_until")
	}
	p, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ValidFrom = validFrom
	p.ValidUntil = validUntil
	p.Active = true
	if err := s.policies.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeactivatePolicy(ctx context.Context, id uuid.UUID) error {
	p, err := s.policies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Active = false
	p.IsPrimary = false
	return s.policies.Update(ctx, p)
}

func (s *Service) CreateAgreement(ctx context.Context, a *EstablishmentInsurance) error {
	if a.EstablishmentID == uuid.Nil {
		return domainerr.InvalidInput("establishment_id is required")
	}
	if !validRatePtr(a.ConsultationRate) || !validRatePtr(a.EmergencyRate) || !validRatePtr(a.SurgeryRate) {
		return domainerr.InvalidInput("rates must be between 0 and 100")
	}
	if a.ValidFrom.IsZero() || a.ValidUntil.IsZero() || !a.ValidFrom.Before(a.ValidUntil) {
		return domainerr.InvalidInput("validity window must have valid_from before valid_until")
	}
	if _, err := s.companies.GetByID(ctx, a.CompanyID); err != nil {
		return err
	}
	a.Active = true
	return s.agreements.Create(ctx, a)
}

func (s *Service) GetAgreement(ctx context.Context, id uuid.UUID) (*EstablishmentInsurance, error) {
	return s.agreements.GetByID(ctx, id)
}

func (s *Service) UpdateAgreement(ctx context.Context, a *EstablishmentInsurance) error {
	existing, err := s.agreements.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if !validRatePtr(a.ConsultationRate) || !validRatePtr(a.EmergencyRate) || !validRatePtr(a.SurgeryRate) {
		return domainerr.InvalidInput("rates must be between 0 and 100")
	}
	if !a.ValidFrom.Before(a.ValidUntil) {
		return domainerr.InvalidInput("validity window must have valid_from before valid_until")
	}
	a.EstablishmentID = existing.EstablishmentID
	a.CompanyID = existing.CompanyID
	return s.agreements.Update(ctx, a)
}

func (s *Service) DeleteAgreement(ctx context.Context, id uuid.UUID) error {
	return s.agreements.Delete(ctx, id)
}

func (s *Service) ListAgreementsByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]*EstablishmentInsurance, error) {
	return s.agreements.ListByEstablishment(ctx, establishmentID)
}

// QuoteFor computes the coverage breakdown a patient would get for a service
// priced basePrice in the given category at the given establishment. The
// patient's primary policy is used; an expired one counts as uninsured. The
// second return is the policy ID backing the quote, nil for uninsured visits.
func (s *Service) QuoteFor(ctx context.Context, patientID, establishmentID uuid.UUID, category string, basePrice int64, at time.Time) (Breakdown, *uuid.UUID, error) {
	policy, err := s.policies.GetPrimaryByPatient(ctx, patientID)
	if err != nil {
		return Breakdown{}, nil, err
	}
	if policy != nil && !policy.ActiveAt(at) {
		policy = nil
	}

	var (
		plan      *InsurancePlan
		agreement *EstablishmentInsurance
		policyID  *uuid.UUID
	)
	if policy != nil {
		plan, err = s.plans.GetByID(ctx, policy.PlanID)
		if err != nil {
			return Breakdown{}, nil, err
		}
		agreement, err = s.agreements.GetByEstablishmentAndCompany(ctx, establishmentID, plan.CompanyID)
		if err != nil {
			return Breakdown{}, nil, err
		}
		policyID = &policy.ID
	}

	bd, err := Quote(basePrice, category, plan, agreement, at)
	if err != nil {
		return Breakdown{}, nil, err
	}
	return bd, policyID, nil
}
