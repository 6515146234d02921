package insurance

import (
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/establishment"
)

// InsuranceCompany maps to the insurance_company table.
type InsuranceCompany struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InsurancePlan maps to the insurance_plan table. Coverage fields are
// percentages in [0,100]. ConsultationCoverage doubles as the generic
// fallback for categories without a dedicated field.
type InsurancePlan struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	CompanyID            uuid.UUID `db:"company_id" json:"company_id"`
	Name                 string    `db:"name" json:"name"`
	Description          *string   `db:"description" json:"description,omitempty"`
	MonthlyPremium       int64     `db:"monthly_premium" json:"monthly_premium"`
	ConsultationCoverage int       `db:"consultation_coverage" json:"consultation_coverage"`
	EmergencyCoverage    *int      `db:"emergency_coverage" json:"emergency_coverage,omitempty"`
	SurgeryCoverage      *int      `db:"surgery_coverage" json:"surgery_coverage,omitempty"`
	MaternityCoverage    *int      `db:"maternity_coverage" json:"maternity_coverage,omitempty"`
	LaboratoryCoverage   *int      `db:"laboratory_coverage" json:"laboratory_coverage,omitempty"`
	ImagingCoverage      *int      `db:"imaging_coverage" json:"imaging_coverage,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// RateFor resolves the plan's coverage percentage for a service category,
// falling back to the generic consultation coverage when the category has no
// dedicated field or the field is unset.
func (p *InsurancePlan) RateFor(category string) int {
	var r *int
	switch category {
	case establishment.CategoryEmergency:
		r = p.EmergencyCoverage
	case establishment.CategorySurgery:
		r = p.SurgeryCoverage
	case establishment.CategoryMaternity:
		r = p.MaternityCoverage
	case establishment.CategoryLaboratory:
		r = p.LaboratoryCoverage
	case establishment.CategoryImaging:
		r = p.ImagingCoverage
	}
	if r != nil {
		return *r
	}
	return p.ConsultationCoverage
}

// PatientInsurance is a policy: a patient's enrollment in a plan. At most one
// active policy per patient is primary.
type PatientInsurance struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	PlanID       uuid.UUID `db:"plan_id" json:"plan_id"`
	PolicyNumber string    `db:"policy_number" json:"policy_number"`
	IsPrimary    bool      `db:"is_primary" json:"is_primary"`
	ValidFrom    time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil   time.Time `db:"valid_until" json:"valid_until"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the policy covers the given instant.
func (p *PatientInsurance) ActiveAt(at time.Time) bool {
	return p.Active && !at.Before(p.ValidFrom) && !at.After(p.ValidUntil)
}

// EstablishmentInsurance is an agreement: negotiated reimbursement rates
// between an establishment and an insurance company. Nil rate fields mean the
// agreement does not cover that category.
type EstablishmentInsurance struct {
	ID               uuid.UUID `db:"id" json:"id"`
	EstablishmentID  uuid.UUID `db:"establishment_id" json:"establishment_id"`
	CompanyID        uuid.UUID `db:"company_id" json:"company_id"`
	ConsultationRate *int      `db:"consultation_rate" json:"consultation_rate,omitempty"`
	EmergencyRate    *int      `db:"emergency_rate" json:"emergency_rate,omitempty"`
	SurgeryRate      *int      `db:"surgery_rate" json:"surgery_rate,omitempty"`
	ValidFrom        time.Time `db:"valid_from" json:"valid_from"`
	ValidUntil       time.Time `db:"valid_until" json:"valid_until"`
	DirectBilling    bool      `db:"direct_billing" json:"direct_billing"`
	RequiresPreauth  bool      `db:"requires_preauth" json:"requires_preauth"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the agreement is within its validity window.
func (a *EstablishmentInsurance) ActiveAt(at time.Time) bool {
	return a.Active && !at.Before(a.ValidFrom) && !at.After(a.ValidUntil)
}

// RateFor returns the negotiated rate for a category, or nil when the
// agreement does not define one.
func (a *EstablishmentInsurance) RateFor(category string) *int {
	switch category {
	case establishment.CategoryConsultation:
		return a.ConsultationRate
	case establishment.CategoryEmergency:
		return a.EmergencyRate
	case establishment.CategorySurgery:
		return a.SurgeryRate
	}
	return nil
}
