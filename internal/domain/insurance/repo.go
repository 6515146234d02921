package insurance

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository persists insurance companies.
type CompanyRepository interface {
	Create(ctx context.Context, co *InsuranceCompany) error
	GetByID(ctx context.Context, id uuid.UUID) (*InsuranceCompany, error)
	Update(ctx context.Context, co *InsuranceCompany) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*InsuranceCompany, int, error)
}

// PlanRepository persists insurance plans.
type PlanRepository interface {
	Create(ctx context.Context, pl *InsurancePlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*InsurancePlan, error)
	Update(ctx context.Context, pl *InsurancePlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*InsurancePlan, int, error)
}

// PolicyRepository persists patient enrollments.
type PolicyRepository interface {
	Create(ctx context.Context, p *PatientInsurance) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatientInsurance, error)
	Update(ctx context.Context, p *PatientInsurance) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientInsurance, error)
	GetPrimaryByPatient(ctx context.Context, patientID uuid.UUID) (*PatientInsurance, error)
	ClearPrimary(ctx context.Context, patientID uuid.UUID) error
}

// AgreementRepository persists establishment-insurer agreements.
type AgreementRepository interface {
	Create(ctx context.Context, a *EstablishmentInsurance) error
	GetByID(ctx context.Context, id uuid.UUID) (*EstablishmentInsurance, error)
	Update(ctx context.Context, a *EstablishmentInsurance) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]*EstablishmentInsurance, error)
	GetByEstablishmentAndCompany(ctx context.Context, establishmentID, companyID uuid.UUID) (*EstablishmentInsurance, error)
}
