package identity

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository persists patients.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
}

// DoctorRepository persists doctors.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error)
}

// AffiliationRepository persists doctor-establishment affiliations.
type AffiliationRepository interface {
	Add(ctx context.Context, a *DoctorAffiliation) error
	GetByID(ctx context.Context, id uuid.UUID) (*DoctorAffiliation, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DoctorAffiliation, error)
	ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]*DoctorAffiliation, error)
	Remove(ctx context.Context, id uuid.UUID) error
}
