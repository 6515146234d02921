package establishment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists establishments.
type Repository interface {
	Create(ctx context.Context, est *Establishment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Establishment, error)
	Update(ctx context.Context, est *Establishment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Establishment, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Establishment, int, error)
}

// ServiceRepository persists care services.
type ServiceRepository interface {
	Create(ctx context.Context, cs *CareService) error
	GetByID(ctx context.Context, id uuid.UUID) (*CareService, error)
	Update(ctx context.Context, cs *CareService) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByEstablishment(ctx context.Context, establishmentID uuid.UUID, limit, offset int) ([]*CareService, int, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
