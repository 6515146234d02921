package establishment

import (
	"context"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/domainerr"
)

type Service struct {
	repo     Repository
	services ServiceRepository
}

func NewService(repo Repository, services ServiceRepository) *Service {
	return &Service{repo: repo, services: services}
}

func (s *Service) CreateEstablishment(ctx context.Context, est *Establishment) error {
	if est.Name == "" {
		return domainerr.InvalidInput("name is required")
	}
	if !ValidKind(est.Kind) {
		return domainerr.InvalidInputf("invalid establishment kind: %s", est.Kind)
	}
	if est.City == "" {
		return domainerr.InvalidInput("city is required")
	}
	if est.Phone == "" {
		return domainerr.InvalidInput("phone is required")
	}
	return s.repo.Create(ctx, est)
}

func (s *Service) GetEstablishment(ctx context.Context, id uuid.UUID) (*Establishment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateEstablishment(ctx context.Context, est *Establishment) error {
	if est.Kind != "" && !ValidKind(est.Kind) {
		return domainerr.InvalidInputf("invalid establishment kind: %s", est.Kind)
	}
	if _, err := s.repo.GetByID(ctx, est.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, est)
}

func (s *Service) DeleteEstablishment(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListEstablishments(ctx context.Context, limit, offset int) ([]*Establishment, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) SearchEstablishments(ctx context.Context, params map[string]string, limit, offset int) ([]*Establishment, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

func (s *Service) CreateCareService(ctx context.Context, cs *CareService) error {
	if cs.EstablishmentID == uuid.Nil {
		return domainerr.InvalidInput("establishment_id is required")
	}
	if cs.Name == "" {
		return domainerr.InvalidInput("name is required")
	}
	if !ValidCategory(cs.Category) {
		return domainerr.InvalidInputf("invalid service category: %s", cs.Category)
	}
	if cs.BasePrice < 0 {
		return domainerr.InvalidInput("base_price must not be negative")
	}
	if cs.DurationMinutes <= 0 {
		cs.DurationMinutes = 30
	}
	if _, err := s.repo.GetByID(ctx, cs.EstablishmentID); err != nil {
		return err
	}
	cs.Active = true
	return s.services.Create(ctx, cs)
}

func (s *Service) GetCareService(ctx context.Context, id uuid.UUID) (*CareService, error) {
	return s.services.GetByID(ctx, id)
}

func (s *Service) UpdateCareService(ctx context.Context, cs *CareService) error {
	existing, err := s.services.GetByID(ctx, cs.ID)
	if err != nil {
		return err
	}
	if cs.Category != "" && !ValidCategory(cs.Category) {
		return domainerr.InvalidInputf("invalid service category: %s", cs.Category)
	}
	if cs.BasePrice < 0 {
		return domainerr.InvalidInput("base_price must not be negative")
	}
	cs.EstablishmentID = existing.EstablishmentID
	return s.services.Update(ctx, cs)
}

func (s *Service) DeleteCareService(ctx context.Context, id uuid.UUID) error {
	return s.services.Delete(ctx, id)
}

func (s *Service) ListCareServices(ctx context.Context, establishmentID uuid.UUID, limit, offset int) ([]*CareService, int, error) {
	return s.services.ListByEstablishment(ctx, establishmentID, limit, offset)
}

// SetCareServiceActive toggles whether a service can be booked. Existing
// appointments are unaffected.
func (s *Service) SetCareServiceActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.services.SetActive(ctx, id, active)
}
