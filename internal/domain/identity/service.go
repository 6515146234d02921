package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/domainerr"
)

type Service struct {
	patients     PatientRepository
	doctors      DoctorRepository
	affiliations AffiliationRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository, affiliations AffiliationRepository) *Service {
	return &Service{patients: patients, doctors: doctors, affiliations: affiliations}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return domainerr.InvalidInput("first_name and last_name are required")
	}
	if p.Phone == "" {
		return domainerr.InvalidInput("phone is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if _, err := s.patients.GetByID(ctx, p.ID); err != nil {
		return err
	}
	if p.FirstName == "" || p.LastName == "" {
		return domainerr.InvalidInput("first_name and last_name are required")
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, params, limit, offset)
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return domainerr.InvalidInput("first_name and last_name are required")
	}
	if d.Specialty == "" {
		return domainerr.InvalidInput("specialty is required")
	}
	if d.LicenseNumber == "" {
		return domainerr.InvalidInput("license_number is required")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if _, err := s.doctors.GetByID(ctx, d.ID); err != nil {
		return err
	}
	if d.FirstName == "" || d.LastName == "" {
		return domainerr.InvalidInput("first_name and last_name are required")
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) SearchDoctors(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.Search(ctx, params, limit, offset)
}

// AddAffiliation registers a doctor at an establishment with a negotiated
// consultation fee.
func (s *Service) AddAffiliation(ctx context.Context, a *DoctorAffiliation) error {
	if a.EstablishmentID == uuid.Nil {
		return domainerr.InvalidInput("establishment_id is required")
	}
	if a.ConsultationFee < 0 {
		return domainerr.InvalidInput("consultation_fee must not be negative")
	}
	if _, err := s.doctors.GetByID(ctx, a.DoctorID); err != nil {
		return err
	}
	existing, err := s.affiliations.ListByDoctor(ctx, a.DoctorID)
	if err != nil {
		return err
	}
	for _, aff := range existing {
		if aff.EstablishmentID == a.EstablishmentID {
			return domainerr.InvalidInput("doctor is already affiliated with this establishment")
		}
	}
	return s.affiliations.Add(ctx, a)
}

func (s *Service) ListAffiliationsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DoctorAffiliation, error) {
	return s.affiliations.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListAffiliationsByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]*DoctorAffiliation, error) {
	return s.affiliations.ListByEstablishment(ctx, establishmentID)
}

func (s *Service) RemoveAffiliation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.affiliations.GetByID(ctx, id); err != nil {
		return err
	}
	return s.affiliations.Remove(ctx, id)
}
