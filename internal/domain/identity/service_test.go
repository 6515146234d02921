package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/domainerr"
)

// -- Mock Repositories --

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, domainerr.NotFound("patient", id.String())
	}
	return p, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockPatientRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return m.List(context.Background(), limit, offset)
}

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, domainerr.NotFound("doctor", id.String())
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockDoctorRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return m.List(context.Background(), limit, offset)
}

type mockAffiliationRepo struct {
	affiliations map[uuid.UUID]*DoctorAffiliation
}

func newMockAffiliationRepo() *mockAffiliationRepo {
	return &mockAffiliationRepo{affiliations: make(map[uuid.UUID]*DoctorAffiliation)}
}

func (m *mockAffiliationRepo) Add(_ context.Context, a *DoctorAffiliation) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.affiliations[a.ID] = a
	return nil
}

func (m *mockAffiliationRepo) GetByID(_ context.Context, id uuid.UUID) (*DoctorAffiliation, error) {
	a, ok := m.affiliations[id]
	if !ok {
		return nil, domainerr.NotFound("affiliation", id.String())
	}
	return a, nil
}

func (m *mockAffiliationRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*DoctorAffiliation, error) {
	var result []*DoctorAffiliation
	for _, a := range m.affiliations {
		if a.DoctorID == doctorID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAffiliationRepo) ListByEstablishment(_ context.Context, establishmentID uuid.UUID) ([]*DoctorAffiliation, error) {
	var result []*DoctorAffiliation
	for _, a := range m.affiliations {
		if a.EstablishmentID == establishmentID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAffiliationRepo) Remove(_ context.Context, id uuid.UUID) error {
	delete(m.affiliations, id)
	return nil
}

// -- Tests --

func newTestService() *Service {
	return NewService(newMockPatientRepo(), newMockDoctorRepo(), newMockAffiliationRepo())
}

func TestCreatePatient(t *testing.T) {
	svc := newTestService()
	p := &Patient{FirstName: "Awa", LastName: "Diop", Phone: "+221771234567"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if p.FullName() != "Awa Diop" {
		t.Errorf("unexpected full name: %s", p.FullName())
	}
}

func TestCreatePatient_MissingFields(t *testing.T) {
	svc := newTestService()
	if err := svc.CreatePatient(context.Background(), &Patient{FirstName: "Awa"}); err == nil {
		t.Error("expected error for missing last name")
	}
	if err := svc.CreatePatient(context.Background(), &Patient{FirstName: "Awa", LastName: "Diop"}); err == nil {
		t.Error("expected error for missing phone")
	}
}

func TestGetPatient_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.GetPatient(context.Background(), uuid.New())
	if !domainerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateDoctor(t *testing.T) {
	svc := newTestService()
	d := &Doctor{FirstName: "Mamadou", LastName: "Ndiaye", Specialty: "Cardiologie", LicenseNumber: "SN-MED-4521", Phone: "+221776543210"}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.FullName() != "Dr Mamadou Ndiaye" {
		t.Errorf("unexpected full name: %s", d.FullName())
	}
}

func TestCreateDoctor_MissingLicense(t *testing.T) {
	svc := newTestService()
	d := &Doctor{FirstName: "Mamadou", LastName: "Ndiaye", Specialty: "Cardiologie", Phone: "+221776543210"}
	err := svc.CreateDoctor(context.Background(), d)
	if k, _ := domainerr.KindOf(err); k != domainerr.KindInvalidInput {
		t.Errorf("expected invalid_input, got %v", err)
	}
}

func TestAddAffiliation(t *testing.T) {
	svc := newTestService()
	d := &Doctor{FirstName: "Fatou", LastName: "Sall", Specialty: "Pediatrie", LicenseNumber: "SN-MED-7810", Phone: "+221770001122"}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("create doctor: %v", err)
	}

	estID := uuid.New()
	a := &DoctorAffiliation{DoctorID: d.ID, EstablishmentID: estID, ConsultationFee: 15000}
	if err := svc.AddAffiliation(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	affs, err := svc.ListAffiliationsByDoctor(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("list affiliations: %v", err)
	}
	if len(affs) != 1 {
		t.Fatalf("expected 1 affiliation, got %d", len(affs))
	}
}

func TestAddAffiliation_Duplicate(t *testing.T) {
	svc := newTestService()
	d := &Doctor{FirstName: "Fatou", LastName: "Sall", Specialty: "Pediatrie", LicenseNumber: "SN-MED-7810", Phone: "+221770001122"}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("create doctor: %v", err)
	}

	estID := uuid.New()
	if err := svc.AddAffiliation(context.Background(), &DoctorAffiliation{DoctorID: d.ID, EstablishmentID: estID, ConsultationFee: 15000}); err != nil {
		t.Fatalf("first affiliation: %v", err)
	}
	err := svc.AddAffiliation(context.Background(), &DoctorAffiliation{DoctorID: d.ID, EstablishmentID: estID, ConsultationFee: 20000})
	if k, _ := domainerr.KindOf(err); k != domainerr.KindInvalidInput {
		t.Errorf("expected invalid_input for duplicate affiliation, got %v", err)
	}
}

func TestAddAffiliation_UnknownDoctor(t *testing.T) {
	svc := newTestService()
	a := &DoctorAffiliation{DoctorID: uuid.New(), EstablishmentID: uuid.New(), ConsultationFee: 15000}
	if err := svc.AddAffiliation(context.Background(), a); !domainerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
