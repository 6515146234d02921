package insurance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/domain/establishment"
)

// -- Mock Repositories --

type mockCompanyRepo struct {
	companies map[uuid.UUID]*InsuranceCompany
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[uuid.UUID]*InsuranceCompany)}
}

func (m *mockCompanyRepo) Create(_ context.Context, co *InsuranceCompany) error {
	co.ID = uuid.New()
	m.companies[co.ID] = co
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id uuid.UUID) (*InsuranceCompany, error) {
	co, ok := m.companies[id]
	if !ok {
		return nil, domainerr.NotFound("insurance company", id.String())
	}
	return co, nil
}

func (m *mockCompanyRepo) Update(_ context.Context, co *InsuranceCompany) error {
	m.companies[co.ID] = co
	return nil
}

func (m *mockCompanyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.companies, id)
	return nil
}

func (m *mockCompanyRepo) List(_ context.Context, limit, offset int) ([]*InsuranceCompany, int, error) {
	var result []*InsuranceCompany
	for _, co := range m.companies {
		result = append(result, co)
	}
	return result, len(result), nil
}

type mockPlanRepo struct {
	plans map[uuid.UUID]*InsurancePlan
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[uuid.UUID]*InsurancePlan)}
}

func (m *mockPlanRepo) Create(_ context.Context, pl *InsurancePlan) error {
	pl.ID = uuid.New()
	m.plans[pl.ID] = pl
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id uuid.UUID) (*InsurancePlan, error) {
	pl, ok := m.plans[id]
	if !ok {
		return nil, domainerr.NotFound("insurance plan", id.String())
	}
	return pl, nil
}

func (m *mockPlanRepo) Update(_ context.Context, pl *InsurancePlan) error {
	m.plans[pl.ID] = pl
	return nil
}

func (m *mockPlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.plans, id)
	return nil
}

func (m *mockPlanRepo) ListByCompany(_ context.Context, companyID uuid.UUID, limit, offset int) ([]*InsurancePlan, int, error) {
	var result []*InsurancePlan
	for _, pl := range m.plans {
		if pl.CompanyID == companyID {
			result = append(result, pl)
		}
	}
	return result, len(result), nil
}

type mockPolicyRepo struct {
	policies map[uuid.UUID]*PatientInsurance
}

func newMockPolicyRepo() *mockPolicyRepo {
	return &mockPolicyRepo{policies: make(map[uuid.UUID]*PatientInsurance)}
}

func (m *mockPolicyRepo) Create(_ context.Context, p *PatientInsurance) error {
	p.ID = uuid.New()
	m.policies[p.ID] = p
	return nil
}

func (m *mockPolicyRepo) GetByID(_ context.Context, id uuid.UUID) (*PatientInsurance, error) {
	p, ok := m.policies[id]
	if !ok {
		return nil, domainerr.NotFound("policy", id.String())
	}
	return p, nil
}

func (m *mockPolicyRepo) Update(_ context.Context, p *PatientInsurance) error {
	m.policies[p.ID] = p
	return nil
}

func (m *mockPolicyRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*PatientInsurance, error) {
	var result []*PatientInsurance
	for _, p := range m.policies {
		if p.PatientID == patientID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPolicyRepo) GetPrimaryByPatient(_ context.Context, patientID uuid.UUID) (*PatientInsurance, error) {
	for _, p := range m.policies {
		if p.PatientID == patientID && p.IsPrimary && p.Active {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPolicyRepo) ClearPrimary(_ context.Context, patientID uuid.UUID) error {
	for _, p := range m.policies {
		if p.PatientID == patientID {
			p.IsPrimary = false
		}
	}
	return nil
}

type mockAgreementRepo struct {
	agreements map[uuid.UUID]*EstablishmentInsurance
}

func newMockAgreementRepo() *mockAgreementRepo {
	return &mockAgreementRepo{agreements: make(map[uuid.UUID]*EstablishmentInsurance)}
}

func (m *mockAgreementRepo) Create(_ context.Context, a *EstablishmentInsurance) error {
	a.ID = uuid.New()
	m.agreements[a.ID] = a
	return nil
}

func (m *mockAgreementRepo) GetByID(_ context.Context, id uuid.UUID) (*EstablishmentInsurance, error) {
	a, ok := m.agreements[id]
	if !ok {
		return nil, domainerr.NotFound("agreement", id.String())
	}
	return a, nil
}

func (m *mockAgreementRepo) Update(_ context.Context, a *EstablishmentInsurance) error {
	m.agreements[a.ID] = a
	return nil
}

func (m *mockAgreementRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.agreements, id)
	return nil
}

func (m *mockAgreementRepo) ListByEstablishment(_ context.Context, establishmentID uuid.UUID) ([]*EstablishmentInsurance, error) {
	var result []*EstablishmentInsurance
	for _, a := range m.agreements {
		if a.EstablishmentID == establishmentID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAgreementRepo) GetByEstablishmentAndCompany(_ context.Context, establishmentID, companyID uuid.UUID) (*EstablishmentInsurance, error) {
	for _, a := range m.agreements {
		if a.EstablishmentID == establishmentID && a.CompanyID == companyID {
			return a, nil
		}
	}
	return nil, nil
}

// -- Tests --

type testEnv struct {
	svc        *Service
	companies  *mockCompanyRepo
	plans      *mockPlanRepo
	policies   *mockPolicyRepo
	agreements *mockAgreementRepo
}

func newTestEnv() *testEnv {
	env := &testEnv{
		companies:  newMockCompanyRepo(),
		plans:      newMockPlanRepo(),
		policies:   newMockPolicyRepo(),
		agreements: newMockAgreementRepo(),
	}
	env.svc = NewService(env.companies, env.plans, env.policies, env.agreements)
	return env
}

func (e *testEnv) mustCompany(t *testing.T) *InsuranceCompany {
	t.Helper()
	co := &InsuranceCompany{Name: "NSIA Assurances"}
	if err := e.svc.CreateCompany(context.Background(), co); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return co
}

func (e *testEnv) mustPlan(t *testing.T, companyID uuid.UUID, consultation int) *InsurancePlan {
	t.Helper()
	pl := &InsurancePlan{CompanyID: companyID, Name: "Formule Famille", MonthlyPremium: 15000, ConsultationCoverage: consultation}
	if err := e.svc.CreatePlan(context.Background(), pl); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return pl
}

func (e *testEnv) mustPolicy(t *testing.T, patientID, planID uuid.UUID, primary bool) *PatientInsurance {
	t.Helper()
	p := &PatientInsurance{
		PatientID:    patientID,
		PlanID:       planID,
		PolicyNumber: "POL-2026-0042",
		IsPrimary:    primary,
		ValidFrom:    time.Now().AddDate(0, -1, 0),
		ValidUntil:   time.Now().AddDate(1, 0, 0),
	}
	if err := e.svc.EnrollPolicy(context.Background(), p); err != nil {
		t.Fatalf("enroll policy: %v", err)
	}
	return p
}

func TestCreatePlan_RateValidation(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)

	pl := &InsurancePlan{CompanyID: co.ID, Name: "X", ConsultationCoverage: 101}
	err := env.svc.CreatePlan(context.Background(), pl)
	if k, _ := domainerr.KindOf(err); k != domainerr.KindInvalidInput {
		t.Errorf("expected invalid_input for coverage > 100, got %v", err)
	}

	pl = &InsurancePlan{CompanyID: co.ID, Name: "X", ConsultationCoverage: 50, SurgeryCoverage: intPtr(-5)}
	err = env.svc.CreatePlan(context.Background(), pl)
	if k, _ := domainerr.KindOf(err); k != domainerr.KindInvalidInput {
		t.Errorf("expected invalid_input for negative coverage, got %v", err)
	}
}

func TestEnrollPolicy_PrimaryUniqueness(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)
	pl := env.mustPlan(t, co.ID, 70)
	patientID := uuid.New()

	first := env.mustPolicy(t, patientID, pl.ID, true)
	second := env.mustPolicy(t, patientID, pl.ID, true)

	primaries := 0
	for _, p := range env.policies.policies {
		if p.PatientID == patientID && p.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary policy, got %d", primaries)
	}
	if env.policies.policies[first.ID].IsPrimary {
		t.Error("expected first policy to be demoted")
	}
	if !env.policies.policies[second.ID].IsPrimary {
		t.Error("expected second policy to be primary")
	}
}

func TestEnrollPolicy_InvalidWindow(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)
	pl := env.mustPlan(t, co.ID, 70)

	p := &PatientInsurance{
		PatientID:    uuid.New(),
		PlanID:       pl.ID,
		PolicyNumber: "POL-1",
		ValidFrom:    time.Now(),
		ValidUntil:   time.Now().AddDate(0, 0, -1),
	}
	err := env.svc.EnrollPolicy(context.Background(), p)
	if k, _ := domainerr.KindOf(err); k != domainerr.KindInvalidInput {
		t.Errorf("expected invalid_input, got %v", err)
	}
}

func TestEnrollPolicy_UnknownPlan(t *testing.T) {
	env := newTestEnv()
	p := &PatientInsurance{
		PatientID:    uuid.New(),
		PlanID:       uuid.New(),
		PolicyNumber: "POL-1",
		ValidFrom:    time.Now(),
		ValidUntil:   time.Now().AddDate(1, 0, 0),
	}
	if err := env.svc.EnrollPolicy(context.Background(), p); !domainerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRenewPolicy(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)
	pl := env.mustPlan(t, co.ID, 70)
	p := env.mustPolicy(t, uuid.New(), pl.ID, true)

	if err := env.svc.DeactivatePolicy(context.Background(), p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if env.policies.policies[p.ID].Active {
		t.Fatal("expected policy to be inactive")
	}

	from := time.Now()
	until := from.AddDate(1, 0, 0)
	renewed, err := env.svc.RenewPolicy(context.Background(), p.ID, from, until)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if !renewed.Active {
		t.Error("expected renewed policy to be active")
	}
	if !renewed.ValidUntil.Equal(until) {
		t.Errorf("unexpected valid_until: %v", renewed.ValidUntil)
	}
}

func TestCreateAgreement_RateValidation(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)

	a := &EstablishmentInsurance{
		EstablishmentID:  uuid.New(),
		CompanyID:        co.ID,
		ConsultationRate: intPtr(120),
		ValidFrom:        time.Now(),
		ValidUntil:       time.Now().AddDate(1, 0, 0),
	}
	err := env.svc.CreateAgreement(context.Background(), a)
	if k, _ := domainerr.KindOf(err); k != domainerr.KindInvalidInput {
		t.Errorf("expected invalid_input for rate > 100, got %v", err)
	}
}

func TestQuoteFor_PrimaryPolicy(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)
	pl := env.mustPlan(t, co.ID, 70)
	patientID := uuid.New()
	policy := env.mustPolicy(t, patientID, pl.ID, true)

	bd, policyID, err := env.svc.QuoteFor(context.Background(), patientID, uuid.New(),
		establishment.CategoryConsultation, 25000, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.CoveredAmount != 17500 || bd.PatientAmount != 7500 {
		t.Errorf("unexpected breakdown: %+v", bd)
	}
	if policyID == nil || *policyID != policy.ID {
		t.Errorf("expected policy id %v, got %v", policy.ID, policyID)
	}
}

func TestQuoteFor_AgreementWins(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)
	pl := env.mustPlan(t, co.ID, 70)
	patientID := uuid.New()
	estID := uuid.New()
	env.mustPolicy(t, patientID, pl.ID, true)

	a := &EstablishmentInsurance{
		EstablishmentID:  estID,
		CompanyID:        co.ID,
		ConsultationRate: intPtr(80),
		ValidFrom:        time.Now().AddDate(0, -1, 0),
		ValidUntil:       time.Now().AddDate(1, 0, 0),
	}
	if err := env.svc.CreateAgreement(context.Background(), a); err != nil {
		t.Fatalf("create agreement: %v", err)
	}

	bd, _, err := env.svc.QuoteFor(context.Background(), patientID, estID,
		establishment.CategoryConsultation, 25000, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Rate != 80 {
		t.Errorf("expected agreement rate 80, got %d", bd.Rate)
	}
}

func TestQuoteFor_ExpiredPolicyIsUninsured(t *testing.T) {
	env := newTestEnv()
	co := env.mustCompany(t)
	pl := env.mustPlan(t, co.ID, 70)
	patientID := uuid.New()
	p := env.mustPolicy(t, patientID, pl.ID, true)
	p.ValidFrom = time.Now().AddDate(-2, 0, 0)
	p.ValidUntil = time.Now().AddDate(-1, 0, 0)

	bd, policyID, err := env.svc.QuoteFor(context.Background(), patientID, uuid.New(),
		establishment.CategoryConsultation, 25000, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.CoveredAmount != 0 {
		t.Errorf("expected zero coverage for expired policy, got %d", bd.CoveredAmount)
	}
	if policyID != nil {
		t.Error("expected nil policy id for expired policy")
	}
}

func TestQuoteFor_Uninsured(t *testing.T) {
	env := newTestEnv()
	bd, policyID, err := env.svc.QuoteFor(context.Background(), uuid.New(), uuid.New(),
		establishment.CategoryConsultation, 25000, time.Now())
	if err != nil {
		t.Fatalf("uninsured quote must not fail: %v", err)
	}
	if bd.CoveredAmount != 0 || bd.PatientAmount != 25000 {
		t.Errorf("unexpected breakdown: %+v", bd)
	}
	if policyID != nil {
		t.Error("expected nil policy id")
	}
}
