package fixtures

import (
	"testing"
	"time"

	"github.com/careflow/careflow/internal/domain/establishment"
	"github.com/careflow/careflow/internal/domain/insurance"
)

var at = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestPolicyCoversReferenceDate(t *testing.T) {
	p := Patient()
	plan := Plan(Company().ID)
	pol := Policy(p.ID, plan.ID, at)
	if !pol.ActiveAt(at) {
		t.Error("expected policy to be active at the reference date")
	}
	if !pol.IsPrimary {
		t.Error("expected a primary policy")
	}
}

func TestAgreementCoversReferenceDate(t *testing.T) {
	ag := Agreement(Clinic().ID, Company().ID, at)
	if !ag.ActiveAt(at) {
		t.Error("expected agreement to be active at the reference date")
	}
	if r := ag.RateFor(establishment.CategoryConsultation); r == nil || *r != 80 {
		t.Errorf("expected consultation rate 80, got %v", r)
	}
}

func TestCareServiceIsValid(t *testing.T) {
	cs := Consultation(Clinic().ID)
	if !establishment.ValidCategory(cs.Category) {
		t.Errorf("invalid category: %s", cs.Category)
	}
	if !cs.Active {
		t.Error("expected an active care service")
	}
}

func TestScheduledSnapshotMatchesCalculator(t *testing.T) {
	est := Clinic()
	cs := Consultation(est.ID)
	plan := Plan(Company().ID)
	a := Scheduled(Patient().ID, est.ID, cs.ID, nil, at)

	if a.TotalCost != a.CoveredAmount+a.PatientAmount {
		t.Errorf("snapshot does not add up: %d != %d + %d", a.TotalCost, a.CoveredAmount, a.PatientAmount)
	}

	b, err := insurance.Quote(cs.BasePrice, cs.Category, plan, nil, at)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if b.CoveredAmount != a.CoveredAmount || b.PatientAmount != a.PatientAmount {
		t.Errorf("snapshot %d/%d disagrees with calculator %d/%d",
			a.CoveredAmount, a.PatientAmount, b.CoveredAmount, b.PatientAmount)
	}
}
