package insurance

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/domain/establishment"
)

func intPtr(v int) *int { return &v }

func activeAgreement(rates ...func(*EstablishmentInsurance)) *EstablishmentInsurance {
	a := &EstablishmentInsurance{
		ID:              uuid.New(),
		EstablishmentID: uuid.New(),
		CompanyID:       uuid.New(),
		ValidFrom:       time.Now().AddDate(0, -6, 0),
		ValidUntil:      time.Now().AddDate(1, 0, 0),
		Active:          true,
	}
	for _, fn := range rates {
		fn(a)
	}
	return a
}

func TestQuote_Reconciliation(t *testing.T) {
	prices := []int64{0, 1, 7, 25000, 300000}
	rates := []int{0, 15, 33, 70, 100}
	now := time.Now()

	for _, price := range prices {
		for _, rate := range rates {
			plan := &InsurancePlan{ConsultationCoverage: rate}
			bd, err := Quote(price, establishment.CategoryConsultation, plan, nil, now)
			if err != nil {
				t.Fatalf("price=%d rate=%d: unexpected error: %v", price, rate, err)
			}
			if bd.CoveredAmount+bd.PatientAmount != price {
				t.Errorf("price=%d rate=%d: covered %d + patient %d != %d",
					price, rate, bd.CoveredAmount, bd.PatientAmount, price)
			}
			want := (price*int64(rate) + 50) / 100
			if bd.CoveredAmount != want {
				t.Errorf("price=%d rate=%d: covered = %d, want %d", price, rate, bd.CoveredAmount, want)
			}
			if bd.CoveredAmount < 0 {
				t.Errorf("price=%d rate=%d: negative covered amount %d", price, rate, bd.CoveredAmount)
			}
		}
	}
}

func TestQuote_RoundHalfUp(t *testing.T) {
	// 10 * 15% = 1.5, rounds up; the remainder goes to the patient.
	plan := &InsurancePlan{ConsultationCoverage: 15}
	bd, err := Quote(10, establishment.CategoryConsultation, plan, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.CoveredAmount != 2 || bd.PatientAmount != 8 {
		t.Errorf("expected 2/8 split, got %d/%d", bd.CoveredAmount, bd.PatientAmount)
	}
}

func TestQuote_StandardConsultation(t *testing.T) {
	plan := &InsurancePlan{ConsultationCoverage: 70}
	bd, err := Quote(25000, establishment.CategoryConsultation, plan, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.CoveredAmount != 17500 {
		t.Errorf("covered = %d, want 17500", bd.CoveredAmount)
	}
	if bd.PatientAmount != 7500 {
		t.Errorf("patient = %d, want 7500", bd.PatientAmount)
	}
	if bd.Rate != 70 {
		t.Errorf("rate = %d, want 70", bd.Rate)
	}
}

func TestQuote_AgreementPrecedence(t *testing.T) {
	plan := &InsurancePlan{ConsultationCoverage: 70}
	agreement := activeAgreement(func(a *EstablishmentInsurance) { a.ConsultationRate = intPtr(80) })

	bd, err := Quote(10000, establishment.CategoryConsultation, plan, agreement, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Rate != 80 {
		t.Errorf("expected agreement rate 80 to win over plan 70, got %d", bd.Rate)
	}
	if bd.CoveredAmount != 8000 {
		t.Errorf("covered = %d, want 8000", bd.CoveredAmount)
	}
}

func TestQuote_ExpiredAgreementFallsBack(t *testing.T) {
	plan := &InsurancePlan{ConsultationCoverage: 70}
	agreement := activeAgreement(func(a *EstablishmentInsurance) { a.ConsultationRate = intPtr(80) })
	agreement.ValidFrom = time.Now().AddDate(-2, 0, 0)
	agreement.ValidUntil = time.Now().AddDate(-1, 0, 0)

	bd, err := Quote(10000, establishment.CategoryConsultation, plan, agreement, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Rate != 70 {
		t.Errorf("expected fallback to plan rate 70, got %d", bd.Rate)
	}
}

func TestQuote_AgreementWithoutCategoryRate(t *testing.T) {
	// Agreement covers surgery only; an imaging visit uses the plan.
	plan := &InsurancePlan{ConsultationCoverage: 50, ImagingCoverage: intPtr(60)}
	agreement := activeAgreement(func(a *EstablishmentInsurance) { a.SurgeryRate = intPtr(90) })

	bd, err := Quote(20000, establishment.CategoryImaging, plan, agreement, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Rate != 60 {
		t.Errorf("expected plan imaging rate 60, got %d", bd.Rate)
	}
}

func TestQuote_PlanCategoryFallback(t *testing.T) {
	// No maternity field on the plan; generic consultation coverage applies.
	plan := &InsurancePlan{ConsultationCoverage: 40, SurgeryCoverage: intPtr(85)}

	bd, err := Quote(150000, establishment.CategoryMaternity, plan, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Rate != 40 {
		t.Errorf("expected generic fallback 40, got %d", bd.Rate)
	}

	bd, err = Quote(150000, establishment.CategorySurgery, plan, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.Rate != 85 {
		t.Errorf("expected surgery rate 85, got %d", bd.Rate)
	}
}

func TestQuote_Uninsured(t *testing.T) {
	bd, err := Quote(25000, establishment.CategoryConsultation, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("uninsured visit must not fail: %v", err)
	}
	if bd.CoveredAmount != 0 {
		t.Errorf("covered = %d, want 0", bd.CoveredAmount)
	}
	if bd.PatientAmount != 25000 {
		t.Errorf("patient = %d, want 25000", bd.PatientAmount)
	}
}

func TestQuote_NegativePrice(t *testing.T) {
	_, err := Quote(-1, establishment.CategoryConsultation, nil, nil, time.Now())
	if k, _ := domainerr.KindOf(err); k != domainerr.KindInvalidInput {
		t.Errorf("expected invalid_input, got %v", err)
	}
}
