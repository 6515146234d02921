package insurance

import (
	"time"

	"github.com/careflow/careflow/internal/domain/domainerr"
)

// Breakdown is the financial split of a care service price between the
// insurer and the patient. Amounts are integer CFA francs and always satisfy
// CoveredAmount + PatientAmount == TotalCost.
type Breakdown struct {
	TotalCost     int64 `json:"total_cost"`
	CoveredAmount int64 `json:"covered_amount"`
	PatientAmount int64 `json:"patient_amount"`
	Rate          int   `json:"rate"`
}

// Quote computes the coverage breakdown for a care service priced basePrice
// in the given category. The rate is resolved in precedence order: an
// agreement active at `at` that defines a rate for the category wins; else the
// plan's category coverage (with consultation as generic fallback); else 0.
// An uninsured visit (nil plan and nil agreement) is a valid zero-coverage
// outcome, not an error. Rounding is half-up, with the remainder assigned to
// the patient.
func Quote(basePrice int64, category string, plan *InsurancePlan, agreement *EstablishmentInsurance, at time.Time) (Breakdown, error) {
	if basePrice < 0 {
		return Breakdown{}, domainerr.InvalidInputf("base price must not be negative, got %d", basePrice)
	}

	rate := 0
	if agreement != nil && agreement.ActiveAt(at) {
		if r := agreement.RateFor(category); r != nil {
			rate = *r
		} else if plan != nil {
			rate = plan.RateFor(category)
		}
	} else if plan != nil {
		rate = plan.RateFor(category)
	}
	if rate < 0 || rate > 100 {
		return Breakdown{}, domainerr.InvalidInputf("coverage rate out of range: %d", rate)
	}

	covered := (basePrice*int64(rate) + 50) / 100
	return Breakdown{
		TotalCost:     basePrice,
		CoveredAmount: covered,
		PatientAmount: basePrice - covered,
		Rate:          rate,
	}, nil
}
