package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. SCHEDULED is the initial state; COMPLETED, CANCELLED
// and NO_SHOW are terminal.
const (
	StatusScheduled = "SCHEDULED"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

var transitions = map[string]map[string]bool{
	StatusScheduled: {
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusCompleted: true,
		StatusNoShow:    true,
	},
	StatusConfirmed: {
		StatusCancelled: true,
		StatusCompleted: true,
		StatusNoShow:    true,
	},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// IsTerminal reports whether no further transitions leave the status.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Appointment maps to the appointment table. TotalCost, CoveredAmount and
// PatientAmount are the authoritative financial record snapshotted at booking
// time; they are never recomputed, even if plan or agreement rates change
// later. Amounts are integer CFA francs.
type Appointment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID        *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	EstablishmentID uuid.UUID  `db:"establishment_id" json:"establishment_id"`
	CareServiceID   uuid.UUID  `db:"care_service_id" json:"care_service_id"`
	ScheduledAt     time.Time  `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Reason          *string    `db:"reason" json:"reason,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	IsUrgent        bool       `db:"is_urgent" json:"is_urgent"`
	Status          string     `db:"status" json:"status"`
	TotalCost       int64      `db:"total_cost" json:"total_cost"`
	CoveredAmount   int64      `db:"covered_amount" json:"covered_amount"`
	PatientAmount   int64      `db:"patient_amount" json:"patient_amount"`
	PolicyID        *uuid.UUID `db:"policy_id" json:"policy_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the booked slot.
func (a *Appointment) End() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps reports whether two half-open slots [start, end) intersect.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.ScheduledAt.Before(end) && start.Before(a.End())
}
