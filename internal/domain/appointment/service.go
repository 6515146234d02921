package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/domain/establishment"
	"github.com/careflow/careflow/internal/domain/identity"
	"github.com/careflow/careflow/internal/domain/insurance"
)

// PatientSource resolves patient references. Satisfied by identity.Service.
type PatientSource interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

// DoctorSource resolves doctor references. Satisfied by identity.Service.
type DoctorSource interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
}

// EstablishmentSource resolves establishment and care service references.
// Satisfied by establishment.Service.
type EstablishmentSource interface {
	GetEstablishment(ctx context.Context, id uuid.UUID) (*establishment.Establishment, error)
	GetCareService(ctx context.Context, id uuid.UUID) (*establishment.CareService, error)
}

// CoverageSource computes the financial breakdown at booking time. Satisfied
// by insurance.Service.
type CoverageSource interface {
	QuoteFor(ctx context.Context, patientID, establishmentID uuid.UUID, category string, basePrice int64, at time.Time) (insurance.Breakdown, *uuid.UUID, error)
}

// TxRunner executes fn atomically; the server wires db.InTx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// CreateRequest carries the validated arguments for booking an appointment.
// DoctorID is optional; the establishment may assign a doctor later. The
// overlap guard applies only when a doctor is specified.
type CreateRequest struct {
	PatientID       uuid.UUID  `json:"patient_id"`
	DoctorID        *uuid.UUID `json:"doctor_id,omitempty"`
	EstablishmentID uuid.UUID  `json:"establishment_id"`
	CareServiceID   uuid.UUID  `json:"care_service_id"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Reason          *string    `json:"reason,omitempty"`
	IsUrgent        bool       `json:"is_urgent"`
}

// UpdateDetailsRequest patches mutable fields of a non-terminal appointment.
// Nil fields are left unchanged.
type UpdateDetailsRequest struct {
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// Service is the appointment lifecycle manager.
type Service struct {
	repo           Repository
	patients       PatientSource
	doctors        DoctorSource
	establishments EstablishmentSource
	coverage       CoverageSource
	notifier       Notifier
	runTx          TxRunner
	now            func() time.Time
}

func NewService(repo Repository, patients PatientSource, doctors DoctorSource, establishments EstablishmentSource, coverage CoverageSource) *Service {
	return &Service{
		repo:           repo,
		patients:       patients,
		doctors:        doctors,
		establishments: establishments,
		coverage:       coverage,
		runTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier attaches a lifecycle notifier. Without one, events are dropped.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetTxRunner replaces the transaction runner.
func (s *Service) SetTxRunner(run TxRunner) {
	s.runTx = run
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create books an appointment in SCHEDULED state. The coverage breakdown is
// computed from the care service's base price and the patient's primary
// policy, then persisted with the appointment as its permanent financial
// record. The whole insert is one transaction: either the appointment commits
// with a consistent cost split or nothing is persisted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if req.ScheduledAt.IsZero() {
		return nil, domainerr.InvalidInput("scheduled_at is required")
	}
	if req.DurationMinutes < 0 {
		return nil, domainerr.InvalidInput("duration_minutes must not be negative")
	}

	patient, err := s.patients.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	var doctor *identity.Doctor
	if req.DoctorID != nil {
		doctor, err = s.doctors.GetDoctor(ctx, *req.DoctorID)
		if err != nil {
			return nil, err
		}
	}
	est, err := s.establishments.GetEstablishment(ctx, req.EstablishmentID)
	if err != nil {
		return nil, err
	}
	cs, err := s.establishments.GetCareService(ctx, req.CareServiceID)
	if err != nil {
		return nil, err
	}
	if cs.EstablishmentID != est.ID {
		return nil, domainerr.InvalidInput("care service does not belong to this establishment")
	}
	if !cs.Active {
		return nil, domainerr.InvalidInputf("care service %s is not bookable", cs.Name)
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = cs.DurationMinutes
	}

	bd, policyID, err := s.coverage.QuoteFor(ctx, patient.ID, est.ID, cs.Category, cs.BasePrice, req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		PatientID:       patient.ID,
		DoctorID:        req.DoctorID,
		EstablishmentID: est.ID,
		CareServiceID:   cs.ID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Reason:          req.Reason,
		IsUrgent:        req.IsUrgent,
		Status:          StatusScheduled,
		TotalCost:       bd.TotalCost,
		CoveredAmount:   bd.CoveredAmount,
		PatientAmount:   bd.PatientAmount,
		PolicyID:        policyID,
	}
	if err := s.runTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, appt)
	}); err != nil {
		return nil, err
	}

	recipients := []uuid.UUID{patient.ID}
	msg := fmt.Sprintf("Appointment booked at %s on %s for %s.",
		est.Name, appt.ScheduledAt.Format("02/01/2006 15:04"), cs.Name)
	if doctor != nil {
		recipients = append(recipients, doctor.ID)
		msg = fmt.Sprintf("Appointment booked with %s at %s on %s for %s.",
			doctor.FullName(), est.Name, appt.ScheduledAt.Format("02/01/2006 15:04"), cs.Name)
	}
	s.notify(ctx, Event{
		Kind:          EventCreated,
		AppointmentID: appt.ID,
		Recipients:    recipients,
		Message:       msg,
	})
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// Confirm moves SCHEDULED -> CONFIRMED.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusConfirmed, nil)
}

// Cancel moves a non-terminal appointment to CANCELLED and emits a
// cancellation event. Past appointments cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.transition(ctx, id, StatusCancelled, func(a *Appointment) error {
		if !a.ScheduledAt.After(s.now()) {
			return domainerr.InvalidState("cannot cancel an appointment already in the past")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recipients := []uuid.UUID{appt.PatientID}
	if appt.DoctorID != nil {
		recipients = append(recipients, *appt.DoctorID)
	}
	s.notify(ctx, Event{
		Kind:          EventCancelled,
		AppointmentID: appt.ID,
		Recipients:    recipients,
		Message:       fmt.Sprintf("Appointment of %s has been cancelled.", appt.ScheduledAt.Format("02/01/2006 15:04")),
	})
	return appt, nil
}

// Complete marks a past appointment as done.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, s.mustHaveStarted)
}

// MarkNoShow marks a past appointment as missed by the patient.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusNoShow, s.mustHaveStarted)
}

func (s *Service) mustHaveStarted(a *Appointment) error {
	if a.ScheduledAt.After(s.now()) {
		return domainerr.InvalidState("appointment has not taken place yet")
	}
	return nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string, guard func(*Appointment) error) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(appt.Status, to) {
		return nil, domainerr.InvalidStatef("cannot move appointment from %s to %s", appt.Status, to)
	}
	if guard != nil {
		if err := guard(appt); err != nil {
			return nil, err
		}
	}
	appt.Status = to
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// UpdateDetails reschedules or annotates a non-terminal appointment. The
// financial snapshot is never touched.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, patch UpdateDetailsRequest) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if IsTerminal(appt.Status) {
		return nil, domainerr.InvalidStatef("appointment is %s and can no longer be modified", appt.Status)
	}
	if patch.ScheduledAt != nil {
		if patch.ScheduledAt.IsZero() {
			return nil, domainerr.InvalidInput("scheduled_at must not be zero")
		}
		appt.ScheduledAt = *patch.ScheduledAt
	}
	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes <= 0 {
			return nil, domainerr.InvalidInput("duration_minutes must be positive")
		}
		appt.DurationMinutes = *patch.DurationMinutes
	}
	if patch.Reason != nil {
		appt.Reason = patch.Reason
	}
	if patch.Notes != nil {
		appt.Notes = patch.Notes
	}
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) notify(ctx context.Context, ev Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("kind", ev.Kind).
			Str("appointment_id", ev.AppointmentID.String()).
			Msg("lifecycle notification failed")
	}
}
