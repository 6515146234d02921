package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/appointment"
	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/domain/establishment"
	"github.com/careflow/careflow/internal/domain/identity"
	"github.com/careflow/careflow/internal/platform/notification"
)

type fakeApptRepo struct {
	appointments map[uuid.UUID]*appointment.Appointment
}

func (f *fakeApptRepo) Create(_ context.Context, a *appointment.Appointment) error {
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeApptRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, domainerr.NotFound("appointment", id.String())
	}
	return a, nil
}

func (f *fakeApptRepo) Update(_ context.Context, a *appointment.Appointment) error {
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeApptRepo) List(_ context.Context, _ appointment.Filter, _, _ int) ([]*appointment.Appointment, int, error) {
	return nil, 0, nil
}

type fakeContacts struct {
	patients map[uuid.UUID]*identity.Patient
	doctors  map[uuid.UUID]*identity.Doctor
}

func (f *fakeContacts) GetPatient(_ context.Context, id uuid.UUID) (*identity.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, domainerr.NotFound("patient", id.String())
	}
	return p, nil
}

func (f *fakeContacts) GetDoctor(_ context.Context, id uuid.UUID) (*identity.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, domainerr.NotFound("doctor", id.String())
	}
	return d, nil
}

type fakeEstablishments struct {
	establishments map[uuid.UUID]*establishment.Establishment
	services       map[uuid.UUID]*establishment.CareService
}

func (f *fakeEstablishments) GetEstablishment(_ context.Context, id uuid.UUID) (*establishment.Establishment, error) {
	e, ok := f.establishments[id]
	if !ok {
		return nil, domainerr.NotFound("establishment", id.String())
	}
	return e, nil
}

func (f *fakeEstablishments) GetCareService(_ context.Context, id uuid.UUID) (*establishment.CareService, error) {
	cs, ok := f.services[id]
	if !ok {
		return nil, domainerr.NotFound("care service", id.String())
	}
	return cs, nil
}

type notifierFixture struct {
	notifier *lifecycleNotifier
	email    *notification.MockEmailSender
	sms      *notification.MockSMSSender
	contacts *fakeContacts
	appt     *appointment.Appointment
}

func newNotifierFixture(t *testing.T) *notifierFixture {
	t.Helper()

	email := &notification.MockEmailSender{}
	sms := &notification.MockSMSSender{}
	mgr := notification.NewManager(email, sms, notification.NewTemplateEngine())

	estID := uuid.New()
	csID := uuid.New()
	ests := &fakeEstablishments{
		establishments: map[uuid.UUID]*establishment.Establishment{
			estID: {ID: estID, Name: "Clinique de la Madeleine"},
		},
		services: map[uuid.UUID]*establishment.CareService{
			csID: {ID: csID, EstablishmentID: estID, Name: "Consultation generale"},
		},
	}

	appt := &appointment.Appointment{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		EstablishmentID: estID,
		CareServiceID:   csID,
		ScheduledAt:     time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC),
		DurationMinutes: 30,
		Status:          appointment.StatusScheduled,
		TotalCost:       25000,
		CoveredAmount:   17500,
		PatientAmount:   7500,
	}
	repo := &fakeApptRepo{appointments: map[uuid.UUID]*appointment.Appointment{appt.ID: appt}}

	contacts := &fakeContacts{
		patients: map[uuid.UUID]*identity.Patient{},
		doctors:  map[uuid.UUID]*identity.Doctor{},
	}

	return &notifierFixture{
		notifier: &lifecycleNotifier{
			manager:        mgr,
			appointments:   repo,
			patients:       contacts,
			doctors:        contacts,
			establishments: ests,
		},
		email:    email,
		sms:      sms,
		contacts: contacts,
		appt:     appt,
	}
}

func strPtr(s string) *string { return &s }

func TestLifecycleNotifier_EmailForBooking(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.contacts.patients[fx.appt.PatientID] = &identity.Patient{
		ID:        fx.appt.PatientID,
		FirstName: "Awa",
		LastName:  "Diop",
		Phone:     "+221770000000",
		Email:     strPtr("awa.diop@example.sn"),
	}

	err := fx.notifier.Notify(context.Background(), appointment.Event{
		Kind:          appointment.EventCreated,
		AppointmentID: fx.appt.ID,
		Recipients:    []uuid.UUID{fx.appt.PatientID},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	calls := fx.email.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "awa.diop@example.sn" {
		t.Errorf("unexpected recipient: %s", calls[0].To)
	}
	if !strings.Contains(calls[0].Body, "7500") {
		t.Errorf("expected patient amount in body, got: %s", calls[0].Body)
	}
	if !strings.Contains(calls[0].Body, "Clinique de la Madeleine") {
		t.Errorf("expected establishment name in body, got: %s", calls[0].Body)
	}
}

func TestLifecycleNotifier_SMSFallback(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.contacts.patients[fx.appt.PatientID] = &identity.Patient{
		ID:        fx.appt.PatientID,
		FirstName: "Moussa",
		LastName:  "Fall",
		Phone:     "+221761234567",
	}

	err := fx.notifier.Notify(context.Background(), appointment.Event{
		Kind:          appointment.EventCreated,
		AppointmentID: fx.appt.ID,
		Recipients:    []uuid.UUID{fx.appt.PatientID},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if got := len(fx.email.Calls()); got != 0 {
		t.Errorf("expected no emails, got %d", got)
	}
	calls := fx.sms.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(calls))
	}
	if calls[0].To != "+221761234567" {
		t.Errorf("unexpected recipient: %s", calls[0].To)
	}
}

func TestLifecycleNotifier_CancellationSMSFallback(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.contacts.patients[fx.appt.PatientID] = &identity.Patient{
		ID:        fx.appt.PatientID,
		FirstName: "Moussa",
		LastName:  "Fall",
		Phone:     "+221761234567",
	}

	err := fx.notifier.Notify(context.Background(), appointment.Event{
		Kind:          appointment.EventCancelled,
		AppointmentID: fx.appt.ID,
		Recipients:    []uuid.UUID{fx.appt.PatientID},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if got := len(fx.email.Calls()); got != 0 {
		t.Errorf("expected no emails, got %d", got)
	}
	calls := fx.sms.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 SMS, got %d", len(calls))
	}
	if calls[0].To != "+221761234567" {
		t.Errorf("unexpected recipient: %s", calls[0].To)
	}
	if !strings.Contains(calls[0].Body, "cancelled") {
		t.Errorf("expected cancellation wording in SMS, got: %s", calls[0].Body)
	}
}

func TestLifecycleNotifier_CancellationIncludesReason(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.appt.Reason = strPtr("patient request")
	fx.contacts.patients[fx.appt.PatientID] = &identity.Patient{
		ID:        fx.appt.PatientID,
		FirstName: "Awa",
		LastName:  "Diop",
		Phone:     "+221770000000",
		Email:     strPtr("awa.diop@example.sn"),
	}

	err := fx.notifier.Notify(context.Background(), appointment.Event{
		Kind:          appointment.EventCancelled,
		AppointmentID: fx.appt.ID,
		Recipients:    []uuid.UUID{fx.appt.PatientID},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	calls := fx.email.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Body, "patient request") {
		t.Errorf("expected cancellation reason in body, got: %s", calls[0].Body)
	}
}

func TestLifecycleNotifier_UnknownKindIgnored(t *testing.T) {
	fx := newNotifierFixture(t)

	err := fx.notifier.Notify(context.Background(), appointment.Event{
		Kind:          "APPOINTMENT_RESCHEDULED",
		AppointmentID: fx.appt.ID,
		Recipients:    []uuid.UUID{fx.appt.PatientID},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := len(fx.email.Calls()) + len(fx.sms.Calls()); got != 0 {
		t.Errorf("expected no deliveries for unknown kind, got %d", got)
	}
}

func TestLifecycleNotifier_UnknownRecipientSkipped(t *testing.T) {
	fx := newNotifierFixture(t)

	err := fx.notifier.Notify(context.Background(), appointment.Event{
		Kind:          appointment.EventCreated,
		AppointmentID: fx.appt.ID,
		Recipients:    []uuid.UUID{uuid.New()},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := len(fx.email.Calls()) + len(fx.sms.Calls()); got != 0 {
		t.Errorf("expected no deliveries, got %d", got)
	}
}
