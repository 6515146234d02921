// Package fixtures provides pre-populated domain entities for tests. The
// builders return valid, internally consistent records with Senegalese
// defaults; callers mutate fields as needed. Nothing here is authoritative:
// production code must never import this package.
package fixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/appointment"
	"github.com/careflow/careflow/internal/domain/establishment"
	"github.com/careflow/careflow/internal/domain/identity"
	"github.com/careflow/careflow/internal/domain/insurance"
)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

// Patient returns a patient living in Dakar.
func Patient() *identity.Patient {
	return &identity.Patient{
		ID:        uuid.New(),
		FirstName: "Awa",
		LastName:  "Diop",
		Phone:     "+221771234567",
		Email:     strPtr("awa.diop@example.sn"),
		City:      strPtr("Dakar"),
	}
}

// Doctor returns a licensed general practitioner.
func Doctor() *identity.Doctor {
	return &identity.Doctor{
		ID:            uuid.New(),
		FirstName:     "Mamadou",
		LastName:      "Ndiaye",
		Specialty:     "General Medicine",
		LicenseNumber: "SN-MED-4521",
		Phone:         "+221776543210",
		Email:         strPtr("m.ndiaye@example.sn"),
	}
}

// Clinic returns a clinic in Dakar.
func Clinic() *establishment.Establishment {
	return &establishment.Establishment{
		ID:    uuid.New(),
		Name:  "Clinique de la Madeleine",
		Kind:  establishment.KindClinic,
		City:  "Dakar",
		Phone: "+221338891010",
	}
}

// Consultation returns an active general consultation priced at 25 000 FCFA,
// owned by the given establishment.
func Consultation(establishmentID uuid.UUID) *establishment.CareService {
	return &establishment.CareService{
		ID:              uuid.New(),
		EstablishmentID: establishmentID,
		Name:            "Consultation generale",
		Category:        establishment.CategoryConsultation,
		BasePrice:       25000,
		DurationMinutes: 30,
		Active:          true,
	}
}

// Company returns an insurance company.
func Company() *insurance.InsuranceCompany {
	return &insurance.InsuranceCompany{
		ID:    uuid.New(),
		Name:  "NSIA Assurances",
		Phone: strPtr("+221338235050"),
	}
}

// Plan returns a family plan covering 70% of consultations, owned by the
// given company.
func Plan(companyID uuid.UUID) *insurance.InsurancePlan {
	return &insurance.InsurancePlan{
		ID:                   uuid.New(),
		CompanyID:            companyID,
		Name:                 "Formule Famille",
		MonthlyPremium:       15000,
		ConsultationCoverage: 70,
		SurgeryCoverage:      intPtr(85),
		MaternityCoverage:    intPtr(60),
	}
}

// Policy returns an active primary policy valid for the calendar year
// containing at.
func Policy(patientID, planID uuid.UUID, at time.Time) *insurance.PatientInsurance {
	return &insurance.PatientInsurance{
		ID:           uuid.New(),
		PatientID:    patientID,
		PlanID:       planID,
		PolicyNumber: "POL-2026-0042",
		IsPrimary:    true,
		ValidFrom:    time.Date(at.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:   time.Date(at.Year(), 12, 31, 23, 59, 59, 0, time.UTC),
		Active:       true,
	}
}

// Agreement returns an active agreement between establishment and company
// covering consultations at 80%, valid for the calendar year containing at.
func Agreement(establishmentID, companyID uuid.UUID, at time.Time) *insurance.EstablishmentInsurance {
	return &insurance.EstablishmentInsurance{
		ID:               uuid.New(),
		EstablishmentID:  establishmentID,
		CompanyID:        companyID,
		ConsultationRate: intPtr(80),
		ValidFrom:        time.Date(at.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:       time.Date(at.Year(), 12, 31, 23, 59, 59, 0, time.UTC),
		DirectBilling:    true,
		Active:           true,
	}
}

// Scheduled returns a SCHEDULED appointment with a consistent financial
// snapshot for the given participants.
func Scheduled(patientID, establishmentID, careServiceID uuid.UUID, doctorID *uuid.UUID, at time.Time) *appointment.Appointment {
	return &appointment.Appointment{
		ID:              uuid.New(),
		PatientID:       patientID,
		DoctorID:        doctorID,
		EstablishmentID: establishmentID,
		CareServiceID:   careServiceID,
		ScheduledAt:     at,
		DurationMinutes: 30,
		Status:          appointment.StatusScheduled,
		TotalCost:       25000,
		CoveredAmount:   17500,
		PatientAmount:   7500,
	}
}
