package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows appointment listings. Nil/zero fields are ignored.
type Filter struct {
	PatientID       *uuid.UUID
	DoctorID        *uuid.UUID
	EstablishmentID *uuid.UUID
	Status          string
	From            *time.Time
	To              *time.Time
}

// Repository persists appointments. Create must reject a slot already taken
// by the same doctor at an overlapping time with domainerr.DoctorUnavailable,
// atomically under concurrent callers.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
}
