package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Notification event kinds.
const (
	EventCreated   = "APPOINTMENT_CREATED"
	EventCancelled = "APPOINTMENT_CANCELLED"
)

// Event describes a lifecycle change worth telling the participants about.
type Event struct {
	Kind          string      `json:"kind"`
	AppointmentID uuid.UUID   `json:"appointment_id"`
	Recipients    []uuid.UUID `json:"recipients"`
	Message       string      `json:"message"`
}

// Notifier delivers lifecycle events. Delivery is best-effort; the lifecycle
// manager logs failures and never rolls back the domain operation.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}
