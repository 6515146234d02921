package establishment

import (
	"time"

	"github.com/google/uuid"
)

// Establishment kinds.
const (
	KindHospital      = "HOSPITAL"
	KindClinic        = "CLINIC"
	KindPharmacy      = "PHARMACY"
	KindMedicalCenter = "MEDICAL_CENTER"
)

// Care service categories. Coverage rates are negotiated per category.
const (
	CategoryConsultation = "CONSULTATION"
	CategoryEmergency    = "EMERGENCY"
	CategorySurgery      = "SURGERY"
	CategoryMaternity    = "MATERNITY"
	CategoryLaboratory   = "LABORATORY"
	CategoryImaging      = "IMAGING"
)

var validKinds = map[string]bool{
	KindHospital:      true,
	KindClinic:        true,
	KindPharmacy:      true,
	KindMedicalCenter: true,
}

var validCategories = map[string]bool{
	CategoryConsultation: true,
	CategoryEmergency:    true,
	CategorySurgery:      true,
	CategoryMaternity:    true,
	CategoryLaboratory:   true,
	CategoryImaging:      true,
}

// ValidKind reports whether kind is a known establishment kind.
func ValidKind(kind string) bool { return validKinds[kind] }

// ValidCategory reports whether category is a known care service category.
func ValidCategory(category string) bool { return validCategories[category] }

// Establishment maps to the establishment table.
type Establishment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Kind      string    `db:"kind" json:"kind"`
	City      string    `db:"city" json:"city"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     string    `db:"phone" json:"phone"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CareService maps to the care_service table. BasePrice is in integer CFA
// francs; XOF has no minor unit.
type CareService struct {
	ID              uuid.UUID `db:"id" json:"id"`
	EstablishmentID uuid.UUID `db:"establishment_id" json:"establishment_id"`
	Name            string    `db:"name" json:"name"`
	Category        string    `db:"category" json:"category"`
	BasePrice       int64     `db:"base_price" json:"base_price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Description     *string   `db:"description" json:"description,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
