package identity

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Phone     string     `db:"phone" json:"phone"`
	Email     *string    `db:"email" json:"email,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	City      *string    `db:"city" json:"city,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Specialty     string    `db:"specialty" json:"specialty"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Phone         string    `db:"phone" json:"phone"`
	Email         *string   `db:"email" json:"email,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) FullName() string {
	return "Dr " + d.FirstName + " " + d.LastName
}

// DoctorAffiliation links a doctor to an establishment where they practice.
// ConsultationFee is the per-establishment fee in integer CFA francs; the
// schedule note is free text ("Lun-Ven 9h-13h").
type DoctorAffiliation struct {
	ID              uuid.UUID `db:"id" json:"id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	EstablishmentID uuid.UUID `db:"establishment_id" json:"establishment_id"`
	ConsultationFee int64     `db:"consultation_fee" json:"consultation_fee"`
	ScheduleNote    *string   `db:"schedule_note" json:"schedule_note,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
