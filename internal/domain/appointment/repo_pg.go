package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, establishment_id, care_service_id,
	scheduled_at, duration_minutes, reason, notes, is_urgent, status,
	total_cost, covered_amount, patient_amount, policy_id, created_at, updated_at`

// exclusionViolation is raised by the doctor-overlap exclusion constraint.
const exclusionViolation = "23P01"

// Create inserts the appointment only when the doctor's slot is free, in one
// statement so concurrent bookings cannot both pass the check. The schema's
// exclusion constraint backs the same guarantee; either path surfaces as
// DoctorUnavailable.
func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (
			id, patient_id, doctor_id, establishment_id, care_service_id,
			scheduled_at, duration_minutes, reason, notes, is_urgent, status,
			total_cost, covered_amount, patient_amount, policy_id
		)
		SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
		WHERE $3::uuid IS NULL OR NOT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $3
			  AND status IN ('SCHEDULED','CONFIRMED')
			  AND tstzrange(scheduled_at, scheduled_at + make_interval(mins => duration_minutes)) &&
			      tstzrange($6::timestamptz, $6::timestamptz + make_interval(mins => $7::int))
		)`,
		a.ID, a.PatientID, a.DoctorID, a.EstablishmentID, a.CareServiceID,
		a.ScheduledAt, a.DurationMinutes, a.Reason, a.Notes, a.IsUrgent, a.Status,
		a.TotalCost, a.CoveredAmount, a.PatientAmount, a.PolicyID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return domainerr.DoctorUnavailable("doctor already has an appointment in this time slot")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainerr.DoctorUnavailable("doctor already has an appointment in this time slot")
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("appointment", id.String())
	}
	return a, err
}

// Update never touches the financial snapshot columns. A reschedule can move
// the slot onto another live booking of the same doctor; the exclusion
// constraint rejects that and the violation surfaces as DoctorUnavailable,
// same as on Create.
func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			doctor_id=$2, scheduled_at=$3, duration_minutes=$4, reason=$5, notes=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.DoctorID, a.ScheduledAt, a.DurationMinutes, a.Reason, a.Notes, a.Status,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return domainerr.DoctorUnavailable("doctor already has an appointment in this time slot")
	}
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	if f.PatientID != nil {
		args = append(args, *f.PatientID)
		where += fmt.Sprintf(" AND patient_id = $%d", len(args))
	}
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		where += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if f.EstablishmentID != nil {
		args = append(args, *f.EstablishmentID)
		where += fmt.Sprintf(" AND establishment_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(" AND scheduled_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(" AND scheduled_at < $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM appointment %s ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d`,
		apptCols, where, len(args)+1, len(args)+2), dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.DoctorID, &a.EstablishmentID, &a.CareServiceID,
			&a.ScheduledAt, &a.DurationMinutes, &a.Reason, &a.Notes, &a.IsUrgent, &a.Status,
			&a.TotalCost, &a.CoveredAmount, &a.PatientAmount, &a.PolicyID, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		appts = append(appts, &a)
	}
	return appts, total, nil
}

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.EstablishmentID, &a.CareServiceID,
		&a.ScheduledAt, &a.DurationMinutes, &a.Reason, &a.Notes, &a.IsUrgent, &a.Status,
		&a.TotalCost, &a.CoveredAmount, &a.PatientAmount, &a.PolicyID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
