package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/platform/db"
)

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, phone, email, birth_date, gender, address, city, created_at, updated_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, first_name, last_name, phone, email, birth_date, gender, address, city)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.BirthDate, p.Gender, p.Address, p.City,
	)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("patient", id.String())
	}
	return p, err
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name=$2, last_name=$3, phone=$4, email=$5, birth_date=$6, gender=$7, address=$8, city=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.BirthDate, p.Gender, p.Address, p.City,
	)
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *patientRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	if name := params["name"]; name != "" {
		args = append(args, "%"+name+"%")
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", len(args), len(args))
	}
	if phone := params["phone"]; phone != "" {
		args = append(args, phone)
		where += fmt.Sprintf(" AND phone = $%d", len(args))
	}
	if city := params["city"]; city != "" {
		args = append(args, city)
		where += fmt.Sprintf(" AND city ILIKE $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM patient %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		patientCols, where, len(args)+1, len(args)+2), dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.BirthDate, &p.Gender, &p.Address, &p.City, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.BirthDate, &p.Gender, &p.Address, &p.City, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, nil
}

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const doctorCols = `id, first_name, last_name, specialty, license_number, phone, email, created_at, updated_at`

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, first_name, last_name, specialty, license_number, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.FirstName, d.LastName, d.Specialty, d.LicenseNumber, d.Phone, d.Email,
	)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("doctor", id.String())
	}
	return d, err
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET
			first_name=$2, last_name=$3, specialty=$4, license_number=$5, phone=$6, email=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.Specialty, d.LicenseNumber, d.Phone, d.Email,
	)
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectDoctors(rows, total)
}

func (r *doctorRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	if name := params["name"]; name != "" {
		args = append(args, "%"+name+"%")
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", len(args), len(args))
	}
	if specialty := params["specialty"]; specialty != "" {
		args = append(args, specialty)
		where += fmt.Sprintf(" AND specialty ILIKE $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM doctor %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		doctorCols, where, len(args)+1, len(args)+2), dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectDoctors(rows, total)
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Specialty, &d.LicenseNumber, &d.Phone, &d.Email, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDoctors(rows pgx.Rows, total int) ([]*Doctor, int, error) {
	var doctors []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Specialty, &d.LicenseNumber, &d.Phone, &d.Email, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, &d)
	}
	return doctors, total, nil
}

type affiliationRepoPG struct {
	pool *pgxpool.Pool
}

func NewAffiliationRepo(pool *pgxpool.Pool) AffiliationRepository {
	return &affiliationRepoPG{pool: pool}
}

func (r *affiliationRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const affCols = `id, doctor_id, establishment_id, consultation_fee, schedule_note, created_at`

func (r *affiliationRepoPG) Add(ctx context.Context, a *DoctorAffiliation) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_affiliation (id, doctor_id, establishment_id, consultation_fee, schedule_note)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.DoctorID, a.EstablishmentID, a.ConsultationFee, a.ScheduleNote,
	)
	return err
}

func (r *affiliationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DoctorAffiliation, error) {
	var a DoctorAffiliation
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+affCols+` FROM doctor_affiliation WHERE id = $1`, id).
		Scan(&a.ID, &a.DoctorID, &a.EstablishmentID, &a.ConsultationFee, &a.ScheduleNote, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("affiliation", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *affiliationRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DoctorAffiliation, error) {
	return r.list(ctx, `SELECT `+affCols+` FROM doctor_affiliation WHERE doctor_id = $1`, doctorID)
}

func (r *affiliationRepoPG) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]*DoctorAffiliation, error) {
	return r.list(ctx, `SELECT `+affCols+` FROM doctor_affiliation WHERE establishment_id = $1`, establishmentID)
}

func (r *affiliationRepoPG) list(ctx context.Context, sql string, arg interface{}) ([]*DoctorAffiliation, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var affs []*DoctorAffiliation
	for rows.Next() {
		var a DoctorAffiliation
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.EstablishmentID, &a.ConsultationFee, &a.ScheduleNote, &a.CreatedAt); err != nil {
			return nil, err
		}
		affs = append(affs, &a)
	}
	return affs, nil
}

func (r *affiliationRepoPG) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor_affiliation WHERE id = $1`, id)
	return err
}
