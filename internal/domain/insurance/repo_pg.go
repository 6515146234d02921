package insurance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/platform/db"
)

type companyRepoPG struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepoPG{pool: pool}
}

func (r *companyRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const companyCols = `id, name, phone, email, address, created_at, updated_at`

func (r *companyRepoPG) Create(ctx context.Context, co *InsuranceCompany) error {
	co.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_company (id, name, phone, email, address)
		VALUES ($1,$2,$3,$4,$5)`,
		co.ID, co.Name, co.Phone, co.Email, co.Address,
	)
	return err
}

func (r *companyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*InsuranceCompany, error) {
	var co InsuranceCompany
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+companyCols+` FROM insurance_company WHERE id = $1`, id).
		Scan(&co.ID, &co.Name, &co.Phone, &co.Email, &co.Address, &co.CreatedAt, &co.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("insurance company", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &co, nil
}

func (r *companyRepoPG) Update(ctx context.Context, co *InsuranceCompany) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_company SET name=$2, phone=$3, email=$4, address=$5, updated_at=NOW()
		WHERE id = $1`,
		co.ID, co.Name, co.Phone, co.Email, co.Address,
	)
	return err
}

func (r *companyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurance_company WHERE id = $1`, id)
	return err
}

func (r *companyRepoPG) List(ctx context.Context, limit, offset int) ([]*InsuranceCompany, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insurance_company`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+companyCols+` FROM insurance_company ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cos []*InsuranceCompany
	for rows.Next() {
		var co InsuranceCompany
		if err := rows.Scan(&co.ID, &co.Name, &co.Phone, &co.Email, &co.Address, &co.CreatedAt, &co.UpdatedAt); err != nil {
			return nil, 0, err
		}
		cos = append(cos, &co)
	}
	return cos, total, nil
}

type planRepoPG struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) PlanRepository {
	return &planRepoPG{pool: pool}
}

func (r *planRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const planCols = `id, company_id, name, description, monthly_premium, consultation_coverage,
	emergency_coverage, surgery_coverage, maternity_coverage, laboratory_coverage, imaging_coverage,
	created_at, updated_at`

func (r *planRepoPG) Create(ctx context.Context, pl *InsurancePlan) error {
	pl.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_plan (
			id, company_id, name, description, monthly_premium, consultation_coverage,
			emergency_coverage, surgery_coverage, maternity_coverage, laboratory_coverage, imaging_coverage
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		pl.ID, pl.CompanyID, pl.Name, pl.Description, pl.MonthlyPremium, pl.ConsultationCoverage,
		pl.EmergencyCoverage, pl.SurgeryCoverage, pl.MaternityCoverage, pl.LaboratoryCoverage, pl.ImagingCoverage,
	)
	return err
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*InsurancePlan, error) {
	pl, err := scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM insurance_plan WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("insurance plan", id.String())
	}
	return pl, err
}

func (r *planRepoPG) Update(ctx context.Context, pl *InsurancePlan) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_plan SET
			name=$2, description=$3, monthly_premium=$4, consultation_coverage=$5,
			emergency_coverage=$6, surgery_coverage=$7, maternity_coverage=$8,
			laboratory_coverage=$9, imaging_coverage=$10, updated_at=NOW()
		WHERE id = $1`,
		pl.ID, pl.Name, pl.Description, pl.MonthlyPremium, pl.ConsultationCoverage,
		pl.EmergencyCoverage, pl.SurgeryCoverage, pl.MaternityCoverage, pl.LaboratoryCoverage, pl.ImagingCoverage,
	)
	return err
}

func (r *planRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurance_plan WHERE id = $1`, id)
	return err
}

func (r *planRepoPG) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*InsurancePlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insurance_plan WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM insurance_plan WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var plans []*InsurancePlan
	for rows.Next() {
		var pl InsurancePlan
		if err := rows.Scan(
			&pl.ID, &pl.CompanyID, &pl.Name, &pl.Description, &pl.MonthlyPremium, &pl.ConsultationCoverage,
			&pl.EmergencyCoverage, &pl.SurgeryCoverage, &pl.MaternityCoverage, &pl.LaboratoryCoverage, &pl.ImagingCoverage,
			&pl.CreatedAt, &pl.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		plans = append(plans, &pl)
	}
	return plans, total, nil
}

func scanPlan(row pgx.Row) (*InsurancePlan, error) {
	var pl InsurancePlan
	err := row.Scan(
		&pl.ID, &pl.CompanyID, &pl.Name, &pl.Description, &pl.MonthlyPremium, &pl.ConsultationCoverage,
		&pl.EmergencyCoverage, &pl.SurgeryCoverage, &pl.MaternityCoverage, &pl.LaboratoryCoverage, &pl.ImagingCoverage,
		&pl.CreatedAt, &pl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

type policyRepoPG struct {
	pool *pgxpool.Pool
}

func NewPolicyRepo(pool *pgxpool.Pool) PolicyRepository {
	return &policyRepoPG{pool: pool}
}

func (r *policyRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const policyCols = `id, patient_id, plan_id, policy_number, is_primary, valid_from, valid_until, active, created_at, updated_at`

func (r *policyRepoPG) Create(ctx context.Context, p *PatientInsurance) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_insurance (id, patient_id, plan_id, policy_number, is_primary, valid_from, valid_until, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PatientID, p.PlanID, p.PolicyNumber, p.IsPrimary, p.ValidFrom, p.ValidUntil, p.Active,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainerr.InvalidInput("patient already has a primary policy")
	}
	return err
}

func (r *policyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatientInsurance, error) {
	p, err := scanPolicy(r.conn(ctx).QueryRow(ctx, `SELECT `+policyCols+` FROM patient_insurance WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("policy", id.String())
	}
	return p, err
}

func (r *policyRepoPG) Update(ctx context.Context, p *PatientInsurance) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_insurance SET
			is_primary=$2, valid_from=$3, valid_until=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.IsPrimary, p.ValidFrom, p.ValidUntil, p.Active,
	)
	return err
}

func (r *policyRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientInsurance, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+policyCols+` FROM patient_insurance WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*PatientInsurance
	for rows.Next() {
		var p PatientInsurance
		if err := rows.Scan(&p.ID, &p.PatientID, &p.PlanID, &p.PolicyNumber, &p.IsPrimary, &p.ValidFrom, &p.ValidUntil, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		policies = append(policies, &p)
	}
	return policies, nil
}

// GetPrimaryByPatient returns (nil, nil) when the patient has no active
// primary policy; an uninsured patient is not an error.
func (r *policyRepoPG) GetPrimaryByPatient(ctx context.Context, patientID uuid.UUID) (*PatientInsurance, error) {
	p, err := scanPolicy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+policyCols+` FROM patient_insurance WHERE patient_id = $1 AND is_primary AND active`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *policyRepoPG) ClearPrimary(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patient_insurance SET is_primary=false, updated_at=NOW() WHERE patient_id = $1 AND is_primary`, patientID)
	return err
}

func scanPolicy(row pgx.Row) (*PatientInsurance, error) {
	var p PatientInsurance
	err := row.Scan(&p.ID, &p.PatientID, &p.PlanID, &p.PolicyNumber, &p.IsPrimary, &p.ValidFrom, &p.ValidUntil, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type agreementRepoPG struct {
	pool *pgxpool.Pool
}

func NewAgreementRepo(pool *pgxpool.Pool) AgreementRepository {
	return &agreementRepoPG{pool: pool}
}

func (r *agreementRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const agreementCols = `id, establishment_id, company_id, consultation_rate, emergency_rate, surgery_rate,
	valid_from, valid_until, direct_billing, requires_preauth, active, created_at, updated_at`

func (r *agreementRepoPG) Create(ctx context.Context, a *EstablishmentInsurance) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO establishment_insurance (
			id, establishment_id, company_id, consultation_rate, emergency_rate, surgery_rate,
			valid_from, valid_until, direct_billing, requires_preauth, active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.EstablishmentID, a.CompanyID, a.ConsultationRate, a.EmergencyRate, a.SurgeryRate,
		a.ValidFrom, a.ValidUntil, a.DirectBilling, a.RequiresPreauth, a.Active,
	)
	return err
}

func (r *agreementRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*EstablishmentInsurance, error) {
	a, err := scanAgreement(r.conn(ctx).QueryRow(ctx, `SELECT `+agreementCols+` FROM establishment_insurance WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("agreement", id.String())
	}
	return a, err
}

func (r *agreementRepoPG) Update(ctx context.Context, a *EstablishmentInsurance) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE establishment_insurance SET
			consultation_rate=$2, emergency_rate=$3, surgery_rate=$4,
			valid_from=$5, valid_until=$6, direct_billing=$7, requires_preauth=$8, active=$9, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.ConsultationRate, a.EmergencyRate, a.SurgeryRate,
		a.ValidFrom, a.ValidUntil, a.DirectBilling, a.RequiresPreauth, a.Active,
	)
	return err
}

func (r *agreementRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM establishment_insurance WHERE id = $1`, id)
	return err
}

func (r *agreementRepoPG) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]*EstablishmentInsurance, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+agreementCols+` FROM establishment_insurance WHERE establishment_id = $1 ORDER BY valid_from DESC`, establishmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []*EstablishmentInsurance
	for rows.Next() {
		var a EstablishmentInsurance
		if err := rows.Scan(
			&a.ID, &a.EstablishmentID, &a.CompanyID, &a.ConsultationRate, &a.EmergencyRate, &a.SurgeryRate,
			&a.ValidFrom, &a.ValidUntil, &a.DirectBilling, &a.RequiresPreauth, &a.Active, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		agreements = append(agreements, &a)
	}
	return agreements, nil
}

// GetByEstablishmentAndCompany returns (nil, nil) when no agreement exists;
// coverage then falls back to the plan's own rates.
func (r *agreementRepoPG) GetByEstablishmentAndCompany(ctx context.Context, establishmentID, companyID uuid.UUID) (*EstablishmentInsurance, error) {
	a, err := scanAgreement(r.conn(ctx).QueryRow(ctx, `
		SELECT `+agreementCols+` FROM establishment_insurance
		WHERE establishment_id = $1 AND company_id = $2
		ORDER BY valid_from DESC LIMIT 1`, establishmentID, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func scanAgreement(row pgx.Row) (*EstablishmentInsurance, error) {
	var a EstablishmentInsurance
	err := row.Scan(
		&a.ID, &a.EstablishmentID, &a.CompanyID, &a.ConsultationRate, &a.EmergencyRate, &a.SurgeryRate,
		&a.ValidFrom, &a.ValidUntil, &a.DirectBilling, &a.RequiresPreauth, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
