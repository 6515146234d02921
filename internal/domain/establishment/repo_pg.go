package establishment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const estCols = `id, name, kind, city, address, phone, email, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, est *Establishment) error {
	est.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO establishment (id, name, kind, city, address, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		est.ID, est.Name, est.Kind, est.City, est.Address, est.Phone, est.Email,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Establishment, error) {
	est, err := scanEst(r.conn(ctx).QueryRow(ctx, `SELECT `+estCols+` FROM establishment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("establishment", id.String())
	}
	return est, err
}

func (r *repoPG) Update(ctx context.Context, est *Establishment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE establishment SET
			name=$2, kind=$3, city=$4, address=$5, phone=$6, email=$7, updated_at=NOW()
		WHERE id = $1`,
		est.ID, est.Name, est.Kind, est.City, est.Address, est.Phone, est.Email,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM establishment WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Establishment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM establishment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+estCols+` FROM establishment ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectEsts(rows, total)
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Establishment, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	if name := params["name"]; name != "" {
		args = append(args, "%"+name+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if kind := params["kind"]; kind != "" {
		args = append(args, strings.ToUpper(kind))
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if city := params["city"]; city != "" {
		args = append(args, city)
		where += fmt.Sprintf(" AND city ILIKE $%d", len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM establishment `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM establishment %s ORDER BY name LIMIT $%d OFFSET $%d`,
		estCols, where, len(args)+1, len(args)+2), dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectEsts(rows, total)
}

func scanEst(row pgx.Row) (*Establishment, error) {
	var e Establishment
	err := row.Scan(&e.ID, &e.Name, &e.Kind, &e.City, &e.Address, &e.Phone, &e.Email, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEsts(rows pgx.Rows, total int) ([]*Establishment, int, error) {
	var ests []*Establishment
	for rows.Next() {
		var e Establishment
		if err := rows.Scan(&e.ID, &e.Name, &e.Kind, &e.City, &e.Address, &e.Phone, &e.Email, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		ests = append(ests, &e)
	}
	return ests, total, nil
}

type serviceRepoPG struct {
	pool *pgxpool.Pool
}

func NewServiceRepo(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepoPG{pool: pool}
}

func (r *serviceRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const svcCols = `id, establishment_id, name, category, base_price, duration_minutes, description, active, created_at, updated_at`

func (r *serviceRepoPG) Create(ctx context.Context, cs *CareService) error {
	cs.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO care_service (id, establishment_id, name, category, base_price, duration_minutes, description, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		cs.ID, cs.EstablishmentID, cs.Name, cs.Category, cs.BasePrice, cs.DurationMinutes, cs.Description, cs.Active,
	)
	return err
}

func (r *serviceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CareService, error) {
	cs, err := scanSvc(r.conn(ctx).QueryRow(ctx, `SELECT `+svcCols+` FROM care_service WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("care service", id.String())
	}
	return cs, err
}

func (r *serviceRepoPG) Update(ctx context.Context, cs *CareService) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE care_service SET
			name=$2, category=$3, base_price=$4, duration_minutes=$5, description=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		cs.ID, cs.Name, cs.Category, cs.BasePrice, cs.DurationMinutes, cs.Description, cs.Active,
	)
	return err
}

func (r *serviceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM care_service WHERE id = $1`, id)
	return err
}

func (r *serviceRepoPG) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID, limit, offset int) ([]*CareService, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM care_service WHERE establishment_id = $1`, establishmentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+svcCols+` FROM care_service WHERE establishment_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		establishmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var svcs []*CareService
	for rows.Next() {
		var cs CareService
		if err := rows.Scan(&cs.ID, &cs.EstablishmentID, &cs.Name, &cs.Category, &cs.BasePrice, &cs.DurationMinutes, &cs.Description, &cs.Active, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
			return nil, 0, err
		}
		svcs = append(svcs, &cs)
	}
	return svcs, total, nil
}

func (r *serviceRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE care_service SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainerr.NotFound("care service", id.String())
	}
	return nil
}

func scanSvc(row pgx.Row) (*CareService, error) {
	var cs CareService
	err := row.Scan(&cs.ID, &cs.EstablishmentID, &cs.Name, &cs.Category, &cs.BasePrice, &cs.DurationMinutes, &cs.Description, &cs.Active, &cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}
