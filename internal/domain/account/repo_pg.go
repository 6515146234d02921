package account

import (
	"context"
	"errors"
	"strings"

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

const accountCols = `id, email, password_hash, role, first_name, last_name, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO account (id, email, password_hash, role, first_name, last_name)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, strings.ToLower(a.Email), a.PasswordHash, a.Role, a.FirstName, a.LastName,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainerr.InvalidInput("email is already registered")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, err := scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("account", id.String())
	}
	return a, err
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	a, err := scanAccount(r.conn(ctx).QueryRow(ctx,
		`SELECT `+accountCols+` FROM account WHERE email = $1`, strings.ToLower(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainerr.NotFound("account", email)
	}
	return a, err
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.FirstName, &a.LastName, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
