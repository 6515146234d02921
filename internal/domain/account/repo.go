package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
