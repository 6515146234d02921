package account

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/careflow/internal/domain/domainerr"
	"github.com/careflow/careflow/internal/platform/auth"
)

// Roles self-registration may claim. Admin accounts are provisioned out of
// band.
var registrableRoles = map[string]bool{
	auth.RoleEstablishment: true,
	auth.RoleDoctor:        true,
	auth.RolePatient:       true,
	auth.RoleInsurer:       true,
}

// RegisterRequest carries a signup submission.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest carries a credential check.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login or registration.
type TokenResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

type Service struct {
	repo     Repository
	jwt      auth.JWTConfig
	tokenTTL time.Duration
}

func NewService(repo Repository, jwt auth.JWTConfig, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, jwt: jwt, tokenTTL: tokenTTL}
}

// Register creates an account and returns a fresh token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domainerr.InvalidInput("a valid email is required")
	}
	if !registrableRoles[req.Role] {
		return nil, domainerr.InvalidInputf("invalid role: %s", req.Role)
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, domainerr.InvalidInput("first_name and last_name are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerr.InvalidInput(err.Error())
	}

	acct := &Account{
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}
	return s.issueToken(acct)
}

// Login verifies credentials and returns a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	acct, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, domainerr.InvalidInput("invalid email or password")
	}
	if !auth.CheckPassword(acct.PasswordHash, req.Password) {
		return nil, domainerr.InvalidInput("invalid email or password")
	}
	return s.issueToken(acct)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) issueToken(acct *Account) (*TokenResponse, error) {
	token, err := auth.SignToken(s.jwt, acct.ID.String(), acct.Role, acct.FullName(), s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Token: token, Account: acct}, nil
}
