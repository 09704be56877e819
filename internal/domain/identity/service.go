package identity

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/odontosys/odontosys/internal/platform/auth"
	"github.com/odontosys/odontosys/internal/platform/validation"
)

// Service backs the auth manager's account store and the admin user
// endpoints.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByEmail satisfies the account lookup side of auth.AccountStore.
func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

// Create satisfies the account creation side of auth.AccountStore.
func (s *Service) Create(ctx context.Context, acct *auth.Account) error {
	u := &User{
		ID:           acct.ID,
		Email:        acct.Email,
		Name:         acct.Name,
		Role:         acct.Role,
		PasswordHash: acct.PasswordHash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	acct.ID = u.ID
	return nil
}

// CreateUser registers a staff account with a hashed password. Used by the
// admin endpoints; self-service signup goes through the auth manager.
func (s *Service) CreateUser(ctx context.Context, email, name, role, password string) (*User, error) {
	if role == "" {
		role = "dentista"
	}
	if err := validation.NewError(validation.UserRules.Validate(map[string]string{
		"email":    email,
		"name":     name,
		"role":     role,
		"password": password,
	})); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func toAccount(u *User) *auth.Account {
	return &auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
	}
}
