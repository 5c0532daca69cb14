package services

import (
	"context"
	"strings"

	"github.com/finacore/apiserver/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, id string, update types.ProfileUpdate) (types.User, error)
	SetEmailVerified(ctx context.Context, id string) (types.User, error)
	SetWallet(ctx context.Context, id, address string) (types.User, error)
	SetVerified(ctx context.Context, id string, verified bool) (types.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	SetDocumentKeys(ctx context.Context, id, photo1Key, photo2Key, selfieKey string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
}

// UserService encapsulates user-directory use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create registers a new user record with the default-value contract:
// role USER, zero balance, both verification flags false, empty profile.
func (s *UserService) Create(ctx context.Context, email, passwordHash string) (types.User, error) {
	user := types.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         types.RoleUser,
		Balance:      decimal.Zero,
	}
	return s.repo.Create(ctx, user)
}

// UpdateProfile applies a partial profile update. It can never touch role,
// balance or verification flags.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update types.ProfileUpdate) (types.User, error) {
	return s.repo.UpdateProfile(ctx, id, update)
}

func (s *UserService) SetEmailVerified(ctx context.Context, id string) (types.User, error) {
	return s.repo.SetEmailVerified(ctx, id)
}

func (s *UserService) SetWallet(ctx context.Context, id, address string) (types.User, error) {
	return s.repo.SetWallet(ctx, id, address)
}

func (s *UserService) SetVerified(ctx context.Context, id string, verified bool) (types.User, error) {
	return s.repo.SetVerified(ctx, id, verified)
}

func (s *UserService) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePasswordHash(ctx, id, passwordHash)
}

func (s *UserService) SetDocumentKeys(ctx context.Context, id, photo1Key, photo2Key, selfieKey string) (types.User, error) {
	return s.repo.SetDocumentKeys(ctx, id, photo1Key, photo2Key, selfieKey)
}

// List returns all users newest first, for admin display.
func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}
