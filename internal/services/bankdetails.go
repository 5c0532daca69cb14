package services

import (
	"context"

	"github.com/finacore/apiserver/types"
	"github.com/google/uuid"
)

// BankDetailsRepository defines persistence operations for bank details.
type BankDetailsRepository interface {
	Create(ctx context.Context, details types.BankDetails) (types.BankDetails, error)
	Get(ctx context.Context, id string) (types.BankDetails, error)
	Update(ctx context.Context, details types.BankDetails) (types.BankDetails, error)
	List(ctx context.Context) ([]types.BankDetails, error)
}

// BankDetailsService encapsulates bank-details reference-data use-cases.
type BankDetailsService struct {
	repo BankDetailsRepository
}

func NewBankDetailsService(repo BankDetailsRepository) *BankDetailsService {
	return &BankDetailsService{repo: repo}
}

func (s *BankDetailsService) Create(ctx context.Context, details types.BankDetails) (types.BankDetails, error) {
	details.ID = uuid.NewString()
	return s.repo.Create(ctx, details)
}

func (s *BankDetailsService) Get(ctx context.Context, id string) (types.BankDetails, error) {
	return s.repo.Get(ctx, id)
}

func (s *BankDetailsService) Update(ctx context.Context, details types.BankDetails) (types.BankDetails, error) {
	return s.repo.Update(ctx, details)
}

func (s *BankDetailsService) List(ctx context.Context) ([]types.BankDetails, error) {
	return s.repo.List(ctx)
}
