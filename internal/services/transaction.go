package services

import (
	"context"
	"errors"

	"github.com/finacore/apiserver/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a transaction amount is not strictly
// positive.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrInvalidStatus is returned when a status update targets anything other
// than COMPLETE or CANCELLED.
var ErrInvalidStatus = errors.New("unsupported target status")

// TransactionRepository defines persistence operations for the ledger.
// UpdateStatus must be atomic: the status flip succeeds only while the
// stored status is still PENDING, and the balance credit for COMPLETE is
// applied on the same storage transaction.
type TransactionRepository interface {
	Create(ctx context.Context, tx types.Transaction) (types.Transaction, error)
	Get(ctx context.Context, id string) (types.Transaction, error)
	UpdateStatus(ctx context.Context, id, newStatus string) (types.Transaction, error)
	List(ctx context.Context) ([]types.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]types.Transaction, error)
}

// TransactionService encapsulates the deposit-ledger use-cases.
type TransactionService struct {
	repo TransactionRepository
}

func NewTransactionService(repo TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// Create records a deposit request in PENDING. It moves no balance;
// settlement is a deliberate admin action.
func (s *TransactionService) Create(ctx context.Context, userID string, amount decimal.Decimal) (types.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return types.Transaction{}, ErrInvalidAmount
	}
	tx := types.Transaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Amount: amount,
		Status: types.TransactionPending,
	}
	return s.repo.Create(ctx, tx)
}

func (s *TransactionService) Get(ctx context.Context, id string) (types.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// UpdateStatus settles or cancels a PENDING transaction. Moving to COMPLETE
// credits the owner's balance exactly once; COMPLETE and CANCELLED are
// terminal, so a second update fails with store.ErrInvalidTransition.
func (s *TransactionService) UpdateStatus(ctx context.Context, id, newStatus string) (types.Transaction, error) {
	if !types.TerminalStatus(newStatus) {
		return types.Transaction{}, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, newStatus)
}

func (s *TransactionService) List(ctx context.Context) ([]types.Transaction, error) {
	return s.repo.List(ctx)
}

func (s *TransactionService) ListByUser(ctx context.Context, userID string) ([]types.Transaction, error) {
	return s.repo.ListByUser(ctx, userID)
}
