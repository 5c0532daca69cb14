package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses. PENDING is the initial state; COMPLETE and
// CANCELLED are terminal.
const (
	TransactionPending   = "PENDING"
	TransactionComplete  = "COMPLETE"
	TransactionCancelled = "CANCELLED"
)

// Transaction represents a requested balance-affecting deposit event.
type Transaction struct {
	// ID is the unique identifier of the transaction.
	ID string `json:"id" db:"id"`

	// UserID identifies the user whose balance the transaction affects.
	UserID string `json:"userId" db:"user_id"`

	// Amount is the positive deposit amount.
	Amount decimal.Decimal `json:"amount" db:"amount"`

	// Status is the lifecycle state of the transaction. Once COMPLETE or
	// CANCELLED no further transition is permitted.
	Status string `json:"transactionStatus" db:"status"`

	// CreatedAt is the timestamp at which the transaction was requested.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent status change.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TerminalStatus reports whether s admits no further transition.
func TerminalStatus(s string) bool {
	return s == TransactionComplete || s == TransactionCancelled
}
