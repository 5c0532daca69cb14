package types

import "time"

// BankDetails is a reference record describing a receiving bank account.
// It has no relation to any user; it is written by admins and shown to all
// clients identically.
type BankDetails struct {
	ID            string    `json:"id" db:"id"`
	AccountName   string    `json:"accountName" db:"account_name"`
	AccountNumber string    `json:"accountNumber" db:"account_number"`
	RoutingNumber string    `json:"routingNumber" db:"routing_number"`
	BankName      string    `json:"bankName" db:"bank_name"`
	BankAddress   string    `json:"bankAddress" db:"bank_address"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
