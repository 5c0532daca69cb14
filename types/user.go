package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles assignable to a user.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an account in the system.
// It contains identity, balance, verification state and KYC profile data.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is the user's email address. Unique, compared
	// case-insensitively.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role indicates the user's authorization level within the system
	// ("USER" or "ADMIN").
	Role string `json:"role" db:"role"`

	// Balance is the user's account balance in currency-agnostic units.
	// It is mutated exclusively by transaction settlement.
	Balance decimal.Decimal `json:"balance" db:"balance"`

	// IsEmailVerified reports whether the user has confirmed ownership of
	// their email address.
	IsEmailVerified bool `json:"isEmailVerif" db:"is_email_verified"`

	// IsVerified is the admin-asserted KYC verification flag. It is
	// independent of email verification.
	IsVerified bool `json:"isVerif" db:"is_verified"`

	// Wallet is the custodial deposit address assigned at registration.
	// Empty when provisioning failed or has not happened yet.
	Wallet string `json:"wallet" db:"wallet"`

	// Profile fields. All optional, empty by default.
	FirstName    string `json:"firstName" db:"first_name"`
	LastName     string `json:"lastName" db:"last_name"`
	Country      string `json:"country" db:"country"`
	DocumentType string `json:"documentType" db:"document_type"`

	// Object-storage keys of the uploaded KYC documents.
	DocumentPhoto1Key string `json:"documentPhoto1Key" db:"document_photo1_key"`
	DocumentPhoto2Key string `json:"documentPhoto2Key" db:"document_photo2_key"`
	SelfieKey         string `json:"selfieKey" db:"selfie_key"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user
	// account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileUpdate is the narrow set of fields a user may change through the
// public profile-update endpoint. Role, balance and verification flags are
// deliberately absent; those move only through privileged operations.
type ProfileUpdate struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Country      *string `json:"country"`
	DocumentType *string `json:"documentType"`
}
