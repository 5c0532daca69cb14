package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finacore/apiserver/types"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, role, balance, is_email_verified,
	is_verified, COALESCE(wallet, ''), first_name, last_name, country,
	document_type, document_photo1_key, document_photo2_key, selfie_key,
	created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Balance,
		&user.IsEmailVerified,
		&user.IsVerified,
		&user.Wallet,
		&user.FirstName,
		&user.LastName,
		&user.Country,
		&user.DocumentType,
		&user.DocumentPhoto1Key,
		&user.DocumentPhoto2Key,
		&user.SelfieKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, email, password_hash, role, balance,
			is_email_verified, is_verified, first_name, last_name, country,
			document_type, document_photo1_key, document_photo2_key,
			selfie_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Balance,
		user.IsEmailVerified,
		user.IsVerified,
		user.FirstName,
		user.LastName,
		user.Country,
		user.DocumentType,
		user.DocumentPhoto1Key,
		user.DocumentPhoto2Key,
		user.SelfieKey,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return types.User{}, ErrDuplicateEmail
		}
		return types.User{}, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the narrow profile shape.
// Nil fields are left untouched. It never writes role, balance or
// verification flags.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update types.ProfileUpdate) (types.User, error) {
	const query = `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			country = COALESCE($4, country),
			document_type = COALESCE($5, document_type),
			updated_at = $6
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(
		ctx,
		query,
		id,
		update.FirstName,
		update.LastName,
		update.Country,
		update.DocumentType,
		time.Now(),
	))
}

// SetEmailVerified marks the user's email as confirmed. Idempotent: marking
// an already-verified user succeeds with no further effect.
func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) (types.User, error) {
	const query = `
		UPDATE users SET is_email_verified = TRUE, updated_at = $2
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, id, time.Now()))
}

// SetWallet records the custodial deposit address assigned to the user.
func (r *UserRepository) SetWallet(ctx context.Context, id, address string) (types.User, error) {
	const query = `
		UPDATE users SET wallet = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, id, address, time.Now()))
}

// SetVerified toggles the admin-asserted KYC verification flag.
func (r *UserRepository) SetVerified(ctx context.Context, id string, verified bool) (types.User, error) {
	const query = `
		UPDATE users SET is_verified = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, id, verified, time.Now()))
}

// UpdatePasswordHash replaces the stored credential digest.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDocumentKeys records the object-storage keys of uploaded KYC documents.
// Empty keys are left untouched.
func (r *UserRepository) SetDocumentKeys(ctx context.Context, id, photo1Key, photo2Key, selfieKey string) (types.User, error) {
	const query = `
		UPDATE users
		SET document_photo1_key = CASE WHEN $2 = '' THEN document_photo1_key ELSE $2 END,
			document_photo2_key = CASE WHEN $3 = '' THEN document_photo2_key ELSE $3 END,
			selfie_key = CASE WHEN $4 = '' THEN selfie_key ELSE $4 END,
			updated_at = $5
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, id, photo1Key, photo2Key, selfieKey, time.Now()))
}

// List returns all users ordered by creation time descending.
func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
