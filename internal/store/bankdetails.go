package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finacore/apiserver/types"
)

const bankDetailsColumns = `id, account_name, account_number, routing_number,
	bank_name, bank_address, created_at, updated_at`

// BankDetailsRepository handles persistence for bank-details reference data.
type BankDetailsRepository struct {
	db *sql.DB
}

func NewBankDetailsRepository(db *sql.DB) *BankDetailsRepository {
	return &BankDetailsRepository{db: db}
}

func scanBankDetails(row interface{ Scan(...any) error }) (types.BankDetails, error) {
	var details types.BankDetails
	err := row.Scan(
		&details.ID,
		&details.AccountName,
		&details.AccountNumber,
		&details.RoutingNumber,
		&details.BankName,
		&details.BankAddress,
		&details.CreatedAt,
		&details.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BankDetails{}, ErrNotFound
		}
		return types.BankDetails{}, err
	}
	return details, nil
}

func (r *BankDetailsRepository) Create(ctx context.Context, details types.BankDetails) (types.BankDetails, error) {
	now := time.Now()
	details.CreatedAt = now
	details.UpdatedAt = now

	const query = `
		INSERT INTO bank_details (id, account_name, account_number,
			routing_number, bank_name, bank_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		details.ID,
		details.AccountName,
		details.AccountNumber,
		details.RoutingNumber,
		details.BankName,
		details.BankAddress,
		details.CreatedAt,
		details.UpdatedAt,
	)
	if err != nil {
		return types.BankDetails{}, err
	}
	return details, nil
}

func (r *BankDetailsRepository) Get(ctx context.Context, id string) (types.BankDetails, error) {
	const query = `SELECT ` + bankDetailsColumns + ` FROM bank_details WHERE id = $1`
	return scanBankDetails(r.db.QueryRowContext(ctx, query, id))
}

func (r *BankDetailsRepository) Update(ctx context.Context, details types.BankDetails) (types.BankDetails, error) {
	details.UpdatedAt = time.Now()

	const query = `
		UPDATE bank_details
		SET account_name = $2,
			account_number = $3,
			routing_number = $4,
			bank_name = $5,
			bank_address = $6,
			updated_at = $7
		WHERE id = $1
		RETURNING created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		details.ID,
		details.AccountName,
		details.AccountNumber,
		details.RoutingNumber,
		details.BankName,
		details.BankAddress,
		details.UpdatedAt,
	).Scan(&details.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BankDetails{}, ErrNotFound
		}
		return types.BankDetails{}, err
	}
	return details, nil
}

func (r *BankDetailsRepository) List(ctx context.Context) ([]types.BankDetails, error) {
	const query = `SELECT ` + bankDetailsColumns + ` FROM bank_details ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []types.BankDetails
	for rows.Next() {
		details, err := scanBankDetails(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, details)
	}
	return items, rows.Err()
}
