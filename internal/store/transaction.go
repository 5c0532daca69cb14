package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finacore/apiserver/types"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, amount, status, created_at, updated_at`

// TransactionRepository handles persistence for the transaction ledger.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func scanTransaction(row interface{ Scan(...any) error }) (types.Transaction, error) {
	var tx types.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Status,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Transaction{}, ErrNotFound
		}
		return types.Transaction{}, err
	}
	return tx, nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx types.Transaction) (types.Transaction, error) {
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	const query = `
		INSERT INTO transactions (id, user_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, tx.ID, tx.UserID, tx.Amount, tx.Status, tx.CreatedAt, tx.UpdatedAt)
	if err != nil {
		return types.Transaction{}, err
	}
	return tx, nil
}

func (r *TransactionRepository) Get(ctx context.Context, id string) (types.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.db.QueryRowContext(ctx, query, id))
}

// UpdateStatus moves a PENDING transaction to a terminal status. The status
// flip is conditional on the stored status still being PENDING, and the
// balance credit for COMPLETE happens on the same database transaction, so
// two concurrent settlements can never both apply.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id, newStatus string) (types.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Transaction{}, err
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	const update = `
		UPDATE transactions SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING ` + transactionColumns
	updated, err := scanTransaction(dbTx.QueryRowContext(ctx, update, id, newStatus, time.Now(), types.TransactionPending))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return types.Transaction{}, err
		}
		// Zero rows: either the transaction is gone or it already left
		// PENDING. Distinguish the two for the caller.
		const probe = `SELECT status FROM transactions WHERE id = $1`
		var status string
		if probeErr := dbTx.QueryRowContext(ctx, probe, id).Scan(&status); probeErr != nil {
			if errors.Is(probeErr, sql.ErrNoRows) {
				return types.Transaction{}, ErrNotFound
			}
			return types.Transaction{}, probeErr
		}
		return types.Transaction{}, ErrInvalidTransition
	}

	if newStatus == types.TransactionComplete {
		if err := creditBalance(ctx, dbTx, updated.UserID, updated.Amount); err != nil {
			return types.Transaction{}, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return types.Transaction{}, err
	}
	return updated, nil
}

func creditBalance(ctx context.Context, dbTx *sql.Tx, userID string, amount decimal.Decimal) error {
	const query = `UPDATE users SET balance = balance + $2, updated_at = $3 WHERE id = $1`
	result, err := dbTx.ExecContext(ctx, query, userID, amount, time.Now())
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

// List returns all transactions newest first, for admin review.
func (r *TransactionRepository) List(ctx context.Context) ([]types.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC`
	return r.queryTransactions(ctx, query)
}

// ListByUser returns a user's transactions newest first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]types.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions
		WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryTransactions(ctx, query, userID)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]types.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []types.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
