package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"account-service/internal/domain"
	"account-service/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, a.account_number, t.transaction_type, t.transaction_result_type,
		       t.transaction_id, t.amount, t.balance_snapshot, t.transacted_at, t.created_at, t.updated_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.transaction_id = $1
	`

	var tx domain.Transaction
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.AccountNumber,
		&tx.Type,
		&tx.ResultType,
		&tx.TransactionID,
		&tx.Amount,
		&tx.BalanceSnapshot,
		&tx.TransactedAt,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Transaction not found", "transaction_id", transactionID)
			return nil, errors.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction", "transaction_id", transactionID, "error", err)
		return nil, errors.Internal("failed to get transaction", err)
	}

	return &tx, nil
}

// Save appends tx to the log. Stored transactions are never rewritten.
func (r *transactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID != 0 {
		r.logger.Error("Refusing to rewrite stored transaction", "transaction_id", tx.TransactionID)
		return errors.ErrTransactionImmutable
	}

	query := `
		INSERT INTO transactions
		(account_id, transaction_type, transaction_result_type, transaction_id, amount, balance_snapshot, transacted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		tx.AccountID,
		tx.Type,
		tx.ResultType,
		tx.TransactionID,
		tx.Amount,
		tx.BalanceSnapshot,
		tx.TransactedAt,
		now,
		now,
	).Scan(&tx.ID)
	if err != nil {
		r.logger.Error("Failed to create transaction",
			"account_id", tx.AccountID,
			"transaction_id", tx.TransactionID,
			"amount", tx.Amount,
			"error", err)
		return errors.Internal("failed to create transaction", err)
	}

	tx.CreatedAt = now
	tx.UpdatedAt = now
	r.logger.Info("Transaction created successfully",
		"transaction_id", tx.TransactionID,
		"type", tx.Type,
		"result", tx.ResultType)
	return nil
}
