package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"account-service/internal/domain"
	"account-service/internal/errors"
)

const accountColumns = `id, user_id, account_number, balance, status, registered_at, unregistered_at, created_at, updated_at`

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	return r.getAccount(ctx, query, accountNumber)
}

func (r *accountRepository) GetByNumberForUpdate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`

	return r.getAccount(ctx, query, accountNumber)
}

func (r *accountRepository) getAccount(ctx context.Context, query string, accountNumber string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account not found", "account_number", accountNumber)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "account_number", accountNumber, "error", err)
		return nil, errors.Internal("failed to get account", err)
	}
	return account, nil
}

func (r *accountRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list accounts", "user_id", userID, "error", err)
		return nil, errors.Internal("failed to list accounts", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, errors.Internal("failed to scan account", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("failed to iterate accounts", err)
	}

	return accounts, nil
}

func (r *accountRepository) GetHighestNumbered(ctx context.Context) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY CAST(account_number AS NUMERIC) DESC LIMIT 1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get highest numbered account", "error", err)
		return nil, errors.Internal("failed to get highest numbered account", err)
	}
	return account, nil
}

func (r *accountRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count accounts", "user_id", userID, "error", err)
		return 0, errors.Internal("failed to count accounts", err)
	}
	return count, nil
}

func (r *accountRepository) Save(ctx context.Context, account *domain.Account) error {
	if account.ID == 0 {
		return r.insert(ctx, account)
	}
	return r.update(ctx, account)
}

func (r *accountRepository) insert(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, account_number, balance, status, registered_at, unregistered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		account.UserID,
		account.AccountNumber,
		account.Balance,
		account.Status,
		account.RegisteredAt,
		account.UnregisteredAt,
		now,
		now,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err, "accounts_account_number_key") {
			r.logger.Warn("Duplicate account number", "account_number", account.AccountNumber)
			return errors.ErrDuplicateAccountNumber
		}
		r.logger.Error("Failed to create account", "account_number", account.AccountNumber, "error", err)
		return errors.Internal("failed to create account", err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_id", account.ID, "account_number", account.AccountNumber)
	return nil
}

func (r *accountRepository) update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $1, status = $2, unregistered_at = $3, updated_at = $4
		WHERE id = $5
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		account.Balance,
		account.Status,
		account.UnregisteredAt,
		now,
		account.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update account", "account_id", account.ID, "error", err)
		return errors.Internal("failed to update account", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Internal("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_id", account.ID)
		return errors.ErrAccountNotFound
	}

	account.UpdatedAt = now
	r.logger.Info("Account updated", "account_id", account.ID, "balance", account.Balance, "status", account.Status)
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var unregisteredAt sql.NullTime

	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.AccountNumber,
		&account.Balance,
		&account.Status,
		&account.RegisteredAt,
		&unregisteredAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if unregisteredAt.Valid {
		t := unregisteredAt.Time
		account.UnregisteredAt = &t
	}
	return &account, nil
}
