package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"account-service/internal/domain"
	"account-service/internal/errors"
)

type accountUserRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountUserRepository(db SQLExecutor, logger *slog.Logger) domain.AccountUserRepository {
	return &accountUserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountUserRepository) GetByID(ctx context.Context, id int64) (*domain.AccountUser, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM account_users WHERE id = $1
	`

	var user domain.AccountUser
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account user not found", "user_id", id)
			return nil, errors.ErrUserNotFound
		}
		r.logger.Error("Failed to get account user", "user_id", id, "error", err)
		return nil, errors.Internal("failed to get account user", err)
	}

	return &user, nil
}
