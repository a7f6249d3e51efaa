package domain

import (
	"context"
	"time"

	"account-service/internal/errors"
)

type AccountStatus string

const (
	AccountStatusInUse        AccountStatus = "IN_USE"
	AccountStatusUnregistered AccountStatus = "UNREGISTERED"
)

type Account struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	AccountNumber  string        `json:"account_number"`
	Balance        int64         `json:"balance"`
	Status         AccountStatus `json:"status"`
	RegisteredAt   time.Time     `json:"registered_at"`
	UnregisteredAt *time.Time    `json:"unregistered_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (a *Account) OwnedBy(userID int64) bool {
	return a.UserID == userID
}

func (a *Account) IsUnregistered() bool {
	return a.Status == AccountStatusUnregistered
}

// Debit takes amount out of the balance. The balance never goes below zero.
func (a *Account) Debit(amount int64) error {
	if amount > a.Balance {
		return errors.ErrAmountExceedBalance
	}
	a.Balance -= amount
	return nil
}

func (a *Account) Credit(amount int64) {
	a.Balance += amount
}

// Unregister moves the account to its terminal state. Only an empty, in-use
// account can be unregistered.
func (a *Account) Unregister(at time.Time) error {
	if a.IsUnregistered() {
		return errors.ErrAccountAlreadyUnregistered
	}
	if a.Balance != 0 {
		return errors.ErrBalanceNotEmpty
	}
	a.Status = AccountStatusUnregistered
	a.UnregisteredAt = &at
	return nil
}

type AccountRepository interface {
	GetByNumber(ctx context.Context, accountNumber string) (*Account, error)
	// GetByNumberForUpdate locks the row until the surrounding transaction ends.
	GetByNumberForUpdate(ctx context.Context, accountNumber string) (*Account, error)
	ListByUserID(ctx context.Context, userID int64) ([]Account, error)
	// GetHighestNumbered returns nil, nil when no account exists yet.
	GetHighestNumbered(ctx context.Context) (*Account, error)
	// CountByUserID counts every account the user owns, unregistered ones included.
	CountByUserID(ctx context.Context, userID int64) (int, error)
	// Save inserts the account when ID is zero and updates it otherwise.
	Save(ctx context.Context, account *Account) error
}
