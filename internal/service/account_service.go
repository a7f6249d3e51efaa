package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"account-service/internal/domain"
	"account-service/internal/errors"
)

// initialAccountNumber is assigned to the first account ever created.
const initialAccountNumber = "1000000000"

// AccountService creates, deletes and lists accounts.
type AccountService struct {
	store  domain.Store
	limits Limits
	now    func() time.Time
	logger *slog.Logger
}

func NewAccountService(store domain.Store, limits Limits, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		limits: limits.withDefaults(),
		now:    time.Now,
		logger: logger,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, userID int64, initialBalance int64) (*AccountSummary, error) {
	s.logger.Info("Creating account", "user_id", userID, "initial_balance", initialBalance)

	if initialBalance < 0 {
		return nil, errors.ErrInvalidRequest.WithDetails("initial balance must not be negative")
	}

	var account *domain.Account
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		user, err := store.AccountUser().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		count, err := store.Account().CountByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		if count >= s.limits.MaxAccountsPerUser {
			return errors.ErrMaxAccountPerUser
		}

		highest, err := store.Account().GetHighestNumbered(ctx)
		if err != nil {
			return err
		}
		number, err := nextAccountNumber(highest)
		if err != nil {
			return err
		}

		account = &domain.Account{
			UserID:        user.ID,
			AccountNumber: number,
			Balance:       initialBalance,
			Status:        domain.AccountStatusInUse,
			RegisteredAt:  s.now(),
		}
		return store.Account().Save(ctx, account)
	})
	if err != nil {
		s.logger.Warn("Account creation rejected", "user_id", userID, "code", errors.CodeOf(err))
		return nil, err
	}

	s.logger.Info("Account created successfully", "user_id", userID, "account_number", account.AccountNumber)
	return newAccountSummary(account), nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, userID int64, accountNumber string) (*AccountSummary, error) {
	s.logger.Info("Deleting account", "user_id", userID, "account_number", accountNumber)

	var account *domain.Account
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		user, err := store.AccountUser().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		account, err = store.Account().GetByNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		if !account.OwnedBy(user.ID) {
			return errors.ErrUserAccountUnMatch
		}
		if err := account.Unregister(s.now()); err != nil {
			return err
		}

		return store.Account().Save(ctx, account)
	})
	if err != nil {
		s.logger.Warn("Account deletion rejected",
			"user_id", userID,
			"account_number", accountNumber,
			"code", errors.CodeOf(err))
		return nil, err
	}

	s.logger.Info("Account unregistered", "user_id", userID, "account_number", accountNumber)
	return newAccountSummary(account), nil
}

func (s *AccountService) GetAccountsByUserID(ctx context.Context, userID int64) ([]AccountSummary, error) {
	s.logger.Info("Listing accounts", "user_id", userID)

	user, err := s.store.AccountUser().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.Account().ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for i := range accounts {
		summaries = append(summaries, *newAccountSummary(&accounts[i]))
	}
	return summaries, nil
}

// nextAccountNumber increments the highest existing account number, keeping
// its digit width.
func nextAccountNumber(highest *domain.Account) (string, error) {
	if highest == nil {
		return initialAccountNumber, nil
	}

	n, err := strconv.ParseUint(highest.AccountNumber, 10, 64)
	if err != nil {
		return "", errors.Internal("stored account number is not numeric", err)
	}
	return fmt.Sprintf("%0*d", len(highest.AccountNumber), n+1), nil
}
