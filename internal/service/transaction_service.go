package service

import (
	"context"
	"log/slog"
	"time"

	"account-service/internal/domain"
	"account-service/internal/errors"
)

// TransactionCache holds query results by transaction id. Stored transactions
// never change, so entries need no invalidation.
type TransactionCache interface {
	Get(ctx context.Context, transactionID string) (*TransactionSummary, bool)
	Set(ctx context.Context, transactionID string, summary *TransactionSummary)
}

// TransactionService debits and credits account balances and records every
// attempt in the transaction log.
type TransactionService struct {
	store  domain.Store
	idGen  domain.IDGenerator
	cache  TransactionCache
	limits Limits
	now    func() time.Time
	logger *slog.Logger
}

func NewTransactionService(
	store domain.Store,
	idGen domain.IDGenerator,
	limits Limits,
	logger *slog.Logger,
) *TransactionService {
	return &TransactionService{
		store:  store,
		idGen:  idGen,
		limits: limits.withDefaults(),
		now:    time.Now,
		logger: logger,
	}
}

// WithCache enables the read cache for QueryTransaction.
func (s *TransactionService) WithCache(cache TransactionCache) *TransactionService {
	s.cache = cache
	return s
}

func (s *TransactionService) UseBalance(ctx context.Context, userID int64, accountNumber string, amount int64) (*TransactionSummary, error) {
	s.logger.Info("Processing use balance",
		"user_id", userID,
		"account_number", accountNumber,
		"amount", amount)

	if amount <= 0 {
		return nil, errors.ErrInvalidRequest.WithDetails("amount must be positive")
	}

	var transaction *domain.Transaction
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		user, err := store.AccountUser().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		account, err := store.Account().GetByNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		if !account.OwnedBy(user.ID) {
			return errors.ErrUserAccountUnMatch
		}
		if account.IsUnregistered() {
			return errors.ErrAccountAlreadyUnregistered
		}
		if err := account.Debit(amount); err != nil {
			return err
		}

		if err := store.Account().Save(ctx, account); err != nil {
			return err
		}

		transaction = s.newTransaction(account, domain.TransactionTypeUse, domain.TransactionResultSuccess, amount)
		return store.Transaction().Save(ctx, transaction)
	})
	if err != nil {
		s.logger.Warn("Use balance rejected",
			"account_number", accountNumber,
			"amount", amount,
			"code", errors.CodeOf(err))
		return nil, err
	}

	s.logger.Info("Use balance completed", "transaction_id", transaction.TransactionID)
	return newTransactionSummary(transaction), nil
}

func (s *TransactionService) SaveFailedUseTransaction(ctx context.Context, accountNumber string, amount int64) error {
	return s.saveFailedTransaction(ctx, accountNumber, domain.TransactionTypeUse, amount)
}

func (s *TransactionService) CancelBalance(ctx context.Context, transactionID, accountNumber string, amount int64) (*TransactionSummary, error) {
	s.logger.Info("Processing cancel balance",
		"transaction_id", transactionID,
		"account_number", accountNumber,
		"amount", amount)

	if amount <= 0 {
		return nil, errors.ErrInvalidRequest.WithDetails("amount must be positive")
	}

	var transaction *domain.Transaction
	err := s.store.WithTransaction(ctx, func(store domain.Store) error {
		original, err := store.Transaction().GetByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}

		account, err := store.Account().GetByNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		if err := s.validateCancel(original, account, amount); err != nil {
			return err
		}

		account.Credit(amount)
		if err := store.Account().Save(ctx, account); err != nil {
			return err
		}

		transaction = s.newTransaction(account, domain.TransactionTypeCancel, domain.TransactionResultSuccess, amount)
		return store.Transaction().Save(ctx, transaction)
	})
	if err != nil {
		s.logger.Warn("Cancel balance rejected",
			"transaction_id", transactionID,
			"account_number", accountNumber,
			"code", errors.CodeOf(err))
		return nil, err
	}

	s.logger.Info("Cancel balance completed",
		"cancelled_transaction_id", transactionID,
		"transaction_id", transaction.TransactionID)
	return newTransactionSummary(transaction), nil
}

func (s *TransactionService) SaveFailedCancelTransaction(ctx context.Context, accountNumber string, amount int64) error {
	return s.saveFailedTransaction(ctx, accountNumber, domain.TransactionTypeCancel, amount)
}

func (s *TransactionService) QueryTransaction(ctx context.Context, transactionID string) (*TransactionSummary, error) {
	if s.cache != nil {
		if summary, ok := s.cache.Get(ctx, transactionID); ok {
			return summary, nil
		}
	}

	transaction, err := s.store.Transaction().GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	summary := newTransactionSummary(transaction)
	if s.cache != nil {
		s.cache.Set(ctx, transactionID, summary)
	}
	return summary, nil
}

func (s *TransactionService) validateCancel(original *domain.Transaction, account *domain.Account, amount int64) error {
	if original.AccountID != account.ID {
		return errors.ErrTransactionAccountUnMatch
	}
	if original.Amount != amount {
		return errors.ErrCancelMustFully
	}
	if original.TransactedAt.Before(s.cancelCutoff()) {
		return errors.ErrTooOldOrderToCancel
	}
	return nil
}

// cancelCutoff is the oldest transactedAt that may still be cancelled. Every
// full 365 days of the window is one calendar year, so the default window
// reaches back to the same date last year even across Feb 29.
func (s *TransactionService) cancelCutoff() time.Time {
	years := s.limits.CancelWindowDays / daysPerYear
	days := s.limits.CancelWindowDays % daysPerYear
	return s.now().AddDate(-years, 0, -days)
}

func (s *TransactionService) saveFailedTransaction(
	ctx context.Context,
	accountNumber string,
	transactionType domain.TransactionType,
	amount int64,
) error {
	account, err := s.store.Account().GetByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}

	transaction := s.newTransaction(account, transactionType, domain.TransactionResultFail, amount)
	if err := s.store.Transaction().Save(ctx, transaction); err != nil {
		return err
	}

	s.logger.Info("Failed transaction recorded",
		"transaction_id", transaction.TransactionID,
		"transaction_type", transactionType,
		"account_number", accountNumber)
	return nil
}

// newTransaction snapshots the account balance as it stands when called.
func (s *TransactionService) newTransaction(
	account *domain.Account,
	transactionType domain.TransactionType,
	result domain.TransactionResultType,
	amount int64,
) *domain.Transaction {
	return &domain.Transaction{
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		Type:            transactionType,
		ResultType:      result,
		TransactionID:   s.idGen.NewTransactionID(),
		Amount:          amount,
		BalanceSnapshot: account.Balance,
		TransactedAt:    s.now(),
	}
}

// RecordsFailedUse reports whether a UseBalance failure happened after the
// account was resolved and should be kept as a failed USE record.
func RecordsFailedUse(err error) bool {
	switch errors.CodeOf(err) {
	case errors.AccountAlreadyUnregistered, errors.AmountExceedBalance:
		return true
	default:
		return false
	}
}

// RecordsFailedCancel is the CancelBalance counterpart of RecordsFailedUse.
func RecordsFailedCancel(err error) bool {
	switch errors.CodeOf(err) {
	case errors.TransactionAccountUnMatch, errors.CancelMustFully, errors.TooOldOrderToCancel:
		return true
	default:
		return false
	}
}
