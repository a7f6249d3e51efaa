package handler

import (
	"context"
	"io"
	"log/slog"

	"account-service/internal/lock"
	"account-service/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockAccountManager struct {
	createFn func(ctx context.Context, userID, initialBalance int64) (*service.AccountSummary, error)
	deleteFn func(ctx context.Context, userID int64, accountNumber string) (*service.AccountSummary, error)
	listFn   func(ctx context.Context, userID int64) ([]service.AccountSummary, error)
}

func (m *mockAccountManager) CreateAccount(ctx context.Context, userID, initialBalance int64) (*service.AccountSummary, error) {
	return m.createFn(ctx, userID, initialBalance)
}

func (m *mockAccountManager) DeleteAccount(ctx context.Context, userID int64, accountNumber string) (*service.AccountSummary, error) {
	return m.deleteFn(ctx, userID, accountNumber)
}

func (m *mockAccountManager) GetAccountsByUserID(ctx context.Context, userID int64) ([]service.AccountSummary, error) {
	return m.listFn(ctx, userID)
}

type failedRecord struct {
	accountNumber string
	amount        int64
}

type mockTransactionManager struct {
	useFn    func(ctx context.Context, userID int64, accountNumber string, amount int64) (*service.TransactionSummary, error)
	cancelFn func(ctx context.Context, transactionID, accountNumber string, amount int64) (*service.TransactionSummary, error)
	queryFn  func(ctx context.Context, transactionID string) (*service.TransactionSummary, error)

	failedUses    []failedRecord
	failedCancels []failedRecord
}

func (m *mockTransactionManager) UseBalance(ctx context.Context, userID int64, accountNumber string, amount int64) (*service.TransactionSummary, error) {
	return m.useFn(ctx, userID, accountNumber, amount)
}

func (m *mockTransactionManager) SaveFailedUseTransaction(_ context.Context, accountNumber string, amount int64) error {
	m.failedUses = append(m.failedUses, failedRecord{accountNumber, amount})
	return nil
}

func (m *mockTransactionManager) CancelBalance(ctx context.Context, transactionID, accountNumber string, amount int64) (*service.TransactionSummary, error) {
	return m.cancelFn(ctx, transactionID, accountNumber, amount)
}

func (m *mockTransactionManager) SaveFailedCancelTransaction(_ context.Context, accountNumber string, amount int64) error {
	m.failedCancels = append(m.failedCancels, failedRecord{accountNumber, amount})
	return nil
}

func (m *mockTransactionManager) QueryTransaction(ctx context.Context, transactionID string) (*service.TransactionSummary, error) {
	return m.queryFn(ctx, transactionID)
}

// recordingLocker tracks lock and unlock calls and can refuse every lock.
type recordingLocker struct {
	err      error
	locked   []string
	unlocked int
}

func (l *recordingLocker) Lock(_ context.Context, key string) (lock.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, key)
	return func() { l.unlocked++ }, nil
}
