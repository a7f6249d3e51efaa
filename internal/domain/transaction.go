package domain

import (
	"context"
	"time"
)

type TransactionType string

const (
	TransactionTypeUse    TransactionType = "USE"
	TransactionTypeCancel TransactionType = "CANCEL"
)

type TransactionResultType string

const (
	TransactionResultSuccess TransactionResultType = "S"
	TransactionResultFail    TransactionResultType = "F"
)

// Transaction is one balance movement attempt. Records are append-only.
// AccountNumber is filled in by the store from the owning account.
type Transaction struct {
	ID              int64                 `json:"id"`
	AccountID       int64                 `json:"account_id"`
	AccountNumber   string                `json:"account_number"`
	Type            TransactionType       `json:"transaction_type"`
	ResultType      TransactionResultType `json:"transaction_result_type"`
	TransactionID   string                `json:"transaction_id"`
	Amount          int64                 `json:"amount"`
	BalanceSnapshot int64                 `json:"balance_snapshot"`
	TransactedAt    time.Time             `json:"transacted_at"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type TransactionRepository interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	// Save appends a new transaction and sets its ID. A transaction that
	// already has an ID is rejected.
	Save(ctx context.Context, tx *Transaction) error
}
