package service

import (
	"time"

	"account-service/internal/domain"
)

type AccountSummary struct {
	UserID         int64      `json:"user_id"`
	AccountNumber  string     `json:"account_number"`
	Balance        int64      `json:"balance"`
	RegisteredAt   time.Time  `json:"registered_at"`
	UnregisteredAt *time.Time `json:"unregistered_at,omitempty"`
}

func newAccountSummary(account *domain.Account) *AccountSummary {
	return &AccountSummary{
		UserID:         account.UserID,
		AccountNumber:  account.AccountNumber,
		Balance:        account.Balance,
		RegisteredAt:   account.RegisteredAt,
		UnregisteredAt: account.UnregisteredAt,
	}
}

type TransactionSummary struct {
	AccountNumber         string                       `json:"account_number"`
	TransactionType       domain.TransactionType       `json:"transaction_type"`
	TransactionResultType domain.TransactionResultType `json:"transaction_result_type"`
	TransactionID         string                       `json:"transaction_id"`
	Amount                int64                        `json:"amount"`
	BalanceSnapshot       int64                        `json:"balance_snapshot"`
	TransactedAt          time.Time                    `json:"transacted_at"`
}

func newTransactionSummary(tx *domain.Transaction) *TransactionSummary {
	return &TransactionSummary{
		AccountNumber:         tx.AccountNumber,
		TransactionType:       tx.Type,
		TransactionResultType: tx.ResultType,
		TransactionID:         tx.TransactionID,
		Amount:                tx.Amount,
		BalanceSnapshot:       tx.BalanceSnapshot,
		TransactedAt:          tx.TransactedAt,
	}
}
