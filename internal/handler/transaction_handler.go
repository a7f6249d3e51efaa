package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"account-service/internal/domain"
	"account-service/internal/lock"
	"account-service/internal/service"
)

type TransactionManager interface {
	UseBalance(ctx context.Context, userID int64, accountNumber string, amount int64) (*service.TransactionSummary, error)
	SaveFailedUseTransaction(ctx context.Context, accountNumber string, amount int64) error
	CancelBalance(ctx context.Context, transactionID, accountNumber string, amount int64) (*service.TransactionSummary, error)
	SaveFailedCancelTransaction(ctx context.Context, accountNumber string, amount int64) error
	QueryTransaction(ctx context.Context, transactionID string) (*service.TransactionSummary, error)
}

type TransactionHandler struct {
	transactions TransactionManager
	locker       lock.Locker
	logger       *slog.Logger
}

func NewTransactionHandler(transactions TransactionManager, locker lock.Locker, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		locker:       locker,
		logger:       logger,
	}
}

type UseBalanceRequest struct {
	UserID        int64       `json:"user_id" validate:"required,min=1"`
	AccountNumber string      `json:"account_number" validate:"required,len=10,numeric"`
	Amount        json.Number `json:"amount" validate:"required"`
}

type CancelBalanceRequest struct {
	TransactionID string      `json:"transaction_id" validate:"required"`
	AccountNumber string      `json:"account_number" validate:"required,len=10,numeric"`
	Amount        json.Number `json:"amount" validate:"required"`
}

type BalanceResponse struct {
	AccountNumber     string                       `json:"account_number"`
	TransactionResult domain.TransactionResultType `json:"transaction_result"`
	TransactionID     string                       `json:"transaction_id"`
	Amount            int64                        `json:"amount"`
	TransactedAt      time.Time                    `json:"transacted_at"`
}

type QueryTransactionResponse struct {
	AccountNumber     string                       `json:"account_number"`
	TransactionType   domain.TransactionType       `json:"transaction_type"`
	TransactionResult domain.TransactionResultType `json:"transaction_result"`
	TransactionID     string                       `json:"transaction_id"`
	Amount            int64                        `json:"amount"`
	TransactedAt      time.Time                    `json:"transacted_at"`
}

func (h *TransactionHandler) UseBalance(w http.ResponseWriter, r *http.Request) {
	var req UseBalanceRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseTransactionAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	unlock, err := h.locker.Lock(r.Context(), req.AccountNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	defer unlock()

	summary, err := h.transactions.UseBalance(r.Context(), req.UserID, req.AccountNumber, amount)
	if err != nil {
		if service.RecordsFailedUse(err) {
			if saveErr := h.transactions.SaveFailedUseTransaction(r.Context(), req.AccountNumber, amount); saveErr != nil {
				h.logger.Error("Failed to record failed use transaction",
					"account_number", req.AccountNumber,
					"error", saveErr)
			}
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newBalanceResponse(summary))
}

func (h *TransactionHandler) CancelBalance(w http.ResponseWriter, r *http.Request) {
	var req CancelBalanceRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseTransactionAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	unlock, err := h.locker.Lock(r.Context(), req.AccountNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	defer unlock()

	summary, err := h.transactions.CancelBalance(r.Context(), req.TransactionID, req.AccountNumber, amount)
	if err != nil {
		if service.RecordsFailedCancel(err) {
			if saveErr := h.transactions.SaveFailedCancelTransaction(r.Context(), req.AccountNumber, amount); saveErr != nil {
				h.logger.Error("Failed to record failed cancel transaction",
					"account_number", req.AccountNumber,
					"error", saveErr)
			}
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newBalanceResponse(summary))
}

func (h *TransactionHandler) QueryTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := mux.Vars(r)["transaction_id"]

	summary, err := h.transactions.QueryTransaction(r.Context(), transactionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryTransactionResponse{
		AccountNumber:     summary.AccountNumber,
		TransactionType:   summary.TransactionType,
		TransactionResult: summary.TransactionResultType,
		TransactionID:     summary.TransactionID,
		Amount:            summary.Amount,
		TransactedAt:      summary.TransactedAt,
	})
}

func newBalanceResponse(summary *service.TransactionSummary) BalanceResponse {
	return BalanceResponse{
		AccountNumber:     summary.AccountNumber,
		TransactionResult: summary.TransactionResultType,
		TransactionID:     summary.TransactionID,
		Amount:            summary.Amount,
		TransactedAt:      summary.TransactedAt,
	}
}
