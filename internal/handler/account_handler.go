package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"account-service/internal/errors"
	"account-service/internal/service"
)

type AccountManager interface {
	CreateAccount(ctx context.Context, userID int64, initialBalance int64) (*service.AccountSummary, error)
	DeleteAccount(ctx context.Context, userID int64, accountNumber string) (*service.AccountSummary, error)
	GetAccountsByUserID(ctx context.Context, userID int64) ([]service.AccountSummary, error)
}

type AccountHandler struct {
	accounts AccountManager
	logger   *slog.Logger
}

func NewAccountHandler(accounts AccountManager, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

type CreateAccountRequest struct {
	UserID         int64       `json:"user_id" validate:"required,min=1"`
	InitialBalance json.Number `json:"initial_balance" validate:"required"`
}

type CreateAccountResponse struct {
	UserID        int64     `json:"user_id"`
	AccountNumber string    `json:"account_number"`
	RegisteredAt  time.Time `json:"registered_at"`
}

type DeleteAccountRequest struct {
	UserID        int64  `json:"user_id" validate:"required,min=1"`
	AccountNumber string `json:"account_number" validate:"required,len=10,numeric"`
}

type DeleteAccountResponse struct {
	UserID         int64      `json:"user_id"`
	AccountNumber  string     `json:"account_number"`
	UnregisteredAt *time.Time `json:"unregistered_at"`
}

type AccountInfoResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       int64  `json:"balance"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}

	initialBalance, err := parseWholeAmount("initial_balance", req.InitialBalance, 0, math.MaxInt64)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.UserID, initialBalance)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateAccountResponse{
		UserID:        account.UserID,
		AccountNumber: account.AccountNumber,
		RegisteredAt:  account.RegisteredAt,
	})
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req DeleteAccountRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.DeleteAccount(r.Context(), req.UserID, req.AccountNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteAccountResponse{
		UserID:         account.UserID,
		AccountNumber:  account.AccountNumber,
		UnregisteredAt: account.UnregisteredAt,
	})
}

func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID < 1 {
		writeError(w, errors.ErrInvalidRequest.WithDetails("user_id: must be a positive integer"))
		return
	}

	accounts, err := h.accounts.GetAccountsByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]AccountInfoResponse, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, AccountInfoResponse{
			AccountNumber: account.AccountNumber,
			Balance:       account.Balance,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
