package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
	"account-service/internal/errors"
	"account-service/internal/service"
)

var transactedAt = time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)

func TestUseBalanceHandler(t *testing.T) {
	const body = `{"user_id":1,"account_number":"1000000000","amount":1000}`

	t.Run("success", func(t *testing.T) {
		manager := &mockTransactionManager{
			useFn: func(_ context.Context, userID int64, accountNumber string, amount int64) (*service.TransactionSummary, error) {
				return &service.TransactionSummary{
					AccountNumber:         accountNumber,
					TransactionType:       domain.TransactionTypeUse,
					TransactionResultType: domain.TransactionResultSuccess,
					TransactionID:         "tx-1",
					Amount:                amount,
					BalanceSnapshot:       9000,
					TransactedAt:          transactedAt,
				}, nil
			},
		}
		locker := &recordingLocker{}
		h := NewTransactionHandler(manager, locker, discardLogger())

		rec := httptest.NewRecorder()
		h.UseBalance(rec, httptest.NewRequest(http.MethodPost, "/transaction/use", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp BalanceResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
		assert.Equal(t, "tx-1", resp.TransactionID)
		assert.Equal(t, domain.TransactionResultSuccess, resp.TransactionResult)
		assert.Equal(t, int64(1000), resp.Amount)

		assert.Equal(t, []string{"1000000000"}, locker.locked)
		assert.Equal(t, 1, locker.unlocked)
		assert.Empty(t, manager.failedUses)
	})

	failures := []struct {
		name   string
		err    error
		status int
		record bool
	}{
		{"amount exceeds balance", errors.ErrAmountExceedBalance, http.StatusUnprocessableEntity, true},
		{"already unregistered", errors.ErrAccountAlreadyUnregistered, http.StatusConflict, true},
		{"owner mismatch", errors.ErrUserAccountUnMatch, http.StatusForbidden, false},
		{"account not found", errors.ErrAccountNotFound, http.StatusNotFound, false},
		{"user not found", errors.ErrUserNotFound, http.StatusNotFound, false},
	}

	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			manager := &mockTransactionManager{
				useFn: func(context.Context, int64, string, int64) (*service.TransactionSummary, error) {
					return nil, tc.err
				},
			}
			h := NewTransactionHandler(manager, &recordingLocker{}, discardLogger())

			rec := httptest.NewRecorder()
			h.UseBalance(rec, httptest.NewRequest(http.MethodPost, "/transaction/use", strings.NewReader(body)))

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, string(errors.CodeOf(tc.err)), decodeEnvelope(t, rec).Error.Code)
			if tc.record {
				assert.Equal(t, []failedRecord{{"1000000000", 1000}}, manager.failedUses)
			} else {
				assert.Empty(t, manager.failedUses)
			}
		})
	}

	t.Run("amount out of range", func(t *testing.T) {
		h := NewTransactionHandler(&mockTransactionManager{}, &recordingLocker{}, discardLogger())

		for _, amount := range []string{"9", "1000000001", "10.5", "\"abc\""} {
			rec := httptest.NewRecorder()
			reqBody := `{"user_id":1,"account_number":"1000000000","amount":` + amount + `}`
			h.UseBalance(rec, httptest.NewRequest(http.MethodPost, "/transaction/use", strings.NewReader(reqBody)))

			assert.Equal(t, http.StatusBadRequest, rec.Code, amount)
		}
	})

	t.Run("lock contention", func(t *testing.T) {
		manager := &mockTransactionManager{}
		h := NewTransactionHandler(manager, &recordingLocker{err: errors.ErrAccountTransactionLock}, discardLogger())

		rec := httptest.NewRecorder()
		h.UseBalance(rec, httptest.NewRequest(http.MethodPost, "/transaction/use", strings.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, string(errors.AccountTransactionLock), decodeEnvelope(t, rec).Error.Code)
		assert.Empty(t, manager.failedUses)
	})
}

func TestCancelBalanceHandler(t *testing.T) {
	const body = `{"transaction_id":"tx-1","account_number":"1000000000","amount":1000}`

	t.Run("success", func(t *testing.T) {
		var gotTransactionID string
		manager := &mockTransactionManager{
			cancelFn: func(_ context.Context, transactionID, accountNumber string, amount int64) (*service.TransactionSummary, error) {
				gotTransactionID = transactionID
				return &service.TransactionSummary{
					AccountNumber:         accountNumber,
					TransactionType:       domain.TransactionTypeCancel,
					TransactionResultType: domain.TransactionResultSuccess,
					TransactionID:         "tx-2",
					Amount:                amount,
					BalanceSnapshot:       11000,
					TransactedAt:          transactedAt,
				}, nil
			},
		}
		h := NewTransactionHandler(manager, &recordingLocker{}, discardLogger())

		rec := httptest.NewRecorder()
		h.CancelBalance(rec, httptest.NewRequest(http.MethodPost, "/transaction/cancel", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tx-1", gotTransactionID)
		var resp BalanceResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
		assert.Equal(t, "tx-2", resp.TransactionID)
	})

	failures := []struct {
		name   string
		err    error
		record bool
	}{
		{"partial cancel", errors.ErrCancelMustFully, true},
		{"too old", errors.ErrTooOldOrderToCancel, true},
		{"account mismatch", errors.ErrTransactionAccountUnMatch, true},
		{"transaction not found", errors.ErrTransactionNotFound, false},
		{"account not found", errors.ErrAccountNotFound, false},
	}

	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			manager := &mockTransactionManager{
				cancelFn: func(context.Context, string, string, int64) (*service.TransactionSummary, error) {
					return nil, tc.err
				},
			}
			h := NewTransactionHandler(manager, &recordingLocker{}, discardLogger())

			rec := httptest.NewRecorder()
			h.CancelBalance(rec, httptest.NewRequest(http.MethodPost, "/transaction/cancel", strings.NewReader(body)))

			assert.Equal(t, string(errors.CodeOf(tc.err)), decodeEnvelope(t, rec).Error.Code)
			if tc.record {
				assert.Equal(t, []failedRecord{{"1000000000", 1000}}, manager.failedCancels)
			} else {
				assert.Empty(t, manager.failedCancels)
			}
		})
	}

	t.Run("missing transaction id", func(t *testing.T) {
		h := NewTransactionHandler(&mockTransactionManager{}, &recordingLocker{}, discardLogger())

		rec := httptest.NewRecorder()
		h.CancelBalance(rec, httptest.NewRequest(http.MethodPost, "/transaction/cancel",
			strings.NewReader(`{"account_number":"1000000000","amount":1000}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQueryTransactionHandler(t *testing.T) {
	h := NewTransactionHandler(&mockTransactionManager{
		queryFn: func(_ context.Context, transactionID string) (*service.TransactionSummary, error) {
			if transactionID != "tx-1" {
				return nil, errors.ErrTransactionNotFound
			}
			return &service.TransactionSummary{
				AccountNumber:         "1000000000",
				TransactionType:       domain.TransactionTypeUse,
				TransactionResultType: domain.TransactionResultFail,
				TransactionID:         "tx-1",
				Amount:                1000,
				TransactedAt:          transactedAt,
			}, nil
		},
	}, &recordingLocker{}, discardLogger())

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/transaction/tx-1", nil), map[string]string{"transaction_id": "tx-1"})
	rec := httptest.NewRecorder()
	h.QueryTransaction(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryTransactionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
	assert.Equal(t, domain.TransactionTypeUse, resp.TransactionType)
	assert.Equal(t, domain.TransactionResultFail, resp.TransactionResult)
	assert.Equal(t, int64(1000), resp.Amount)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/transaction/nope", nil), map[string]string{"transaction_id": "nope"})
	rec = httptest.NewRecorder()
	h.QueryTransaction(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
