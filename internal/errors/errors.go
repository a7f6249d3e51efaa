package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	UserNotFound               ErrorCode = "USER_NOT_FOUND"
	AccountNotFound            ErrorCode = "ACCOUNT_NOT_FOUND"
	TransactionNotFound        ErrorCode = "TRANSACTION_NOT_FOUND"
	MaxAccountPerUser          ErrorCode = "MAX_ACCOUNT_PER_USER_10"
	UserAccountUnMatch         ErrorCode = "USER_ACCOUNT_UN_MATCH"
	AccountAlreadyUnregistered ErrorCode = "ACCOUNT_ALREADY_UNREGISTERED"
	BalanceNotEmpty            ErrorCode = "BALANCE_NOT_EMPTY"
	AmountExceedBalance        ErrorCode = "AMOUNT_EXCEED_BALANCE"
	TransactionAccountUnMatch  ErrorCode = "TRANSACTION_ACCOUNT_UN_MATCH"
	CancelMustFully            ErrorCode = "CANCEL_MUST_FULLY"
	TooOldOrderToCancel        ErrorCode = "TOO_OLD_ORDER_TO_CANCEL"

	InvalidRequest         ErrorCode = "INVALID_REQUEST"
	AccountTransactionLock ErrorCode = "ACCOUNT_TRANSACTION_LOCK"
	DuplicateAccountNumber ErrorCode = "DUPLICATE_ACCOUNT_NUMBER"
	InternalError          ErrorCode = "INTERNAL_SERVER_ERROR"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy carrying details, so the shared predefined
// errors below are never mutated.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// HTTPStatus maps the error code to the transport status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case UserNotFound, AccountNotFound, TransactionNotFound:
		return http.StatusNotFound
	case UserAccountUnMatch, TransactionAccountUnMatch:
		return http.StatusForbidden
	case AccountAlreadyUnregistered, BalanceNotEmpty, DuplicateAccountNumber, AccountTransactionLock:
		return http.StatusConflict
	case MaxAccountPerUser, AmountExceedBalance, CancelMustFully, TooOldOrderToCancel:
		return http.StatusUnprocessableEntity
	case InvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the code of the AppError in err's chain, or InternalError
// when err carries none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return InternalError
}

// AsAppError converts any error into an AppError, wrapping unknown errors as
// internal errors.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(InternalError, "an unexpected error occurred").WithDetails(err.Error())
}

// Internal wraps a storage or infrastructure failure.
func Internal(message string, err error) *AppError {
	return NewAppError(InternalError, message).WithDetails(err.Error())
}

// Predefined errors for common cases
var (
	ErrUserNotFound               = NewAppError(UserNotFound, "user not found")
	ErrAccountNotFound            = NewAppError(AccountNotFound, "account not found")
	ErrTransactionNotFound        = NewAppError(TransactionNotFound, "transaction not found")
	ErrMaxAccountPerUser          = NewAppError(MaxAccountPerUser, "user already owns the maximum number of accounts")
	ErrUserAccountUnMatch         = NewAppError(UserAccountUnMatch, "account does not belong to user")
	ErrAccountAlreadyUnregistered = NewAppError(AccountAlreadyUnregistered, "account is already unregistered")
	ErrBalanceNotEmpty            = NewAppError(BalanceNotEmpty, "account balance is not empty")
	ErrAmountExceedBalance        = NewAppError(AmountExceedBalance, "amount exceeds account balance")
	ErrTransactionAccountUnMatch  = NewAppError(TransactionAccountUnMatch, "transaction does not belong to account")
	ErrCancelMustFully            = NewAppError(CancelMustFully, "partial cancel is not allowed")
	ErrTooOldOrderToCancel        = NewAppError(TooOldOrderToCancel, "transaction is too old to cancel")

	ErrInvalidRequest         = NewAppError(InvalidRequest, "invalid request")
	ErrAccountTransactionLock = NewAppError(AccountTransactionLock, "account is in use by another transaction")
	ErrDuplicateAccountNumber = NewAppError(DuplicateAccountNumber, "account number already exists")
	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin a transaction inside a transaction")
	ErrTransactionImmutable   = NewAppError(InternalError, "stored transactions cannot be modified")
)
