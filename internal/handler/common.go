package handler

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"account-service/internal/errors"
)

const (
	minTransactionAmount = 10
	maxTransactionAmount = 1_000_000_000
)

var validate = validator.New()

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, err error) {
	appErr := errors.AsAppError(err)
	w.Header().Set("Content-Type", "application/json")

	statusCode := appErr.HTTPStatus()
	errResponse := Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Error: &errResponse})
}

// decodeRequest reads a JSON body into req and runs its validate tags.
func decodeRequest(r *http.Request, req interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(req); err != nil {
		return errors.NewAppError(errors.InvalidRequest, "invalid request body").WithDetails(err.Error())
	}
	return validateRequest(req)
}

func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.ErrInvalidRequest.WithDetails(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", fieldErr.Field(), validationMessage(fieldErr)))
	}
	return errors.ErrInvalidRequest.WithDetails(strings.Join(messages, "; "))
}

func validationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + err.Param()
	case "max":
		return "must be at most " + err.Param()
	case "len":
		return "must be exactly " + err.Param() + " characters"
	case "numeric":
		return "must contain only digits"
	default:
		return "invalid value"
	}
}

// parseWholeAmount parses a JSON number that must be a whole number of
// currency units within [min, max].
func parseWholeAmount(field string, n json.Number, min, max int64) (int64, error) {
	amount, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, errors.ErrInvalidRequest.WithDetails(fmt.Sprintf("%s: not a number", field))
	}
	if !amount.IsInteger() {
		return 0, errors.ErrInvalidRequest.WithDetails(fmt.Sprintf("%s: must be a whole number", field))
	}
	if amount.LessThan(decimal.NewFromInt(min)) || amount.GreaterThan(decimal.NewFromInt(max)) {
		return 0, errors.ErrInvalidRequest.WithDetails(fmt.Sprintf("%s: must be between %d and %d", field, min, max))
	}
	return amount.IntPart(), nil
}

func parseTransactionAmount(n json.Number) (int64, error) {
	return parseWholeAmount("amount", n, minTransactionAmount, maxTransactionAmount)
}
