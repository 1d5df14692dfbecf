// Package businessflow contains the core business logic and use cases for the commission workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Calculator errors
	ErrCalculationFieldsRequired = errors.New("user_id, start_date and end_date are required")
	ErrInvalidDateFormat         = errors.New("dates must be in YYYY-MM-DD format")
	ErrStartDateAfterEndDate     = errors.New("start date cannot be after end date")
	ErrUserNotFound              = errors.New("user not found")

	// Payout ledger errors
	ErrPayoutUserRequired   = errors.New("payout user is required")
	ErrPayoutAmountInvalid  = errors.New("payout amount must be greater than zero")
	ErrPayoutPeriodRequired = errors.New("payout period bounds are required")
	ErrPayoutNotFound       = errors.New("payout not found")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BusinessMessage extracts the user-facing message of a BusinessError chain,
// falling back to the given default.
func BusinessMessage(err error, fallback string) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return fallback
}

func IsCalculationFieldsRequired(err error) bool {
	return errors.Is(err, ErrCalculationFieldsRequired)
}

func IsInvalidDateFormat(err error) bool {
	return errors.Is(err, ErrInvalidDateFormat)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsPayoutUserRequired(err error) bool {
	return errors.Is(err, ErrPayoutUserRequired)
}

func IsPayoutAmountInvalid(err error) bool {
	return errors.Is(err, ErrPayoutAmountInvalid)
}

func IsPayoutPeriodRequired(err error) bool {
	return errors.Is(err, ErrPayoutPeriodRequired)
}

func IsPayoutNotFound(err error) bool {
	return errors.Is(err, ErrPayoutNotFound)
}

// IsValidationError reports whether the error maps to a 400-class failure.
func IsValidationError(err error) bool {
	return IsCalculationFieldsRequired(err) ||
		IsInvalidDateFormat(err) ||
		IsStartDateAfterEndDate(err) ||
		IsPayoutUserRequired(err) ||
		IsPayoutAmountInvalid(err) ||
		IsPayoutPeriodRequired(err)
}

// IsNotFoundError reports whether the error maps to a 404-class failure.
func IsNotFoundError(err error) bool {
	return IsUserNotFound(err) || IsPayoutNotFound(err)
}
