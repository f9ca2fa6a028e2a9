package model

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrRecordNotFound     = errors.New("borrow record not found")
	ErrCopyNotFound       = errors.New("book copy not found")
	ErrCopyNotAvailable   = errors.New("book copy is not available")
	ErrUserNotFound       = errors.New("user not found")
	ErrBorrowLimitReached = errors.New("borrow limit reached")
	ErrAlreadyReturned    = errors.New("borrow record already returned")
	ErrNotRecordOwner     = errors.New("borrow record belongs to another user")
	ErrNoFeeToPay         = errors.New("borrow record has no late fee")
	ErrFeeAlreadyPaid     = errors.New("late fee already paid")
	ErrForbidden          = errors.New("operation not permitted")
)

// isValidationError reports whether err carries field-level validation
// failures, which map to 400 rather than an internal failure.
func isValidationError(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}

func ToErrorCode(err error) string {
	switch {
	case isValidationError(err):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrRecordNotFound):
		return "RECORD_NOT_FOUND"
	case errors.Is(err, ErrCopyNotFound):
		return "COPY_NOT_FOUND"
	case errors.Is(err, ErrCopyNotAvailable):
		return "COPY_NOT_AVAILABLE"
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrBorrowLimitReached):
		return "BORROW_LIMIT_REACHED"
	case errors.Is(err, ErrAlreadyReturned):
		return "ALREADY_RETURNED"
	case errors.Is(err, ErrNotRecordOwner):
		return "NOT_RECORD_OWNER"
	case errors.Is(err, ErrNoFeeToPay):
		return "NO_FEE_TO_PAY"
	case errors.Is(err, ErrFeeAlreadyPaid):
		return "FEE_ALREADY_PAID"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

func ToHTTPStatus(err error) int {
	switch {
	case isValidationError(err),
		errors.Is(err, ErrNoFeeToPay):
		return http.StatusBadRequest
	case errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrCopyNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCopyNotAvailable),
		errors.Is(err, ErrBorrowLimitReached),
		errors.Is(err, ErrAlreadyReturned),
		errors.Is(err, ErrFeeAlreadyPaid):
		return http.StatusConflict
	case errors.Is(err, ErrNotRecordOwner),
		errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
