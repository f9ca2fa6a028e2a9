package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrAuthorNotFound   = errors.New("author not found")
	ErrInvalidBirthDate = errors.New("birth date is invalid")
	ErrForbidden        = errors.New("not allowed to manage authors")
)

// isValidationError reports whether err carries field-level validation
// failures, which map to 400 rather than an internal failure.
func isValidationError(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}

// ToErrorCode converts an author error to its stable API code.
func ToErrorCode(err error) string {
	switch {
	case isValidationError(err):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrInvalidBirthDate):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts an author error to an HTTP status code.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return 404
	case isValidationError(err),
		errors.Is(err, ErrInvalidBirthDate):
		return 400
	case errors.Is(err, ErrForbidden):
		return 403
	default:
		return 500
	}
}
