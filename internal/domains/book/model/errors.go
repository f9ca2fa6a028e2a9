package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// Book errors
	ErrBookNotFound           = errors.New("book not found")
	ErrDuplicateISBN          = errors.New("book with this ISBN already exists")
	ErrInvalidPublicationYear = errors.New("publication year is out of range")
	ErrInvalidLanguage        = errors.New("language is not supported")
	ErrAuthorNotFound         = errors.New("author not found")

	// Copy errors
	ErrCopyNotFound        = errors.New("book copy not found")
	ErrInvalidCopyStatus   = errors.New("invalid copy status")
	ErrCopyHasActiveBorrow = errors.New("cannot delete a copy with an outstanding borrow record")

	ErrForbidden = errors.New("not allowed to manage the catalog")
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
	case errors.Is(err, ErrBookNotFound):
		return "BOOK_NOT_FOUND"
	case errors.Is(err, ErrCopyNotFound):
		return "COPY_NOT_FOUND"
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrDuplicateISBN):
		return "DUPLICATE_ISBN"
	case errors.Is(err, ErrCopyHasActiveBorrow):
		return "COPY_HAS_ACTIVE_BORROW"
	case errors.Is(err, ErrInvalidPublicationYear),
		errors.Is(err, ErrInvalidLanguage),
		errors.Is(err, ErrInvalidCopyStatus):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBookNotFound),
		errors.Is(err, ErrCopyNotFound),
		errors.Is(err, ErrAuthorNotFound):
		return 404
	case errors.Is(err, ErrDuplicateISBN),
		errors.Is(err, ErrCopyHasActiveBorrow):
		return 409
	case isValidationError(err),
		errors.Is(err, ErrInvalidPublicationYear),
		errors.Is(err, ErrInvalidLanguage),
		errors.Is(err, ErrInvalidCopyStatus):
		return 400
	case errors.Is(err, ErrForbidden):
		return 403
	default:
		return 500
	}
}
