package model

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not activated")
	ErrAccountLocked      = errors.New("too many failed login attempts, try again later")
	ErrAlreadyActive      = errors.New("account is already activated")
	ErrInvalidOTP         = errors.New("invalid one-time code")
	ErrOTPExpired         = errors.New("one-time code expired")
	ErrOTPThrottled       = errors.New("a code was sent recently, wait before requesting another")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNoPhone            = errors.New("no phone number on the account")
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
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrEmailTaken):
		return "EMAIL_TAKEN"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrAccountInactive):
		return "ACCOUNT_INACTIVE"
	case errors.Is(err, ErrAccountLocked):
		return "ACCOUNT_LOCKED"
	case errors.Is(err, ErrAlreadyActive):
		return "ALREADY_ACTIVE"
	case errors.Is(err, ErrInvalidOTP):
		return "INVALID_OTP"
	case errors.Is(err, ErrOTPExpired):
		return "OTP_EXPIRED"
	case errors.Is(err, ErrOTPThrottled):
		return "OTP_THROTTLED"
	case errors.Is(err, ErrInvalidRole):
		return "INVALID_ROLE"
	case errors.Is(err, ErrNoPhone):
		return "NO_PHONE"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrAlreadyActive):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrOTPExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountInactive),
		errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAccountLocked),
		errors.Is(err, ErrOTPThrottled):
		return http.StatusTooManyRequests
	case isValidationError(err),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrNoPhone):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
