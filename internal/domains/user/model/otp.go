package model

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// OTPPurpose scopes a one-time code to a single flow. A code issued for
// one purpose never verifies another.
type OTPPurpose string

const (
	OTPPurposeActivation        OTPPurpose = "activation"
	OTPPurposeLogin             OTPPurpose = "login"
	OTPPurposePasswordReset     OTPPurpose = "password_reset"
	OTPPurposePhoneVerification OTPPurpose = "phone_verification"
)

func ParseOTPPurpose(s string) (OTPPurpose, bool) {
	switch OTPPurpose(s) {
	case OTPPurposeActivation, OTPPurposeLogin, OTPPurposePasswordReset, OTPPurposePhoneVerification:
		return OTPPurpose(s), true
	}
	return "", false
}

// OneTimeCode is a 6-digit code tied to a user and purpose. UsedAt set
// means the code is spent; issuing a new code for the same purpose
// invalidates older outstanding ones.
type OneTimeCode struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Code      string     `json:"-" db:"code"`
	Purpose   OTPPurpose `json:"purpose" db:"purpose"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (c *OneTimeCode) Usable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}

// GenerateOTPCode draws a uniform 6-digit code from crypto/rand.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
