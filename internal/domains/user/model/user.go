package model

import (
	"time"

	"github.com/google/uuid"

	"library-backend/internal/shared/policy"
)

// User is a library account. BorrowLimit caps concurrent loans and is
// enforced inside the borrow transaction, not here.
type User struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	Email         string      `json:"email" db:"email"`
	PasswordHash  string      `json:"-" db:"password_hash"`
	FullName      string      `json:"full_name" db:"full_name"`
	Phone         *string     `json:"phone" db:"phone"`
	Role          policy.Role `json:"role" db:"role"`
	BorrowLimit   int         `json:"borrow_limit" db:"borrow_limit"`
	IsActive      bool        `json:"is_active" db:"is_active"`
	EmailVerified bool        `json:"email_verified" db:"email_verified"`
	PhoneVerified bool        `json:"phone_verified" db:"phone_verified"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

type UserResponse struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	FullName      string      `json:"full_name"`
	Phone         *string     `json:"phone,omitempty"`
	Role          policy.Role `json:"role"`
	BorrowLimit   int         `json:"borrow_limit"`
	IsActive      bool        `json:"is_active"`
	EmailVerified bool        `json:"email_verified"`
	PhoneVerified bool        `json:"phone_verified"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Phone:         u.Phone,
		Role:          u.Role,
		BorrowLimit:   u.BorrowLimit,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		CreatedAt:     u.CreatedAt,
	}
}
