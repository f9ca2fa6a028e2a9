package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/shared/policy"
)

type RepositoryInterface interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filter *model.UserFilter) ([]model.User, int64, error)
	Activate(ctx context.Context, id uuid.UUID) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetPhoneVerified(ctx context.Context, id uuid.UUID) error
	UpdateRole(ctx context.Context, id uuid.UUID, role policy.Role) (*model.User, error)
	UpdateBorrowLimit(ctx context.Context, id uuid.UUID, limit int) (*model.User, error)
}

// OTPRepositoryInterface stores one-time codes. Issue invalidates any
// outstanding code for the same user and purpose before inserting, so at
// most one code per purpose is live at a time.
type OTPRepositoryInterface interface {
	Issue(ctx context.Context, code *model.OneTimeCode) (*model.OneTimeCode, error)
	GetActive(ctx context.Context, userID uuid.UUID, purpose model.OTPPurpose) (*model.OneTimeCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
