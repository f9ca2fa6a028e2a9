package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/shared/policy"
)

type ServiceInterface interface {
	// Registration and activation.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	ResendActivation(ctx context.Context, req *model.ResendOTPRequest) error
	VerifyActivation(ctx context.Context, req *model.VerifyOTPRequest) (*model.User, error)

	// Sessions.
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenPair, error)
	Refresh(ctx context.Context, req *model.RefreshRequest) (*model.TokenPair, error)
	Logout(ctx context.Context, req *model.RefreshRequest) error

	// Password recovery.
	ForgotPassword(ctx context.Context, req *model.ResendOTPRequest) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error

	// Phone verification for the authenticated account.
	SendPhoneVerification(ctx context.Context, actor policy.Actor) error
	VerifyPhone(ctx context.Context, actor policy.Actor, req *model.VerifyPhoneRequest) (*model.User, error)

	// Account and administration.
	Me(ctx context.Context, actor policy.Actor) (*model.User, error)
	GetByID(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, actor policy.Actor, filter *model.UserFilter) ([]model.User, int64, error)
	UpdateRole(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateRoleRequest) (*model.User, error)
	UpdateBorrowLimit(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateBorrowLimitRequest) (*model.User, error)
}
