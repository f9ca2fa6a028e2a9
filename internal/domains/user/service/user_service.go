package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/repository"
	"library-backend/internal/infrastructure/email"
	"library-backend/internal/shared/policy"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"
)

const (
	maxLoginAttempts   = 5
	loginLockoutWindow = 15 * time.Minute
	otpResendCooldown  = time.Minute
)

type userService struct {
	users       repository.RepositoryInterface
	codes       repository.OTPRepositoryInterface
	cache       cache.Cache
	jwtManager  *jwt.Manager
	email       email.EmailService
	borrowLimit int
	otpExpiry   time.Duration
	now         func() time.Time
}

func NewUserService(
	users repository.RepositoryInterface,
	codes repository.OTPRepositoryInterface,
	c cache.Cache,
	jwtManager *jwt.Manager,
	emailService email.EmailService,
	defaultBorrowLimit int,
	otpExpiryMinutes int,
) ServiceInterface {
	return &userService{
		users:       users,
		codes:       codes,
		cache:       c,
		jwtManager:  jwtManager,
		email:       emailService,
		borrowLimit: defaultBorrowLimit,
		otpExpiry:   time.Duration(otpExpiryMinutes) * time.Minute,
		now:         time.Now,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         policy.RoleMember,
		BorrowLimit:  s.borrowLimit,
	})
	if err != nil {
		return nil, err
	}

	// Activation email failures do not roll back the account; the user
	// can request a new code.
	if err := s.issueAndSendOTP(ctx, user, model.OTPPurposeActivation); err != nil {
		logger.Error("failed to send activation code", err)
	}

	return user, nil
}

func (s *userService) ResendActivation(ctx context.Context, req *model.ResendOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user.IsActive {
		return model.ErrAlreadyActive
	}

	if err := s.throttleOTP(ctx, user.ID, model.OTPPurposeActivation); err != nil {
		return err
	}
	return s.issueAndSendOTP(ctx, user, model.OTPPurposeActivation)
}

func (s *userService) VerifyActivation(ctx context.Context, req *model.VerifyOTPRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		return nil, model.ErrAlreadyActive
	}

	if err := s.consumeOTP(ctx, user.ID, model.OTPPurposeActivation, req.Code); err != nil {
		return nil, err
	}
	if err := s.users.Activate(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.users.GetByID(ctx, user.ID)
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lockKey := "login_attempts:" + req.Email
	var attempts int64
	if _, err := s.cache.Get(ctx, lockKey, &attempts); err == nil && attempts >= maxLoginAttempts {
		return nil, model.ErrAccountLocked
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Indistinguishable from a bad password, and still counted.
		s.recordFailedLogin(ctx, lockKey)
		return nil, model.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.recordFailedLogin(ctx, lockKey)
		return nil, model.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, model.ErrAccountInactive
	}

	if err := s.cache.Delete(ctx, lockKey); err != nil {
		logger.Warn("failed to clear login attempts", map[string]interface{}{"error": err.Error()})
	}

	return s.tokenPair(user)
}

func (s *userService) recordFailedLogin(ctx context.Context, lockKey string) {
	count, err := s.cache.Increment(ctx, lockKey)
	if err != nil {
		logger.Warn("failed to record login attempt", map[string]interface{}{"error": err.Error()})
		return
	}
	if count == 1 {
		if err := s.cache.Expire(ctx, lockKey, loginLockoutWindow); err != nil {
			logger.Warn("failed to set lockout window", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *userService) Refresh(ctx context.Context, req *model.RefreshRequest) (*model.TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if revoked, err := s.cache.Exists(ctx, revokedTokenKey(req.RefreshToken)); err == nil && revoked {
		return nil, model.ErrInvalidCredentials
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, model.ErrAccountInactive
	}

	return s.tokenPair(user)
}

// Logout revokes a refresh token. Access tokens stay valid until they
// expire, so the blacklist only needs to outlive the refresh claim.
func (s *userService) Logout(ctx context.Context, req *model.RefreshRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		// Already expired or malformed, nothing left to revoke.
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, revokedTokenKey(req.RefreshToken), true, ttl); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func revokedTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked_refresh:" + hex.EncodeToString(sum[:])
}

func (s *userService) ForgotPassword(ctx context.Context, req *model.ResendOTPRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email is registered.
		return nil
	}

	if err := s.throttleOTP(ctx, user.ID, model.OTPPurposePasswordReset); err != nil {
		return err
	}
	return s.issueAndSendOTP(ctx, user, model.OTPPurposePasswordReset)
}

func (s *userService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return model.ErrInvalidOTP
	}

	if err := s.consumeOTP(ctx, user.ID, model.OTPPurposePasswordReset, req.Code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.SetPassword(ctx, user.ID, string(hash))
}

func (s *userService) SendPhoneVerification(ctx context.Context, actor policy.Actor) error {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if user.Phone == nil || *user.Phone == "" {
		return model.ErrNoPhone
	}

	if err := s.throttleOTP(ctx, user.ID, model.OTPPurposePhoneVerification); err != nil {
		return err
	}
	return s.issueAndSendOTP(ctx, user, model.OTPPurposePhoneVerification)
}

func (s *userService) VerifyPhone(ctx context.Context, actor policy.Actor, req *model.VerifyPhoneRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.consumeOTP(ctx, actor.ID, model.OTPPurposePhoneVerification, req.Code); err != nil {
		return nil, err
	}
	if err := s.users.SetPhoneVerified(ctx, actor.ID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, actor.ID)
}

func (s *userService) Me(ctx context.Context, actor policy.Actor) (*model.User, error) {
	return s.users.GetByID(ctx, actor.ID)
}

func (s *userService) GetByID(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.User, error) {
	if actor.ID != id && !policy.Allowed(actor.Role, policy.ActionManageUsers) {
		return nil, model.ErrForbidden
	}
	return s.users.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context, actor policy.Actor, filter *model.UserFilter) ([]model.User, int64, error) {
	if !policy.Allowed(actor.Role, policy.ActionManageUsers) {
		return nil, 0, model.ErrForbidden
	}
	filter.Normalize()
	return s.users.List(ctx, filter)
}

func (s *userService) UpdateRole(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateRoleRequest) (*model.User, error) {
	// Role changes are the one user mutation reserved for admins.
	if actor.Role != policy.RoleAdmin {
		return nil, model.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role, ok := policy.ParseRole(req.Role)
	if !ok {
		return nil, model.ErrInvalidRole
	}
	return s.users.UpdateRole(ctx, id, role)
}

func (s *userService) UpdateBorrowLimit(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateBorrowLimitRequest) (*model.User, error) {
	if !policy.Allowed(actor.Role, policy.ActionManageUsers) {
		return nil, model.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.users.UpdateBorrowLimit(ctx, id, req.BorrowLimit)
}

func (s *userService) tokenPair(user *model.User) (*model.TokenPair, error) {
	access, err := s.jwtManager.GenerateAccessToken(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.ToResponse(),
	}, nil
}

func (s *userService) throttleOTP(ctx context.Context, userID uuid.UUID, purpose model.OTPPurpose) error {
	key := fmt.Sprintf("otp_cooldown:%s:%s", userID, purpose)
	exists, err := s.cache.Exists(ctx, key)
	if err != nil {
		// A cache outage never blocks account recovery.
		logger.Warn("otp throttle check failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if exists {
		remaining, ttlErr := s.cache.TTL(ctx, key)
		if ttlErr == nil {
			logger.Info("otp resend throttled", map[string]interface{}{
				"user_id":  userID.String(),
				"purpose":  string(purpose),
				"retry_in": remaining.String(),
			})
		}
		return model.ErrOTPThrottled
	}
	if err := s.cache.Set(ctx, key, 1, otpResendCooldown); err != nil {
		logger.Warn("failed to set otp cooldown", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (s *userService) issueAndSendOTP(ctx context.Context, user *model.User, purpose model.OTPPurpose) error {
	raw, err := model.GenerateOTPCode()
	if err != nil {
		return err
	}

	code, err := s.codes.Issue(ctx, &model.OneTimeCode{
		UserID:    user.ID,
		Code:      raw,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(s.otpExpiry),
	})
	if err != nil {
		return err
	}

	return s.email.SendOTPEmail(ctx, email.OTPEmailData{
		Email:     user.Email,
		Code:      code.Code,
		Purpose:   string(purpose),
		ExpiresIn: s.otpExpiry.String(),
	})
}

func (s *userService) consumeOTP(ctx context.Context, userID uuid.UUID, purpose model.OTPPurpose, submitted string) error {
	code, err := s.codes.GetActive(ctx, userID, purpose)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(code.Code), []byte(submitted)) != 1 {
		return model.ErrInvalidOTP
	}

	now := s.now()
	if !code.Usable(now) {
		return model.ErrOTPExpired
	}

	return s.codes.MarkUsed(ctx, code.ID, now)
}
