package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/infrastructure/email"
	"library-backend/internal/shared/policy"
	"library-backend/pkg/jwt"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, model.ErrEmailTaken
		}
	}
	u := *user
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	f.users[u.ID] = &u
	copied := u
	return &copied, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, em string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, em) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _ *model.UserFilter) ([]model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Activate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.IsActive = true
	u.EmailVerified = true
	return nil
}

func (f *fakeUserRepo) SetPassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) SetPhoneVerified(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PhoneVerified = true
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role policy.Role) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u.Role = role
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateBorrowLimit(_ context.Context, id uuid.UUID, limit int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u.BorrowLimit = limit
	copied := *u
	return &copied, nil
}

type fakeOTPRepo struct {
	mu    sync.Mutex
	codes []*model.OneTimeCode
}

func (f *fakeOTPRepo) Issue(_ context.Context, code *model.OneTimeCode) (*model.OneTimeCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	for _, c := range f.codes {
		if c.UserID == code.UserID && c.Purpose == code.Purpose && c.UsedAt == nil {
			used := now
			c.UsedAt = &used
		}
	}
	issued := *code
	issued.ID = uuid.New()
	issued.CreatedAt = now
	f.codes = append(f.codes, &issued)
	copied := issued
	return &copied, nil
}

func (f *fakeOTPRepo) GetActive(_ context.Context, userID uuid.UUID, purpose model.OTPPurpose) (*model.OneTimeCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.UserID == userID && c.Purpose == purpose && c.UsedAt == nil {
			copied := *c
			return &copied, nil
		}
	}
	return nil, model.ErrInvalidOTP
}

func (f *fakeOTPRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.codes {
		if c.ID == id && c.UsedAt == nil {
			c.UsedAt = &usedAt
			return nil
		}
	}
	return model.ErrInvalidOTP
}

func (f *fakeOTPRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.codes[:0]
	var deleted int64
	for _, c := range f.codes {
		if c.ExpiresAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	f.codes = kept
	return deleted, nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]int64{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.values[key]
	if !ok {
		return false, nil
	}
	if p, isInt := dest.(*int64); isInt {
		*p = v
	}
	return true, nil
}

func (f *fakeCache) Set(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = 1
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeCache) Increment(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok, nil
}

func (f *fakeCache) Expire(_ context.Context, _ string, _ time.Duration) error { return nil }
func (f *fakeCache) TTL(_ context.Context, _ string) (time.Duration, error)   { return 0, nil }
func (f *fakeCache) Ping(_ context.Context) error                             { return nil }

type fakeEmail struct {
	mu   sync.Mutex
	sent []email.OTPEmailData
}

func (f *fakeEmail) SendOTPEmail(_ context.Context, data email.OTPEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeEmail) SendOverdueReminder(_ context.Context, _, _ string, _ int) error {
	return nil
}

func (f *fakeEmail) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Code
}

type userFixture struct {
	svc   *userService
	users *fakeUserRepo
	codes *fakeOTPRepo
	cache *fakeCache
	email *fakeEmail
}

func newUserFixture() *userFixture {
	users := newFakeUserRepo()
	codes := &fakeOTPRepo{}
	c := newFakeCache()
	mailer := &fakeEmail{}
	jwtManager := jwt.NewManager("test-secret", 15*time.Minute, 72*time.Hour)

	svc := NewUserService(users, codes, c, jwtManager, mailer, 3, 10).(*userService)
	return &userFixture{svc: svc, users: users, codes: codes, cache: c, email: mailer}
}

func registerReq() *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:    "reader@example.com",
		Password: "s3cret-password",
		FullName: "Test Reader",
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates inactive member with default limit", func(t *testing.T) {
		fx := newUserFixture()

		user, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)

		assert.Equal(t, policy.RoleMember, user.Role)
		assert.Equal(t, 3, user.BorrowLimit)
		assert.False(t, user.IsActive)
		assert.NotEqual(t, "s3cret-password", user.PasswordHash)

		// An activation code went out.
		require.Len(t, fx.email.sent, 1)
		assert.Equal(t, "activation", fx.email.sent[0].Purpose)
		assert.Len(t, fx.email.sent[0].Code, 6)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		fx := newUserFixture()

		_, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)

		_, err = fx.svc.Register(context.Background(), registerReq())
		assert.ErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("short password rejected", func(t *testing.T) {
		fx := newUserFixture()

		req := registerReq()
		req.Password = "short"
		_, err := fx.svc.Register(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestActivation(t *testing.T) {
	t.Run("correct code activates once", func(t *testing.T) {
		fx := newUserFixture()
		_, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		code := fx.email.lastCode()

		user, err := fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
			Email: "reader@example.com", Code: code,
		})
		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.True(t, user.EmailVerified)

		// The code is spent and the account already active.
		_, err = fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
			Email: "reader@example.com", Code: code,
		})
		assert.ErrorIs(t, err, model.ErrAlreadyActive)
	})

	t.Run("wrong code rejected", func(t *testing.T) {
		fx := newUserFixture()
		_, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)

		wrong := "000000"
		if fx.email.lastCode() == wrong {
			wrong = "000001"
		}
		_, err = fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
			Email: "reader@example.com", Code: wrong,
		})
		assert.ErrorIs(t, err, model.ErrInvalidOTP)
	})

	t.Run("expired code rejected", func(t *testing.T) {
		fx := newUserFixture()
		_, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		code := fx.email.lastCode()

		fx.svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
		_, err = fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
			Email: "reader@example.com", Code: code,
		})
		assert.ErrorIs(t, err, model.ErrOTPExpired)
	})

	t.Run("resend invalidates the previous code", func(t *testing.T) {
		fx := newUserFixture()
		_, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		first := fx.email.lastCode()

		// Cooldown blocks an immediate resend.
		err = fx.svc.ResendActivation(context.Background(), &model.ResendOTPRequest{Email: "reader@example.com"})
		require.NoError(t, err)

		err = fx.svc.ResendActivation(context.Background(), &model.ResendOTPRequest{Email: "reader@example.com"})
		assert.ErrorIs(t, err, model.ErrOTPThrottled)

		second := fx.email.lastCode()
		if first != second {
			_, err = fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
				Email: "reader@example.com", Code: first,
			})
			assert.ErrorIs(t, err, model.ErrInvalidOTP)
		}

		_, err = fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
			Email: "reader@example.com", Code: second,
		})
		assert.NoError(t, err)
	})
}

func activate(t *testing.T, fx *userFixture) *model.User {
	t.Helper()
	_, err := fx.svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	user, err := fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
		Email: "reader@example.com", Code: fx.email.lastCode(),
	})
	require.NoError(t, err)
	return user
}

func TestLogin(t *testing.T) {
	t.Run("issues a token pair", func(t *testing.T) {
		fx := newUserFixture()
		activate(t, fx)

		pair, err := fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "s3cret-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "reader@example.com", pair.User.Email)
	})

	t.Run("inactive account cannot log in", func(t *testing.T) {
		fx := newUserFixture()
		_, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)

		_, err = fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "s3cret-password",
		})
		assert.ErrorIs(t, err, model.ErrAccountInactive)
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		fx := newUserFixture()
		activate(t, fx)

		_, err := fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "wrong-password",
		})
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)

		_, err = fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "nobody@example.com", Password: "whatever1",
		})
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("locks after repeated failures", func(t *testing.T) {
		fx := newUserFixture()
		activate(t, fx)

		for i := 0; i < maxLoginAttempts; i++ {
			_, err := fx.svc.Login(context.Background(), &model.LoginRequest{
				Email: "reader@example.com", Password: "wrong-password",
			})
			assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		}

		// Even the right password is refused while locked.
		_, err := fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "s3cret-password",
		})
		assert.ErrorIs(t, err, model.ErrAccountLocked)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		fx := newUserFixture()
		activate(t, fx)

		pair, err := fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "s3cret-password",
		})
		require.NoError(t, err)

		rotated, err := fx.svc.Refresh(context.Background(), &model.RefreshRequest{
			RefreshToken: pair.RefreshToken,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rotated.AccessToken)

		_, err = fx.svc.Refresh(context.Background(), &model.RefreshRequest{
			RefreshToken: pair.AccessToken,
		})
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		fx := newUserFixture()
		activate(t, fx)

		pair, err := fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "s3cret-password",
		})
		require.NoError(t, err)

		req := &model.RefreshRequest{RefreshToken: pair.RefreshToken}
		require.NoError(t, fx.svc.Logout(context.Background(), req))

		_, err = fx.svc.Refresh(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)

		// Revoking again is harmless.
		assert.NoError(t, fx.svc.Logout(context.Background(), req))
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("round trip changes the password", func(t *testing.T) {
		fx := newUserFixture()
		activate(t, fx)

		err := fx.svc.ForgotPassword(context.Background(), &model.ResendOTPRequest{Email: "reader@example.com"})
		require.NoError(t, err)
		code := fx.email.lastCode()

		err = fx.svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
			Email: "reader@example.com", Code: code, NewPassword: "brand-new-pass",
		})
		require.NoError(t, err)

		_, err = fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "s3cret-password",
		})
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)

		_, err = fx.svc.Login(context.Background(), &model.LoginRequest{
			Email: "reader@example.com", Password: "brand-new-pass",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown email does not leak", func(t *testing.T) {
		fx := newUserFixture()

		err := fx.svc.ForgotPassword(context.Background(), &model.ResendOTPRequest{Email: "nobody@example.com"})
		assert.NoError(t, err)
		assert.Empty(t, fx.email.sent)
	})

	t.Run("activation code cannot reset a password", func(t *testing.T) {
		fx := newUserFixture()
		_, err := fx.svc.Register(context.Background(), registerReq())
		require.NoError(t, err)
		activationCode := fx.email.lastCode()

		err = fx.svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
			Email: "reader@example.com", Code: activationCode, NewPassword: "brand-new-pass",
		})
		assert.ErrorIs(t, err, model.ErrInvalidOTP)
	})
}

func TestPhoneVerification(t *testing.T) {
	t.Run("requires a phone on file", func(t *testing.T) {
		fx := newUserFixture()
		user := activate(t, fx)

		actor := policy.Actor{ID: user.ID, Role: policy.RoleMember}
		err := fx.svc.SendPhoneVerification(context.Background(), actor)
		assert.ErrorIs(t, err, model.ErrNoPhone)
	})

	t.Run("verifies with the sent code", func(t *testing.T) {
		fx := newUserFixture()
		phone := "+15550100200"
		req := registerReq()
		req.Phone = &phone
		_, err := fx.svc.Register(context.Background(), req)
		require.NoError(t, err)
		user, err := fx.svc.VerifyActivation(context.Background(), &model.VerifyOTPRequest{
			Email: "reader@example.com", Code: fx.email.lastCode(),
		})
		require.NoError(t, err)

		actor := policy.Actor{ID: user.ID, Role: policy.RoleMember}
		require.NoError(t, fx.svc.SendPhoneVerification(context.Background(), actor))

		verified, err := fx.svc.VerifyPhone(context.Background(), actor, &model.VerifyPhoneRequest{
			Code: fx.email.lastCode(),
		})
		require.NoError(t, err)
		assert.True(t, verified.PhoneVerified)
	})
}

func TestAdministration(t *testing.T) {
	t.Run("only admins change roles", func(t *testing.T) {
		fx := newUserFixture()
		user := activate(t, fx)

		librarian := policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}
		_, err := fx.svc.UpdateRole(context.Background(), librarian, user.ID, &model.UpdateRoleRequest{Role: "librarian"})
		assert.ErrorIs(t, err, model.ErrForbidden)

		admin := policy.Actor{ID: uuid.New(), Role: policy.RoleAdmin}
		updated, err := fx.svc.UpdateRole(context.Background(), admin, user.ID, &model.UpdateRoleRequest{Role: "librarian"})
		require.NoError(t, err)
		assert.Equal(t, policy.RoleLibrarian, updated.Role)

		_, err = fx.svc.UpdateRole(context.Background(), admin, user.ID, &model.UpdateRoleRequest{Role: "superuser"})
		assert.ErrorIs(t, err, model.ErrInvalidRole)
	})

	t.Run("staff adjust borrow limits", func(t *testing.T) {
		fx := newUserFixture()
		user := activate(t, fx)

		librarian := policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}
		updated, err := fx.svc.UpdateBorrowLimit(context.Background(), librarian, user.ID, &model.UpdateBorrowLimitRequest{BorrowLimit: 5})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.BorrowLimit)

		member := policy.Actor{ID: user.ID, Role: policy.RoleMember}
		_, err = fx.svc.UpdateBorrowLimit(context.Background(), member, user.ID, &model.UpdateBorrowLimitRequest{BorrowLimit: 50})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("listing is staff only", func(t *testing.T) {
		fx := newUserFixture()
		user := activate(t, fx)

		member := policy.Actor{ID: user.ID, Role: policy.RoleMember}
		_, _, err := fx.svc.List(context.Background(), member, &model.UserFilter{})
		assert.ErrorIs(t, err, model.ErrForbidden)

		staff := policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}
		users, total, err := fx.svc.List(context.Background(), staff, &model.UserFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, users, 1)
	})

	t.Run("members read only themselves", func(t *testing.T) {
		fx := newUserFixture()
		user := activate(t, fx)

		self := policy.Actor{ID: user.ID, Role: policy.RoleMember}
		got, err := fx.svc.GetByID(context.Background(), self, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		other := policy.Actor{ID: uuid.New(), Role: policy.RoleMember}
		_, err = fx.svc.GetByID(context.Background(), other, user.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
