package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/user/model"
	"library-backend/pkg/database"
)

type otpPostgresRepository struct {
	pool *pgxpool.Pool
}

func NewOTPPostgresRepository(pool *pgxpool.Pool) OTPRepositoryInterface {
	return &otpPostgresRepository{pool: pool}
}

const otpColumns = `id, user_id, code, purpose, expires_at, used_at, created_at`

func (r *otpPostgresRepository) Issue(ctx context.Context, code *model.OneTimeCode) (*model.OneTimeCode, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.OneTimeCode, error) {
		// Burn any outstanding code for this purpose first. Only the
		// latest code ever verifies.
		_, err := tx.Exec(ctx,
			`UPDATE one_time_codes SET used_at = NOW()
			 WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL`,
			code.UserID, code.Purpose,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to invalidate previous codes: %w", err)
		}

		var issued model.OneTimeCode
		err = tx.QueryRow(ctx,
			`INSERT INTO one_time_codes (user_id, code, purpose, expires_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+otpColumns,
			code.UserID, code.Code, code.Purpose, code.ExpiresAt,
		).Scan(
			&issued.ID, &issued.UserID, &issued.Code, &issued.Purpose,
			&issued.ExpiresAt, &issued.UsedAt, &issued.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to issue code: %w", err)
		}
		return &issued, nil
	})
}

func (r *otpPostgresRepository) GetActive(ctx context.Context, userID uuid.UUID, purpose model.OTPPurpose) (*model.OneTimeCode, error) {
	// Expiry is not filtered here so the caller can tell an expired code
	// apart from a wrong one.
	var code model.OneTimeCode
	err := r.pool.QueryRow(ctx,
		`SELECT `+otpColumns+` FROM one_time_codes
		 WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, purpose,
	).Scan(
		&code.ID, &code.UserID, &code.Code, &code.Purpose,
		&code.ExpiresAt, &code.UsedAt, &code.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to get active code: %w", err)
	}
	return &code, nil
}

func (r *otpPostgresRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	// The used_at IS NULL guard keeps a code single-use under races.
	tag, err := r.pool.Exec(ctx,
		`UPDATE one_time_codes SET used_at = $2 WHERE id = $1 AND used_at IS NULL`,
		id, usedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark code used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInvalidOTP
	}
	return nil
}

func (r *otpPostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM one_time_codes WHERE expires_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}
	return tag.RowsAffected(), nil
}
