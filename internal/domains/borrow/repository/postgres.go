package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/borrow/model"
	"library-backend/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const recordColumns = `id, user_id, copy_id, borrow_date, due_date, return_date, late_fee, fee_paid, created_at`

func scanRecord(row pgx.Row) (*model.BorrowRecord, error) {
	var r model.BorrowRecord
	err := row.Scan(
		&r.ID, &r.UserID, &r.CopyID,
		&r.BorrowDate, &r.DueDate, &r.ReturnDate,
		&r.LateFee, &r.FeePaid, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *postgresRepository) CreateBorrow(ctx context.Context, userID, copyID uuid.UUID, borrowDate, dueDate time.Time) (*model.BorrowRecord, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.BorrowRecord, error) {
		// Lock the copy first. Concurrent borrowers of the same copy
		// serialize here; the loser sees status=borrowed and bails.
		var status string
		err := tx.QueryRow(ctx,
			`SELECT status FROM book_copies WHERE id = $1 FOR UPDATE`,
			copyID,
		).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrCopyNotFound
			}
			return nil, fmt.Errorf("failed to lock copy: %w", err)
		}
		if status != "available" {
			return nil, model.ErrCopyNotAvailable
		}

		// Lock the user row so two loans by the same user cannot both
		// read the outstanding count below the limit.
		var borrowLimit int
		err = tx.QueryRow(ctx,
			`SELECT borrow_limit FROM users WHERE id = $1 FOR UPDATE`,
			userID,
		).Scan(&borrowLimit)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, model.ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to lock user: %w", err)
		}

		var outstanding int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM borrow_records WHERE user_id = $1 AND return_date IS NULL`,
			userID,
		).Scan(&outstanding)
		if err != nil {
			return nil, fmt.Errorf("failed to count outstanding borrows: %w", err)
		}
		if outstanding >= borrowLimit {
			return nil, model.ErrBorrowLimitReached
		}

		record, err := scanRecord(tx.QueryRow(ctx,
			`INSERT INTO borrow_records (user_id, copy_id, borrow_date, due_date)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+recordColumns,
			userID, copyID, borrowDate, dueDate,
		))
		if err != nil {
			return nil, fmt.Errorf("failed to insert borrow record: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE book_copies SET status = 'borrowed', updated_at = NOW() WHERE id = $1`,
			copyID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update copy status: %w", err)
		}

		return record, nil
	})
}

func (r *postgresRepository) CompleteReturn(ctx context.Context, recordID uuid.UUID, returnDate time.Time, lateFee decimal.Decimal) (*model.BorrowRecord, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.BorrowRecord, error) {
		// The return_date IS NULL guard makes a double return lose even
		// if two requests race past the service-level check.
		record, err := scanRecord(tx.QueryRow(ctx,
			`UPDATE borrow_records
			 SET return_date = $2, late_fee = $3
			 WHERE id = $1 AND return_date IS NULL
			 RETURNING `+recordColumns,
			recordID, returnDate, lateFee,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				var exists bool
				if checkErr := tx.QueryRow(ctx,
					`SELECT EXISTS(SELECT 1 FROM borrow_records WHERE id = $1)`,
					recordID,
				).Scan(&exists); checkErr != nil {
					return nil, fmt.Errorf("failed to check borrow record: %w", checkErr)
				}
				if exists {
					return nil, model.ErrAlreadyReturned
				}
				return nil, model.ErrRecordNotFound
			}
			return nil, fmt.Errorf("failed to close borrow record: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE book_copies SET status = 'available', updated_at = NOW() WHERE id = $1`,
			record.CopyID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to release copy: %w", err)
		}

		return record, nil
	})
}

func (r *postgresRepository) MarkFeePaid(ctx context.Context, recordID uuid.UUID) (*model.BorrowRecord, error) {
	record, err := scanRecord(r.pool.QueryRow(ctx,
		`UPDATE borrow_records
		 SET fee_paid = TRUE
		 WHERE id = $1 AND fee_paid = FALSE AND late_fee > 0
		 RETURNING `+recordColumns,
		recordID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race with another settle request, or the service
			// precondition checks were bypassed.
			return nil, model.ErrFeeAlreadyPaid
		}
		return nil, fmt.Errorf("failed to mark fee paid: %w", err)
	}
	return record, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BorrowRecord, error) {
	record, err := scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM borrow_records WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get borrow record: %w", err)
	}
	return record, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error) {
	scoped := *filter
	scoped.UserID = &userID
	return r.List(ctx, &scoped)
}

func (r *postgresRepository) List(ctx context.Context, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != nil {
		where += ` AND user_id = ` + arg(*filter.UserID)
	}
	if filter.Outstanding {
		where += ` AND return_date IS NULL`
	}

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM borrow_records`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count borrow records: %w", err)
	}

	query := `SELECT ` + recordColumns + ` FROM borrow_records` + where +
		` ORDER BY borrow_date DESC LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list borrow records: %w", err)
	}
	defer rows.Close()

	records := []model.BorrowRecord{}
	for rows.Next() {
		var rec model.BorrowRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.CopyID,
			&rec.BorrowDate, &rec.DueDate, &rec.ReturnDate,
			&rec.LateFee, &rec.FeePaid, &rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan borrow record: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *postgresRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.BorrowRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM borrow_records
		 WHERE return_date IS NULL AND due_date < $1
		 ORDER BY due_date ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue records: %w", err)
	}
	defer rows.Close()

	records := []model.BorrowRecord{}
	for rows.Next() {
		var rec model.BorrowRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.CopyID,
			&rec.BorrowDate, &rec.DueDate, &rec.ReturnDate,
			&rec.LateFee, &rec.FeePaid, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan overdue record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *postgresRepository) ListOverdueNotices(ctx context.Context, now time.Time) ([]model.OverdueNotice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT br.id, u.email, b.title, br.due_date
		 FROM borrow_records br
		 JOIN users u ON u.id = br.user_id
		 JOIN book_copies c ON c.id = br.copy_id
		 JOIN books b ON b.id = c.book_id
		 WHERE br.return_date IS NULL AND br.due_date < $1
		 ORDER BY br.due_date ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue notices: %w", err)
	}
	defer rows.Close()

	notices := []model.OverdueNotice{}
	for rows.Next() {
		var n model.OverdueNotice
		if err := rows.Scan(&n.RecordID, &n.UserEmail, &n.BookTitle, &n.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan overdue notice: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}
