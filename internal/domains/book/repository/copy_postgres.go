package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book/model"
)

type copyPostgresRepository struct {
	pool *pgxpool.Pool
}

func NewCopyPostgresRepository(pool *pgxpool.Pool) CopyRepositoryInterface {
	return &copyPostgresRepository{pool: pool}
}

func (r *copyPostgresRepository) Create(ctx context.Context, c *model.BookCopy) error {
	query := `
		INSERT INTO book_copies (id, book_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.ID, c.BookID, c.Status).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ErrBookNotFound
		}
		return fmt.Errorf("failed to insert book copy: %w", err)
	}

	return nil
}

func (r *copyPostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BookCopy, error) {
	query := `
		SELECT id, book_id, status, created_at, updated_at
		FROM book_copies
		WHERE id = $1
	`

	var c model.BookCopy
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.BookID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCopyNotFound
		}
		return nil, fmt.Errorf("failed to get book copy: %w", err)
	}

	return &c, nil
}

func (r *copyPostgresRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.BookCopy, error) {
	query := `
		SELECT id, book_id, status, created_at, updated_at
		FROM book_copies
		WHERE book_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list book copies: %w", err)
	}
	defer rows.Close()

	var copies []model.BookCopy
	for rows.Next() {
		var c model.BookCopy
		if err := rows.Scan(&c.ID, &c.BookID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan book copy: %w", err)
		}
		copies = append(copies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read book copies: %w", err)
	}

	return copies, nil
}

func (r *copyPostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CopyStatus) error {
	query := `
		UPDATE book_copies
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update copy status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCopyNotFound
	}

	return nil
}

func (r *copyPostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM book_copies WHERE id = $1`, id)
	if err != nil {
		// The borrow_records FK is RESTRICT: the schema refuses to drop a
		// copy that any record still references.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ErrCopyHasActiveBorrow
		}
		return fmt.Errorf("failed to delete book copy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCopyNotFound
	}

	return nil
}

func (r *copyPostgresRepository) HasOutstandingBorrow(ctx context.Context, copyID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM borrow_records
			WHERE copy_id = $1 AND return_date IS NULL
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, copyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check outstanding borrows: %w", err)
	}

	return exists, nil
}
