package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const bookColumns = `id, title, author_id, isbn, publication_year, topics, total_copies, language, created_at, updated_at`

func scanBook(row pgx.Row, b *model.Book) error {
	return row.Scan(
		&b.ID,
		&b.Title,
		&b.AuthorID,
		&b.ISBN,
		&b.PublicationYear,
		&b.Topics,
		&b.TotalCopies,
		&b.Language,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) error {
	query := `
		INSERT INTO books (id, title, author_id, isbn, publication_year, topics, total_copies, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		b.ID,
		b.Title,
		b.AuthorID,
		b.ISBN,
		b.PublicationYear,
		b.Topics,
		b.TotalCopies,
		b.Language,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on isbn
				return model.ErrDuplicateISBN
			}
			if pgErr.Code == "23503" { // fk_violation on author_id
				return model.ErrAuthorNotFound
			}
			if pgErr.Code == "23514" { // check_violation on publication_year
				return model.ErrInvalidPublicationYear
			}
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	var b model.Book
	if err := scanBook(r.pool.QueryRow(ctx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	return &b, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(b.title ILIKE %s OR b.topics ILIKE %s)", p, p))
	}
	if filter.AuthorID != "" {
		if authorID, err := uuid.Parse(filter.AuthorID); err == nil {
			where = append(where, "b.author_id = "+arg(authorID))
		}
	}
	if filter.Language != "" {
		where = append(where, "b.language = "+arg(filter.Language))
	}
	if filter.YearMin > 0 {
		where = append(where, "b.publication_year >= "+arg(filter.YearMin))
	}
	if filter.YearMax > 0 {
		where = append(where, "b.publication_year <= "+arg(filter.YearMax))
	}
	if filter.AvailableOnly {
		where = append(where, `EXISTS (
			SELECT 1 FROM book_copies c
			WHERE c.book_id = b.id AND c.status = 'available'
		)`)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM books b WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.title, b.author_id, b.isbn, b.publication_year, b.topics,
		       b.total_copies, b.language, b.created_at, b.updated_at
		FROM books b
		WHERE %s
		ORDER BY b.publication_year DESC, b.title
		LIMIT %s OFFSET %s
	`, whereClause, arg(limit), arg(offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read books: %w", err)
	}

	return books, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, author_id = $3, isbn = $4, publication_year = $5,
		    topics = $6, total_copies = $7, language = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		b.ID,
		b.Title,
		b.AuthorID,
		b.ISBN,
		b.PublicationYear,
		b.Topics,
		b.TotalCopies,
		b.Language,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrBookNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return model.ErrDuplicateISBN
			}
			if pgErr.Code == "23514" {
				return model.ErrInvalidPublicationYear
			}
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// AvailableCopies subtracts borrowed copies from the declared capacity.
// The subquery counts copy rows; total_copies stays whatever the
// administrator set it to.
func (r *postgresRepository) AvailableCopies(ctx context.Context, bookID uuid.UUID) (int, error) {
	query := `
		SELECT b.total_copies - (
			SELECT COUNT(*)
			FROM book_copies c
			WHERE c.book_id = b.id AND c.status = 'borrowed'
		)
		FROM books b
		WHERE b.id = $1
	`

	var available int
	if err := r.pool.QueryRow(ctx, query, bookID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrBookNotFound
		}
		return 0, fmt.Errorf("failed to compute available copies: %w", err)
	}

	return available, nil
}
