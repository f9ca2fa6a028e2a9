package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// RepositoryInterface is the book data-access contract.
type RepositoryInterface interface {
	Create(ctx context.Context, b *model.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AvailableCopies computes total_copies minus the number of copies
	// currently borrowed. Recomputed on every call; never cached, and
	// deliberately independent of how many copy rows exist.
	AvailableCopies(ctx context.Context, bookID uuid.UUID) (int, error)
}

// CopyRepositoryInterface is the physical-copy data-access contract.
type CopyRepositoryInterface interface {
	Create(ctx context.Context, c *model.BookCopy) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.BookCopy, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.BookCopy, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.CopyStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	// HasOutstandingBorrow reports whether a non-returned borrow record
	// references the copy.
	HasOutstandingBorrow(ctx context.Context, copyID uuid.UUID) (bool, error)
}
