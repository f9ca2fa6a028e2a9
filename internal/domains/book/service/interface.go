package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/policy"
)

// ServiceInterface is the catalog business-logic contract for books and
// their physical copies.
type ServiceInterface interface {
	Create(ctx context.Context, actor policy.Actor, req *model.CreateBookRequest) (*model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error

	// AvailableCopies returns the live availability count for a book.
	AvailableCopies(ctx context.Context, bookID uuid.UUID) (int, error)

	AddCopy(ctx context.Context, actor policy.Actor, req *model.CreateCopyRequest) (*model.BookCopy, error)
	GetCopy(ctx context.Context, id uuid.UUID) (*model.BookCopy, error)
	ListCopies(ctx context.Context, bookID uuid.UUID) ([]model.BookCopy, error)
	UpdateCopyStatus(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateCopyStatusRequest) (*model.BookCopy, error)
	DeleteCopy(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}
