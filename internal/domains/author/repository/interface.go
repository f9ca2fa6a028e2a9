package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
)

// RepositoryInterface is the author data-access contract.
type RepositoryInterface interface {
	Create(ctx context.Context, a *model.Author) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, int, error)
	Update(ctx context.Context, a *model.Author) error
	// Delete removes the author; their books and copies go with them
	// (cascade at the schema level).
	Delete(ctx context.Context, id uuid.UUID) error
}
