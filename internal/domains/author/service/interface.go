package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/shared/policy"
)

// ServiceInterface is the author business-logic contract. Mutating
// operations take the acting user explicitly and check the access policy
// themselves.
type ServiceInterface interface {
	Create(ctx context.Context, actor policy.Actor, req *model.CreateAuthorRequest) (*model.Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, int, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateAuthorRequest) (*model.Author, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}
