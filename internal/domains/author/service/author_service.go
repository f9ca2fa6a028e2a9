package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/domains/author/repository"
	"library-backend/internal/shared/policy"
)

type authorService struct {
	repo repository.RepositoryInterface
}

func NewAuthorService(repo repository.RepositoryInterface) ServiceInterface {
	return &authorService{repo: repo}
}

func (s *authorService) Create(ctx context.Context, actor policy.Actor, req *model.CreateAuthorRequest) (*model.Author, error) {
	if !policy.Allowed(actor.Role, policy.ActionWriteCatalog) {
		return nil, model.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	birthDate, err := req.ParsedBirthDate()
	if err != nil {
		return nil, model.ErrInvalidBirthDate
	}

	a := &model.Author{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Biography: req.Biography,
		BirthDate: birthDate,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *authorService) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	if id == uuid.Nil {
		return nil, model.ErrAuthorNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *authorService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateAuthorRequest) (*model.Author, error) {
	if !policy.Allowed(actor.Role, policy.ActionWriteCatalog) {
		return nil, model.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := req.ApplyTo(a); err != nil {
		return nil, err
	}
	a.Name = strings.TrimSpace(a.Name)

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

// Delete removes an author along with their books and copies. The cascade
// is intentional: the catalog treats an author's works as owned rows.
func (s *authorService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if !policy.Allowed(actor.Role, policy.ActionWriteCatalog) {
		return model.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
