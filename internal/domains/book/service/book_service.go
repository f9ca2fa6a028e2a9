package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/shared/policy"
)

type bookService struct {
	books  repository.RepositoryInterface
	copies repository.CopyRepositoryInterface
}

func NewBookService(books repository.RepositoryInterface, copies repository.CopyRepositoryInterface) ServiceInterface {
	return &bookService{
		books:  books,
		copies: copies,
	}
}

func (s *bookService) Create(ctx context.Context, actor policy.Actor, req *model.CreateBookRequest) (*model.Book, error) {
	if !policy.Allowed(actor.Role, policy.ActionWriteCatalog) {
		return nil, model.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		return nil, model.ErrAuthorNotFound
	}

	language := model.LanguageEN
	if req.Language != "" {
		parsed, ok := model.ParseLanguage(req.Language)
		if !ok {
			return nil, model.ErrInvalidLanguage
		}
		language = parsed
	}

	totalCopies := req.TotalCopies
	if totalCopies == 0 {
		totalCopies = 1
	}

	b := &model.Book{
		ID:              uuid.New(),
		Title:           strings.TrimSpace(req.Title),
		AuthorID:        authorID,
		ISBN:            strings.TrimSpace(req.ISBN),
		PublicationYear: req.PublicationYear,
		Topics:          req.Topics,
		TotalCopies:     totalCopies,
		Language:        language,
	}

	if err := s.books.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if id == uuid.Nil {
		return nil, model.ErrBookNotFound
	}
	return s.books.GetByID(ctx, id)
}

func (s *bookService) List(ctx context.Context, filter model.BookFilter) ([]model.Book, int, error) {
	return s.books.List(ctx, filter)
}

func (s *bookService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateBookRequest) (*model.Book, error) {
	if !policy.Allowed(actor.Role, policy.ActionWriteCatalog) {
		return nil, model.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		b.Title = strings.TrimSpace(*req.Title)
	}
	if req.AuthorID != nil {
		authorID, err := uuid.Parse(*req.AuthorID)
		if err != nil {
			return nil, model.ErrAuthorNotFound
		}
		b.AuthorID = authorID
	}
	if req.ISBN != nil {
		b.ISBN = strings.TrimSpace(*req.ISBN)
	}
	if req.PublicationYear != nil {
		if *req.PublicationYear < model.MinPublicationYear {
			return nil, model.ErrInvalidPublicationYear
		}
		b.PublicationYear = *req.PublicationYear
	}
	if req.Topics != nil {
		b.Topics = *req.Topics
	}
	if req.TotalCopies != nil {
		// total_copies is a declared quota; it may legitimately diverge
		// from the number of copy rows.
		b.TotalCopies = *req.TotalCopies
	}
	if req.Language != nil {
		language, ok := model.ParseLanguage(*req.Language)
		if !ok {
			return nil, model.ErrInvalidLanguage
		}
		b.Language = language
	}

	if err := s.books.Update(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *bookService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if !policy.Allowed(actor.Role, policy.ActionWriteCatalog) {
		return model.ErrForbidden
	}
	return s.books.Delete(ctx, id)
}

func (s *bookService) AvailableCopies(ctx context.Context, bookID uuid.UUID) (int, error) {
	if bookID == uuid.Nil {
		return 0, model.ErrBookNotFound
	}
	return s.books.AvailableCopies(ctx, bookID)
}

func (s *bookService) AddCopy(ctx context.Context, actor policy.Actor, req *model.CreateCopyRequest) (*model.BookCopy, error) {
	if !policy.Allowed(actor.Role, policy.ActionManageCopies) {
		return nil, model.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, model.ErrBookNotFound
	}

	status := model.CopyAvailable
	if req.Status != "" {
		parsed, ok := model.ParseCopyStatus(req.Status)
		if !ok {
			return nil, model.ErrInvalidCopyStatus
		}
		status = parsed
	}

	c := &model.BookCopy{
		ID:     uuid.New(),
		BookID: bookID,
		Status: status,
	}

	if err := s.copies.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *bookService) GetCopy(ctx context.Context, id uuid.UUID) (*model.BookCopy, error) {
	if id == uuid.Nil {
		return nil, model.ErrCopyNotFound
	}
	return s.copies.GetByID(ctx, id)
}

func (s *bookService) ListCopies(ctx context.Context, bookID uuid.UUID) ([]model.BookCopy, error) {
	return s.copies.ListByBook(ctx, bookID)
}

func (s *bookService) UpdateCopyStatus(ctx context.Context, actor policy.Actor, id uuid.UUID, req *model.UpdateCopyStatusRequest) (*model.BookCopy, error) {
	if !policy.Allowed(actor.Role, policy.ActionManageCopies) {
		return nil, model.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	status, ok := model.ParseCopyStatus(req.Status)
	if !ok {
		return nil, model.ErrInvalidCopyStatus
	}

	if err := s.copies.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	return s.copies.GetByID(ctx, id)
}

// DeleteCopy refuses to remove a copy while a borrow record is still
// outstanding on it. The schema's RESTRICT constraint backs this up.
func (s *bookService) DeleteCopy(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if !policy.Allowed(actor.Role, policy.ActionManageCopies) {
		return model.ErrForbidden
	}

	outstanding, err := s.copies.HasOutstandingBorrow(ctx, id)
	if err != nil {
		return err
	}
	if outstanding {
		return model.ErrCopyHasActiveBorrow
	}

	return s.copies.Delete(ctx, id)
}
