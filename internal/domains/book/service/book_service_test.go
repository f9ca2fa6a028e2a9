package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/policy"
)

type fakeBookRepo struct {
	books  map[uuid.UUID]*model.Book
	copies *fakeCopyRepo
}

func (f *fakeBookRepo) Create(_ context.Context, b *model.Book) error {
	for _, existing := range f.books {
		if existing.ISBN == b.ISBN {
			return model.ErrDuplicateISBN
		}
	}
	f.books[b.ID] = b
	return nil
}

func (f *fakeBookRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookRepo) List(_ context.Context, _ model.BookFilter) ([]model.Book, int, error) {
	out := []model.Book{}
	for _, b := range f.books {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (f *fakeBookRepo) Update(_ context.Context, b *model.Book) error {
	if _, ok := f.books[b.ID]; !ok {
		return model.ErrBookNotFound
	}
	copied := *b
	f.books[b.ID] = &copied
	return nil
}

func (f *fakeBookRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.books[id]; !ok {
		return model.ErrBookNotFound
	}
	delete(f.books, id)
	return nil
}

// AvailableCopies mirrors the SQL: declared capacity minus borrowed copy
// rows, regardless of how many copy rows exist in total.
func (f *fakeBookRepo) AvailableCopies(_ context.Context, bookID uuid.UUID) (int, error) {
	b, ok := f.books[bookID]
	if !ok {
		return 0, model.ErrBookNotFound
	}
	borrowed := 0
	for _, c := range f.copies.copies {
		if c.BookID == bookID && c.Status == model.CopyBorrowed {
			borrowed++
		}
	}
	return b.TotalCopies - borrowed, nil
}

type fakeCopyRepo struct {
	copies      map[uuid.UUID]*model.BookCopy
	outstanding map[uuid.UUID]bool
}

func (f *fakeCopyRepo) Create(_ context.Context, c *model.BookCopy) error {
	f.copies[c.ID] = c
	return nil
}

func (f *fakeCopyRepo) GetByID(_ context.Context, id uuid.UUID) (*model.BookCopy, error) {
	c, ok := f.copies[id]
	if !ok {
		return nil, model.ErrCopyNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCopyRepo) ListByBook(_ context.Context, bookID uuid.UUID) ([]model.BookCopy, error) {
	out := []model.BookCopy{}
	for _, c := range f.copies {
		if c.BookID == bookID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCopyRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.CopyStatus) error {
	c, ok := f.copies[id]
	if !ok {
		return model.ErrCopyNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeCopyRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.copies[id]; !ok {
		return model.ErrCopyNotFound
	}
	delete(f.copies, id)
	return nil
}

func (f *fakeCopyRepo) HasOutstandingBorrow(_ context.Context, copyID uuid.UUID) (bool, error) {
	return f.outstanding[copyID], nil
}

func newBookFixture() (*bookService, *fakeBookRepo, *fakeCopyRepo) {
	copies := &fakeCopyRepo{
		copies:      map[uuid.UUID]*model.BookCopy{},
		outstanding: map[uuid.UUID]bool{},
	}
	books := &fakeBookRepo{books: map[uuid.UUID]*model.Book{}, copies: copies}
	svc := NewBookService(books, copies).(*bookService)
	return svc, books, copies
}

var (
	staffActor  = policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}
	memberActor = policy.Actor{ID: uuid.New(), Role: policy.RoleMember}
)

func createReq() *model.CreateBookRequest {
	return &model.CreateBookRequest{
		Title:           "The Master and Margarita",
		AuthorID:        uuid.New().String(),
		ISBN:            "9780141180144",
		PublicationYear: 1967,
	}
}

func TestCreateBook(t *testing.T) {
	t.Run("defaults language and copy count", func(t *testing.T) {
		svc, _, _ := newBookFixture()

		b, err := svc.Create(context.Background(), staffActor, createReq())
		require.NoError(t, err)
		assert.Equal(t, model.LanguageEN, b.Language)
		assert.Equal(t, 1, b.TotalCopies)
	})

	t.Run("member cannot create", func(t *testing.T) {
		svc, _, _ := newBookFixture()

		_, err := svc.Create(context.Background(), memberActor, createReq())
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("duplicate isbn conflicts", func(t *testing.T) {
		svc, _, _ := newBookFixture()

		_, err := svc.Create(context.Background(), staffActor, createReq())
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), staffActor, createReq())
		assert.ErrorIs(t, err, model.ErrDuplicateISBN)
	})

	t.Run("pre-1500 publication year rejected", func(t *testing.T) {
		svc, _, _ := newBookFixture()

		req := createReq()
		req.PublicationYear = 1431
		_, err := svc.Create(context.Background(), staffActor, req)
		assert.Error(t, err)
	})

	t.Run("unknown language rejected", func(t *testing.T) {
		svc, _, _ := newBookFixture()

		req := createReq()
		req.Language = "FR"
		_, err := svc.Create(context.Background(), staffActor, req)
		assert.ErrorIs(t, err, model.ErrInvalidLanguage)
	})
}

func TestAvailableCopies(t *testing.T) {
	// Declared capacity drives availability, not the copy row count.
	svc, books, copies := newBookFixture()

	book := &model.Book{ID: uuid.New(), Title: "Dead Souls", ISBN: "x", TotalCopies: 2}
	books.books[book.ID] = book

	available, err := svc.AvailableCopies(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)

	// One copy out on loan.
	c1 := &model.BookCopy{ID: uuid.New(), BookID: book.ID, Status: model.CopyBorrowed}
	copies.copies[c1.ID] = c1

	available, err = svc.AvailableCopies(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, available)

	// A maintenance copy row does not change the count.
	c2 := &model.BookCopy{ID: uuid.New(), BookID: book.ID, Status: model.CopyMaintenance}
	copies.copies[c2.ID] = c2

	available, err = svc.AvailableCopies(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, available)

	// Raising the declared capacity raises availability immediately,
	// with no new copy rows.
	book.TotalCopies = 5
	available, err = svc.AvailableCopies(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, available)
}

func TestCopyLifecycle(t *testing.T) {
	t.Run("delete blocked while a loan is outstanding", func(t *testing.T) {
		svc, _, copies := newBookFixture()

		c := &model.BookCopy{ID: uuid.New(), BookID: uuid.New(), Status: model.CopyBorrowed}
		copies.copies[c.ID] = c
		copies.outstanding[c.ID] = true

		err := svc.DeleteCopy(context.Background(), staffActor, c.ID)
		assert.ErrorIs(t, err, model.ErrCopyHasActiveBorrow)

		copies.outstanding[c.ID] = false
		assert.NoError(t, svc.DeleteCopy(context.Background(), staffActor, c.ID))
	})

	t.Run("status transitions validate the enum", func(t *testing.T) {
		svc, _, copies := newBookFixture()

		c := &model.BookCopy{ID: uuid.New(), BookID: uuid.New(), Status: model.CopyAvailable}
		copies.copies[c.ID] = c

		updated, err := svc.UpdateCopyStatus(context.Background(), staffActor, c.ID, &model.UpdateCopyStatusRequest{Status: "maintenance"})
		require.NoError(t, err)
		assert.Equal(t, model.CopyMaintenance, updated.Status)

		_, err = svc.UpdateCopyStatus(context.Background(), staffActor, c.ID, &model.UpdateCopyStatusRequest{Status: "lost"})
		assert.ErrorIs(t, err, model.ErrInvalidCopyStatus)
	})

	t.Run("member cannot manage copies", func(t *testing.T) {
		svc, _, _ := newBookFixture()

		_, err := svc.AddCopy(context.Background(), memberActor, &model.CreateCopyRequest{BookID: uuid.New().String()})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
