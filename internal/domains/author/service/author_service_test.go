package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/shared/policy"
)

type fakeAuthorRepo struct {
	authors map[uuid.UUID]*model.Author
}

func (f *fakeAuthorRepo) Create(_ context.Context, a *model.Author) error {
	f.authors[a.ID] = a
	return nil
}

func (f *fakeAuthorRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Author, error) {
	a, ok := f.authors[id]
	if !ok {
		return nil, model.ErrAuthorNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAuthorRepo) List(_ context.Context, filter model.AuthorFilter) ([]model.Author, int, error) {
	out := []model.Author{}
	for _, a := range f.authors {
		if filter.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (f *fakeAuthorRepo) Update(_ context.Context, a *model.Author) error {
	if _, ok := f.authors[a.ID]; !ok {
		return model.ErrAuthorNotFound
	}
	copied := *a
	f.authors[a.ID] = &copied
	return nil
}

func (f *fakeAuthorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.authors[id]; !ok {
		return model.ErrAuthorNotFound
	}
	delete(f.authors, id)
	return nil
}

func newAuthorFixture() (ServiceInterface, *fakeAuthorRepo) {
	repo := &fakeAuthorRepo{authors: map[uuid.UUID]*model.Author{}}
	return NewAuthorService(repo), repo
}

var (
	librarian = policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}
	member    = policy.Actor{ID: uuid.New(), Role: policy.RoleMember}
)

func TestAuthorCRUD(t *testing.T) {
	t.Run("create parses birth date", func(t *testing.T) {
		svc, _ := newAuthorFixture()

		a, err := svc.Create(context.Background(), librarian, &model.CreateAuthorRequest{
			Name:      "Mikhail Bulgakov",
			BirthDate: "1891-05-15",
		})
		require.NoError(t, err)
		assert.Equal(t, "Mikhail Bulgakov", a.Name)
		assert.Equal(t, 1891, a.BirthDate.Year())
	})

	t.Run("malformed birth date rejected", func(t *testing.T) {
		svc, _ := newAuthorFixture()

		_, err := svc.Create(context.Background(), librarian, &model.CreateAuthorRequest{
			Name:      "Nobody",
			BirthDate: "15/05/1891",
		})
		assert.Error(t, err)
	})

	t.Run("member cannot write the catalog", func(t *testing.T) {
		svc, _ := newAuthorFixture()

		_, err := svc.Create(context.Background(), member, &model.CreateAuthorRequest{
			Name:      "Nobody",
			BirthDate: "1891-05-15",
		})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("update applies only provided fields", func(t *testing.T) {
		svc, _ := newAuthorFixture()

		a, err := svc.Create(context.Background(), librarian, &model.CreateAuthorRequest{
			Name:      "Mikhail Bulgakov",
			BirthDate: "1891-05-15",
		})
		require.NoError(t, err)

		bio := "Soviet-era novelist and playwright."
		updated, err := svc.Update(context.Background(), librarian, a.ID, &model.UpdateAuthorRequest{
			Biography: &bio,
		})
		require.NoError(t, err)
		assert.Equal(t, "Mikhail Bulgakov", updated.Name)
		require.NotNil(t, updated.Biography)
		assert.Equal(t, bio, *updated.Biography)
	})

	t.Run("delete removes the author", func(t *testing.T) {
		svc, repo := newAuthorFixture()

		a, err := svc.Create(context.Background(), librarian, &model.CreateAuthorRequest{
			Name:      "Mikhail Bulgakov",
			BirthDate: "1891-05-15",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), librarian, a.ID))
		assert.Empty(t, repo.authors)

		err = svc.Delete(context.Background(), librarian, a.ID)
		assert.ErrorIs(t, err, model.ErrAuthorNotFound)
	})
}
