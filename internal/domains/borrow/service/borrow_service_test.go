package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/borrow/model"
	"library-backend/internal/shared/policy"
)

// fakeRepo mirrors the transactional guarantees of the postgres
// implementation with a single mutex: availability check, limit check,
// insert and status flip happen under one lock.
type fakeRepo struct {
	mu          sync.Mutex
	copyStatus  map[uuid.UUID]string
	borrowLimit map[uuid.UUID]int
	records     map[uuid.UUID]*model.BorrowRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		copyStatus:  map[uuid.UUID]string{},
		borrowLimit: map[uuid.UUID]int{},
		records:     map[uuid.UUID]*model.BorrowRecord{},
	}
}

func (f *fakeRepo) CreateBorrow(_ context.Context, userID, copyID uuid.UUID, borrowDate, dueDate time.Time) (*model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status, ok := f.copyStatus[copyID]
	if !ok {
		return nil, model.ErrCopyNotFound
	}
	if status != "available" {
		return nil, model.ErrCopyNotAvailable
	}

	limit, ok := f.borrowLimit[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	outstanding := 0
	for _, r := range f.records {
		if r.UserID == userID && r.ReturnDate == nil {
			outstanding++
		}
	}
	if outstanding >= limit {
		return nil, model.ErrBorrowLimitReached
	}

	rec := &model.BorrowRecord{
		ID:         uuid.New(),
		UserID:     userID,
		CopyID:     copyID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		LateFee:    decimal.Zero,
	}
	f.records[rec.ID] = rec
	f.copyStatus[copyID] = "borrowed"
	return rec, nil
}

func (f *fakeRepo) CompleteReturn(_ context.Context, recordID uuid.UUID, returnDate time.Time, lateFee decimal.Decimal) (*model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[recordID]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	if rec.ReturnDate != nil {
		return nil, model.ErrAlreadyReturned
	}
	rec.ReturnDate = &returnDate
	rec.LateFee = lateFee
	f.copyStatus[rec.CopyID] = "available"
	return rec, nil
}

func (f *fakeRepo) MarkFeePaid(_ context.Context, recordID uuid.UUID) (*model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[recordID]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	if rec.FeePaid || !rec.LateFee.IsPositive() {
		return nil, model.ErrFeeAlreadyPaid
	}
	rec.FeePaid = true
	return rec, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[id]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error) {
	scoped := *filter
	scoped.UserID = &userID
	return f.List(ctx, &scoped)
}

func (f *fakeRepo) List(_ context.Context, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.BorrowRecord{}
	for _, r := range f.records {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.Outstanding && r.ReturnDate != nil {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListOverdue(_ context.Context, now time.Time) ([]model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.BorrowRecord{}
	for _, r := range f.records {
		if r.IsOverdue(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListOverdueNotices(_ context.Context, _ time.Time) ([]model.OverdueNotice, error) {
	return nil, nil
}

type noopEvents struct{}

func (noopEvents) BorrowCreated(*model.BorrowRecord)   {}
func (noopEvents) ReturnCompleted(*model.BorrowRecord) {}

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *borrowService {
	svc := NewBorrowService(repo, noopEvents{}, 14, decimal.RequireFromString("1.00")).(*borrowService)
	svc.now = func() time.Time { return baseTime }
	return svc
}

func seedMember(repo *fakeRepo, limit int) policy.Actor {
	actor := policy.Actor{ID: uuid.New(), Role: policy.RoleMember}
	repo.borrowLimit[actor.ID] = limit
	return actor
}

func seedCopy(repo *fakeRepo) uuid.UUID {
	id := uuid.New()
	repo.copyStatus[id] = "available"
	return id
}

func borrowReq(copyID uuid.UUID) *model.BorrowRequest {
	return &model.BorrowRequest{CopyID: copyID.String()}
}

func TestBorrow(t *testing.T) {
	t.Run("success sets loan period due date", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)
		copyID := seedCopy(repo)

		rec, err := svc.Borrow(context.Background(), member, borrowReq(copyID))
		require.NoError(t, err)
		assert.Equal(t, member.ID, rec.UserID)
		assert.Equal(t, baseTime, rec.BorrowDate)
		assert.Equal(t, baseTime.Add(14*24*time.Hour), rec.DueDate)
		assert.Nil(t, rec.ReturnDate)
		assert.Equal(t, "borrowed", repo.copyStatus[copyID])
	})

	t.Run("guest is denied", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		copyID := seedCopy(repo)

		guest := policy.Actor{ID: uuid.New(), Role: policy.RoleGuest}
		_, err := svc.Borrow(context.Background(), guest, borrowReq(copyID))
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("copy already borrowed conflicts", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		copyID := seedCopy(repo)
		first := seedMember(repo, 3)
		second := seedMember(repo, 3)

		_, err := svc.Borrow(context.Background(), first, borrowReq(copyID))
		require.NoError(t, err)

		_, err = svc.Borrow(context.Background(), second, borrowReq(copyID))
		assert.ErrorIs(t, err, model.ErrCopyNotAvailable)
	})

	t.Run("unknown copy is not found", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)

		_, err := svc.Borrow(context.Background(), member, borrowReq(uuid.New()))
		assert.ErrorIs(t, err, model.ErrCopyNotFound)
	})

	t.Run("borrow limit blocks the next loan", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)

		for i := 0; i < 3; i++ {
			_, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
			require.NoError(t, err)
		}

		_, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
		assert.ErrorIs(t, err, model.ErrBorrowLimitReached)

		// Returning one frees a slot.
		records, _, err := svc.ListMine(context.Background(), member, &model.RecordFilter{})
		require.NoError(t, err)
		_, err = svc.Return(context.Background(), member, records[0].ID)
		require.NoError(t, err)

		_, err = svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
		assert.NoError(t, err)
	})

	t.Run("explicit future due date wins over default", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)
		copyID := seedCopy(repo)

		due := baseTime.Add(7 * 24 * time.Hour)
		req := borrowReq(copyID)
		req.DueDate = &due

		rec, err := svc.Borrow(context.Background(), member, req)
		require.NoError(t, err)
		assert.Equal(t, due, rec.DueDate)
	})

	t.Run("past due date falls back to default", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)
		copyID := seedCopy(repo)

		due := baseTime.Add(-24 * time.Hour)
		req := borrowReq(copyID)
		req.DueDate = &due

		rec, err := svc.Borrow(context.Background(), member, req)
		require.NoError(t, err)
		assert.Equal(t, baseTime.Add(14*24*time.Hour), rec.DueDate)
	})
}

func TestBorrowConcurrentSameCopy(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	copyID := seedCopy(repo)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		actor := seedMember(repo, 3)
		wg.Add(1)
		go func(i int, actor policy.Actor) {
			defer wg.Done()
			_, errs[i] = svc.Borrow(context.Background(), actor, borrowReq(copyID))
		}(i, actor)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, model.ErrCopyNotAvailable)
		}
	}
	assert.Equal(t, 1, wins, "exactly one caller may take the copy")
}

func TestReturn(t *testing.T) {
	t.Run("on time return has zero fee and releases copy", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)
		copyID := seedCopy(repo)

		rec, err := svc.Borrow(context.Background(), member, borrowReq(copyID))
		require.NoError(t, err)

		svc.now = func() time.Time { return baseTime.Add(10 * 24 * time.Hour) }
		closed, err := svc.Return(context.Background(), member, rec.ID)
		require.NoError(t, err)

		assert.NotNil(t, closed.ReturnDate)
		assert.True(t, closed.LateFee.IsZero())
		assert.Equal(t, "available", repo.copyStatus[copyID])
	})

	t.Run("late return accrues the daily fee", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)

		rec, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
		require.NoError(t, err)

		// 14 day loan returned 17 days and change after borrowing.
		svc.now = func() time.Time { return baseTime.Add(17*24*time.Hour + 5*time.Hour) }
		closed, err := svc.Return(context.Background(), member, rec.ID)
		require.NoError(t, err)

		assert.True(t, closed.LateFee.Equal(decimal.RequireFromString("3.00")),
			"got %s", closed.LateFee)
		assert.False(t, closed.FeePaid)
	})

	t.Run("another member cannot return the loan", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		owner := seedMember(repo, 3)
		other := seedMember(repo, 3)

		rec, err := svc.Borrow(context.Background(), owner, borrowReq(seedCopy(repo)))
		require.NoError(t, err)

		_, err = svc.Return(context.Background(), other, rec.ID)
		assert.ErrorIs(t, err, model.ErrNotRecordOwner)
	})

	t.Run("librarian can return any loan", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)

		rec, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
		require.NoError(t, err)

		librarian := policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}
		_, err = svc.Return(context.Background(), librarian, rec.ID)
		assert.NoError(t, err)
	})

	t.Run("double return conflicts", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)

		rec, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
		require.NoError(t, err)

		_, err = svc.Return(context.Background(), member, rec.ID)
		require.NoError(t, err)

		_, err = svc.Return(context.Background(), member, rec.ID)
		assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	})

	t.Run("unknown record is not found", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)

		_, err := svc.Return(context.Background(), member, uuid.New())
		assert.ErrorIs(t, err, model.ErrRecordNotFound)
	})
}

func TestMarkFeePaid(t *testing.T) {
	librarian := policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}

	lateRecord := func(t *testing.T, repo *fakeRepo, svc *borrowService) *model.BorrowRecord {
		t.Helper()
		member := seedMember(repo, 3)
		rec, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
		require.NoError(t, err)
		svc.now = func() time.Time { return baseTime.Add(20 * 24 * time.Hour) }
		closed, err := svc.Return(context.Background(), member, rec.ID)
		require.NoError(t, err)
		svc.now = func() time.Time { return baseTime }
		return closed
	}

	t.Run("settles an owed fee once", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		rec := lateRecord(t, repo, svc)

		paid, err := svc.MarkFeePaid(context.Background(), librarian, rec.ID)
		require.NoError(t, err)
		assert.True(t, paid.FeePaid)

		_, err = svc.MarkFeePaid(context.Background(), librarian, rec.ID)
		assert.ErrorIs(t, err, model.ErrFeeAlreadyPaid)
	})

	t.Run("zero fee record has nothing to settle", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		member := seedMember(repo, 3)

		rec, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
		require.NoError(t, err)
		closed, err := svc.Return(context.Background(), member, rec.ID)
		require.NoError(t, err)

		_, err = svc.MarkFeePaid(context.Background(), librarian, closed.ID)
		assert.ErrorIs(t, err, model.ErrNoFeeToPay)
	})

	t.Run("members cannot settle fees", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)
		rec := lateRecord(t, repo, svc)

		member := policy.Actor{ID: rec.UserID, Role: policy.RoleMember}
		_, err := svc.MarkFeePaid(context.Background(), member, rec.ID)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}

func TestListOverdue(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	member := seedMember(repo, 3)
	librarian := policy.Actor{ID: uuid.New(), Role: policy.RoleLibrarian}

	_, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
	require.NoError(t, err)

	// Second loan opened earlier so it is already past due "today".
	svc.now = func() time.Time { return baseTime.Add(-30 * 24 * time.Hour) }
	late, err := svc.Borrow(context.Background(), member, borrowReq(seedCopy(repo)))
	require.NoError(t, err)

	svc.now = func() time.Time { return baseTime }
	overdue, err := svc.ListOverdue(context.Background(), librarian)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	// Returning the overdue loan drops it from the report.
	_, err = svc.Return(context.Background(), member, late.ID)
	require.NoError(t, err)

	overdue, err = svc.ListOverdue(context.Background(), librarian)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	_, err = svc.ListOverdue(context.Background(), member)
	assert.ErrorIs(t, err, model.ErrForbidden)
}
