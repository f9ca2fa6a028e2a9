package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/borrow/model"
	"library-backend/internal/domains/borrow/repository"
	"library-backend/internal/shared/policy"
)

type borrowService struct {
	repo       repository.RepositoryInterface
	events     Events
	loanPeriod time.Duration
	dailyFee   decimal.Decimal
	now        func() time.Time
}

// NewBorrowService wires the ledger. loanPeriodDays and dailyFee come
// from config; the clock is time.Now and is overridden only in tests.
func NewBorrowService(repo repository.RepositoryInterface, events Events, loanPeriodDays int, dailyFee decimal.Decimal) ServiceInterface {
	return &borrowService{
		repo:       repo,
		events:     events,
		loanPeriod: time.Duration(loanPeriodDays) * 24 * time.Hour,
		dailyFee:   dailyFee,
		now:        time.Now,
	}
}

func (s *borrowService) Borrow(ctx context.Context, actor policy.Actor, req *model.BorrowRequest) (*model.BorrowRecord, error) {
	if !policy.Allowed(actor.Role, policy.ActionBorrow) {
		return nil, model.ErrForbidden
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	copyID, err := req.ParsedCopyID()
	if err != nil {
		return nil, model.ErrCopyNotFound
	}

	borrowDate := s.now()
	dueDate := borrowDate.Add(s.loanPeriod)
	if req.DueDate != nil && req.DueDate.After(borrowDate) {
		dueDate = *req.DueDate
	}

	record, err := s.repo.CreateBorrow(ctx, actor.ID, copyID, borrowDate, dueDate)
	if err != nil {
		return nil, err
	}

	s.events.BorrowCreated(record)
	return record, nil
}

func (s *borrowService) Return(ctx context.Context, actor policy.Actor, recordID uuid.UUID) (*model.BorrowRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	// Members close only their own loans; staff close anyone's.
	if !policy.CanTouchRecord(actor, record.UserID) {
		return nil, model.ErrNotRecordOwner
	}
	if record.ReturnDate != nil {
		return nil, model.ErrAlreadyReturned
	}

	returnDate := s.now()
	fee := model.LateFee(returnDate, record.DueDate, s.dailyFee)

	updated, err := s.repo.CompleteReturn(ctx, recordID, returnDate, fee)
	if err != nil {
		return nil, err
	}

	s.events.ReturnCompleted(updated)
	return updated, nil
}

func (s *borrowService) MarkFeePaid(ctx context.Context, actor policy.Actor, recordID uuid.UUID) (*model.BorrowRecord, error) {
	if !policy.Allowed(actor.Role, policy.ActionManageBorrows) {
		return nil, model.ErrForbidden
	}

	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !record.LateFee.IsPositive() {
		return nil, model.ErrNoFeeToPay
	}
	if record.FeePaid {
		return nil, model.ErrFeeAlreadyPaid
	}

	return s.repo.MarkFeePaid(ctx, recordID)
}

func (s *borrowService) GetByID(ctx context.Context, actor policy.Actor, recordID uuid.UUID) (*model.BorrowRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !policy.CanTouchRecord(actor, record.UserID) {
		return nil, model.ErrNotRecordOwner
	}
	return record, nil
}

func (s *borrowService) ListMine(ctx context.Context, actor policy.Actor, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error) {
	filter.Normalize()
	return s.repo.ListByUser(ctx, actor.ID, filter)
}

func (s *borrowService) List(ctx context.Context, actor policy.Actor, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error) {
	if !policy.Allowed(actor.Role, policy.ActionManageBorrows) {
		return nil, 0, model.ErrForbidden
	}
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *borrowService) ListOverdue(ctx context.Context, actor policy.Actor) ([]model.BorrowRecord, error) {
	if !policy.Allowed(actor.Role, policy.ActionManageBorrows) {
		return nil, model.ErrForbidden
	}
	return s.repo.ListOverdue(ctx, s.now())
}
