package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/borrow/model"
	"library-backend/internal/shared/policy"
)

type ServiceInterface interface {
	Borrow(ctx context.Context, actor policy.Actor, req *model.BorrowRequest) (*model.BorrowRecord, error)
	Return(ctx context.Context, actor policy.Actor, recordID uuid.UUID) (*model.BorrowRecord, error)
	MarkFeePaid(ctx context.Context, actor policy.Actor, recordID uuid.UUID) (*model.BorrowRecord, error)
	GetByID(ctx context.Context, actor policy.Actor, recordID uuid.UUID) (*model.BorrowRecord, error)
	ListMine(ctx context.Context, actor policy.Actor, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error)
	List(ctx context.Context, actor policy.Actor, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error)
	ListOverdue(ctx context.Context, actor policy.Actor) ([]model.BorrowRecord, error)
}
