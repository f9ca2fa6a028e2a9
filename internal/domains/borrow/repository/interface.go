package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/borrow/model"
)

// RepositoryInterface owns the ledger's persistence. CreateBorrow and
// CompleteReturn are transactional: they move the record and the copy's
// status together or not at all.
type RepositoryInterface interface {
	// CreateBorrow opens a loan. It locks the copy and the user rows,
	// verifies the copy is available and the user is under their borrow
	// limit, inserts the record and flips the copy to borrowed, all in
	// one transaction. Under contention exactly one caller wins.
	CreateBorrow(ctx context.Context, userID, copyID uuid.UUID, borrowDate, dueDate time.Time) (*model.BorrowRecord, error)

	// CompleteReturn closes an outstanding loan, records the fee and
	// releases the copy. Returns ErrAlreadyReturned if the record was
	// closed before.
	CompleteReturn(ctx context.Context, recordID uuid.UUID, returnDate time.Time, lateFee decimal.Decimal) (*model.BorrowRecord, error)

	// MarkFeePaid settles the fee on a record that still owes one.
	MarkFeePaid(ctx context.Context, recordID uuid.UUID) (*model.BorrowRecord, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.BorrowRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error)
	List(ctx context.Context, filter *model.RecordFilter) ([]model.BorrowRecord, int64, error)
	ListOverdue(ctx context.Context, now time.Time) ([]model.BorrowRecord, error)
	ListOverdueNotices(ctx context.Context, now time.Time) ([]model.OverdueNotice, error)
}
