package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BorrowRequest opens a loan on a specific copy. DueDate is optional; a
// missing or non-future value falls back to the configured loan period.
type BorrowRequest struct {
	CopyID  string     `json:"copy_id"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

func (r BorrowRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CopyID, validation.Required, is.UUIDv4),
	)
}

func (r BorrowRequest) ParsedCopyID() (uuid.UUID, error) {
	return uuid.Parse(r.CopyID)
}

type BorrowRecordResponse struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	CopyID     uuid.UUID       `json:"copy_id"`
	BorrowDate time.Time       `json:"borrow_date"`
	DueDate    time.Time       `json:"due_date"`
	ReturnDate *time.Time      `json:"return_date"`
	LateFee    decimal.Decimal `json:"late_fee"`
	FeePaid    bool            `json:"fee_paid"`
	Overdue    bool            `json:"overdue"`
}

// ToResponse projects the record for the API, evaluating overdue at `now`
// so clients never recompute it themselves.
func (r *BorrowRecord) ToResponse(now time.Time) *BorrowRecordResponse {
	return &BorrowRecordResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		CopyID:     r.CopyID,
		BorrowDate: r.BorrowDate,
		DueDate:    r.DueDate,
		ReturnDate: r.ReturnDate,
		LateFee:    r.LateFee,
		FeePaid:    r.FeePaid,
		Overdue:    r.IsOverdue(now),
	}
}

type RecordFilter struct {
	UserID      *uuid.UUID `form:"user_id"`
	Outstanding bool       `form:"outstanding"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

func (f *RecordFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
