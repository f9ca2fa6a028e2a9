package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BorrowRecord is one loan of one copy to one user. It is written exactly
// twice in its life: once when the loan opens and once when it closes.
// FeePaid is settled separately and does not touch the loan fields.
type BorrowRecord struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	CopyID     uuid.UUID       `json:"copy_id" db:"copy_id"`
	BorrowDate time.Time       `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time       `json:"due_date" db:"due_date"`
	ReturnDate *time.Time      `json:"return_date" db:"return_date"`
	LateFee    decimal.Decimal `json:"late_fee" db:"late_fee"`
	FeePaid    bool            `json:"fee_paid" db:"fee_paid"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// IsOverdue is the single overdue predicate: outstanding and past due at
// the given instant. The overdue SQL query must agree with this exactly.
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	return r.ReturnDate == nil && now.After(r.DueDate)
}

// Outstanding reports whether the copy has not come back yet.
func (r *BorrowRecord) Outstanding() bool {
	return r.ReturnDate == nil
}

// OverdueNotice is the read model behind overdue reminder emails: one row
// per outstanding late loan with everything the email template needs.
type OverdueNotice struct {
	RecordID  uuid.UUID `db:"record_id"`
	UserEmail string    `db:"user_email"`
	BookTitle string    `db:"book_title"`
	DueDate   time.Time `db:"due_date"`
}

// DaysLate reports whole days past due at the given instant.
func (n *OverdueNotice) DaysLate(now time.Time) int {
	if !now.After(n.DueDate) {
		return 0
	}
	return int(now.Sub(n.DueDate).Hours() / 24)
}

// LateFee computes the fee owed for returning at `now` against `dueDate`:
// whole days late (floor), clamped to zero, times the daily rate. No
// grace period, no cap, no compounding.
func LateFee(now, dueDate time.Time, dailyRate decimal.Decimal) decimal.Decimal {
	if !now.After(dueDate) {
		return decimal.Zero
	}

	daysLate := int64(now.Sub(dueDate).Hours() / 24)
	if daysLate < 0 {
		daysLate = 0
	}

	return dailyRate.Mul(decimal.NewFromInt(daysLate))
}
