package service

import (
	"library-backend/internal/domains/borrow/model"
	"library-backend/pkg/logger"
)

// Events is notified after a loan opens or closes. Implementations must
// not block; failures here never fail the operation itself.
type Events interface {
	BorrowCreated(record *model.BorrowRecord)
	ReturnCompleted(record *model.BorrowRecord)
}

type logEvents struct{}

// NewLogEvents returns an Events sink that writes structured audit lines.
func NewLogEvents() Events {
	return &logEvents{}
}

func (logEvents) BorrowCreated(record *model.BorrowRecord) {
	logger.Info("borrow created", map[string]interface{}{
		"record_id": record.ID.String(),
		"user_id":   record.UserID.String(),
		"copy_id":   record.CopyID.String(),
		"due_date":  record.DueDate,
	})
}

func (logEvents) ReturnCompleted(record *model.BorrowRecord) {
	logger.Info("return completed", map[string]interface{}{
		"record_id": record.ID.String(),
		"user_id":   record.UserID.String(),
		"copy_id":   record.CopyID.String(),
		"late_fee":  record.LateFee.String(),
		"overdue":   record.LateFee.IsPositive(),
	})
}
