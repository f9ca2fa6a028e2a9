package handlers

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/borrow/repository"
	"library-backend/internal/infrastructure/email"
	"library-backend/pkg/logger"
)

type OverdueReminderHandler struct {
	borrows repository.RepositoryInterface
	email   email.EmailService
}

func NewOverdueReminderHandler(borrows repository.RepositoryInterface, emailSvc email.EmailService) *OverdueReminderHandler {
	return &OverdueReminderHandler{borrows: borrows, email: emailSvc}
}

// ProcessTask emails every member holding an overdue copy. One failed
// send does not abort the batch; the task only retries if nothing could
// be read at all.
func (h *OverdueReminderHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	now := time.Now()

	notices, err := h.borrows.ListOverdueNotices(ctx, now)
	if err != nil {
		return err
	}

	sent, failed := 0, 0
	for _, n := range notices {
		if err := h.email.SendOverdueReminder(ctx, n.UserEmail, n.BookTitle, n.DaysLate(now)); err != nil {
			failed++
			continue
		}
		sent++
	}

	logger.Info("overdue reminders processed", map[string]interface{}{
		"total":  len(notices),
		"sent":   sent,
		"failed": failed,
	})
	return nil
}
