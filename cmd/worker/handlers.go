package main

import (
	"github.com/hibiken/asynq"

	"library-backend/internal/infrastructure/queue/handlers"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
)

// HandlerRegistry holds the worker's task handlers.
type HandlerRegistry struct {
	overdueReminders   *handlers.OverdueReminderHandler
	expiredCodeCleanup *handlers.ExpiredCodeCleanupHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		overdueReminders:   handlers.NewOverdueReminderHandler(c.BorrowRepo, c.EmailService),
		expiredCodeCleanup: handlers.NewExpiredCodeCleanupHandler(c.OTPRepo),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSendOverdueReminders, h.overdueReminders.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExpiredCodes, h.expiredCodeCleanup.ProcessTask)
}
