package handlers

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/user/repository"
	"library-backend/pkg/logger"
)

type ExpiredCodeCleanupHandler struct {
	codes repository.OTPRepositoryInterface
}

func NewExpiredCodeCleanupHandler(codes repository.OTPRepositoryInterface) *ExpiredCodeCleanupHandler {
	return &ExpiredCodeCleanupHandler{codes: codes}
}

// ProcessTask deletes one-time codes that expired more than a day ago.
// The one day margin keeps very recent rows around for support debugging.
func (h *ExpiredCodeCleanupHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	before := time.Now().Add(-24 * time.Hour)

	deleted, err := h.codes.DeleteExpired(ctx, before)
	if err != nil {
		return err
	}

	logger.Info("expired one-time codes cleaned up", map[string]interface{}{
		"deleted": deleted,
	})
	return nil
}
