package main

import (
	"os"

	"library-backend/internal/infrastructure/queue"
	"library-backend/pkg/logger"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *WorkerConfig) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.RedisAddr, cfg.RedisPassword)

	if err := scheduler.RegisterJobs(); err != nil {
		logger.Error("failed to register scheduled jobs", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("scheduler starting", map[string]interface{}{})
		if err := scheduler.Start(); err != nil {
			logger.Error("scheduler failed", err)
			os.Exit(1)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	s.Scheduler.Shutdown()
}
