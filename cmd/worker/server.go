package main

import (
	"context"
	"os"

	"github.com/hibiken/asynq"

	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(cfg *WorkerConfig, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueDefault: 10,
				shared.QueueLow:     5,
			},
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				logger.Warn("task failed", map[string]interface{}{
					"type":  task.Type(),
					"error": err.Error(),
				})
			}),
		},
	)

	go func() {
		logger.Info("worker starting", map[string]interface{}{})
		if err := srv.Run(mux); err != nil {
			logger.Error("worker failed", err)
			os.Exit(1)
		}
	}()

	return &asynqServer{Server: srv}
}

func (s *asynqServer) Shutdown() {
	s.Server.Shutdown()
}
