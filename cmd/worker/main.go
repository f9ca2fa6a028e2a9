package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"library-backend/pkg/container"
	"library-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment")
	}

	c, err := container.NewContainer()
	if err != nil {
		logger.Error("failed to initialize container", err)
		os.Exit(1)
	}
	defer c.Cleanup()

	cfg := loadWorkerConfig()
	handlers := initializeHandlers(c)

	srv := setupAsynqServer(cfg, handlers)
	scheduler := setupScheduler(cfg)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down", map[string]interface{}{})
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info("worker stopped", map[string]interface{}{})
}
