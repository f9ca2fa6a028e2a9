package main

import (
	"os"

	"library-backend/pkg/logger"
)

// WorkerConfig is the slice of configuration the worker needs directly.
// Everything else comes through the container.
type WorkerConfig struct {
	RedisAddr     string
	RedisPassword string
}

func loadWorkerConfig() *WorkerConfig {
	cfg := &WorkerConfig{
		RedisAddr:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	logger.Info("worker config loaded", map[string]interface{}{
		"redis": cfg.RedisAddr,
	})
	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
