package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, redisPassword string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs registers the recurring jobs: morning overdue reminders and
// a nightly sweep of expired one-time codes.
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerOverdueReminders(); err != nil {
		return err
	}
	return s.registerExpiredCodeCleanup()
}

func (s *Scheduler) registerOverdueReminders() error {
	task := asynq.NewTask(shared.TypeSendOverdueReminders, nil)

	_, err := s.scheduler.Register(
		"0 8 * * *", // daily at 8 AM, when members actually read email
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register overdue reminder job", err)
		return err
	}

	logger.Info("registered overdue reminders: daily at 8 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) registerExpiredCodeCleanup() error {
	task := asynq.NewTask(shared.TypeCleanupExpiredCodes, nil)

	_, err := s.scheduler.Register(
		"0 2 * * *", // daily at 2 AM, low traffic
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register expired code cleanup job", err)
		return err
	}

	logger.Info("registered expired code cleanup: daily at 2 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
