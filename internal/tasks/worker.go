// Package tasks runs the background queue: reminder fan-out on a cron
// schedule, one-off test reminders and archive purging, all over asynq.
package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/mailer"
)

// Worker owns the asynq server, the cron scheduler and the enqueue client.
type Worker struct {
	cfg       *config.Config
	mail      *mailer.Mailer
	server    *asynq.Server
	scheduler *asynq.Scheduler
	client    *asynq.Client
}

// NewWorker builds a worker from the broker URL. mail may be nil when SMTP
// is not configured; reminder tasks then log and skip.
func NewWorker(cfg *config.Config, mail *mailer.Mailer) (*Worker, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)

	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("Task %s failed: %v", task.Type(), err)
		}),
	})

	return &Worker{
		cfg:       cfg,
		mail:      mail,
		server:    server,
		scheduler: asynq.NewScheduler(redisOpt, nil),
		client:    asynq.NewClient(redisOpt),
	}, nil
}

// Start registers handlers and cron entries and brings up the server and
// scheduler without blocking.
func (w *Worker) Start() error {
	log.Println("Starting task worker...")

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDailyReminders, w.handleDailyReminders)
	mux.HandleFunc(TypeTestReminder, w.handleTestReminder)
	mux.HandleFunc(TypePurgeArchived, w.handlePurgeArchived)

	if _, err := w.scheduler.Register(w.cfg.ReminderCron, asynq.NewTask(TypeDailyReminders, nil)); err != nil {
		return fmt.Errorf("failed to register reminder schedule: %w", err)
	}

	if _, err := w.scheduler.Register(w.cfg.PurgeCron, asynq.NewTask(TypePurgeArchived, nil)); err != nil {
		return fmt.Errorf("failed to register purge schedule: %w", err)
	}

	if err := w.server.Start(mux); err != nil {
		return err
	}

	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return err
	}

	log.Printf("Task worker started (reminders %q, purge %q)", w.cfg.ReminderCron, w.cfg.PurgeCron)
	return nil
}

// Stop drains in-flight tasks and closes the broker connections.
func (w *Worker) Stop() {
	log.Println("Stopping task worker...")

	w.scheduler.Shutdown()
	w.server.Shutdown()

	if err := w.client.Close(); err != nil {
		log.Printf("Failed to close queue client: %v", err)
	}

	log.Println("Task worker stopped")
}

func (w *Worker) EnqueueTestReminder(userID uint) error {
	task, err := NewTestReminderTask(userID)

	if err != nil {
		return err
	}

	if _, err := w.client.Enqueue(task, asynq.MaxRetry(3)); err != nil {
		unavailable := apperrors.Unavailable("QUEUE_UNAVAILABLE", "Background queue is unavailable")
		unavailable.Err = err
		return unavailable
	}

	return nil
}

// Global worker instance
var globalWorker *Worker

// Initialize creates and starts the global worker.
func Initialize(cfg *config.Config, mail *mailer.Mailer) error {
	worker, err := NewWorker(cfg, mail)

	if err != nil {
		return err
	}

	globalWorker = worker
	return globalWorker.Start()
}

// Shutdown stops the global worker.
func Shutdown() {
	if globalWorker != nil {
		globalWorker.Stop()
	}
}

// EnqueueTestReminder enqueues a one-off reminder through the global worker.
func EnqueueTestReminder(userID uint) error {
	if globalWorker == nil {
		return apperrors.Unavailable("QUEUE_UNAVAILABLE", "Background queue is not configured")
	}

	return globalWorker.EnqueueTestReminder(userID)
}
