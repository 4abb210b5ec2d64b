package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/services"
)

const (
	TypeDailyReminders = "notifications:daily_reminders"
	TypeTestReminder   = "notifications:test_reminder"
	TypePurgeArchived  = "todos:purge_archived"
)

type reminderPayload struct {
	UserID uint `json:"user_id"`
}

func NewTestReminderTask(userID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(reminderPayload{UserID: userID})

	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTestReminder, payload), nil
}

// handleDailyReminders fans the digest out to every opted-in user. A failure
// for one user is logged and never blocks the rest.
func (w *Worker) handleDailyReminders(ctx context.Context, _ *asynq.Task) error {
	if w.mail == nil {
		log.Println("SMTP is not configured, skipping daily reminders")
		return nil
	}

	users, err := services.ReminderRecipients(db.DB)

	if err != nil {
		return err
	}

	sent := 0

	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		digest, err := services.BuildReminderDigest(db.DB, user.ID)

		if err != nil {
			log.Printf("Failed to build reminder digest for user %d: %v", user.ID, err)
			continue
		}

		if digest.Empty() {
			continue
		}

		if err := w.mail.SendReminderDigest(digest); err != nil {
			log.Printf("Failed to send reminder to user %d: %v", user.ID, err)
			continue
		}

		sent++
	}

	log.Printf("Daily reminders: sent %d of %d", sent, len(users))
	return nil
}

func (w *Worker) handleTestReminder(_ context.Context, task *asynq.Task) error {
	var payload reminderPayload

	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid test reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	if w.mail == nil {
		log.Printf("SMTP is not configured, dropping test reminder for user %d", payload.UserID)
		return nil
	}

	digest, err := services.BuildReminderDigest(db.DB, payload.UserID)

	if err != nil {
		return err
	}

	if digest.Empty() {
		log.Printf("Test reminder for user %d: nothing due, nothing sent", payload.UserID)
		return nil
	}

	return w.mail.SendReminderDigest(digest)
}

func (w *Worker) handlePurgeArchived(_ context.Context, _ *asynq.Task) error {
	cutoff := time.Now().AddDate(0, 0, -w.cfg.ArchiveRetentionDays)

	purged, err := services.PurgeArchived(db.DB, cutoff)

	if err != nil {
		return err
	}

	log.Printf("Purged %d archived todos older than %s", purged, cutoff.Format("2006-01-02"))
	return nil
}
