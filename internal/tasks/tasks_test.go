package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("Failed to access test database pool: %v", err)
	}

	// Each pool connection would otherwise see its own empty :memory: db.
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(&models.User{}, &models.UserSettings{}, &models.Todo{}, &models.ArchivedTodo{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return database
}

func TestNewTestReminderTask(t *testing.T) {
	task, err := NewTestReminderTask(42)

	require.NoError(t, err)
	assert.Equal(t, TypeTestReminder, task.Type())

	var payload reminderPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, uint(42), payload.UserID)
}

func TestHandleTestReminder_InvalidPayloadIsNotRetried(t *testing.T) {
	worker := &Worker{}

	err := worker.handleTestReminder(context.Background(), asynq.NewTask(TypeTestReminder, []byte("not json")))

	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleTestReminder_WithoutMailerIsANoop(t *testing.T) {
	worker := &Worker{}
	task, err := NewTestReminderTask(7)
	require.NoError(t, err)

	assert.NoError(t, worker.handleTestReminder(context.Background(), task))
}

func TestHandleDailyReminders_WithoutMailerIsANoop(t *testing.T) {
	worker := &Worker{}

	err := worker.handleDailyReminders(context.Background(), asynq.NewTask(TypeDailyReminders, nil))

	assert.NoError(t, err)
}

func TestHandlePurgeArchived(t *testing.T) {
	db.DB = setupTestDB(t)

	stale := models.ArchivedTodo{
		UserID:     1,
		OriginalID: 10,
		Title:      "long gone",
		Status:     "done",
		Priority:   3,
		ArchivedAt: time.Now().AddDate(0, 0, -120),
	}
	fresh := models.ArchivedTodo{
		UserID:     1,
		OriginalID: 11,
		Title:      "recent",
		Status:     "done",
		Priority:   3,
		ArchivedAt: time.Now().AddDate(0, 0, -5),
	}
	require.NoError(t, db.DB.Create(&stale).Error)
	require.NoError(t, db.DB.Create(&fresh).Error)

	worker := &Worker{cfg: &config.Config{ArchiveRetentionDays: 90}}

	require.NoError(t, worker.handlePurgeArchived(context.Background(), asynq.NewTask(TypePurgeArchived, nil)))

	var remaining []models.ArchivedTodo
	require.NoError(t, db.DB.Unscoped().Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Title)
}
