package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/taskhive_test")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 5, cfg.MaxTodoDepth)
	assert.Equal(t, 10, cfg.MaxArchivedTodoDepth)
	assert.Equal(t, "gemini-2.0-flash", cfg.AIModel)
	assert.Equal(t, 3, cfg.AIMaxRetries)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "0 9 * * *", cfg.ReminderCron)
	assert.Equal(t, 90, cfg.ArchiveRetentionDays)

	assert.False(t, cfg.AIEnabled())
	assert.False(t, cfg.QueueEnabled())
	assert.False(t, cfg.MailEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/taskhive_test")
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_TODO_DEPTH", "3")
	t.Setenv("MAX_ARCHIVED_TODO_DEPTH", "6")
	t.Setenv("AI_API_KEY", "key")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.MaxTodoDepth)
	assert.Equal(t, 6, cfg.MaxArchivedTodoDepth)
	assert.True(t, cfg.AIEnabled())
	assert.True(t, cfg.QueueEnabled())
	assert.True(t, cfg.MailEnabled())
}

func TestLoad_BadIntFallsBackToDefault(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/taskhive_test")
	t.Setenv("MAX_TODO_DEPTH", "not-a-number")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxTodoDepth)
}

func TestLoad_ArchivedDepthMustCoverPrimary(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/taskhive_test")
	t.Setenv("MAX_TODO_DEPTH", "8")
	t.Setenv("MAX_ARCHIVED_TODO_DEPTH", "4")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_ARCHIVED_TODO_DEPTH")
}
