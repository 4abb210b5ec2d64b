package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime int // seconds

	// AI provider configuration
	AIAPIKey        string
	AIModel         string
	AIMaxRetries    int
	AIRetryBaseMS   int
	AIMaxConcurrent int
	AITimeoutSecs   int

	// Todo limits
	MaxTodoDepth         int
	MaxArchivedTodoDepth int
	MaxAnalyzeBytes      int

	// Task queue / notifications
	RedisURL             string
	ReminderCron         string
	PurgeCron            string
	ArchiveRetentionDays int
	WorkerConcurrency    int

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "3000"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:       getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:       getEnvAsInt("DB_CONN_LIFETIME_SECONDS", 300),
		AIAPIKey:             getEnv("AI_API_KEY", ""),
		AIModel:              getEnv("AI_MODEL", "gemini-2.0-flash"),
		AIMaxRetries:         getEnvAsInt("AI_MAX_RETRIES", 3),
		AIRetryBaseMS:        getEnvAsInt("AI_RETRY_BASE_MS", 1000),
		AIMaxConcurrent:      getEnvAsInt("AI_MAX_CONCURRENT", 5),
		AITimeoutSecs:        getEnvAsInt("AI_TIMEOUT_SECONDS", 60),
		MaxTodoDepth:         getEnvAsInt("MAX_TODO_DEPTH", 5),
		MaxArchivedTodoDepth: getEnvAsInt("MAX_ARCHIVED_TODO_DEPTH", 10),
		MaxAnalyzeBytes:      getEnvAsInt("MAX_ANALYZE_BYTES", 64*1024),
		RedisURL:             getEnv("REDIS_URL", ""),
		ReminderCron:         getEnv("REMINDER_CRON", "0 9 * * *"),
		PurgeCron:            getEnv("PURGE_CRON", "0 3 * * 0"),
		ArchiveRetentionDays: getEnvAsInt("ARCHIVE_RETENTION_DAYS", 90),
		WorkerConcurrency:    getEnvAsInt("WORKER_CONCURRENCY", 10),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:             getEnv("SMTP_FROM", "TaskHive <no-reply@taskhive.dev>"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.MaxTodoDepth < 1 {
		return nil, fmt.Errorf("MAX_TODO_DEPTH must be at least 1")
	}
	if cfg.MaxArchivedTodoDepth < cfg.MaxTodoDepth {
		return nil, fmt.Errorf("MAX_ARCHIVED_TODO_DEPTH must be >= MAX_TODO_DEPTH")
	}

	return cfg, nil
}

// AIEnabled reports whether an AI provider key is configured.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

// QueueEnabled reports whether a task-queue broker is configured.
func (c *Config) QueueEnabled() bool {
	return c.RedisURL != ""
}

// MailEnabled reports whether SMTP delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

