package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/models"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
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

	err = database.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.Project{},
		&models.Todo{},
		&models.ArchivedTodo{},
		&models.AIInteraction{},
		&models.ChatConversation{},
		&models.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return database
}

func createTestUser(t *testing.T, database *gorm.DB, externalID string) *models.User {
	t.Helper()

	user := &models.User{
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		Username:   externalID,
		IsActive:   true,
	}

	if err := database.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

func mustCreateTodo(t *testing.T, database *gorm.DB, userID uint, input CreateTodoInput, maxDepth int) *models.Todo {
	t.Helper()

	todo, err := CreateTodo(database, userID, input, maxDepth)
	if err != nil {
		t.Fatalf("Failed to create todo %q: %v", input.Title, err)
	}

	return todo
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func uintPtr(u uint) *uint { return &u }

func boolPtr(b bool) *bool { return &b }

func timePtr(ts time.Time) *time.Time { return &ts }
