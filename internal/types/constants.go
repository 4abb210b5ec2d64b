package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Todo status values
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Priority bounds (1 = lowest, 5 = highest)
const (
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 3
)

// Chat message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// AI interaction kinds
const (
	AIKindSubtasks = "subtasks"
	AIKindAnalysis = "analysis"
	AIKindChat     = "chat"
)

// Chat action types the assistant may emit
const (
	ActionCreateProject  = "create_project"
	ActionCreateTask     = "create_task"
	ActionCreateSubtasks = "create_subtasks"
)

// Per-action execution outcomes reported back to the client
const (
	ActionExecuted            = "executed"
	ActionFailed              = "failed"
	ActionPendingConfirmation = "pending_confirmation"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
