package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetProjectID(ctx *gin.Context) (uint64, error) {
	projectIDStr := ctx.Param("project_id")

	if projectIDStr == "" {
		return 0, errors.New("Project ID not found")
	}

	projectID, err := strconv.ParseUint(projectIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Project ID")
	}

	return projectID, nil
}

func GetTodoID(ctx *gin.Context) (uint64, error) {
	todoIDStr := ctx.Param("todo_id")

	if todoIDStr == "" {
		return 0, errors.New("Todo ID not found")
	}

	todoID, err := strconv.ParseUint(todoIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Todo ID")
	}

	return todoID, nil
}

func GetConversationID(ctx *gin.Context) (string, error) {
	conversationID := ctx.Param("conversation_id")

	if conversationID == "" {
		return "", errors.New("Conversation ID not found")
	}

	return conversationID, nil
}
