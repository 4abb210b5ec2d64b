package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/tasks"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

// SendTestReminder enqueues a one-off reminder for the caller. 503 when no
// broker is configured.
func SendTestReminder(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	if err := tasks.EnqueueTestReminder(userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusAccepted, types.Success("Test reminder enqueued", nil))
}

// UpcomingReminders previews what the daily reminder job would email the
// caller right now.
func UpcomingReminders(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	digest, err := services.BuildReminderDigest(db.DB, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Upcoming reminders retrieved successfully", gin.H{
		"due_soon": newTodoSummaries(digest.DueSoon),
		"pending":  newTodoSummaries(digest.Pending),
	}))
}
