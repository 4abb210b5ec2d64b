package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
)

// HealthCheck reports process liveness plus the state of the two optional
// backends: the database (pinged) and the AI service (configured or not).
func HealthCheck(ctx *gin.Context) {
	database := "ok"

	if sqlDB, err := db.DB.DB(); err != nil {
		database = "error"
	} else if err := sqlDB.Ping(); err != nil {
		database = "error"
	}

	status := http.StatusOK

	if database != "ok" {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, gin.H{
		"status":    database,
		"message":   "TaskHive is running",
		"database":  database,
		"ai":        aiState(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
