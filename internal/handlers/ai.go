package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

const (
	defaultSubtaskCount = 5
	maxSubtaskCount     = 10
)

type GenerateSubtasksRequest struct {
	Count int `json:"count"`
}

type AnalyzeRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content" binding:"required"`
}

type InteractionSummary struct {
	ID         uint      `json:"id"`
	TodoID     *uint     `json:"todo_id"`
	Kind       string    `json:"kind"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	ModelName  string    `json:"model"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// GenerateSubtasks asks the model to break a todo down and persists the
// suggestions as AI-generated children.
func GenerateSubtasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	todoID, err := utils.GetTodoID(ctx)

	if err != nil {
		respondInvalid(ctx, err)
		return
	}

	var body GenerateSubtasksRequest

	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			respondInvalid(ctx, err)
			return
		}
	}

	count := body.Count

	if count <= 0 {
		count = defaultSubtaskCount
	}

	if count > maxSubtaskCount {
		count = maxSubtaskCount
	}

	created, err := services.GenerateAISubtasks(ctx.Request.Context(), db.DB, AI, userID, uint(todoID), count, Cfg.MaxTodoDepth)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.Success("Subtasks generated successfully", gin.H{
		"subtasks": newTodoSummaries(created),
	}))
}

// Analyze runs file content through the model and returns suggested tasks
// without persisting anything.
func Analyze(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	var body AnalyzeRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondInvalid(ctx, err)
		return
	}

	if len(body.Content) > Cfg.MaxAnalyzeBytes {
		respondError(ctx, apperrors.Validation("Content is too large to analyze").WithDetails(map[string]interface{}{
			"max_bytes": Cfg.MaxAnalyzeBytes,
		}))
		return
	}

	analysis, err := AI.Analyze(ctx.Request.Context(), db.DB, userID, body.Filename, body.Content)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Content analyzed successfully", gin.H{
		"analysis": analysis,
	}))
}

func ListAIInteractions(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	page, pageSize := pageParams(ctx)

	result, err := services.ListAIInteractions(db.DB, userID, page, pageSize)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if interactions, ok := result.Items.([]models.AIInteraction); ok {
		summaries := make([]InteractionSummary, 0, len(interactions))

		for _, interaction := range interactions {
			summaries = append(summaries, InteractionSummary{
				ID:         interaction.ID,
				TodoID:     interaction.TodoID,
				Kind:       interaction.Kind,
				Prompt:     interaction.Prompt,
				Response:   interaction.Response,
				ModelName:  interaction.ModelName,
				DurationMs: interaction.DurationMs,
				CreatedAt:  interaction.CreatedAt,
			})
		}

		result.Items = summaries
	}

	ctx.JSON(http.StatusOK, types.Success("Interactions retrieved successfully", result))
}
