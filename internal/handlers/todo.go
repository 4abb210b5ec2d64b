package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateTodoRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     int        `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	ProjectID    *uint      `json:"project_id"`
	ParentTodoID *uint      `json:"parent_todo_id"`
}

// UpdateTodoRequest carries partial updates: absent fields stay untouched.
// project_id or parent_todo_id of 0 clears the association.
type UpdateTodoRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	Priority     *int       `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
	ProjectID    *uint      `json:"project_id"`
	ParentTodoID *uint      `json:"parent_todo_id"`
}

type TodoSummary struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       string        `json:"status"`
	Priority     int           `json:"priority"`
	DueDate      *time.Time    `json:"due_date"`
	CompletedAt  *time.Time    `json:"completed_at"`
	ProjectID    *uint         `json:"project_id"`
	ParentTodoID *uint         `json:"parent_todo_id"`
	AIGenerated  bool          `json:"ai_generated"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Subtasks     []TodoSummary `json:"subtasks,omitempty"`
}

type ArchivedTodoSummary struct {
	ID           uint       `json:"id"`
	OriginalID   uint       `json:"original_id"`
	ParentTodoID *uint      `json:"parent_todo_id"`
	ProjectID    *uint      `json:"project_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     int        `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	CompletedAt  *time.Time `json:"completed_at"`
	AIGenerated  bool       `json:"ai_generated"`
	ArchivedAt   time.Time  `json:"archived_at"`
}

func newTodoSummary(todo models.Todo) TodoSummary {
	summary := TodoSummary{
		ID:           todo.ID,
		Title:        todo.Title,
		Description:  todo.Description,
		Status:       todo.Status,
		Priority:     todo.Priority,
		DueDate:      todo.DueDate,
		CompletedAt:  todo.CompletedAt,
		ProjectID:    todo.ProjectID,
		ParentTodoID: todo.ParentTodoID,
		AIGenerated:  todo.AIGenerated,
		CreatedAt:    todo.CreatedAt,
		UpdatedAt:    todo.UpdatedAt,
	}

	for _, subtask := range todo.Subtasks {
		summary.Subtasks = append(summary.Subtasks, newTodoSummary(subtask))
	}

	return summary
}

func newTodoSummaries(todos []models.Todo) []TodoSummary {
	summaries := make([]TodoSummary, 0, len(todos))

	for _, todo := range todos {
		summaries = append(summaries, newTodoSummary(todo))
	}

	return summaries
}

func newArchivedSummary(archived models.ArchivedTodo) ArchivedTodoSummary {
	return ArchivedTodoSummary{
		ID:           archived.ID,
		OriginalID:   archived.OriginalID,
		ParentTodoID: archived.ParentTodoID,
		ProjectID:    archived.ProjectID,
		Title:        archived.Title,
		Description:  archived.Description,
		Status:       archived.Status,
		Priority:     archived.Priority,
		DueDate:      archived.DueDate,
		CompletedAt:  archived.CompletedAt,
		AIGenerated:  archived.AIGenerated,
		ArchivedAt:   archived.ArchivedAt,
	}
}

func CreateTodo(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	var body CreateTodoRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondInvalid(ctx, err)
		return
	}

	todo, err := services.CreateTodo(db.DB, userID, services.CreateTodoInput{
		Title:        body.Title,
		Description:  body.Description,
		Status:       body.Status,
		Priority:     body.Priority,
		DueDate:      body.DueDate,
		ProjectID:    body.ProjectID,
		ParentTodoID: body.ParentTodoID,
	}, Cfg.MaxTodoDepth)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.Success("Todo created successfully", gin.H{
		"todo": newTodoSummary(*todo),
	}))
}

func ListTodos(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	filters := services.TodoFilters{
		Status:       ctx.Query("status"),
		ProjectID:    ctx.Query("project_id"),
		ParentTodoID: ctx.Query("parent_todo_id"),
		Search:       ctx.Query("search"),
	}

	if raw := ctx.Query("priority"); raw != "" {
		if priority, err := strconv.Atoi(raw); err == nil {
			filters.Priority = priority
		}
	}

	if raw := ctx.Query("due_before"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DueBefore = &t
		}
	}

	if raw := ctx.Query("due_after"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DueAfter = &t
		}
	}

	if raw := ctx.Query("ai_generated"); raw != "" {
		if aiGenerated, err := strconv.ParseBool(raw); err == nil {
			filters.AIGenerated = &aiGenerated
		}
	}

	filters.Page, filters.PageSize = pageParams(ctx)

	page, err := services.ListTodos(db.DB, userID, filters)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if todos, ok := page.Items.([]models.Todo); ok {
		page.Items = newTodoSummaries(todos)
	}

	ctx.JSON(http.StatusOK, types.Success("Todos retrieved successfully", page))
}

func GetTodo(ctx *gin.Context) {
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

	todo, err := services.GetTodo(db.DB, userID, uint(todoID))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Todo retrieved successfully", gin.H{
		"todo": newTodoSummary(*todo),
	}))
}

func UpdateTodo(ctx *gin.Context) {
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

	var body UpdateTodoRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondInvalid(ctx, err)
		return
	}

	todo, err := services.UpdateTodo(db.DB, userID, uint(todoID), services.UpdateTodoInput{
		Title:        body.Title,
		Description:  body.Description,
		Status:       body.Status,
		Priority:     body.Priority,
		DueDate:      body.DueDate,
		ClearDueDate: body.ClearDueDate,
		ProjectID:    body.ProjectID,
		ParentTodoID: body.ParentTodoID,
	}, Cfg.MaxTodoDepth)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Todo updated successfully", gin.H{
		"todo": newTodoSummary(*todo),
	}))
}

func DeleteTodo(ctx *gin.Context) {
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

	if err := services.DeleteTodo(db.DB, userID, uint(todoID)); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Todo deleted successfully", nil))
}

func GetSubtasks(ctx *gin.Context) {
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

	subtasks, err := services.GetSubtasks(db.DB, userID, uint(todoID))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Subtasks retrieved successfully", gin.H{
		"subtasks": newTodoSummaries(subtasks),
	}))
}

func GetTodoStats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	stats, err := services.GetTodoStats(db.DB, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Stats retrieved successfully", gin.H{
		"stats": stats,
	}))
}

func ArchiveTodo(ctx *gin.Context) {
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

	archived, err := services.ArchiveTodo(db.DB, userID, uint(todoID))

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Todo archived successfully", gin.H{
		"archived_count": archived,
	}))
}

func ListArchivedTodos(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	page, pageSize := pageParams(ctx)

	result, err := services.ListArchived(db.DB, userID, page, pageSize)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if archived, ok := result.Items.([]models.ArchivedTodo); ok {
		summaries := make([]ArchivedTodoSummary, 0, len(archived))

		for _, row := range archived {
			summaries = append(summaries, newArchivedSummary(row))
		}

		result.Items = summaries
	}

	ctx.JSON(http.StatusOK, types.Success("Archived todos retrieved successfully", result))
}

func RestoreTodo(ctx *gin.Context) {
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

	todo, err := services.RestoreTodo(db.DB, userID, uint(todoID), Cfg.MaxArchivedTodoDepth)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Todo restored successfully", gin.H{
		"todo": newTodoSummary(*todo),
	}))
}

func DeleteArchivedTodo(ctx *gin.Context) {
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

	if err := services.DeleteArchived(db.DB, userID, uint(todoID)); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Archived todo deleted successfully", nil))
}
