package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/ai"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize
}

func getOwnedTodo(database *gorm.DB, userID, todoID uint) (*models.Todo, error) {
	var todo models.Todo

	if err := database.Where("id = ? AND user_id = ?", todoID, userID).First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Todo")
		}

		return nil, err
	}

	return &todo, nil
}

func depthExceeded(maxDepth int) *apperrors.AppError {
	return apperrors.Operation("TODO_DEPTH_EXCEEDED", "Todo nesting is too deep").
		WithDetails(map[string]interface{}{"max_depth": maxDepth})
}

// TodoDepth walks parent pointers up to the root. A root todo has depth 1.
func TodoDepth(database *gorm.DB, todo *models.Todo) (int, error) {
	depth := 1
	parentID := todo.ParentTodoID

	for parentID != nil {
		var parent models.Todo

		if err := database.Select("id", "parent_todo_id").First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return depth, nil
			}

			return 0, err
		}

		depth++
		parentID = parent.ParentTodoID

		if depth > 1000 {
			return 0, fmt.Errorf("todo %d: parent chain does not terminate", todo.ID)
		}
	}

	return depth, nil
}

// collectSubtreeIDs returns the todo's id followed by every descendant id,
// breadth first.
func collectSubtreeIDs(database *gorm.DB, userID, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	frontier := []uint{rootID}

	for len(frontier) > 0 {
		var children []uint

		if err := database.Model(&models.Todo{}).
			Where("user_id = ? AND parent_todo_id IN ?", userID, frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}

		ids = append(ids, children...)
		frontier = children
	}

	return ids, nil
}

// subtreeHeight counts the levels under (and including) the given todo.
func subtreeHeight(database *gorm.DB, userID, rootID uint) (int, error) {
	height := 1
	frontier := []uint{rootID}

	for {
		var children []uint

		if err := database.Model(&models.Todo{}).
			Where("user_id = ? AND parent_todo_id IN ?", userID, frontier).
			Pluck("id", &children).Error; err != nil {
			return 0, err
		}

		if len(children) == 0 {
			return height, nil
		}

		height++
		frontier = children
	}
}

type CreateTodoInput struct {
	Title        string
	Description  string
	Status       string
	Priority     int
	DueDate      *time.Time
	ProjectID    *uint
	ParentTodoID *uint
	AIGenerated  bool
}

// CreateTodo validates ownership and the depth budget, then inserts the
// todo. Creating it already done stamps CompletedAt.
func CreateTodo(database *gorm.DB, userID uint, input CreateTodoInput, maxDepth int) (*models.Todo, error) {
	title := strings.TrimSpace(input.Title)

	if title == "" {
		return nil, apperrors.Validation("Title is required")
	}

	status := input.Status

	if status == "" {
		status = types.StatusTodo
	}

	if !types.ValidStatus(status) {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid status %q", status))
	}

	priority := input.Priority

	if priority == 0 {
		priority = types.PriorityDefault
	}

	if priority < types.PriorityMin || priority > types.PriorityMax {
		return nil, apperrors.Validation(fmt.Sprintf("Priority must be between %d and %d", types.PriorityMin, types.PriorityMax))
	}

	if input.ProjectID != nil {
		if _, err := ensureProjectOwned(database, userID, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	depth := 1

	if input.ParentTodoID != nil {
		parent, err := getOwnedTodo(database, userID, *input.ParentTodoID)

		if err != nil {
			return nil, err
		}

		parentDepth, err := TodoDepth(database, parent)

		if err != nil {
			return nil, err
		}

		depth = parentDepth + 1
	}

	if depth > maxDepth {
		return nil, depthExceeded(maxDepth)
	}

	todo := models.Todo{
		UserID:       userID,
		ProjectID:    input.ProjectID,
		ParentTodoID: input.ParentTodoID,
		Title:        title,
		Description:  input.Description,
		Status:       status,
		Priority:     priority,
		DueDate:      input.DueDate,
		AIGenerated:  input.AIGenerated,
	}

	if todo.Status == types.StatusDone {
		now := time.Now()
		todo.CompletedAt = &now
	}

	if err := database.Create(&todo).Error; err != nil {
		return nil, err
	}

	return &todo, nil
}

// TodoFilters narrows and pages a todo listing. ProjectID and ParentTodoID
// accept a numeric id or the literal "none" (unassigned / roots only).
type TodoFilters struct {
	Status       string
	Priority     int
	ProjectID    string
	ParentTodoID string
	Search       string
	DueBefore    *time.Time
	DueAfter     *time.Time
	AIGenerated  *bool
	Page         int
	PageSize     int
}

func ListTodos(database *gorm.DB, userID uint, filters TodoFilters) (*types.Page, error) {
	query := database.Model(&models.Todo{}).Where("user_id = ?", userID)

	if filters.Status != "" {
		if !types.ValidStatus(filters.Status) {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid status %q", filters.Status))
		}

		query = query.Where("status = ?", filters.Status)
	}

	if filters.Priority != 0 {
		if filters.Priority < types.PriorityMin || filters.Priority > types.PriorityMax {
			return nil, apperrors.Validation(fmt.Sprintf("Priority must be between %d and %d", types.PriorityMin, types.PriorityMax))
		}

		query = query.Where("priority = ?", filters.Priority)
	}

	switch filters.ProjectID {
	case "":
	case "none":
		query = query.Where("project_id IS NULL")
	default:
		projectID, err := strconv.ParseUint(filters.ProjectID, 10, 32)

		if err != nil {
			return nil, apperrors.Validation("Invalid project_id filter")
		}

		query = query.Where("project_id = ?", projectID)
	}

	switch filters.ParentTodoID {
	case "":
	case "none":
		query = query.Where("parent_todo_id IS NULL")
	default:
		parentID, err := strconv.ParseUint(filters.ParentTodoID, 10, 32)

		if err != nil {
			return nil, apperrors.Validation("Invalid parent_todo_id filter")
		}

		query = query.Where("parent_todo_id = ?", parentID)
	}

	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if filters.DueBefore != nil {
		query = query.Where("due_date <= ?", *filters.DueBefore)
	}

	if filters.DueAfter != nil {
		query = query.Where("due_date >= ?", *filters.DueAfter)
	}

	if filters.AIGenerated != nil {
		query = query.Where("ai_generated = ?", *filters.AIGenerated)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := clampPage(filters.Page, filters.PageSize)

	var todos []models.Todo

	if err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&todos).Error; err != nil {
		return nil, err
	}

	result := types.NewPage(todos, total, page, pageSize)

	return &result, nil
}

func GetTodo(database *gorm.DB, userID, todoID uint) (*models.Todo, error) {
	var todo models.Todo

	if err := database.Preload("Subtasks").
		Where("id = ? AND user_id = ?", todoID, userID).
		First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Todo")
		}

		return nil, err
	}

	return &todo, nil
}

func GetSubtasks(database *gorm.DB, userID, todoID uint) ([]models.Todo, error) {
	if _, err := getOwnedTodo(database, userID, todoID); err != nil {
		return nil, err
	}

	var subtasks []models.Todo

	if err := database.Where("user_id = ? AND parent_todo_id = ?", userID, todoID).
		Order("created_at ASC").
		Find(&subtasks).Error; err != nil {
		return nil, err
	}

	return subtasks, nil
}

// UpdateTodoInput applies partial updates. A ProjectID or ParentTodoID of 0
// clears the association; ClearDueDate removes the due date.
type UpdateTodoInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *int
	DueDate      *time.Time
	ClearDueDate bool
	ProjectID    *uint
	ParentTodoID *uint
}

func UpdateTodo(database *gorm.DB, userID, todoID uint, input UpdateTodoInput, maxDepth int) (*models.Todo, error) {
	todo, err := getOwnedTodo(database, userID, todoID)

	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)

		if title == "" {
			return nil, apperrors.Validation("Title cannot be empty")
		}

		updates["title"] = title
	}

	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if input.Status != nil {
		status := *input.Status

		if !types.ValidStatus(status) {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid status %q", status))
		}

		if status != todo.Status {
			updates["status"] = status

			// Completing stamps the timestamp; reopening clears it.
			if status == types.StatusDone {
				updates["completed_at"] = time.Now()
			} else if todo.Status == types.StatusDone {
				updates["completed_at"] = nil
			}
		}
	}

	if input.Priority != nil {
		if *input.Priority < types.PriorityMin || *input.Priority > types.PriorityMax {
			return nil, apperrors.Validation(fmt.Sprintf("Priority must be between %d and %d", types.PriorityMin, types.PriorityMax))
		}

		updates["priority"] = *input.Priority
	}

	if input.ClearDueDate {
		updates["due_date"] = nil
	} else if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}

	if input.ProjectID != nil {
		if *input.ProjectID == 0 {
			updates["project_id"] = nil
		} else {
			if _, err := ensureProjectOwned(database, userID, *input.ProjectID); err != nil {
				return nil, err
			}

			updates["project_id"] = *input.ProjectID
		}
	}

	if input.ParentTodoID != nil {
		if *input.ParentTodoID == 0 {
			updates["parent_todo_id"] = nil
		} else {
			if err := validateReparent(database, userID, todo, *input.ParentTodoID, maxDepth); err != nil {
				return nil, err
			}

			updates["parent_todo_id"] = *input.ParentTodoID
		}
	}

	if len(updates) == 0 {
		return todo, nil
	}

	if err := database.Model(&models.Todo{}).
		Where("id = ?", todo.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return getOwnedTodo(database, userID, todoID)
}

// validateReparent rejects cycles and depth violations before a todo moves
// under a new parent.
func validateReparent(database *gorm.DB, userID uint, todo *models.Todo, newParentID uint, maxDepth int) error {
	if newParentID == todo.ID {
		return apperrors.Validation("A todo cannot be its own parent")
	}

	parent, err := getOwnedTodo(database, userID, newParentID)

	if err != nil {
		return err
	}

	subtreeIDs, err := collectSubtreeIDs(database, userID, todo.ID)

	if err != nil {
		return err
	}

	for _, id := range subtreeIDs {
		if id == newParentID {
			return apperrors.Validation("A todo cannot be moved under its own subtask")
		}
	}

	parentDepth, err := TodoDepth(database, parent)

	if err != nil {
		return err
	}

	height, err := subtreeHeight(database, userID, todo.ID)

	if err != nil {
		return err
	}

	if parentDepth+height > maxDepth {
		return depthExceeded(maxDepth)
	}

	return nil
}

// DeleteTodo removes the todo and every descendant in one statement.
func DeleteTodo(database *gorm.DB, userID, todoID uint) error {
	todo, err := getOwnedTodo(database, userID, todoID)

	if err != nil {
		return err
	}

	ids, err := collectSubtreeIDs(database, userID, todo.ID)

	if err != nil {
		return err
	}

	return database.Where("id IN ?", ids).Delete(&models.Todo{}).Error
}

type TodoStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByPriority     map[int]int64    `json:"by_priority"`
	Overdue        int64            `json:"overdue"`
	DueToday       int64            `json:"due_today"`
	CompletedLast7 int64            `json:"completed_last_7_days"`
	CompletionRate float64          `json:"completion_rate"`
}

func GetTodoStats(database *gorm.DB, userID uint) (*TodoStats, error) {
	stats := &TodoStats{
		ByStatus:   map[string]int64{},
		ByPriority: map[int]int64{},
	}

	base := func() *gorm.DB {
		return database.Model(&models.Todo{}).Where("user_id = ?", userID)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type statusRow struct {
		Status string
		Count  int64
	}

	var statusRows []statusRow

	if err := base().Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}

	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
	}

	type priorityRow struct {
		Priority int
		Count    int64
	}

	var priorityRows []priorityRow

	if err := base().Select("priority, COUNT(*) as count").
		Group("priority").
		Scan(&priorityRows).Error; err != nil {
		return nil, err
	}

	for _, row := range priorityRows {
		stats.ByPriority[row.Priority] = row.Count
	}

	now := time.Now()

	if err := base().Where("due_date < ? AND status <> ?", now, types.StatusDone).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	if err := base().Where("due_date >= ? AND due_date < ? AND status <> ?", startOfDay, endOfDay, types.StatusDone).
		Count(&stats.DueToday).Error; err != nil {
		return nil, err
	}

	weekAgo := now.AddDate(0, 0, -7)

	if err := base().Where("completed_at >= ?", weekAgo).
		Count(&stats.CompletedLast7).Error; err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.ByStatus[types.StatusDone]) / float64(stats.Total)
	}

	return stats, nil
}

// GenerateAISubtasks asks the model for subtasks and persists them as
// AI-generated children of the parent, all or nothing.
func GenerateAISubtasks(ctx context.Context, database *gorm.DB, aiSvc *ai.Service, userID, todoID uint, count, maxDepth int) ([]models.Todo, error) {
	settings, err := GetSettings(database, userID)

	if err != nil {
		return nil, err
	}

	if !settings.AISuggestionsEnabled {
		return nil, apperrors.Operation("AI_SUGGESTIONS_DISABLED", "AI suggestions are disabled in your settings")
	}

	parent, err := getOwnedTodo(database, userID, todoID)

	if err != nil {
		return nil, err
	}

	parentDepth, err := TodoDepth(database, parent)

	if err != nil {
		return nil, err
	}

	if parentDepth+1 > maxDepth {
		return nil, depthExceeded(maxDepth)
	}

	suggestions, err := aiSvc.GenerateSubtasks(ctx, database, parent, count)

	if err != nil {
		return nil, err
	}

	parentID := parent.ID
	created := make([]models.Todo, 0, len(suggestions))

	err = database.Transaction(func(tx *gorm.DB) error {
		for _, suggestion := range suggestions {
			todo, createErr := CreateTodo(tx, userID, CreateTodoInput{
				Title:        suggestion.Title,
				Description:  suggestion.Description,
				Priority:     suggestion.Priority,
				ParentTodoID: &parentID,
				AIGenerated:  true,
			}, maxDepth)

			if createErr != nil {
				return createErr
			}

			created = append(created, *todo)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}
