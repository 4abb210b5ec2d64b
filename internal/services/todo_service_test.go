package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive-dev/taskhive/internal/ai"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestCreateTodo_Defaults(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	todo, err := CreateTodo(database, user.ID, CreateTodoInput{Title: "  Buy milk  "}, 5)

	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, types.StatusTodo, todo.Status)
	assert.Equal(t, types.PriorityDefault, todo.Priority)
	assert.Nil(t, todo.ParentTodoID)
	assert.Nil(t, todo.CompletedAt)
}

func TestCreateTodo_Validation(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	cases := []struct {
		name  string
		input CreateTodoInput
	}{
		{"empty title", CreateTodoInput{Title: "   "}},
		{"bad status", CreateTodoInput{Title: "x", Status: "paused"}},
		{"priority too high", CreateTodoInput{Title: "x", Priority: 6}},
		{"priority too low", CreateTodoInput{Title: "x", Priority: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateTodo(database, user.ID, tc.input, 5)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestCreateTodo_DoneStampsCompletedAt(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	todo, err := CreateTodo(database, user.ID, CreateTodoInput{Title: "Ship it", Status: types.StatusDone}, 5)

	require.NoError(t, err)
	require.NotNil(t, todo.CompletedAt)
	assert.WithinDuration(t, time.Now(), *todo.CompletedAt, time.Minute)
}

func TestCreateTodo_DepthLimit(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	parent := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "level 1"}, 5)

	// Chain down to the limit, then one more level must fail.
	for level := 2; level <= 5; level++ {
		parent = mustCreateTodo(t, database, user.ID, CreateTodoInput{
			Title:        "child",
			ParentTodoID: &parent.ID,
		}, 5)
	}

	_, err := CreateTodo(database, user.ID, CreateTodoInput{
		Title:        "too deep",
		ParentTodoID: &parent.ID,
	}, 5)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TODO_DEPTH_EXCEEDED", appErr.Code)
	assert.Equal(t, 5, appErr.Details["max_depth"])
}

func TestCreateTodo_ForeignOwnershipRejected(t *testing.T) {
	database := setupTestDB(t)
	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")

	project, err := CreateProject(database, alice.ID, "Alice's project", "", "")
	require.NoError(t, err)

	todo := mustCreateTodo(t, database, alice.ID, CreateTodoInput{Title: "Alice's todo"}, 5)

	_, err = CreateTodo(database, bob.ID, CreateTodoInput{Title: "x", ProjectID: &project.ID}, 5)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	_, err = CreateTodo(database, bob.ID, CreateTodoInput{Title: "x", ParentTodoID: &todo.ID}, 5)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUpdateTodo_StatusTransitions(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	todo := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "Write report"}, 5)

	done, err := UpdateTodo(database, user.ID, todo.ID, UpdateTodoInput{Status: strPtr(types.StatusDone)}, 5)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	// Reopening clears the completion timestamp again.
	reopened, err := UpdateTodo(database, user.ID, todo.ID, UpdateTodoInput{Status: strPtr(types.StatusInProgress)}, 5)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)
}

func TestUpdateTodo_ClearsAssociations(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	project, err := CreateProject(database, user.ID, "Work", "", "")
	require.NoError(t, err)

	due := time.Now().Add(48 * time.Hour)
	todo := mustCreateTodo(t, database, user.ID, CreateTodoInput{
		Title:     "Prepare slides",
		ProjectID: &project.ID,
		DueDate:   &due,
	}, 5)

	updated, err := UpdateTodo(database, user.ID, todo.ID, UpdateTodoInput{
		ProjectID:    uintPtr(0),
		ClearDueDate: true,
	}, 5)

	require.NoError(t, err)
	assert.Nil(t, updated.ProjectID)
	assert.Nil(t, updated.DueDate)
}

func TestUpdateTodo_ReparentRejectsCycles(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	root := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "root"}, 5)
	child := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "child", ParentTodoID: &root.ID}, 5)
	grandchild := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "grandchild", ParentTodoID: &child.ID}, 5)

	_, err := UpdateTodo(database, user.ID, root.ID, UpdateTodoInput{ParentTodoID: &root.ID}, 5)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = UpdateTodo(database, user.ID, root.ID, UpdateTodoInput{ParentTodoID: &grandchild.ID}, 5)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "own subtask")
}

func TestUpdateTodo_ReparentRespectsDepth(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	// A parent sitting at depth 2 and a detached subtree two levels high:
	// attaching would need depth 4, so a limit of 3 must reject the move.
	top := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "top"}, 3)
	anchor := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "anchor", ParentTodoID: &top.ID}, 3)

	movingRoot := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "moving"}, 3)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "moving child", ParentTodoID: &movingRoot.ID}, 3)

	_, err := UpdateTodo(database, user.ID, movingRoot.ID, UpdateTodoInput{ParentTodoID: &anchor.ID}, 3)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TODO_DEPTH_EXCEEDED", appErr.Code)

	// One level shallower fits.
	_, err = UpdateTodo(database, user.ID, movingRoot.ID, UpdateTodoInput{ParentTodoID: &top.ID}, 3)
	assert.NoError(t, err)
}

func TestDeleteTodo_RemovesSubtree(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	root := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "root"}, 5)
	child := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "child", ParentTodoID: &root.ID}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "grandchild", ParentTodoID: &child.ID}, 5)
	survivor := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "unrelated"}, 5)

	require.NoError(t, DeleteTodo(database, user.ID, root.ID))

	var remaining []models.Todo
	require.NoError(t, database.Where("user_id = ?", user.ID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, survivor.ID, remaining[0].ID)
}

func TestListTodos_Filters(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	project, err := CreateProject(database, user.ID, "Work", "", "")
	require.NoError(t, err)

	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "Email the team", ProjectID: &project.ID}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "Water plants"}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "File taxes", Status: types.StatusDone}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "Generated one", AIGenerated: true}, 5)

	page, err := ListTodos(database, user.ID, TodoFilters{Status: types.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = ListTodos(database, user.ID, TodoFilters{ProjectID: "none"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = ListTodos(database, user.ID, TodoFilters{Search: "WATER"})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Water plants", page.Items.([]models.Todo)[0].Title)

	page, err = ListTodos(database, user.ID, TodoFilters{AIGenerated: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = ListTodos(database, user.ID, TodoFilters{Status: "bogus"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestListTodos_Pagination(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	for i := 0; i < 25; i++ {
		mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "task"}, 5)
	}

	page, err := ListTodos(database, user.ID, TodoFilters{Page: 3, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.PageNum)
	assert.Equal(t, 3, page.Pages)
	assert.Len(t, page.Items.([]models.Todo), 5)
}

func TestGetTodoStats(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	overdue := time.Now().Add(-48 * time.Hour)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "late", DueDate: &overdue}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "open", Priority: 5}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "finished", Status: types.StatusDone}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "also done", Status: types.StatusDone}, 5)

	stats, err := GetTodoStats(database, user.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus[types.StatusDone])
	assert.Equal(t, int64(2), stats.ByStatus[types.StatusTodo])
	assert.Equal(t, int64(1), stats.ByPriority[5])
	assert.Equal(t, int64(1), stats.Overdue)
	assert.Equal(t, int64(2), stats.CompletedLast7)
	assert.InDelta(t, 0.5, stats.CompletionRate, 0.001)
}

func TestGetSubtasks_RequiresOwnership(t *testing.T) {
	database := setupTestDB(t)
	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")

	root := mustCreateTodo(t, database, alice.ID, CreateTodoInput{Title: "root"}, 5)
	mustCreateTodo(t, database, alice.ID, CreateTodoInput{Title: "child", ParentTodoID: &root.ID}, 5)

	subtasks, err := GetSubtasks(database, alice.ID, root.ID)
	require.NoError(t, err)
	assert.Len(t, subtasks, 1)

	_, err = GetSubtasks(database, bob.ID, root.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestGenerateAISubtasks_DisabledInSettings(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	todo := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "Plan trip"}, 5)

	_, err := UpdateSettings(database, user.ID, UpdateSettingsInput{AISuggestionsEnabled: boolPtr(false)})
	require.NoError(t, err)

	_, err = GenerateAISubtasks(context.Background(), database, ai.NewService(&config.Config{}), user.ID, todo.ID, 5, 5)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AI_SUGGESTIONS_DISABLED", appErr.Code)
}

func TestGenerateAISubtasks_DepthGateBeforeModelCall(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	parent := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "level 1"}, 2)
	leaf := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "level 2", ParentTodoID: &parent.ID}, 2)

	// The depth check fires before the provider is consulted, so an
	// unconfigured service never gets the chance to fail first.
	_, err := GenerateAISubtasks(context.Background(), database, ai.NewService(&config.Config{}), user.ID, leaf.ID, 5, 2)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TODO_DEPTH_EXCEEDED", appErr.Code)
}
