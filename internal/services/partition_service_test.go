package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func TestArchiveTodo_RequiresDone(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	todo := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "still open"}, 5)

	_, err := ArchiveTodo(database, user.ID, todo.ID)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TODO_NOT_DONE", appErr.Code)
}

func TestArchiveTodo_MovesWholeSubtree(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	root := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "root", Status: types.StatusDone}, 5)
	child := mustCreateTodo(t, database, user.ID, CreateTodoInput{
		Title:        "child",
		Status:       types.StatusInProgress,
		ParentTodoID: &root.ID,
	}, 5)

	count, err := ArchiveTodo(database, user.ID, root.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Originals are gone for good, not soft deleted.
	var remaining int64
	require.NoError(t, database.Unscoped().Model(&models.Todo{}).Where("user_id = ?", user.ID).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	var archived []models.ArchivedTodo
	require.NoError(t, database.Where("user_id = ?", user.ID).Order("original_id ASC").Find(&archived).Error)
	require.Len(t, archived, 2)

	assert.Equal(t, root.ID, archived[0].OriginalID)
	assert.Nil(t, archived[0].ParentTodoID)
	assert.Equal(t, child.ID, archived[1].OriginalID)
	require.NotNil(t, archived[1].ParentTodoID)
	assert.Equal(t, root.ID, *archived[1].ParentTodoID)

	// The subtree shares one archival timestamp so it ages out together.
	assert.True(t, archived[0].ArchivedAt.Equal(archived[1].ArchivedAt))
}

func TestRestoreTodo_RoundTrip(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	root := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "root", Status: types.StatusDone}, 5)
	child := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "child", Status: types.StatusDone, ParentTodoID: &root.ID}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "grandchild", Status: types.StatusDone, ParentTodoID: &child.ID}, 5)

	_, err := ArchiveTodo(database, user.ID, root.ID)
	require.NoError(t, err)

	var archivedRoot models.ArchivedTodo
	require.NoError(t, database.Where("user_id = ? AND parent_todo_id IS NULL", user.ID).First(&archivedRoot).Error)

	restored, err := RestoreTodo(database, user.ID, archivedRoot.ID, 10)

	require.NoError(t, err)
	assert.Equal(t, "root", restored.Title)
	assert.Nil(t, restored.ParentTodoID)
	require.NotNil(t, restored.CompletedAt)

	var todos []models.Todo
	require.NoError(t, database.Where("user_id = ?", user.ID).Find(&todos).Error)
	require.Len(t, todos, 3)

	byTitle := map[string]models.Todo{}
	for _, todo := range todos {
		byTitle[todo.Title] = todo
	}

	// The hierarchy is rebuilt on fresh ids.
	require.NotNil(t, byTitle["child"].ParentTodoID)
	assert.Equal(t, byTitle["root"].ID, *byTitle["child"].ParentTodoID)
	require.NotNil(t, byTitle["grandchild"].ParentTodoID)
	assert.Equal(t, byTitle["child"].ID, *byTitle["grandchild"].ParentTodoID)

	var archivedLeft int64
	require.NoError(t, database.Unscoped().Model(&models.ArchivedTodo{}).Count(&archivedLeft).Error)
	assert.Equal(t, int64(0), archivedLeft)
}

func TestRestoreTodo_MissingParentBecomesRoot(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	parent := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "parent"}, 5)
	child := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "child", Status: types.StatusDone, ParentTodoID: &parent.ID}, 5)

	_, err := ArchiveTodo(database, user.ID, child.ID)
	require.NoError(t, err)

	require.NoError(t, DeleteTodo(database, user.ID, parent.ID))

	var archivedChild models.ArchivedTodo
	require.NoError(t, database.Where("user_id = ?", user.ID).First(&archivedChild).Error)

	restored, err := RestoreTodo(database, user.ID, archivedChild.ID, 10)

	require.NoError(t, err)
	assert.Nil(t, restored.ParentTodoID)
}

func TestRestoreTodo_RevalidatesDepth(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	top := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "top"}, 5)
	middle := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "middle", ParentTodoID: &top.ID}, 5)
	leaf := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "leaf", Status: types.StatusDone, ParentTodoID: &middle.ID}, 5)

	_, err := ArchiveTodo(database, user.ID, leaf.ID)
	require.NoError(t, err)

	var archivedLeaf models.ArchivedTodo
	require.NoError(t, database.Where("user_id = ?", user.ID).First(&archivedLeaf).Error)

	// Reattaching under the depth-2 parent needs depth 3.
	_, err = RestoreTodo(database, user.ID, archivedLeaf.ID, 2)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TODO_DEPTH_EXCEEDED", appErr.Code)

	_, err = RestoreTodo(database, user.ID, archivedLeaf.ID, 3)
	assert.NoError(t, err)
}

func TestRestoreTodo_DeletedProjectUnassigns(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	project, err := CreateProject(database, user.ID, "Doomed", "", "")
	require.NoError(t, err)

	todo := mustCreateTodo(t, database, user.ID, CreateTodoInput{
		Title:     "was assigned",
		Status:    types.StatusDone,
		ProjectID: &project.ID,
	}, 5)

	_, err = ArchiveTodo(database, user.ID, todo.ID)
	require.NoError(t, err)

	require.NoError(t, DeleteProject(database, user.ID, project.ID))

	var archived models.ArchivedTodo
	require.NoError(t, database.Where("user_id = ?", user.ID).First(&archived).Error)

	restored, err := RestoreTodo(database, user.ID, archived.ID, 10)

	require.NoError(t, err)
	assert.Nil(t, restored.ProjectID)
}

func TestDeleteArchived_RemovesSubtree(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	root := mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "root", Status: types.StatusDone}, 5)
	mustCreateTodo(t, database, user.ID, CreateTodoInput{Title: "child", Status: types.StatusDone, ParentTodoID: &root.ID}, 5)

	_, err := ArchiveTodo(database, user.ID, root.ID)
	require.NoError(t, err)

	var archivedRoot models.ArchivedTodo
	require.NoError(t, database.Where("user_id = ? AND parent_todo_id IS NULL", user.ID).First(&archivedRoot).Error)

	require.NoError(t, DeleteArchived(database, user.ID, archivedRoot.ID))

	var left int64
	require.NoError(t, database.Unscoped().Model(&models.ArchivedTodo{}).Count(&left).Error)
	assert.Equal(t, int64(0), left)
}

func TestPurgeArchived_RespectsCutoff(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	old := models.ArchivedTodo{
		UserID:     user.ID,
		OriginalID: 101,
		Title:      "ancient",
		Status:     types.StatusDone,
		Priority:   3,
		ArchivedAt: time.Now().AddDate(0, 0, -120),
	}
	fresh := models.ArchivedTodo{
		UserID:     user.ID,
		OriginalID: 102,
		Title:      "recent",
		Status:     types.StatusDone,
		Priority:   3,
		ArchivedAt: time.Now().AddDate(0, 0, -5),
	}
	require.NoError(t, database.Create(&old).Error)
	require.NoError(t, database.Create(&fresh).Error)

	purged, err := PurgeArchived(database, time.Now().AddDate(0, 0, -90))

	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var remaining []models.ArchivedTodo
	require.NoError(t, database.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Title)
}
