package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// The archive moves whole subtrees between the active todos table and
// archived_todos. Parent links in the archive reference original ids, so a
// subtree survives the round trip even though restored rows get fresh ids.

func getOwnedArchived(database *gorm.DB, userID, archivedID uint) (*models.ArchivedTodo, error) {
	var archived models.ArchivedTodo

	if err := database.Where("id = ? AND user_id = ?", archivedID, userID).First(&archived).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Archived todo")
		}

		return nil, err
	}

	return &archived, nil
}

// collectArchivedSubtree walks the archive by original ids, breadth first,
// returning the root's row followed by its descendants.
func collectArchivedSubtree(database *gorm.DB, userID uint, root *models.ArchivedTodo) ([]models.ArchivedTodo, error) {
	subtree := []models.ArchivedTodo{*root}
	frontier := []uint{root.OriginalID}

	for len(frontier) > 0 {
		var children []models.ArchivedTodo

		if err := database.Where("user_id = ? AND parent_todo_id IN ?", userID, frontier).
			Find(&children).Error; err != nil {
			return nil, err
		}

		if len(children) == 0 {
			break
		}

		subtree = append(subtree, children...)

		frontier = frontier[:0]
		for _, child := range children {
			frontier = append(frontier, child.OriginalID)
		}
	}

	return subtree, nil
}

// ArchiveTodo moves a done todo and its whole subtree into the archive in
// one transaction.
func ArchiveTodo(database *gorm.DB, userID, todoID uint) (int, error) {
	todo, err := getOwnedTodo(database, userID, todoID)

	if err != nil {
		return 0, err
	}

	if todo.Status != types.StatusDone {
		return 0, apperrors.Operation("TODO_NOT_DONE", "Only done todos can be archived")
	}

	ids, err := collectSubtreeIDs(database, userID, todo.ID)

	if err != nil {
		return 0, err
	}

	var subtree []models.Todo

	if err := database.Where("id IN ?", ids).Find(&subtree).Error; err != nil {
		return 0, err
	}

	archivedAt := time.Now()
	archived := make([]models.ArchivedTodo, 0, len(subtree))

	for _, item := range subtree {
		archived = append(archived, models.ArchivedTodo{
			OriginalID:   item.ID,
			UserID:       item.UserID,
			ProjectID:    item.ProjectID,
			ParentTodoID: item.ParentTodoID,
			Title:        item.Title,
			Description:  item.Description,
			Status:       item.Status,
			Priority:     item.Priority,
			DueDate:      item.DueDate,
			CompletedAt:  item.CompletedAt,
			AIGenerated:  item.AIGenerated,
			ArchivedAt:   archivedAt,
		})
	}

	err = database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archived).Error; err != nil {
			return err
		}

		return tx.Unscoped().Where("id IN ?", ids).Delete(&models.Todo{}).Error
	})

	if err != nil {
		return 0, err
	}

	return len(archived), nil
}

func ListArchived(database *gorm.DB, userID uint, page, pageSize int) (*types.Page, error) {
	query := database.Model(&models.ArchivedTodo{}).Where("user_id = ?", userID)

	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize = clampPage(page, pageSize)

	var archived []models.ArchivedTodo

	if err := query.Order("archived_at DESC, id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&archived).Error; err != nil {
		return nil, err
	}

	result := types.NewPage(archived, total, page, pageSize)

	return &result, nil
}

// RestoreTodo moves an archived subtree back into the active table. The
// root reattaches to its original parent when that todo still exists, and
// becomes a root todo otherwise. Depth is re-validated against this
// service's own limit, which is deeper than the primary one.
func RestoreTodo(database *gorm.DB, userID, archivedID uint, maxDepth int) (*models.Todo, error) {
	root, err := getOwnedArchived(database, userID, archivedID)

	if err != nil {
		return nil, err
	}

	subtree, err := collectArchivedSubtree(database, userID, root)

	if err != nil {
		return nil, err
	}

	attachDepth := 0
	var attachParentID *uint

	if root.ParentTodoID != nil {
		var parent models.Todo

		err := database.Where("id = ? AND user_id = ?", *root.ParentTodoID, userID).First(&parent).Error

		switch {
		case err == nil:
			parentDepth, depthErr := TodoDepth(database, &parent)

			if depthErr != nil {
				return nil, depthErr
			}

			attachDepth = parentDepth
			parentID := parent.ID
			attachParentID = &parentID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Original parent is gone; the restored root becomes a root.
		default:
			return nil, err
		}
	}

	height := archivedSubtreeHeight(subtree, root.OriginalID)

	if attachDepth+height > maxDepth {
		return nil, depthExceeded(maxDepth)
	}

	var restoredRoot models.Todo

	err = database.Transaction(func(tx *gorm.DB) error {
		// Insert level by level so children can reference their parent's
		// fresh id.
		newIDs := map[uint]uint{}
		pending := subtree

		for len(pending) > 0 {
			var next []models.ArchivedTodo
			progressed := false

			for _, item := range pending {
				var parentID *uint

				if item.ID == root.ID {
					parentID = attachParentID
				} else if item.ParentTodoID != nil {
					mapped, ok := newIDs[*item.ParentTodoID]

					if !ok {
						next = append(next, item)
						continue
					}

					parentID = &mapped
				}

				todo := models.Todo{
					UserID:       item.UserID,
					ProjectID:    restorableProject(tx, userID, item.ProjectID),
					ParentTodoID: parentID,
					Title:        item.Title,
					Description:  item.Description,
					Status:       item.Status,
					Priority:     item.Priority,
					DueDate:      item.DueDate,
					CompletedAt:  item.CompletedAt,
					AIGenerated:  item.AIGenerated,
				}

				if err := tx.Create(&todo).Error; err != nil {
					return err
				}

				newIDs[item.OriginalID] = todo.ID
				progressed = true

				if item.ID == root.ID {
					restoredRoot = todo
				}
			}

			if !progressed && len(next) > 0 {
				// Orphaned archive rows whose parent never made it into the
				// subtree; attach them at the restored root.
				for _, item := range next {
					todo := models.Todo{
						UserID:       item.UserID,
						ProjectID:    restorableProject(tx, userID, item.ProjectID),
						ParentTodoID: &restoredRoot.ID,
						Title:        item.Title,
						Description:  item.Description,
						Status:       item.Status,
						Priority:     item.Priority,
						DueDate:      item.DueDate,
						CompletedAt:  item.CompletedAt,
						AIGenerated:  item.AIGenerated,
					}

					if err := tx.Create(&todo).Error; err != nil {
						return err
					}

					newIDs[item.OriginalID] = todo.ID
				}

				next = nil
			}

			pending = next
		}

		archivedIDs := make([]uint, 0, len(subtree))
		for _, item := range subtree {
			archivedIDs = append(archivedIDs, item.ID)
		}

		return tx.Unscoped().Where("id IN ?", archivedIDs).Delete(&models.ArchivedTodo{}).Error
	})

	if err != nil {
		return nil, err
	}

	return &restoredRoot, nil
}

// restorableProject keeps the project assignment only when the project
// still exists for this user.
func restorableProject(database *gorm.DB, userID uint, projectID *uint) *uint {
	if projectID == nil {
		return nil
	}

	var count int64

	if err := database.Model(&models.Project{}).
		Where("id = ? AND user_id = ?", *projectID, userID).
		Count(&count).Error; err != nil || count == 0 {
		return nil
	}

	return projectID
}

// archivedSubtreeHeight counts levels in the in-memory subtree rows.
func archivedSubtreeHeight(subtree []models.ArchivedTodo, rootOriginalID uint) int {
	children := map[uint][]uint{}

	for _, item := range subtree {
		if item.OriginalID == rootOriginalID {
			continue
		}

		if item.ParentTodoID != nil {
			children[*item.ParentTodoID] = append(children[*item.ParentTodoID], item.OriginalID)
		}
	}

	height := 1
	frontier := children[rootOriginalID]

	for len(frontier) > 0 {
		height++

		var next []uint
		for _, id := range frontier {
			next = append(next, children[id]...)
		}

		frontier = next
	}

	return height
}

// DeleteArchived permanently removes an archived subtree.
func DeleteArchived(database *gorm.DB, userID, archivedID uint) error {
	root, err := getOwnedArchived(database, userID, archivedID)

	if err != nil {
		return err
	}

	subtree, err := collectArchivedSubtree(database, userID, root)

	if err != nil {
		return err
	}

	ids := make([]uint, 0, len(subtree))
	for _, item := range subtree {
		ids = append(ids, item.ID)
	}

	return database.Unscoped().Where("id IN ?", ids).Delete(&models.ArchivedTodo{}).Error
}

// PurgeArchived permanently removes archive rows older than the cutoff,
// across all users. Subtrees share one ArchivedAt so they age out together.
func PurgeArchived(database *gorm.DB, cutoff time.Time) (int64, error) {
	result := database.Unscoped().
		Where("archived_at < ?", cutoff).
		Delete(&models.ArchivedTodo{})

	return result.RowsAffected, result.Error
}
