package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
)

// ProjectWithCount is a project row plus how many todos are assigned to it.
type ProjectWithCount struct {
	models.Project
	TodoCount int64 `json:"todo_count"`
}

func ensureProjectOwned(database *gorm.DB, userID, projectID uint) (*models.Project, error) {
	var project models.Project

	if err := database.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project")
		}

		return nil, err
	}

	return &project, nil
}

// CreateProject inserts a project. Names are unique per user; the same name
// is fine across users.
func CreateProject(database *gorm.DB, userID uint, name, description, color string) (*models.Project, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return nil, apperrors.Validation("Project name is required")
	}

	var count int64

	if err := database.Model(&models.Project{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, apperrors.Validation("A project with this name already exists")
	}

	project := models.Project{
		UserID:      userID,
		Name:        name,
		Description: description,
		Color:       color,
	}

	if err := database.Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func ListProjects(database *gorm.DB, userID uint) ([]ProjectWithCount, error) {
	var projects []models.Project

	if err := database.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		ProjectID uint
		Count     int64
	}

	var rows []countRow

	if err := database.Model(&models.Todo{}).
		Select("project_id, COUNT(*) as count").
		Where("user_id = ? AND project_id IS NOT NULL", userID).
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))

	for _, row := range rows {
		counts[row.ProjectID] = row.Count
	}

	result := make([]ProjectWithCount, 0, len(projects))

	for _, project := range projects {
		result = append(result, ProjectWithCount{
			Project:   project,
			TodoCount: counts[project.ID],
		})
	}

	return result, nil
}

func GetProject(database *gorm.DB, userID, projectID uint) (*ProjectWithCount, error) {
	project, err := ensureProjectOwned(database, userID, projectID)

	if err != nil {
		return nil, err
	}

	var count int64

	if err := database.Model(&models.Todo{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error; err != nil {
		return nil, err
	}

	return &ProjectWithCount{Project: *project, TodoCount: count}, nil
}

type UpdateProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func UpdateProject(database *gorm.DB, userID, projectID uint, input UpdateProjectInput) (*models.Project, error) {
	project, err := ensureProjectOwned(database, userID, projectID)

	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)

		if name == "" {
			return nil, apperrors.Validation("Project name cannot be empty")
		}

		if name != project.Name {
			var count int64

			if err := database.Model(&models.Project{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, name, projectID).
				Count(&count).Error; err != nil {
				return nil, err
			}

			if count > 0 {
				return nil, apperrors.Validation("A project with this name already exists")
			}

			updates["name"] = name
		}
	}

	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if input.Color != nil {
		updates["color"] = *input.Color
	}

	if len(updates) == 0 {
		return project, nil
	}

	if err := database.Model(project).Updates(updates).Error; err != nil {
		return nil, err
	}

	return project, nil
}

// DeleteProject removes the project and unassigns its todos. The todos
// themselves are never deleted here.
func DeleteProject(database *gorm.DB, userID, projectID uint) error {
	project, err := ensureProjectOwned(database, userID, projectID)

	if err != nil {
		return err
	}

	return database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Todo{}).
			Where("project_id = ?", project.ID).
			Update("project_id", nil).Error; err != nil {
			return err
		}

		// Hard delete so the (user_id, name) unique index frees the name.
		return tx.Unscoped().Delete(project).Error
	})
}
