package services

import (
	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

// ListAIInteractions pages through the caller's prompt/response log, newest
// first.
func ListAIInteractions(database *gorm.DB, userID uint, page, pageSize int) (*types.Page, error) {
	query := database.Model(&models.AIInteraction{}).Where("user_id = ?", userID)

	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize = clampPage(page, pageSize)

	var interactions []models.AIInteraction

	if err := query.Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&interactions).Error; err != nil {
		return nil, err
	}

	result := types.NewPage(interactions, total, page, pageSize)

	return &result, nil
}
