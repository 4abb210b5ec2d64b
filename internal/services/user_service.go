package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/models"
)

// FindOrCreateUser resolves a token identity to a local user row,
// provisioning one (with default settings) the first time this subject is
// seen.
func FindOrCreateUser(database *gorm.DB, identity *auth.Identity) (*models.User, error) {
	var user models.User

	err := database.Where("external_id = ?", identity.ExternalID).First(&user).Error

	if err == nil {
		return &user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		ExternalID: identity.ExternalID,
		Email:      identity.Email,
		Username:   identity.Username,
		IsActive:   true,
	}

	if user.Username == "" {
		user.Username = identity.ExternalID
	}

	createErr := database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		settings := defaultSettings(user.ID)

		return tx.Create(&settings).Error
	})

	if createErr != nil {
		// Two concurrent first requests race on the unique index; the row
		// exists now either way.
		if lookupErr := database.Where("external_id = ?", identity.ExternalID).First(&user).Error; lookupErr == nil {
			return &user, nil
		}

		return nil, createErr
	}

	return &user, nil
}

func GetUser(database *gorm.DB, userID uint) (*models.User, error) {
	var user models.User

	if err := database.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User")
		}

		return nil, err
	}

	return &user, nil
}

// SyncUser refreshes the local email and username from fresh token claims.
func SyncUser(database *gorm.DB, identity *auth.Identity) (*models.User, error) {
	var user models.User

	if err := database.Where("external_id = ?", identity.ExternalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User")
		}

		return nil, err
	}

	updates := map[string]interface{}{}

	if identity.Email != "" && identity.Email != user.Email {
		updates["email"] = identity.Email
	}

	if identity.Username != "" && identity.Username != user.Username {
		updates["username"] = identity.Username
	}

	if len(updates) > 0 {
		if err := database.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &user, nil
}

// DeleteUser permanently removes the account and everything it owns. The
// deletes run leaf-first inside one transaction so foreign keys hold even on
// databases that do not enforce the declared cascades.
func DeleteUser(database *gorm.DB, userID uint) error {
	return database.Transaction(func(tx *gorm.DB) error {
		var conversationIDs []uint

		if err := tx.Model(&models.ChatConversation{}).
			Where("user_id = ?", userID).
			Pluck("id", &conversationIDs).Error; err != nil {
			return err
		}

		if len(conversationIDs) > 0 {
			if err := tx.Unscoped().
				Where("conversation_id IN ?", conversationIDs).
				Delete(&models.ChatMessage{}).Error; err != nil {
				return err
			}
		}

		owned := []interface{}{
			&models.ChatConversation{},
			&models.AIInteraction{},
			&models.ArchivedTodo{},
			&models.Todo{},
			&models.Project{},
			&models.UserSettings{},
		}

		for _, model := range owned {
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Unscoped().Delete(&models.User{}, userID).Error
	})
}
