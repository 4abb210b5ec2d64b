package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func defaultSettings(userID uint) models.UserSettings {
	return models.UserSettings{
		UserID:                userID,
		Theme:                 "system",
		Locale:                "en",
		Timezone:              "UTC",
		EmailRemindersEnabled: true,
		AISuggestionsEnabled:  true,
		ReminderHourUTC:       9,
	}
}

// GetSettings returns the user's settings row, creating the defaults on
// first access.
func GetSettings(database *gorm.DB, userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings

	err := database.Where("user_id = ?", userID).First(&settings).Error

	if err == nil {
		return &settings, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = defaultSettings(userID)

	if createErr := database.Create(&settings).Error; createErr != nil {
		// Lost a race with a concurrent first access.
		if lookupErr := database.Where("user_id = ?", userID).First(&settings).Error; lookupErr == nil {
			return &settings, nil
		}

		return nil, createErr
	}

	return &settings, nil
}

type UpdateSettingsInput struct {
	Theme                 *string `json:"theme"`
	Locale                *string `json:"locale"`
	Timezone              *string `json:"timezone"`
	EmailRemindersEnabled *bool   `json:"email_reminders_enabled"`
	AISuggestionsEnabled  *bool   `json:"ai_suggestions_enabled"`
	ReminderHourUTC       *int    `json:"reminder_hour_utc"`
}

// UpdateSettings applies the non-nil fields. The row is created first if the
// user never touched their settings before.
func UpdateSettings(database *gorm.DB, userID uint, input UpdateSettingsInput) (*models.UserSettings, error) {
	settings, err := GetSettings(database, userID)

	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Theme != nil {
		updates["theme"] = *input.Theme
	}

	if input.Locale != nil {
		updates["locale"] = *input.Locale
	}

	if input.Timezone != nil {
		updates["timezone"] = *input.Timezone
	}

	if input.EmailRemindersEnabled != nil {
		updates["email_reminders_enabled"] = *input.EmailRemindersEnabled
	}

	if input.AISuggestionsEnabled != nil {
		updates["ai_suggestions_enabled"] = *input.AISuggestionsEnabled
	}

	if input.ReminderHourUTC != nil {
		if *input.ReminderHourUTC < 0 || *input.ReminderHourUTC > 23 {
			return nil, apperrors.Validation(fmt.Sprintf("Reminder hour must be between 0 and 23, got %d", *input.ReminderHourUTC))
		}

		updates["reminder_hour_utc"] = *input.ReminderHourUTC
	}

	if len(updates) == 0 {
		return settings, nil
	}

	if err := database.Model(settings).Updates(updates).Error; err != nil {
		return nil, err
	}

	return settings, nil
}
