package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type SettingsSummary struct {
	Theme                 string `json:"theme"`
	Locale                string `json:"locale"`
	Timezone              string `json:"timezone"`
	EmailRemindersEnabled bool   `json:"email_reminders_enabled"`
	AISuggestionsEnabled  bool   `json:"ai_suggestions_enabled"`
	ReminderHourUTC       int    `json:"reminder_hour_utc"`
}

func newSettingsSummary(settings models.UserSettings) SettingsSummary {
	return SettingsSummary{
		Theme:                 settings.Theme,
		Locale:                settings.Locale,
		Timezone:              settings.Timezone,
		EmailRemindersEnabled: settings.EmailRemindersEnabled,
		AISuggestionsEnabled:  settings.AISuggestionsEnabled,
		ReminderHourUTC:       settings.ReminderHourUTC,
	}
}

func GetSettings(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	settings, err := services.GetSettings(db.DB, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Settings retrieved successfully", gin.H{
		"settings": newSettingsSummary(*settings),
	}))
}

func UpdateSettings(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondUnauthenticated(ctx)
		return
	}

	var body services.UpdateSettingsInput

	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondInvalid(ctx, err)
		return
	}

	settings, err := services.UpdateSettings(db.DB, userID, body)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.Success("Settings updated successfully", gin.H{
		"settings": newSettingsSummary(*settings),
	}))
}
