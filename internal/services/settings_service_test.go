package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/models"
)

func TestGetSettings_CreatesDefaultsOnce(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	settings, err := GetSettings(database, user.ID)

	require.NoError(t, err)
	assert.Equal(t, "system", settings.Theme)
	assert.Equal(t, "en", settings.Locale)
	assert.Equal(t, "UTC", settings.Timezone)
	assert.True(t, settings.EmailRemindersEnabled)
	assert.True(t, settings.AISuggestionsEnabled)
	assert.Equal(t, 9, settings.ReminderHourUTC)

	again, err := GetSettings(database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)

	var count int64
	require.NoError(t, database.Model(&models.UserSettings{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateSettings_PartialUpdate(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	updated, err := UpdateSettings(database, user.ID, UpdateSettingsInput{
		Theme:           strPtr("dark"),
		ReminderHourUTC: intPtr(7),
	})

	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Theme)
	assert.Equal(t, 7, updated.ReminderHourUTC)

	// Untouched fields keep their defaults.
	assert.Equal(t, "en", updated.Locale)
	assert.True(t, updated.EmailRemindersEnabled)
}

func TestUpdateSettings_RejectsBadHour(t *testing.T) {
	database := setupTestDB(t)
	user := createTestUser(t, database, "alice")

	_, err := UpdateSettings(database, user.ID, UpdateSettingsInput{ReminderHourUTC: intPtr(24)})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "between 0 and 23")
}
