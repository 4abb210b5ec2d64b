package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

const pendingReminderLimit = 10

// ReminderDigest is what one reminder email for one user is built from.
type ReminderDigest struct {
	User     models.User         `json:"-"`
	Settings models.UserSettings `json:"-"`
	DueSoon  []models.Todo       `json:"due_soon"`
	Pending  []models.Todo       `json:"pending"`
}

func (d *ReminderDigest) Empty() bool {
	return len(d.DueSoon) == 0 && len(d.Pending) == 0
}

// BuildReminderDigest gathers what the daily reminder for one user would
// contain: open todos due within the next 24 hours plus the oldest open
// todos, capped.
func BuildReminderDigest(database *gorm.DB, userID uint) (*ReminderDigest, error) {
	user, err := GetUser(database, userID)

	if err != nil {
		return nil, err
	}

	settings, err := GetSettings(database, userID)

	if err != nil {
		return nil, err
	}

	now := time.Now()
	horizon := now.Add(24 * time.Hour)

	var dueSoon []models.Todo

	if err := database.Where(
		"user_id = ? AND status <> ? AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?",
		userID, types.StatusDone, now, horizon,
	).Order("due_date ASC").Find(&dueSoon).Error; err != nil {
		return nil, err
	}

	var pending []models.Todo

	if err := database.Where("user_id = ? AND status <> ?", userID, types.StatusDone).
		Order("created_at ASC").
		Limit(pendingReminderLimit).
		Find(&pending).Error; err != nil {
		return nil, err
	}

	return &ReminderDigest{
		User:     *user,
		Settings: *settings,
		DueSoon:  dueSoon,
		Pending:  pending,
	}, nil
}

// ReminderRecipients lists active users whose settings opt in to email
// reminders.
func ReminderRecipients(database *gorm.DB) ([]models.User, error) {
	var userIDs []uint

	if err := database.Model(&models.UserSettings{}).
		Where("email_reminders_enabled = ?", true).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	if len(userIDs) == 0 {
		return nil, nil
	}

	var users []models.User

	if err := database.Where("id IN ? AND is_active = ?", userIDs, true).
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
