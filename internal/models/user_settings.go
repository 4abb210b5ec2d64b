package models

import "gorm.io/gorm"

// UserSettings is a one-to-one preference record, auto-created with defaults
// the first time the owner touches the settings endpoints or the reminder
// sweep reads it.
type UserSettings struct {
	gorm.Model

	UserID                uint   `gorm:"not null;uniqueIndex"`
	Theme                 string `gorm:"not null;default:'system'"`
	Locale                string `gorm:"not null;default:'en'"`
	Timezone              string `gorm:"not null;default:'UTC'"`
	EmailRemindersEnabled bool   `gorm:"default:true"`
	AISuggestionsEnabled  bool   `gorm:"default:true"`
	ReminderHourUTC       int    `gorm:"not null;default:9"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
