package models

import (
	"time"

	"gorm.io/gorm"
)

// ArchivedTodo mirrors Todo in a separate table. The partitioned todo
// service moves done subtrees here and back; OriginalID preserves the row's
// id from the active table so parent links survive the round trip.
type ArchivedTodo struct {
	gorm.Model

	UserID       uint       `gorm:"not null;index"`
	ProjectID    *uint      `gorm:"index"`
	ParentTodoID *uint      `gorm:"index"` // original id of the parent, if any
	OriginalID   uint       `gorm:"not null;index"`
	Title        string     `gorm:"not null"`
	Description  string
	Status       string     `gorm:"not null"`
	Priority     int        `gorm:"not null"`
	DueDate      *time.Time
	CompletedAt  *time.Time
	AIGenerated  bool
	ArchivedAt   time.Time  `gorm:"not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
