package models

import (
	"time"

	"gorm.io/gorm"
)

type Todo struct {
	gorm.Model

	UserID       uint   `gorm:"not null;index"`
	ProjectID    *uint  `gorm:"index"`
	ParentTodoID *uint  `gorm:"index"`
	Title        string `gorm:"not null"`
	Description  string
	Status       string `gorm:"not null;default:'todo'"` // "todo", "in_progress", "done"
	Priority     int    `gorm:"not null;default:3"`      // 1 (lowest) to 5 (highest)
	DueDate      *time.Time
	CompletedAt  *time.Time
	AIGenerated  bool   `gorm:"default:false"`

	// Relationships
	User       User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project    *Project `gorm:"foreignKey:ProjectID"`
	ParentTodo *Todo    `gorm:"foreignKey:ParentTodoID"`
	Subtasks   []Todo   `gorm:"foreignKey:ParentTodoID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
