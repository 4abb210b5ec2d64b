package models

import "gorm.io/gorm"

// AIInteraction is an append-only log of prompt/response pairs. Rows are
// never updated; they disappear only when their owner is deleted.
type AIInteraction struct {
	gorm.Model

	UserID     uint   `gorm:"not null;index"`
	TodoID     *uint  `gorm:"index"`
	Kind       string `gorm:"not null"` // "subtasks", "analysis", "chat"
	Prompt     string `gorm:"not null"`
	Response   string
	ModelName  string
	DurationMs int64

	// Relationships
	User User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Todo *Todo `gorm:"foreignKey:TodoID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
