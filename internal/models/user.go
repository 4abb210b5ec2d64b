package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	ExternalID string `gorm:"uniqueIndex;not null"` // identity-provider subject
	Email      string `gorm:"uniqueIndex;not null"`
	Username   string `gorm:"not null"`
	IsActive   bool   `gorm:"default:true"`

	// Relationships
	Projects       []Project          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Todos          []Todo             `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ArchivedTodos  []ArchivedTodo     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AIInteractions []AIInteraction    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Conversations  []ChatConversation `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Settings       *UserSettings      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
