package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatConversation struct {
	gorm.Model

	UserID uint   `gorm:"not null;index"`
	UID    string `gorm:"uniqueIndex;not null"` // client-facing uuid
	Title  string `gorm:"not null"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Messages []ChatMessage `gorm:"foreignKey:ConversationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type ChatMessage struct {
	gorm.Model

	ConversationID uint           `gorm:"not null;index"`
	Role           string         `gorm:"not null"` // "user", "assistant", "system"
	Content        string         `gorm:"not null"`
	Actions        datatypes.JSON `gorm:"type:jsonb"` // structured actions payload, assistant messages only

	// Relationships
	Conversation ChatConversation `gorm:"foreignKey:ConversationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
