package models

import "gorm.io/gorm"

type Project struct {
	gorm.Model

	UserID      uint   `gorm:"not null;uniqueIndex:idx_user_project_name"`
	Name        string `gorm:"not null;uniqueIndex:idx_user_project_name"`
	Description string
	Color       string

	// Relationships. Deleting a project unassigns its todos, never deletes
	// them.
	User  User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Todos []Todo `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
