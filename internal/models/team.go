package models

import (
	"time"
)

type Team struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"type:varchar(20)" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Members []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TeamMember is the membership edge between a user and a team.
type TeamMember struct {
	TeamID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"team_id"`
	UserID    uint64    `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
