package models

import (
	"time"
)

// DefaultThemeStatus is assigned to themes created without a status.
const DefaultThemeStatus = "active"

type Theme struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(50);not null;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
