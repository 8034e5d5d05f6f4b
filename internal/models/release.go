package models

import (
	"time"
)

type ReleaseStatus string

const (
	ReleaseStatusPlanned    ReleaseStatus = "planned"
	ReleaseStatusInProgress ReleaseStatus = "in_progress"
	ReleaseStatusReleased   ReleaseStatus = "released"
	ReleaseStatusCancelled  ReleaseStatus = "cancelled"
)

// Valid reports whether s is a known release status.
func (s ReleaseStatus) Valid() bool {
	switch s {
	case ReleaseStatusPlanned, ReleaseStatusInProgress, ReleaseStatusReleased, ReleaseStatusCancelled:
		return true
	}
	return false
}

type Release struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Version     string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"version"`
	Title       string        `gorm:"type:varchar(255)" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	TargetDate  *time.Time    `json:"target_date"`
	ReleaseDate *time.Time    `json:"release_date"`
	Status      ReleaseStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
