package models

import (
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	ID            uint64            `gorm:"primarykey" json:"id"`
	Title         string            `gorm:"type:varchar(255);not null" json:"title"`
	Description   string            `gorm:"type:text" json:"description"`
	Status        string            `gorm:"type:varchar(100);not null;index" json:"status"`
	ProjectTypeID uint64            `gorm:"not null;index" json:"project_type_id"`
	ThemeID       *uint64           `gorm:"index" json:"theme_id"`
	CustomData    datatypes.JSONMap `json:"custom_data"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Relations
	ProjectType *ProjectType `gorm:"foreignKey:ProjectTypeID" json:"project_type,omitempty"`
	Theme       *Theme       `gorm:"foreignKey:ThemeID" json:"theme,omitempty"`

	Dependencies []Project `gorm:"-" json:"dependencies,omitempty"`
	Dependents   []Project `gorm:"-" json:"dependents,omitempty"`
}

// ItemStatus returns the workflow status of the project.
func (p Project) ItemStatus() string { return p.Status }

// ProjectDependency is a directed edge: ProjectID depends on DependsOnID.
type ProjectDependency struct {
	ProjectID   uint64    `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	DependsOnID uint64    `gorm:"primaryKey;autoIncrement:false;index" json:"depends_on_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemID returns the primary key of the project.
func (p Project) ItemID() uint64 { return p.ID }
