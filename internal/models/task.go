package models

import (
	"time"

	"gorm.io/datatypes"
)

type Task struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	DisplayID   string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"display_id"`
	Title       string            `gorm:"type:varchar(255);not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Status      string            `gorm:"type:varchar(100);not null;index" json:"status"`
	TeamID      uint64            `gorm:"not null;index" json:"team_id"`
	TaskTypeID  uint64            `gorm:"not null;index" json:"task_type_id"`
	ProjectID   *uint64           `gorm:"index" json:"project_id"`
	ReleaseID   *uint64           `gorm:"index" json:"release_id"`
	Estimation  string            `gorm:"type:varchar(50)" json:"estimation"`
	CustomData  datatypes.JSONMap `json:"custom_data"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Relations
	Team        *Team        `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	TaskType    *TaskType    `gorm:"foreignKey:TaskTypeID" json:"task_type,omitempty"`
	Project     *Project     `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Release     *Release     `gorm:"foreignKey:ReleaseID" json:"release,omitempty"`
	GitHubLinks []GitHubLink `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"github_links,omitempty"`

	Dependencies []Task `gorm:"-" json:"dependencies,omitempty"`
	Dependents   []Task `gorm:"-" json:"dependents,omitempty"`
}

// ItemStatus returns the workflow status of the task.
func (t Task) ItemStatus() string { return t.Status }

// TaskDependency is a directed edge: TaskID depends on DependsOnID.
type TaskDependency struct {
	TaskID      uint64    `gorm:"primaryKey;autoIncrement:false" json:"task_id"`
	DependsOnID uint64    `gorm:"primaryKey;autoIncrement:false;index" json:"depends_on_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayIDSequence holds the last number handed out for a display id prefix.
type DisplayIDSequence struct {
	Prefix    string `gorm:"primaryKey;type:varchar(50)"`
	LastValue uint64 `gorm:"not null"`
}

// ItemID returns the primary key of the task.
func (t Task) ItemID() uint64 { return t.ID }
