package models

import (
	"time"

	"gorm.io/datatypes"
)

// TaskType slugs are unique per team.
type TaskType struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	Name        string                      `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string                      `gorm:"type:varchar(255);not null;uniqueIndex:idx_task_types_team_slug,priority:2" json:"slug"`
	Description string                      `gorm:"type:text" json:"description"`
	Color       string                      `gorm:"type:varchar(20)" json:"color"`
	Workflow    datatypes.JSONSlice[string] `gorm:"not null" json:"workflow"`
	TeamID      uint64                      `gorm:"not null;uniqueIndex:idx_task_types_team_slug,priority:1" json:"team_id"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	// Relations
	Team   *Team           `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Fields []TaskTypeField `gorm:"foreignKey:TaskTypeID;constraint:OnDelete:CASCADE" json:"fields"`
}

// FieldDefinitions returns the schema of the type's custom fields in order.
func (t *TaskType) FieldDefinitions() []FieldDefinition {
	defs := make([]FieldDefinition, len(t.Fields))
	for i, f := range t.Fields {
		defs[i] = f.FieldDefinition
	}
	return defs
}
