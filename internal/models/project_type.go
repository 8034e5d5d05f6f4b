package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProjectType struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	Name        string                      `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string                      `gorm:"type:text" json:"description"`
	Color       string                      `gorm:"type:varchar(20)" json:"color"`
	Workflow    datatypes.JSONSlice[string] `gorm:"not null" json:"workflow"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`

	// Relations
	Fields []ProjectTypeField `gorm:"foreignKey:ProjectTypeID;constraint:OnDelete:CASCADE" json:"fields"`
}

// FieldDefinitions returns the schema of the type's custom fields in order.
func (t *ProjectType) FieldDefinitions() []FieldDefinition {
	defs := make([]FieldDefinition, len(t.Fields))
	for i, f := range t.Fields {
		defs[i] = f.FieldDefinition
	}
	return defs
}
