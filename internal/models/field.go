package models

import (
	"gorm.io/datatypes"
)

type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeURL         FieldType = "url"
	FieldTypeDate        FieldType = "date"
	FieldTypeCheckbox    FieldType = "checkbox"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeSelect,
		FieldTypeMultiselect, FieldTypeURL, FieldTypeDate, FieldTypeCheckbox:
		return true
	}
	return false
}

// HasOptions reports whether values of this type are drawn from Options.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeSelect || t == FieldTypeMultiselect
}

// FieldDefinition is the custom field schema shared by project and task types.
type FieldDefinition struct {
	Key       string                      `gorm:"type:varchar(100);not null" json:"key"`
	Label     string                      `gorm:"type:varchar(255);not null" json:"label"`
	FieldType FieldType                   `gorm:"type:varchar(20);not null" json:"field_type"`
	Options   datatypes.JSONSlice[string] `json:"options"`
	Required  bool                        `gorm:"not null" json:"required"`
	Order     int                         `gorm:"column:sort_order;not null" json:"order"`
}

// ProjectTypeField is a custom field attached to a project type.
type ProjectTypeField struct {
	ID            uint64 `gorm:"primarykey" json:"id"`
	ProjectTypeID uint64 `gorm:"not null;index" json:"project_type_id"`
	FieldDefinition
}

// TaskTypeField is a custom field attached to a task type.
type TaskTypeField struct {
	ID         uint64 `gorm:"primarykey" json:"id"`
	TaskTypeID uint64 `gorm:"not null;index" json:"task_type_id"`
	FieldDefinition
}
