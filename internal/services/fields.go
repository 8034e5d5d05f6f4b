package services

import (
	"strings"

	"github.com/yukikurage/corepm/internal/models"
)

// FieldInput describes a custom field definition supplied by a caller.
// A nil Order means "use the position in the list".
type FieldInput struct {
	Key       string
	Label     string
	FieldType models.FieldType
	Options   []string
	Required  bool
	Order     *int
}

// FieldUpdateInput holds the mutable attributes of an existing field.
type FieldUpdateInput struct {
	Label    *string
	Options  *[]string
	Required *bool
	Order    *int
}

// buildFieldDefinitions validates inputs and assigns their order.
// Keys must be unique within the list.
func buildFieldDefinitions(inputs []FieldInput) ([]models.FieldDefinition, error) {
	defs := make([]models.FieldDefinition, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for i, in := range inputs {
		order := i
		if in.Order != nil {
			order = *in.Order
		}
		def, err := buildFieldDefinition(in, order)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[def.Key]; dup {
			return nil, alreadyExists("field", "key", def.Key)
		}
		seen[def.Key] = struct{}{}
		defs = append(defs, def)
	}
	return defs, nil
}

func buildFieldDefinition(in FieldInput, order int) (models.FieldDefinition, error) {
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return models.FieldDefinition{}, validationError("field key is required", nil)
	}
	if !in.FieldType.Valid() {
		return models.FieldDefinition{}, validationError("unknown field type", map[string]interface{}{
			"key":        key,
			"field_type": in.FieldType,
		})
	}

	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = key
	}

	var options []string
	if in.FieldType.HasOptions() {
		options = append(options, in.Options...)
		if len(options) == 0 {
			return models.FieldDefinition{}, validationError("select fields need at least one option", map[string]interface{}{"key": key})
		}
	}

	return models.FieldDefinition{
		Key:       key,
		Label:     label,
		FieldType: in.FieldType,
		Options:   options,
		Required:  in.Required,
		Order:     order,
	}, nil
}

// applyFieldUpdate mutates def with the provided attributes.
func applyFieldUpdate(def *models.FieldDefinition, in FieldUpdateInput) error {
	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return validationError("field label cannot be empty", map[string]interface{}{"key": def.Key})
		}
		def.Label = label
	}
	if in.Options != nil {
		if def.FieldType.HasOptions() && len(*in.Options) == 0 {
			return validationError("select fields need at least one option", map[string]interface{}{"key": def.Key})
		}
		def.Options = append([]string(nil), (*in.Options)...)
	}
	if in.Required != nil {
		def.Required = *in.Required
	}
	if in.Order != nil {
		def.Order = *in.Order
	}
	return nil
}

func hasFieldKey(defs []models.FieldDefinition, key string) bool {
	for _, d := range defs {
		if d.Key == key {
			return true
		}
	}
	return false
}
