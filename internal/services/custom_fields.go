package services

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/corepm/internal/models"
)

// fieldValidator checks single values outside of request structs.
var fieldValidator = validator.New()

const (
	urlFieldTag  = "http_url"
	dateFieldTag = "datetime=2006-01-02"
)

// ValidateCustomData checks data against the field definitions of a type:
// required keys must carry a value and each known key must match its field type.
// Keys without a definition are left alone.
func ValidateCustomData(defs []models.FieldDefinition, data map[string]interface{}) error {
	problems := make(map[string]interface{})

	for _, def := range defs {
		value, present := data[def.Key]
		if !present || isEmptyValue(value) {
			if def.Required {
				problems[def.Key] = "is required"
			}
			continue
		}
		if err := checkFieldValue(def, value); err != nil {
			problems[def.Key] = err.Error()
		}
	}

	if len(problems) > 0 {
		return validationError("custom data does not match the type's fields", problems)
	}
	return nil
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func checkFieldValue(def models.FieldDefinition, value interface{}) error {
	switch def.FieldType {
	case models.FieldTypeText, models.FieldTypeTextarea:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("must be a string")
		}
	case models.FieldTypeNumber:
		switch v := value.(type) {
		case float64, float32, int, int64, int32, uint64, uint32:
		case json.Number:
			if _, err := v.Float64(); err != nil {
				return fmt.Errorf("must be a number")
			}
		default:
			return fmt.Errorf("must be a number")
		}
	case models.FieldTypeCheckbox:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("must be a boolean")
		}
	case models.FieldTypeSelect:
		s, ok := value.(string)
		if !ok || !workflowContains(def.Options, s) {
			return fmt.Errorf("must be one of %v", []string(def.Options))
		}
	case models.FieldTypeMultiselect:
		var items []interface{}
		switch v := value.(type) {
		case []interface{}:
			items = v
		case []string:
			for _, s := range v {
				items = append(items, s)
			}
		default:
			return fmt.Errorf("must be a list")
		}
		for _, item := range items {
			s, ok := item.(string)
			if !ok || !workflowContains(def.Options, s) {
				return fmt.Errorf("values must be drawn from %v", []string(def.Options))
			}
		}
	case models.FieldTypeURL:
		s, ok := value.(string)
		if !ok || fieldValidator.Var(s, urlFieldTag) != nil {
			return fmt.Errorf("must be an http(s) URL")
		}
	case models.FieldTypeDate:
		s, ok := value.(string)
		if !ok || fieldValidator.Var(s, dateFieldTag) != nil {
			return fmt.Errorf("must be a date in YYYY-MM-DD form")
		}
	}
	return nil
}
