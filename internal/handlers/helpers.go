package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/services"
)

// parseID reads a numeric path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryID reads an optional numeric query parameter; zero means absent.
func queryID(c *gin.Context, name string) (uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return false
	}
	return true
}

// FieldRequest is the JSON shape of a custom field definition
type FieldRequest struct {
	Key       string           `json:"key" binding:"required"`
	Label     string           `json:"label"`
	FieldType models.FieldType `json:"field_type" binding:"required"`
	Options   []string         `json:"options"`
	Required  bool             `json:"required"`
	Order     *int             `json:"order"`
}

func (r FieldRequest) toInput() services.FieldInput {
	return services.FieldInput{
		Key:       r.Key,
		Label:     r.Label,
		FieldType: r.FieldType,
		Options:   r.Options,
		Required:  r.Required,
		Order:     r.Order,
	}
}

func toFieldInputs(reqs []FieldRequest) []services.FieldInput {
	inputs := make([]services.FieldInput, len(reqs))
	for i, r := range reqs {
		inputs[i] = r.toInput()
	}
	return inputs
}

// FieldUpdateRequest is the JSON shape of a field patch
type FieldUpdateRequest struct {
	Label    *string   `json:"label"`
	Options  *[]string `json:"options"`
	Required *bool     `json:"required"`
	Order    *int      `json:"order"`
}

func (r FieldUpdateRequest) toInput() services.FieldUpdateInput {
	return services.FieldUpdateInput{
		Label:    r.Label,
		Options:  r.Options,
		Required: r.Required,
		Order:    r.Order,
	}
}

// MigrateRequest is the body of a type migration
type MigrateRequest struct {
	TargetTypeID   uint64            `json:"target_type_id" binding:"required"`
	StatusMappings map[string]string `json:"status_mappings"`
}
