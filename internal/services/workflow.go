package services

import (
	"strings"
)

// defaultStatus is the first workflow status, or fallback for an empty workflow.
func defaultStatus(workflow []string, fallback string) string {
	if len(workflow) == 0 {
		return fallback
	}
	return workflow[0]
}

func workflowContains(workflow []string, status string) bool {
	for _, s := range workflow {
		if s == status {
			return true
		}
	}
	return false
}

// normalizeWorkflow trims entries and rejects empty, blank or duplicate statuses.
func normalizeWorkflow(workflow []string) ([]string, error) {
	if len(workflow) == 0 {
		return nil, validationError("workflow must contain at least one status", nil)
	}

	out := make([]string, 0, len(workflow))
	seen := make(map[string]struct{}, len(workflow))
	for i, raw := range workflow {
		status := strings.TrimSpace(raw)
		if status == "" {
			return nil, validationError("workflow statuses must not be blank", map[string]interface{}{"index": i})
		}
		if _, dup := seen[status]; dup {
			return nil, validationError("workflow contains a duplicate status", map[string]interface{}{"status": status})
		}
		seen[status] = struct{}{}
		out = append(out, status)
	}
	return out, nil
}

// resolveStatus picks the status a work-item ends up with after an update.
// An explicit status must belong to the workflow; without one, the current status
// is kept when still valid and otherwise reset to the workflow default.
func resolveStatus(workflow []string, current string, requested *string, fallback string) (string, error) {
	if requested != nil {
		if !workflowContains(workflow, *requested) {
			return "", validationError("status is not part of the workflow", map[string]interface{}{
				"status":   *requested,
				"workflow": workflow,
			})
		}
		return *requested, nil
	}
	if workflowContains(workflow, current) {
		return current, nil
	}
	return defaultStatus(workflow, fallback), nil
}
