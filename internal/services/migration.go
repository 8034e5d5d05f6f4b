package services

import (
	"github.com/yukikurage/corepm/internal/models"
)

// TypeStats summarises the work-items bound to a type. Statuses that are no
// longer in the workflow are still counted under their literal value.
type TypeStats struct {
	TypeID        uint64
	TypeName      string
	Workflow      []string
	TotalItems    int
	ItemsByStatus map[string]int
}

// MigrationResult reports how many work-items were moved to the target type.
type MigrationResult struct {
	SourceTypeID  uint64
	TargetTypeID  uint64
	MigratedCount int
}

// scanFunc walks a set of work-items batch by batch.
type scanFunc[T models.WorkItem] func(fn func(batch []T) error) error

// tallyStatuses counts items per status over a full scan.
func tallyStatuses[T models.WorkItem](scan scanFunc[T]) (int, map[string]int, error) {
	total := 0
	byStatus := make(map[string]int)

	err := scan(func(batch []T) error {
		for _, item := range batch {
			byStatus[item.ItemStatus()]++
			total++
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return total, byStatus, nil
}

// validateStatusMappings requires every mapping target to be in the workflow.
// Mapping sources are not checked: unknown old statuses fall through to the default.
func validateStatusMappings(mappings map[string]string, workflow []string) error {
	invalid := make([]string, 0)
	for _, to := range mappings {
		if !workflowContains(workflow, to) {
			invalid = append(invalid, to)
		}
	}
	if len(invalid) > 0 {
		return validationError("status mapping targets are not in the target workflow", map[string]interface{}{
			"invalid_statuses": invalid,
			"workflow":         workflow,
		})
	}
	return nil
}

// remapItems rebinds every scanned item using mappings, falling back to defaultStatus
// for statuses without a mapping. It returns the number of items touched.
func remapItems[T models.WorkItem](scan scanFunc[T], mappings map[string]string, fallback string, rebind func(id uint64, status string) error) (int, error) {
	count := 0
	err := scan(func(batch []T) error {
		for _, item := range batch {
			status, ok := mappings[item.ItemStatus()]
			if !ok {
				status = fallback
			}
			if err := rebind(item.ItemID(), status); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
