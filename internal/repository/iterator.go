package repository

import (
	"github.com/yukikurage/corepm/internal/constants"
	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
)

// scanWorkItems walks every row of T where column = value in primary key order.
// Batches are fetched by keyset, so fn may update or delete the rows it is handed
// without disturbing the rest of the walk.
func scanWorkItems[T models.WorkItem](db *gorm.DB, column string, value uint64, fn func(batch []T) error) error {
	var batch []T
	result := db.Where(column+" = ?", value).
		FindInBatches(&batch, constants.ScanBatchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		})
	return result.Error
}
