package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/corepm/internal/utils"
)

// Paginate applies skip/limit pagination to a GORM query.
// A zero limit leaves the query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Skip > 0 {
			db = db.Offset(params.Skip)
		}
		if params.Limit > 0 {
			db = db.Limit(params.Limit)
		}
		return db
	}
}
