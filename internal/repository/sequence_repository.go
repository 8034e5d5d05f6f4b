package repository

import (
	"errors"

	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository is a GORM implementation of SequenceRepository.
// It must run inside a transaction for the row lock to hold.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next returns max(last issued, highest task id) + 1 and records it.
func (r *GormSequenceRepository) Next(prefix string) (uint64, error) {
	var seq models.DisplayIDSequence
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", prefix).
		First(&seq).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	isNew := errors.Is(err, gorm.ErrRecordNotFound)

	maxID, err := NewTaskRepository(r.db).MaxID()
	if err != nil {
		return 0, err
	}

	next := seq.LastValue
	if maxID > next {
		next = maxID
	}
	next++

	if isNew {
		seq = models.DisplayIDSequence{Prefix: prefix, LastValue: next}
		if err := r.db.Create(&seq).Error; err != nil {
			return 0, err
		}
		return next, nil
	}

	if err := r.db.Model(&models.DisplayIDSequence{}).
		Where("prefix = ?", prefix).
		Update("last_value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}
