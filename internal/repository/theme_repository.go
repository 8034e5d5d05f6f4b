package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
)

// GormThemeRepository is a GORM implementation of ThemeRepository
type GormThemeRepository struct {
	db *gorm.DB
}

// NewThemeRepository creates a new ThemeRepository
func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &GormThemeRepository{db: db}
}

// Create creates a new theme
func (r *GormThemeRepository) Create(theme *models.Theme) error {
	return r.db.Create(theme).Error
}

// FindByID finds a theme by ID
func (r *GormThemeRepository) FindByID(id uint64) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.First(&theme, id).Error; err != nil {
		return nil, err
	}
	return &theme, nil
}

// List retrieves themes, most recently updated first
func (r *GormThemeRepository) List(filter ThemeFilter) ([]models.Theme, int64, error) {
	var themes []models.Theme
	query := r.db.Model(&models.Theme{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(filter.Page)).
		Order("updated_at DESC, id DESC").
		Find(&themes).Error; err != nil {
		return nil, 0, err
	}
	return themes, total, nil
}

// Update updates a theme
func (r *GormThemeRepository) Update(theme *models.Theme) error {
	return r.db.Save(theme).Error
}

// Delete deletes a theme row
func (r *GormThemeRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Theme{}, id).Error
}

// TransitionStatus moves every theme in oldStatus (case-insensitive) to newStatus
func (r *GormThemeRepository) TransitionStatus(oldStatus, newStatus string) (int64, error) {
	result := r.db.Model(&models.Theme{}).
		Where("LOWER(status) = LOWER(?)", oldStatus).
		Update("status", newStatus)
	return result.RowsAffected, result.Error
}
