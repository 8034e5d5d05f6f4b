package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
)

// GormReleaseRepository is a GORM implementation of ReleaseRepository
type GormReleaseRepository struct {
	db *gorm.DB
}

// NewReleaseRepository creates a new ReleaseRepository
func NewReleaseRepository(db *gorm.DB) ReleaseRepository {
	return &GormReleaseRepository{db: db}
}

// Create creates a new release
func (r *GormReleaseRepository) Create(release *models.Release) error {
	return r.db.Create(release).Error
}

// FindByID finds a release by ID
func (r *GormReleaseRepository) FindByID(id uint64) (*models.Release, error) {
	var release models.Release
	if err := r.db.First(&release, id).Error; err != nil {
		return nil, err
	}
	return &release, nil
}

// FindByVersion finds a release by version
func (r *GormReleaseRepository) FindByVersion(version string) (*models.Release, error) {
	var release models.Release
	if err := r.db.Where("version = ?", version).First(&release).Error; err != nil {
		return nil, err
	}
	return &release, nil
}

// List retrieves releases, most recently updated first
func (r *GormReleaseRepository) List(filter ReleaseFilter) ([]models.Release, int64, error) {
	var releases []models.Release
	query := r.db.Model(&models.Release{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(filter.Page)).
		Order("updated_at DESC, id DESC").
		Find(&releases).Error; err != nil {
		return nil, 0, err
	}
	return releases, total, nil
}

// Update updates a release
func (r *GormReleaseRepository) Update(release *models.Release) error {
	return r.db.Save(release).Error
}

// Delete deletes a release row
func (r *GormReleaseRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Release{}, id).Error
}
