package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Exists reports whether a project with the ID exists
func (r *GormProjectRepository) Exists(id uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List retrieves projects, most recently updated first
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project
	query := r.db.Model(&models.Project{})

	if filter.ProjectTypeID != 0 {
		query = query.Where("projects.project_type_id = ?", filter.ProjectTypeID)
	}
	if filter.ThemeID != 0 {
		query = query.Where("projects.theme_id = ?", filter.ThemeID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("projects.status IN ?", filter.Statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(filter.Page)).
		Preload("ProjectType").
		Preload("Theme").
		Order("projects.updated_at DESC, projects.id DESC").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Update updates a project's columns without touching associations
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// SetTypeAndStatus rebinds a project to a type with a new status
func (r *GormProjectRepository) SetTypeAndStatus(id, typeID uint64, status string) error {
	return r.db.Model(&models.Project{ID: id}).Updates(map[string]interface{}{
		"project_type_id": typeID,
		"status":          status,
	}).Error
}

// Delete deletes a project and its dependency edges
func (r *GormProjectRepository) Delete(id uint64) error {
	if err := r.db.Where("project_id = ? OR depends_on_id = ?", id, id).
		Delete(&models.ProjectDependency{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Project{}, id).Error
}

// CountByType counts projects bound to a project type
func (r *GormProjectRepository) CountByType(typeID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("project_type_id = ?", typeID).Count(&count).Error
	return count, err
}

// ScanByType walks every project of a type in ID order, one batch at a time
func (r *GormProjectRepository) ScanByType(typeID uint64, fn func(batch []models.Project) error) error {
	return scanWorkItems(r.db, "project_type_id", typeID, fn)
}

// ClearTheme detaches every project from a theme
func (r *GormProjectRepository) ClearTheme(themeID uint64) error {
	return r.db.Model(&models.Project{}).
		Where("theme_id = ?", themeID).
		Update("theme_id", nil).Error
}

// AddDependency records that id depends on dependsOnID; existing edges are kept
func (r *GormProjectRepository) AddDependency(id, dependsOnID uint64) error {
	edge := models.ProjectDependency{ProjectID: id, DependsOnID: dependsOnID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
}

// RemoveDependency removes the edge if present
func (r *GormProjectRepository) RemoveDependency(id, dependsOnID uint64) error {
	return r.db.Where("project_id = ? AND depends_on_id = ?", id, dependsOnID).
		Delete(&models.ProjectDependency{}).Error
}

// Dependencies lists the projects id depends on
func (r *GormProjectRepository) Dependencies(id uint64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Joins("JOIN project_dependencies ON project_dependencies.depends_on_id = projects.id").
		Where("project_dependencies.project_id = ?", id).
		Order("projects.id ASC").
		Find(&projects).Error
	return projects, err
}

// Dependents lists the projects that depend on id
func (r *GormProjectRepository) Dependents(id uint64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Joins("JOIN project_dependencies ON project_dependencies.project_id = projects.id").
		Where("project_dependencies.depends_on_id = ?", id).
		Order("projects.id ASC").
		Find(&projects).Error
	return projects, err
}
