package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectTypeRepository is a GORM implementation of ProjectTypeRepository
type GormProjectTypeRepository struct {
	db *gorm.DB
}

// NewProjectTypeRepository creates a new ProjectTypeRepository
func NewProjectTypeRepository(db *gorm.DB) ProjectTypeRepository {
	return &GormProjectTypeRepository{db: db}
}

func fieldOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

// Create creates a project type together with its fields
func (r *GormProjectTypeRepository) Create(projectType *models.ProjectType) error {
	return r.db.Create(projectType).Error
}

// FindByID finds a project type by ID with its fields
func (r *GormProjectTypeRepository) FindByID(id uint64) (*models.ProjectType, error) {
	var projectType models.ProjectType
	if err := r.db.Preload("Fields", fieldOrder).First(&projectType, id).Error; err != nil {
		return nil, err
	}
	return &projectType, nil
}

// FindBySlug finds a project type by slug
func (r *GormProjectTypeRepository) FindBySlug(slug string) (*models.ProjectType, error) {
	var projectType models.ProjectType
	if err := r.db.Preload("Fields", fieldOrder).Where("slug = ?", slug).First(&projectType).Error; err != nil {
		return nil, err
	}
	return &projectType, nil
}

// List retrieves project types ordered by name
func (r *GormProjectTypeRepository) List(page utils.PaginationParams) ([]models.ProjectType, int64, error) {
	var types []models.ProjectType
	query := r.db.Model(&models.ProjectType{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(page)).
		Preload("Fields", fieldOrder).
		Order("name ASC, id ASC").
		Find(&types).Error; err != nil {
		return nil, 0, err
	}
	return types, total, nil
}

// Update updates the scalar columns of a project type
func (r *GormProjectTypeRepository) Update(projectType *models.ProjectType) error {
	return r.db.Omit(clause.Associations).Save(projectType).Error
}

// Delete deletes a project type and its fields
func (r *GormProjectTypeRepository) Delete(id uint64) error {
	if err := r.db.Where("project_type_id = ?", id).Delete(&models.ProjectTypeField{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.ProjectType{}, id).Error
}

// ReplaceFields deletes every field of the type and inserts the given ones
func (r *GormProjectTypeRepository) ReplaceFields(typeID uint64, fields []models.ProjectTypeField) error {
	if err := r.db.Where("project_type_id = ?", typeID).Delete(&models.ProjectTypeField{}).Error; err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	for i := range fields {
		fields[i].ProjectTypeID = typeID
	}
	return r.db.Create(&fields).Error
}

// CreateField adds a single field
func (r *GormProjectTypeRepository) CreateField(field *models.ProjectTypeField) error {
	return r.db.Create(field).Error
}

// FindField finds a field belonging to the given type
func (r *GormProjectTypeRepository) FindField(typeID, fieldID uint64) (*models.ProjectTypeField, error) {
	var field models.ProjectTypeField
	if err := r.db.Where("id = ? AND project_type_id = ?", fieldID, typeID).First(&field).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

// UpdateField updates a field
func (r *GormProjectTypeRepository) UpdateField(field *models.ProjectTypeField) error {
	return r.db.Save(field).Error
}

// DeleteField deletes a field
func (r *GormProjectTypeRepository) DeleteField(fieldID uint64) error {
	return r.db.Delete(&models.ProjectTypeField{}, fieldID).Error
}
