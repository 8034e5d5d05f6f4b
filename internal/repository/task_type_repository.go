package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskTypeRepository is a GORM implementation of TaskTypeRepository
type GormTaskTypeRepository struct {
	db *gorm.DB
}

// NewTaskTypeRepository creates a new TaskTypeRepository
func NewTaskTypeRepository(db *gorm.DB) TaskTypeRepository {
	return &GormTaskTypeRepository{db: db}
}

// Create creates a task type together with its fields
func (r *GormTaskTypeRepository) Create(taskType *models.TaskType) error {
	return r.db.Omit("Team").Create(taskType).Error
}

// FindByID finds a task type by ID with its fields
func (r *GormTaskTypeRepository) FindByID(id uint64) (*models.TaskType, error) {
	var taskType models.TaskType
	if err := r.db.Preload("Fields", fieldOrder).First(&taskType, id).Error; err != nil {
		return nil, err
	}
	return &taskType, nil
}

// FindBySlug finds a task type by slug within a team
func (r *GormTaskTypeRepository) FindBySlug(teamID uint64, slug string) (*models.TaskType, error) {
	var taskType models.TaskType
	if err := r.db.Preload("Fields", fieldOrder).
		Where("team_id = ? AND slug = ?", teamID, slug).
		First(&taskType).Error; err != nil {
		return nil, err
	}
	return &taskType, nil
}

// FirstByTeam returns the team's task type with the lowest ID
func (r *GormTaskTypeRepository) FirstByTeam(teamID uint64) (*models.TaskType, error) {
	var taskType models.TaskType
	if err := r.db.Where("team_id = ?", teamID).Order("id ASC").First(&taskType).Error; err != nil {
		return nil, err
	}
	return &taskType, nil
}

// CountByTeam counts the task types owned by a team
func (r *GormTaskTypeRepository) CountByTeam(teamID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskType{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

// List retrieves task types ordered by name
func (r *GormTaskTypeRepository) List(filter TaskTypeFilter) ([]models.TaskType, int64, error) {
	var types []models.TaskType
	query := r.db.Model(&models.TaskType{})

	if filter.TeamID != 0 {
		query = query.Where("team_id = ?", filter.TeamID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(filter.Page)).
		Preload("Fields", fieldOrder).
		Order("name ASC, id ASC").
		Find(&types).Error; err != nil {
		return nil, 0, err
	}
	return types, total, nil
}

// Update updates the scalar columns of a task type
func (r *GormTaskTypeRepository) Update(taskType *models.TaskType) error {
	return r.db.Omit(clause.Associations).Save(taskType).Error
}

// Delete deletes a task type and its fields
func (r *GormTaskTypeRepository) Delete(id uint64) error {
	if err := r.db.Where("task_type_id = ?", id).Delete(&models.TaskTypeField{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.TaskType{}, id).Error
}

// DeleteByTeam deletes every task type of a team together with their fields
func (r *GormTaskTypeRepository) DeleteByTeam(teamID uint64) error {
	typeIDs := r.db.Model(&models.TaskType{}).Select("id").Where("team_id = ?", teamID)
	if err := r.db.Where("task_type_id IN (?)", typeIDs).Delete(&models.TaskTypeField{}).Error; err != nil {
		return err
	}
	return r.db.Where("team_id = ?", teamID).Delete(&models.TaskType{}).Error
}

// ReplaceFields deletes every field of the type and inserts the given ones
func (r *GormTaskTypeRepository) ReplaceFields(typeID uint64, fields []models.TaskTypeField) error {
	if err := r.db.Where("task_type_id = ?", typeID).Delete(&models.TaskTypeField{}).Error; err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	for i := range fields {
		fields[i].TaskTypeID = typeID
	}
	return r.db.Create(&fields).Error
}

// CreateField adds a single field
func (r *GormTaskTypeRepository) CreateField(field *models.TaskTypeField) error {
	return r.db.Create(field).Error
}

// FindField finds a field belonging to the given type
func (r *GormTaskTypeRepository) FindField(typeID, fieldID uint64) (*models.TaskTypeField, error) {
	var field models.TaskTypeField
	if err := r.db.Where("id = ? AND task_type_id = ?", fieldID, typeID).First(&field).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

// UpdateField updates a field
func (r *GormTaskTypeRepository) UpdateField(field *models.TaskTypeField) error {
	return r.db.Save(field).Error
}

// DeleteField deletes a field
func (r *GormTaskTypeRepository) DeleteField(fieldID uint64) error {
	return r.db.Delete(&models.TaskTypeField{}, fieldID).Error
}
