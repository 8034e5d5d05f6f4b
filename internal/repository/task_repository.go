package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByDisplayID finds a task by display ID with optional preloading
func (r *GormTaskRepository) FindByDisplayID(displayID string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("display_id = ?", displayID).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// Exists reports whether a task with the ID exists
func (r *GormTaskRepository) Exists(id uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List retrieves tasks, most recently updated first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task
	query := r.db.Model(&models.Task{})

	// Apply filters
	if filter.TeamID != 0 {
		query = query.Where("tasks.team_id = ?", filter.TeamID)
	}
	if filter.TaskTypeID != 0 {
		query = query.Where("tasks.task_type_id = ?", filter.TaskTypeID)
	}
	if filter.ProjectID != 0 {
		query = query.Where("tasks.project_id = ?", filter.ProjectID)
	}
	if filter.ReleaseID != 0 {
		query = query.Where("tasks.release_id = ?", filter.ReleaseID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("tasks.status IN ?", filter.Statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(filter.Page)).
		Preload("Team").
		Preload("TaskType").
		Order("tasks.updated_at DESC, tasks.id DESC").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task's columns without touching associations
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// SetTypeAndStatus rebinds a task to a type with a new status
func (r *GormTaskRepository) SetTypeAndStatus(id, typeID uint64, status string) error {
	return r.db.Model(&models.Task{ID: id}).Updates(map[string]interface{}{
		"task_type_id": typeID,
		"status":       status,
	}).Error
}

// Reassign moves a task to another team, type and status
func (r *GormTaskRepository) Reassign(id, teamID, typeID uint64, status string) error {
	return r.db.Model(&models.Task{ID: id}).Updates(map[string]interface{}{
		"team_id":      teamID,
		"task_type_id": typeID,
		"status":       status,
	}).Error
}

// Delete deletes a task with its links and dependency edges
func (r *GormTaskRepository) Delete(id uint64) error {
	if err := r.db.Where("task_id = ? OR depends_on_id = ?", id, id).
		Delete(&models.TaskDependency{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("task_id = ?", id).Delete(&models.GitHubLink{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Task{}, id).Error
}

// CountByType counts tasks bound to a task type
func (r *GormTaskRepository) CountByType(typeID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("task_type_id = ?", typeID).Count(&count).Error
	return count, err
}

// CountByTeam counts tasks owned by a team
func (r *GormTaskRepository) CountByTeam(teamID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, err
}

// CountUsingTeamTypesElsewhere counts tasks of other teams that use one of the team's task types
func (r *GormTaskRepository) CountUsingTeamTypesElsewhere(teamID uint64) (int64, error) {
	var count int64
	typeIDs := r.db.Model(&models.TaskType{}).Select("id").Where("team_id = ?", teamID)
	err := r.db.Model(&models.Task{}).
		Where("team_id <> ? AND task_type_id IN (?)", teamID, typeIDs).
		Count(&count).Error
	return count, err
}

// ScanByType walks every task of a type in ID order, one batch at a time
func (r *GormTaskRepository) ScanByType(typeID uint64, fn func(batch []models.Task) error) error {
	return scanWorkItems(r.db, "task_type_id", typeID, fn)
}

// ScanByTeam walks every task of a team in ID order, one batch at a time
func (r *GormTaskRepository) ScanByTeam(teamID uint64, fn func(batch []models.Task) error) error {
	return scanWorkItems(r.db, "team_id", teamID, fn)
}

// ClearProject detaches every task from a project
func (r *GormTaskRepository) ClearProject(projectID uint64) error {
	return r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Update("project_id", nil).Error
}

// ClearRelease detaches every task from a release
func (r *GormTaskRepository) ClearRelease(releaseID uint64) error {
	return r.db.Model(&models.Task{}).
		Where("release_id = ?", releaseID).
		Update("release_id", nil).Error
}

// MaxID returns the highest task ID currently stored, or 0
func (r *GormTaskRepository) MaxID() (uint64, error) {
	var maxID uint64
	err := r.db.Model(&models.Task{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error
	return maxID, err
}

// AddDependency records that id depends on dependsOnID; existing edges are kept
func (r *GormTaskRepository) AddDependency(id, dependsOnID uint64) error {
	edge := models.TaskDependency{TaskID: id, DependsOnID: dependsOnID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
}

// RemoveDependency removes the edge if present
func (r *GormTaskRepository) RemoveDependency(id, dependsOnID uint64) error {
	return r.db.Where("task_id = ? AND depends_on_id = ?", id, dependsOnID).
		Delete(&models.TaskDependency{}).Error
}

// Dependencies lists the tasks id depends on
func (r *GormTaskRepository) Dependencies(id uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Joins("JOIN task_dependencies ON task_dependencies.depends_on_id = tasks.id").
		Where("task_dependencies.task_id = ?", id).
		Order("tasks.id ASC").
		Find(&tasks).Error
	return tasks, err
}

// Dependents lists the tasks that depend on id
func (r *GormTaskRepository) Dependents(id uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Joins("JOIN task_dependencies ON task_dependencies.task_id = tasks.id").
		Where("task_dependencies.depends_on_id = ?", id).
		Order("tasks.id ASC").
		Find(&tasks).Error
	return tasks, err
}
