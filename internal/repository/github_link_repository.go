package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"gorm.io/gorm"
)

// GormGitHubLinkRepository is a GORM implementation of GitHubLinkRepository
type GormGitHubLinkRepository struct {
	db *gorm.DB
}

// NewGitHubLinkRepository creates a new GitHubLinkRepository
func NewGitHubLinkRepository(db *gorm.DB) GitHubLinkRepository {
	return &GormGitHubLinkRepository{db: db}
}

// Create creates a new link
func (r *GormGitHubLinkRepository) Create(link *models.GitHubLink) error {
	return r.db.Create(link).Error
}

// FindByID finds a link by ID
func (r *GormGitHubLinkRepository) FindByID(id uint64) (*models.GitHubLink, error) {
	var link models.GitHubLink
	if err := r.db.First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindByPR finds every link for a pull request identity
func (r *GormGitHubLinkRepository) FindByPR(owner, repo string, number int) ([]models.GitHubLink, error) {
	var links []models.GitHubLink
	err := r.db.
		Where("repository_owner = ? AND repository_name = ? AND pr_number = ?", owner, repo, number).
		Order("id ASC").
		Find(&links).Error
	return links, err
}

// List retrieves links, newest first
func (r *GormGitHubLinkRepository) List(filter GitHubLinkFilter) ([]models.GitHubLink, int64, error) {
	var links []models.GitHubLink
	query := r.db.Model(&models.GitHubLink{})

	if filter.TaskID != 0 {
		query = query.Where("task_id = ?", filter.TaskID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(filter.Page)).
		Order("created_at DESC, id DESC").
		Find(&links).Error; err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// Update updates a link
func (r *GormGitHubLinkRepository) Update(link *models.GitHubLink) error {
	return r.db.Save(link).Error
}

// Delete deletes a link
func (r *GormGitHubLinkRepository) Delete(id uint64) error {
	return r.db.Delete(&models.GitHubLink{}, id).Error
}
