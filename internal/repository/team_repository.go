package repository

import (
	"github.com/yukikurage/corepm/internal/database"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(team *models.Team) error {
	return r.db.Omit(clause.Associations).Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindBySlug finds a team by slug
func (r *GormTeamRepository) FindBySlug(slug string) (*models.Team, error) {
	var team models.Team
	if err := r.db.Where("slug = ?", slug).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List retrieves teams ordered by name
func (r *GormTeamRepository) List(page utils.PaginationParams) ([]models.Team, int64, error) {
	var teams []models.Team
	query := r.db.Model(&models.Team{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Scopes(database.Paginate(page)).Order("name ASC, id ASC").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Omit(clause.Associations).Save(team).Error
}

// Delete deletes a team row
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Team{}, id).Error
}

// AddMember adds a user to a team
func (r *GormTeamRepository) AddMember(member *models.TeamMember) error {
	return r.db.Omit(clause.Associations).Create(member).Error
}

// RemoveMember removes a user from a team
func (r *GormTeamRepository) RemoveMember(teamID, userID uint64) error {
	return r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// FindMember finds a specific team membership
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists the members of a team with their users
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Order("user_id ASC").
		Find(&members).Error
	return members, err
}

// DeleteMembers removes every membership of a team
func (r *GormTeamRepository) DeleteMembers(teamID uint64) error {
	return r.db.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error
}
