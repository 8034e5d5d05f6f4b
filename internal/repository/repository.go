package repository

import (
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves users ordered by ID
	List(page utils.PaginationParams) ([]models.User, int64, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete deletes a user and their team memberships
	Delete(id uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(team *models.Team) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// FindBySlug finds a team by slug
	FindBySlug(slug string) (*models.Team, error)

	// List retrieves teams ordered by name
	List(page utils.PaginationParams) ([]models.Team, int64, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete deletes a team row
	Delete(id uint64) error

	// AddMember adds a user to a team
	AddMember(member *models.TeamMember) error

	// RemoveMember removes a user from a team
	RemoveMember(teamID, userID uint64) error

	// FindMember finds a specific team membership
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListMembers lists the members of a team with their users
	ListMembers(teamID uint64) ([]models.TeamMember, error)

	// DeleteMembers removes every membership of a team
	DeleteMembers(teamID uint64) error
}

// ThemeFilter holds filtering options for listing themes
type ThemeFilter struct {
	Status string
	Page   utils.PaginationParams
}

// ThemeRepository defines the interface for theme data access
type ThemeRepository interface {
	// Create creates a new theme
	Create(theme *models.Theme) error

	// FindByID finds a theme by ID
	FindByID(id uint64) (*models.Theme, error)

	// List retrieves themes, most recently updated first
	List(filter ThemeFilter) ([]models.Theme, int64, error)

	// Update updates a theme
	Update(theme *models.Theme) error

	// Delete deletes a theme row
	Delete(id uint64) error

	// TransitionStatus moves every theme in oldStatus (case-insensitive) to newStatus
	TransitionStatus(oldStatus, newStatus string) (int64, error)
}

// ReleaseFilter holds filtering options for listing releases
type ReleaseFilter struct {
	Status models.ReleaseStatus
	Page   utils.PaginationParams
}

// ReleaseRepository defines the interface for release data access
type ReleaseRepository interface {
	// Create creates a new release
	Create(release *models.Release) error

	// FindByID finds a release by ID
	FindByID(id uint64) (*models.Release, error)

	// FindByVersion finds a release by version
	FindByVersion(version string) (*models.Release, error)

	// List retrieves releases, most recently updated first
	List(filter ReleaseFilter) ([]models.Release, int64, error)

	// Update updates a release
	Update(release *models.Release) error

	// Delete deletes a release row
	Delete(id uint64) error
}

// ProjectTypeRepository defines the interface for project type data access.
// Fields are always loaded in display order.
type ProjectTypeRepository interface {
	// Create creates a project type together with its fields
	Create(projectType *models.ProjectType) error

	// FindByID finds a project type by ID with its fields
	FindByID(id uint64) (*models.ProjectType, error)

	// FindBySlug finds a project type by slug
	FindBySlug(slug string) (*models.ProjectType, error)

	// List retrieves project types ordered by name
	List(page utils.PaginationParams) ([]models.ProjectType, int64, error)

	// Update updates the scalar columns of a project type
	Update(projectType *models.ProjectType) error

	// Delete deletes a project type and its fields
	Delete(id uint64) error

	// ReplaceFields deletes every field of the type and inserts the given ones
	ReplaceFields(typeID uint64, fields []models.ProjectTypeField) error

	// CreateField adds a single field
	CreateField(field *models.ProjectTypeField) error

	// FindField finds a field belonging to the given type
	FindField(typeID, fieldID uint64) (*models.ProjectTypeField, error)

	// UpdateField updates a field
	UpdateField(field *models.ProjectTypeField) error

	// DeleteField deletes a field
	DeleteField(fieldID uint64) error
}

// TaskTypeFilter holds filtering options for listing task types
type TaskTypeFilter struct {
	TeamID uint64
	Page   utils.PaginationParams
}

// TaskTypeRepository defines the interface for task type data access.
// Fields are always loaded in display order.
type TaskTypeRepository interface {
	// Create creates a task type together with its fields
	Create(taskType *models.TaskType) error

	// FindByID finds a task type by ID with its fields
	FindByID(id uint64) (*models.TaskType, error)

	// FindBySlug finds a task type by slug within a team
	FindBySlug(teamID uint64, slug string) (*models.TaskType, error)

	// FirstByTeam returns the team's task type with the lowest ID
	FirstByTeam(teamID uint64) (*models.TaskType, error)

	// CountByTeam counts the task types owned by a team
	CountByTeam(teamID uint64) (int64, error)

	// List retrieves task types ordered by name
	List(filter TaskTypeFilter) ([]models.TaskType, int64, error)

	// Update updates the scalar columns of a task type
	Update(taskType *models.TaskType) error

	// Delete deletes a task type and its fields
	Delete(id uint64) error

	// DeleteByTeam deletes every task type of a team together with their fields
	DeleteByTeam(teamID uint64) error

	// ReplaceFields deletes every field of the type and inserts the given ones
	ReplaceFields(typeID uint64, fields []models.TaskTypeField) error

	// CreateField adds a single field
	CreateField(field *models.TaskTypeField) error

	// FindField finds a field belonging to the given type
	FindField(typeID, fieldID uint64) (*models.TaskTypeField, error)

	// UpdateField updates a field
	UpdateField(field *models.TaskTypeField) error

	// DeleteField deletes a field
	DeleteField(fieldID uint64) error
}

// ProjectFilter holds filtering options for listing projects.
// Zero values are ignored.
type ProjectFilter struct {
	ProjectTypeID uint64
	ThemeID       uint64
	Statuses      []string
	Page          utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// Exists reports whether a project with the ID exists
	Exists(id uint64) (bool, error)

	// List retrieves projects, most recently updated first
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project's columns without touching associations
	Update(project *models.Project) error

	// SetTypeAndStatus rebinds a project to a type with a new status
	SetTypeAndStatus(id, typeID uint64, status string) error

	// Delete deletes a project and its dependency edges
	Delete(id uint64) error

	// CountByType counts projects bound to a project type
	CountByType(typeID uint64) (int64, error)

	// ScanByType walks every project of a type in ID order, one batch at a time
	ScanByType(typeID uint64, fn func(batch []models.Project) error) error

	// ClearTheme detaches every project from a theme
	ClearTheme(themeID uint64) error

	// AddDependency records that id depends on dependsOnID; existing edges are kept
	AddDependency(id, dependsOnID uint64) error

	// RemoveDependency removes the edge if present
	RemoveDependency(id, dependsOnID uint64) error

	// Dependencies lists the projects id depends on
	Dependencies(id uint64) ([]models.Project, error)

	// Dependents lists the projects that depend on id
	Dependents(id uint64) ([]models.Project, error)
}

// TaskFilter holds filtering options for listing tasks.
// Zero values are ignored.
type TaskFilter struct {
	TeamID     uint64
	TaskTypeID uint64
	ProjectID  uint64
	ReleaseID  uint64
	Statuses   []string
	Page       utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByDisplayID finds a task by display ID with optional preloading
	FindByDisplayID(displayID string, preload ...string) (*models.Task, error)

	// Exists reports whether a task with the ID exists
	Exists(id uint64) (bool, error)

	// List retrieves tasks, most recently updated first
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task's columns without touching associations
	Update(task *models.Task) error

	// SetTypeAndStatus rebinds a task to a type with a new status
	SetTypeAndStatus(id, typeID uint64, status string) error

	// Reassign moves a task to another team, type and status
	Reassign(id, teamID, typeID uint64, status string) error

	// Delete deletes a task with its links and dependency edges
	Delete(id uint64) error

	// CountByType counts tasks bound to a task type
	CountByType(typeID uint64) (int64, error)

	// CountByTeam counts tasks owned by a team
	CountByTeam(teamID uint64) (int64, error)

	// CountUsingTeamTypesElsewhere counts tasks of other teams that use one of the team's task types
	CountUsingTeamTypesElsewhere(teamID uint64) (int64, error)

	// ScanByType walks every task of a type in ID order, one batch at a time
	ScanByType(typeID uint64, fn func(batch []models.Task) error) error

	// ScanByTeam walks every task of a team in ID order, one batch at a time
	ScanByTeam(teamID uint64, fn func(batch []models.Task) error) error

	// ClearProject detaches every task from a project
	ClearProject(projectID uint64) error

	// ClearRelease detaches every task from a release
	ClearRelease(releaseID uint64) error

	// MaxID returns the highest task ID currently stored, or 0
	MaxID() (uint64, error)

	// AddDependency records that id depends on dependsOnID; existing edges are kept
	AddDependency(id, dependsOnID uint64) error

	// RemoveDependency removes the edge if present
	RemoveDependency(id, dependsOnID uint64) error

	// Dependencies lists the tasks id depends on
	Dependencies(id uint64) ([]models.Task, error)

	// Dependents lists the tasks that depend on id
	Dependents(id uint64) ([]models.Task, error)
}

// GitHubLinkFilter holds filtering options for listing links
type GitHubLinkFilter struct {
	TaskID uint64
	Page   utils.PaginationParams
}

// GitHubLinkRepository defines the interface for GitHub link data access
type GitHubLinkRepository interface {
	// Create creates a new link
	Create(link *models.GitHubLink) error

	// FindByID finds a link by ID
	FindByID(id uint64) (*models.GitHubLink, error)

	// FindByPR finds every link for a pull request identity
	FindByPR(owner, repo string, number int) ([]models.GitHubLink, error)

	// List retrieves links, newest first
	List(filter GitHubLinkFilter) ([]models.GitHubLink, int64, error)

	// Update updates a link
	Update(link *models.GitHubLink) error

	// Delete deletes a link
	Delete(id uint64) error
}

// SequenceRepository hands out display id numbers
type SequenceRepository interface {
	// Next returns the next number for prefix; it never returns a number
	// that is already in use by a task
	Next(prefix string) (uint64, error)
}
