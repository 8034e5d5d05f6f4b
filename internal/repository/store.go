package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to the same gorm handle,
// so a service can use several of them inside one transaction.
type Repositories struct {
	Users        UserRepository
	Teams        TeamRepository
	Themes       ThemeRepository
	Releases     ReleaseRepository
	ProjectTypes ProjectTypeRepository
	TaskTypes    TaskTypeRepository
	Projects     ProjectRepository
	Tasks        TaskRepository
	GitHubLinks  GitHubLinkRepository
	Sequences    SequenceRepository
}

// NewRepositories binds all repositories to db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Teams:        NewTeamRepository(db),
		Themes:       NewThemeRepository(db),
		Releases:     NewReleaseRepository(db),
		ProjectTypes: NewProjectTypeRepository(db),
		TaskTypes:    NewTaskTypeRepository(db),
		Projects:     NewProjectRepository(db),
		Tasks:        NewTaskRepository(db),
		GitHubLinks:  NewGitHubLinkRepository(db),
		Sequences:    NewSequenceRepository(db),
	}
}

// Store opens per-operation repository bundles.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound to ctx outside of any transaction.
func (s *Store) Repos(ctx context.Context) *Repositories {
	return NewRepositories(s.db.WithContext(ctx))
}

// Transaction runs fn with repositories bound to a single transaction.
// Any error returned by fn rolls the transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(repos *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
