package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/utils"
	"gorm.io/gorm"
)

// ReleaseService manages releases
type ReleaseService struct {
	store *repository.Store
}

// NewReleaseService creates a new ReleaseService
func NewReleaseService(store *repository.Store) *ReleaseService {
	return &ReleaseService{store: store}
}

// CreateReleaseInput represents input for creating a release
type CreateReleaseInput struct {
	Version     string
	Title       string
	Description string
	TargetDate  *time.Time
	ReleaseDate *time.Time
	Status      models.ReleaseStatus
}

// UpdateReleaseInput represents input for updating a release
type UpdateReleaseInput struct {
	Version          *string
	Title            *string
	Description      *string
	TargetDate       *time.Time
	ClearTargetDate  bool
	ReleaseDate      *time.Time
	ClearReleaseDate bool
	Status           *models.ReleaseStatus
}

// CreateRelease creates a release with a unique version
func (s *ReleaseService) CreateRelease(ctx context.Context, input CreateReleaseInput) (*models.Release, error) {
	version := strings.TrimSpace(input.Version)
	if version == "" {
		return nil, validationError("version is required", nil)
	}
	status := input.Status
	if status == "" {
		status = models.ReleaseStatusPlanned
	}
	if !status.Valid() {
		return nil, validationError("unknown release status", map[string]interface{}{"status": status})
	}

	release := &models.Release{
		Version:     version,
		Title:       input.Title,
		Description: input.Description,
		TargetDate:  input.TargetDate,
		ReleaseDate: input.ReleaseDate,
		Status:      status,
	}

	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if err := ensureVersionFree(repos, version, 0); err != nil {
			return err
		}
		if err := repos.Releases.Create(release); err != nil {
			return fmt.Errorf("failed to create release: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return release, nil
}

// GetRelease returns a release
func (s *ReleaseService) GetRelease(ctx context.Context, id uint64) (*models.Release, error) {
	release, err := s.store.Repos(ctx).Releases.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "Release", id)
	}
	return release, nil
}

// GetReleaseByVersion returns a release by its version string
func (s *ReleaseService) GetReleaseByVersion(ctx context.Context, version string) (*models.Release, error) {
	release, err := s.store.Repos(ctx).Releases.FindByVersion(version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundBy("Release", "version", version)
		}
		return nil, fmt.Errorf("failed to find release: %w", err)
	}
	return release, nil
}

// ListReleases returns releases, optionally filtered by status
func (s *ReleaseService) ListReleases(ctx context.Context, status models.ReleaseStatus, page utils.PaginationParams) ([]models.Release, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, validationError("unknown release status", map[string]interface{}{"status": status})
	}
	releases, total, err := s.store.Repos(ctx).Releases.List(repository.ReleaseFilter{Status: status, Page: page})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list releases: %w", err)
	}
	return releases, total, nil
}

// UpdateRelease updates the provided attributes of a release
func (s *ReleaseService) UpdateRelease(ctx context.Context, id uint64, input UpdateReleaseInput) (*models.Release, error) {
	var release *models.Release
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		var err error
		release, err = repos.Releases.FindByID(id)
		if err != nil {
			return lookupError(err, "Release", id)
		}

		if input.Version != nil {
			version := strings.TrimSpace(*input.Version)
			if version == "" {
				return validationError("version cannot be empty", nil)
			}
			if version != release.Version {
				if err := ensureVersionFree(repos, version, id); err != nil {
					return err
				}
				release.Version = version
			}
		}
		if input.Title != nil {
			release.Title = *input.Title
		}
		if input.Description != nil {
			release.Description = *input.Description
		}
		if input.ClearTargetDate {
			release.TargetDate = nil
		} else if input.TargetDate != nil {
			release.TargetDate = input.TargetDate
		}
		if input.ClearReleaseDate {
			release.ReleaseDate = nil
		} else if input.ReleaseDate != nil {
			release.ReleaseDate = input.ReleaseDate
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return validationError("unknown release status", map[string]interface{}{"status": *input.Status})
			}
			release.Status = *input.Status
		}

		if err := repos.Releases.Update(release); err != nil {
			return fmt.Errorf("failed to update release: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return release, nil
}

// DeleteRelease deletes a release; its tasks are kept and detached
func (s *ReleaseService) DeleteRelease(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Releases.FindByID(id); err != nil {
			return lookupError(err, "Release", id)
		}
		if err := repos.Tasks.ClearRelease(id); err != nil {
			return fmt.Errorf("failed to detach tasks: %w", err)
		}
		if err := repos.Releases.Delete(id); err != nil {
			return fmt.Errorf("failed to delete release: %w", err)
		}
		return nil
	})
}

func ensureVersionFree(repos *repository.Repositories, version string, exceptID uint64) error {
	existing, err := repos.Releases.FindByVersion(version)
	if err == nil && existing.ID != exceptID {
		return alreadyExists("Release", "version", version)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check version: %w", err)
	}
	return nil
}
