package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/utils"
	"go.uber.org/zap"
)

// ThemeService manages themes
type ThemeService struct {
	store *repository.Store
	log   *zap.Logger
}

// NewThemeService creates a new ThemeService
func NewThemeService(store *repository.Store, log *zap.Logger) *ThemeService {
	return &ThemeService{store: store, log: log}
}

// CreateThemeInput represents input for creating a theme
type CreateThemeInput struct {
	Title       string
	Description string
	Status      string
}

// UpdateThemeInput represents input for updating a theme
type UpdateThemeInput struct {
	Title       *string
	Description *string
	Status      *string
}

// CreateTheme creates a theme; the status defaults to "active"
func (s *ThemeService) CreateTheme(ctx context.Context, input CreateThemeInput) (*models.Theme, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required", nil)
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.DefaultThemeStatus
	}

	theme := &models.Theme{Title: title, Description: input.Description, Status: status}
	if err := s.store.Repos(ctx).Themes.Create(theme); err != nil {
		return nil, fmt.Errorf("failed to create theme: %w", err)
	}
	return theme, nil
}

// GetTheme returns a theme
func (s *ThemeService) GetTheme(ctx context.Context, id uint64) (*models.Theme, error) {
	theme, err := s.store.Repos(ctx).Themes.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "Theme", id)
	}
	return theme, nil
}

// ListThemes returns themes, optionally filtered by status
func (s *ThemeService) ListThemes(ctx context.Context, status string, page utils.PaginationParams) ([]models.Theme, int64, error) {
	themes, total, err := s.store.Repos(ctx).Themes.List(repository.ThemeFilter{Status: status, Page: page})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list themes: %w", err)
	}
	return themes, total, nil
}

// UpdateTheme updates the provided attributes of a theme
func (s *ThemeService) UpdateTheme(ctx context.Context, id uint64, input UpdateThemeInput) (*models.Theme, error) {
	var theme *models.Theme
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		var err error
		theme, err = repos.Themes.FindByID(id)
		if err != nil {
			return lookupError(err, "Theme", id)
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return validationError("title cannot be empty", nil)
			}
			theme.Title = title
		}
		if input.Description != nil {
			theme.Description = *input.Description
		}
		if input.Status != nil {
			status := strings.TrimSpace(*input.Status)
			if status == "" {
				return validationError("status cannot be empty", nil)
			}
			theme.Status = status
		}

		if err := repos.Themes.Update(theme); err != nil {
			return fmt.Errorf("failed to update theme: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return theme, nil
}

// DeleteTheme deletes a theme; its projects are kept and detached
func (s *ThemeService) DeleteTheme(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Themes.FindByID(id); err != nil {
			return lookupError(err, "Theme", id)
		}
		if err := repos.Projects.ClearTheme(id); err != nil {
			return fmt.Errorf("failed to detach projects: %w", err)
		}
		if err := repos.Themes.Delete(id); err != nil {
			return fmt.Errorf("failed to delete theme: %w", err)
		}
		return nil
	})
}

// TransitionStatus moves every theme in oldStatus to newStatus and returns how many moved.
// The match on oldStatus is case-insensitive.
func (s *ThemeService) TransitionStatus(ctx context.Context, oldStatus, newStatus string) (int64, error) {
	oldStatus = strings.TrimSpace(oldStatus)
	newStatus = strings.TrimSpace(newStatus)
	if oldStatus == "" || newStatus == "" {
		return 0, validationError("both old and new status are required", nil)
	}

	var count int64
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		var err error
		count, err = repos.Themes.TransitionStatus(oldStatus, newStatus)
		if err != nil {
			return fmt.Errorf("failed to transition themes: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("transitioned themes",
		zap.String("from", oldStatus),
		zap.String("to", newStatus),
		zap.Int64("count", count),
	)
	return count, nil
}
