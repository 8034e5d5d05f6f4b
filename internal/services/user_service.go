package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/corepm/internal/constants"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"github.com/yukikurage/corepm/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles user administration.
type UserService struct {
	store *repository.Store
}

// NewUserService creates a new UserService.
func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// CreateUserInput represents the information needed to create a user.
// An empty Role defaults to user; a nil IsActive defaults to true.
type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	Role     models.UserRole
	IsActive *bool
}

// UpdateUserInput represents input for updating a user.
type UpdateUserInput struct {
	Email    *string
	Password *string
	FullName *string
	Role     *models.UserRole
	IsActive *bool
}

// CreateUser creates a new user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.UserRoleUser
	}
	if !role.Valid() {
		return nil, validationError("unknown role", map[string]interface{}{"role": role})
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		IsActive:     active,
	}

	err = s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if err := ensureEmailFree(repos, email, 0); err != nil {
			return err
		}
		if err := repos.Users.Create(user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Repos(ctx).Users.FindByID(id)
	if err != nil {
		return nil, lookupError(err, "User", id)
	}
	return user, nil
}

// ListUsers returns users ordered by ID.
func (s *UserService) ListUsers(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.store.Repos(ctx).Users.List(page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser updates the provided attributes of a user.
func (s *UserService) UpdateUser(ctx context.Context, id uint64, input UpdateUserInput) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		var err error
		user, err = repos.Users.FindByID(id)
		if err != nil {
			return lookupError(err, "User", id)
		}

		if input.Email != nil {
			email, err := normalizeEmail(*input.Email)
			if err != nil {
				return err
			}
			if email != user.Email {
				if err := ensureEmailFree(repos, email, id); err != nil {
					return err
				}
				user.Email = email
			}
		}
		if input.Password != nil {
			hash, err := hashPassword(*input.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		if input.FullName != nil {
			user.FullName = strings.TrimSpace(*input.FullName)
		}
		if input.Role != nil {
			if !input.Role.Valid() {
				return validationError("unknown role", map[string]interface{}{"role": *input.Role})
			}
			user.Role = *input.Role
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}

		if err := repos.Users.Update(user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser deletes a user and their memberships.
func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	return s.store.Transaction(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Users.FindByID(id); err != nil {
			return lookupError(err, "User", id)
		}
		if err := repos.Users.Delete(id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if fieldValidator.Var(email, "required,email") != nil {
		return "", validationError("invalid email address", map[string]interface{}{"email": raw})
	}
	return email, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", validationError(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength), nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func ensureEmailFree(repos *repository.Repositories, email string, exceptID uint64) error {
	existing, err := repos.Users.FindByEmail(email)
	if err == nil && existing.ID != exceptID {
		return alreadyExists("User", "email", email)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}
