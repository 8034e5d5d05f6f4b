package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/corepm/internal/auth"
	"github.com/yukikurage/corepm/internal/models"
	"github.com/yukikurage/corepm/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	store  *repository.Store
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is an authenticated user with a bearer token.
type LoginResult struct {
	User        *models.User
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.store.Repos(ctx).Users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authenticationError("invalid email or password")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, authenticationError("invalid email or password")
	}
	if !user.IsActive {
		return nil, authenticationError("user is inactive")
	}

	token, expiresAt, err := s.tokens.CreateToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves an active user from a bearer token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, authenticationError("invalid or expired token")
	}
	return s.ActiveUser(ctx, claims.UserID)
}

// ActiveUser returns the user if it exists and is active.
func (s *AuthService) ActiveUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Repos(ctx).Users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authenticationError("user no longer exists")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, authenticationError("user is inactive")
	}
	return user, nil
}
