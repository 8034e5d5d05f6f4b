package middleware

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/corepm/internal/constants"
	apierrors "github.com/yukikurage/corepm/internal/errors"
	"github.com/yukikurage/corepm/internal/models"
)

// Authenticator resolves the caller of a request
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
	ActiveUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth accepts a bearer token or a login session.
// The resolved user and its ID are stored in the context.
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			user *models.User
			err  error
		)

		if token, ok := bearerToken(c); ok {
			user, err = authenticator.Authenticate(c.Request.Context(), token)
		} else {
			session := sessions.Default(c)
			userID, ok := toUint64(session.Get(constants.ContextKeyUserID))
			if !ok {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}
			user, err = authenticator.ActiveUser(c.Request.Context(), userID)
		}
		if err != nil {
			apierrors.RespondWithServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin rejects authenticated users without the admin role.
// It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			apierrors.Forbidden(c, "Admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

// GetUser retrieves the current user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
