package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/corepm/internal/models"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: 42, Role: models.UserRoleAdmin}

	token, expiresAt, err := tm.CreateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, models.UserRoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).CreateToken(&models.User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := tm.CreateToken(&models.User{ID: 1})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
