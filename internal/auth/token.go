package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/corepm/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims of an access token
type Claims struct {
	UserID uint64          `json:"uid"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secretKey string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// CreateToken issues an access token for user and returns it with its expiry
func (tm *TokenManager) CreateToken(user *models.User) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)

	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies a token and returns its claims
func (tm *TokenManager) ParseToken(requestToken string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(requestToken, claims, func(_ *jwt.Token) (any, error) {
		return tm.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
