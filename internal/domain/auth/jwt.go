// Package auth issues and validates the bearer tokens that identify the
// actor behind API calls.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "docflow/internal/core/context"
	"docflow/internal/core/id"
	"docflow/internal/domain/audit"
)

// Roles understood by the API.
const (
	RoleAccountant = "accountant"
	RoleApprover   = "approver"
	RoleAdmin      = "admin"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "docflow",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"uid"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles"`
}

var (
	// ErrEmptySecret is returned when signing without a configured secret.
	ErrEmptySecret = errors.New("jwt secret is empty")
	// ErrReservedUserID is returned for the scheduler's actor id.
	ErrReservedUserID = errors.New("user id is reserved")
)

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// GenerateAccessToken generates a new access token.
func (s *JWTService) GenerateAccessToken(userID, email string, roles []string) (string, time.Time, error) {
	if s.config.Secret == "" {
		return "", time.Time{}, ErrEmptySecret
	}
	if userID == "" {
		return "", time.Time{}, errors.New("user id is required")
	}
	if audit.IsReservedUserID(userID) {
		return "", time.Time{}, ErrReservedUserID
	}

	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New().String(),
			Issuer:    s.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Email:  email,
		Roles:  slices.Clone(roles),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns user context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no user id")
	}
	if audit.IsReservedUserID(claims.UserID) {
		return nil, ErrReservedUserID
	}

	return &appctx.UserContext{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		SessionID: claims.ID,
	}, nil
}
