package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// Claims are the JWT claims carried by access tokens: subject (user ID),
// role, expiry, and jti for revocation.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// JWTService signs, validates, and revokes access tokens. Revocation stores
// the jti in the cache until the token would have expired anyway.
type JWTService struct {
	secret         []byte
	accessDuration time.Duration
	cache          ports.Cache
	log            *zap.Logger
}

func NewJWTService(secret string, accessDuration time.Duration, cache ports.Cache, log *zap.Logger) *JWTService {
	if accessDuration <= 0 {
		accessDuration = 15 * time.Minute
	}
	return &JWTService{
		secret:         []byte(secret),
		accessDuration: accessDuration,
		cache:          cache,
		log:            log,
	}
}

// GenerateAccessToken creates a signed token for the user.
func (s *JWTService) GenerateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Role: string(user.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, rejecting revoked ones.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	if s.isRevoked(ctx, claims.ID) {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

// RevokeToken blacklists the token's jti until its natural expiry.
func (s *JWTService) RevokeToken(ctx context.Context, tokenID string) error {
	if s.cache == nil {
		return nil
	}
	key := "revoked_token:" + tokenID
	if err := s.cache.Set(ctx, key, "revoked", s.accessDuration); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log.Info("token revoked", zap.String("token_id", tokenID))
	return nil
}

func (s *JWTService) isRevoked(ctx context.Context, tokenID string) bool {
	if s.cache == nil {
		return false
	}
	val, err := s.cache.Get(ctx, "revoked_token:"+tokenID)
	if err != nil {
		return false
	}
	return val == "revoked"
}
