// Package services provides implementations of the service ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"noted/internal/server/ports/services"
	"noted/pkg/logger"
)

// ErrInvalidAlgorithm is returned for tokens signed with the wrong algorithm.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

const errCtxValidating = "validating token"

// Claims adapts the domain token payload to the JWT library.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ServiceJWT implements services.TokenService with HMAC-signed tokens.
type ServiceJWT struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// NewJWT creates a new JWT token service.
func NewJWT(secretKey string, tokenTTL time.Duration) services.TokenService {
	return &ServiceJWT{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// GenerateAccessToken issues a signed access token for the user.
func (s *ServiceJWT) GenerateAccessToken(ctx context.Context, userID, username string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "GenerateAccessToken"))

	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		log.Error(ctx, "failed to sign token", zap.Error(err))
		return "", fmt.Errorf("signing token: %w", err)
	}

	log.Debug(ctx, "access token generated", zap.String("user_id", userID))
	return signed, nil
}

// ValidateAccessToken checks a JWT and returns the user id it carries.
func (s *ServiceJWT) ValidateAccessToken(ctx context.Context, tokenString string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", "ValidateAccessToken"))
	log.Debug(ctx, "validating token")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		if strings.Contains(err.Error(), "token is expired") {
			log.Debug(ctx, "token has expired")
			return "", fmt.Errorf("%s: %w", errCtxValidating, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, "error parsing token", zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxValidating, services.ErrInvalidJWTToken)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		log.Debug(ctx, "invalid token format")
		return "", fmt.Errorf("%s: %w", errCtxValidating, services.ErrInvalidJWTToken)
	}

	if claims.UserID == "" {
		log.Debug(ctx, "user_id claim is empty")
		return "", fmt.Errorf("%s: %w", errCtxValidating, services.ErrInvalidJWTToken)
	}

	log.Debug(ctx, "token validated", zap.String("user_id", claims.UserID))
	return claims.UserID, nil
}
