// Package services defines service interfaces consumed by the use cases.
package services

import (
	"context"
	"errors"
)

// Token validation errors.
var (
	ErrInvalidJWTToken = errors.New("invalid JWT token")
	ErrExpiredJWTToken = errors.New("JWT token has expired")
)

// TokenService issues and validates access tokens.
type TokenService interface {
	GenerateAccessToken(ctx context.Context, userID, username string) (string, error)
	ValidateAccessToken(ctx context.Context, token string) (string, error)
}
