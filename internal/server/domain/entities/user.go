package entities

import (
	"errors"
	"time"
)

// Domain errors for users.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyUsername = errors.New("username cannot be empty")
)

// User is a registered account that can author notes.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
