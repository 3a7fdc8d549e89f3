// Package dto contains the request and response shapes of the HTTP API.
package dto

import "noted/internal/server/domain/entities"

// RegisterRequest carries the data for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is the result of a successful register or login.
type SessionResponse struct {
	Token string           `json:"token"`
	User  *ProfileResponse `json:"user"`
}

// ProfileResponse describes an account without its credentials.
type ProfileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// NewProfileResponse maps a user entity onto the wire shape.
func NewProfileResponse(user *entities.User) *ProfileResponse {
	return &ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	}
}
