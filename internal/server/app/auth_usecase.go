package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"go.uber.org/zap"

	"noted/internal/server/domain/entities"
	"noted/internal/server/ports/repositories"
	"noted/internal/server/ports/services"
	"noted/pkg/logger"
)

// Account-level errors.
var (
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const passwordMinLen = 8

// Session is the result of a successful register or login.
type Session struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// AuthUseCase implements account registration, login and profile lookup.
type AuthUseCase struct {
	userRepo    repositories.UserRepository
	passwordSvc services.PasswordService
	tokenSvc    services.TokenService
}

// NewAuthUseCase creates a new auth use case.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc services.PasswordService,
	tokenSvc services.TokenService,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register creates an account and returns a signed session.
func (a *AuthUseCase) Register(ctx context.Context, email, username, password string) (*Session, error) {
	log := logger.Log(ctx).With(zap.String("method", "Register"), zap.String("email", email))
	log.Debug(ctx, "starting user registration")

	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("validating email: %w", ErrInvalidEmail)
	}
	if username == "" {
		return nil, fmt.Errorf("validating username: %w", ErrEmptyUsername)
	}
	if utf8.RuneCountInString(password) < passwordMinLen {
		return nil, fmt.Errorf("validating password: %w", ErrPasswordTooShort)
	}

	existing, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		log.Error(ctx, "failed to check existing user", zap.Error(err))
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if existing != nil {
		log.Debug(ctx, "email already registered")
		return nil, fmt.Errorf("registering user: %w", ErrEmailExists)
	}

	hash, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, "failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := a.userRepo.Create(ctx, &entities.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		log.Error(ctx, "failed to create user", zap.Error(err))
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := a.tokenSvc.GenerateAccessToken(ctx, user.ID, user.Username)
	if err != nil {
		log.Error(ctx, "failed to generate token for new user", zap.Error(err))
		return nil, fmt.Errorf("generating token: %w", err)
	}

	log.Info(ctx, "user registered", zap.String("user_id", user.ID))
	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed session.
func (a *AuthUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.Log(ctx).With(zap.String("method", "Login"), zap.String("email", email))
	log.Debug(ctx, "login attempt")

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		log.Error(ctx, "error finding user by email", zap.Error(err))
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		log.Debug(ctx, "login attempt with non-existent email")
		return nil, fmt.Errorf("verifying credentials: %w", ErrInvalidCredentials)
	}

	ok, err := a.passwordSvc.Verify(ctx, user.PasswordHash, password)
	if err != nil {
		log.Error(ctx, "error verifying password", zap.Error(err))
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		log.Debug(ctx, "invalid password provided")
		return nil, fmt.Errorf("verifying credentials: %w", ErrInvalidCredentials)
	}

	token, err := a.tokenSvc.GenerateAccessToken(ctx, user.ID, user.Username)
	if err != nil {
		log.Error(ctx, "failed to generate token on login", zap.Error(err))
		return nil, fmt.Errorf("generating token: %w", err)
	}

	log.Info(ctx, "user logged in", zap.String("user_id", user.ID))
	return &Session{Token: token, User: user}, nil
}

// GetProfile returns the account of an authenticated caller.
func (a *AuthUseCase) GetProfile(ctx context.Context, callerID string) (*entities.User, error) {
	if callerID == "" {
		return nil, fmt.Errorf("getting profile: %w", ErrUnauthorized)
	}

	user, err := a.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("getting profile: %w", ErrUnauthorized)
	}

	return user, nil
}
