// Package auth contains the HTTP handlers for accounts and sessions.
package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"noted/internal/server/adapters/http/dto"
	"noted/internal/server/adapters/http/middleware"
	"noted/internal/server/app"
	"noted/pkg/logger"
)

const (
	LogHandlerRegister   = "handling register request"
	LogHandlerLogin      = "handling login request"
	LogHandlerGetProfile = "handling get profile request"

	ErrMsgInvalidRequestBody = "invalid request body"
)

// Handler serves the auth endpoints.
type Handler struct {
	auth *app.AuthUseCase
}

// NewHandler creates a new auth handler.
func NewHandler(auth *app.AuthUseCase) *Handler {
	return &Handler{auth: auth}
}

// Register creates an account and returns a session token.
func (h *Handler) Register(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.Register"))
	log.Debug(userCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	session, err := h.auth.Register(userCtx, req.Email, req.Username, req.Password)
	if err != nil {
		log.Error(userCtx, "failed to register user", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.Status(fiber.StatusCreated).JSON(sessionResponse(session)); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// Login verifies credentials and returns a session token.
func (h *Handler) Login(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.Login"))
	log.Debug(userCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	session, err := h.auth.Login(userCtx, req.Email, req.Password)
	if err != nil {
		log.Error(userCtx, "failed to log user in", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.JSON(sessionResponse(session)); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// GetProfile returns the authenticated caller's account.
func (h *Handler) GetProfile(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.GetProfile"))
	log.Debug(userCtx, LogHandlerGetProfile)

	user, err := h.auth.GetProfile(userCtx, middleware.CallerID(ctx))
	if err != nil {
		log.Error(userCtx, "failed to get profile", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.JSON(dto.NewProfileResponse(user)); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func sessionResponse(session *app.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Token: session.Token,
		User:  dto.NewProfileResponse(session.User),
	}
}

func badRequest(ctx fiber.Ctx, message string) error {
	if err := ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	}); err != nil {
		return fmt.Errorf("failed to send bad request response: %w", err)
	}
	return nil
}

func handleError(ctx fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		status, message = fiber.StatusUnauthorized, app.ErrInvalidCredentials.Error()
	case errors.Is(err, app.ErrUnauthorized):
		status, message = fiber.StatusUnauthorized, app.ErrUnauthorized.Error()
	case errors.Is(err, app.ErrEmailExists):
		status, message = fiber.StatusConflict, app.ErrEmailExists.Error()
	case errors.Is(err, app.ErrInvalidEmail):
		status, message = fiber.StatusBadRequest, app.ErrInvalidEmail.Error()
	case errors.Is(err, app.ErrEmptyUsername):
		status, message = fiber.StatusBadRequest, app.ErrEmptyUsername.Error()
	case errors.Is(err, app.ErrPasswordTooShort):
		status, message = fiber.StatusBadRequest, app.ErrPasswordTooShort.Error()
	}

	if err := ctx.Status(status).JSON(fiber.Map{
		"error": message,
	}); err != nil {
		return fmt.Errorf("error sending %d response: %w", status, err)
	}
	return nil
}
