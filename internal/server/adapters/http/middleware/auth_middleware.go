package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"noted/internal/server/ports/services"
	"noted/pkg/logger"
)

// UserIDKey is the fiber local holding the authenticated caller id.
const UserIDKey = "userID"

const (
	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorInvalidToken       = "invalid or expired token"
)

// NewAuthMiddleware rejects requests without a valid bearer token.
func NewAuthMiddleware(tokens services.TokenService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := requestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))

		authHeader := ctx.Get("Authorization")
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return unauthorized(ctx, ErrorNoAuthHeader)
		}

		userID, err := callerFromHeader(requestCtx, tokens, authHeader)
		if err != nil {
			log.Debug(requestCtx, "rejecting request", zap.Error(err))
			return unauthorized(ctx, err.Error())
		}

		ctx.Locals(UserIDKey, userID)
		return ctx.Next()
	}
}

// NewOptionalAuthMiddleware resolves the caller when a token is present but
// lets anonymous requests through. A malformed token is still rejected.
func NewOptionalAuthMiddleware(tokens services.TokenService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if authHeader == "" {
			return ctx.Next()
		}

		requestCtx := requestContext(ctx)
		userID, err := callerFromHeader(requestCtx, tokens, authHeader)
		if err != nil {
			logger.Log(requestCtx).Debug(requestCtx, "rejecting request", zap.Error(err))
			return unauthorized(ctx, err.Error())
		}

		ctx.Locals(UserIDKey, userID)
		return ctx.Next()
	}
}

// CallerID returns the authenticated user id, or "" for anonymous requests.
func CallerID(ctx fiber.Ctx) string {
	userID, _ := ctx.Locals(UserIDKey).(string)
	return userID
}

// RequestContext returns the request-scoped context installed by the logger
// middleware, falling back to the raw fiber context.
func RequestContext(ctx fiber.Ctx) context.Context {
	return requestContext(ctx)
}

func requestContext(ctx fiber.Ctx) context.Context {
	if userCtx, ok := ctx.Locals(UserContextKey).(context.Context); ok {
		return userCtx
	}
	return ctx.Context()
}

func callerFromHeader(ctx context.Context, tokens services.TokenService, authHeader string) (string, error) {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return "", errInvalidTokenFormat
	}

	userID, err := tokens.ValidateAccessToken(ctx, token)
	if err != nil {
		return "", errInvalidToken
	}
	return userID, nil
}

var (
	errInvalidTokenFormat = fiber.NewError(fiber.StatusUnauthorized, ErrorInvalidTokenFormat)
	errInvalidToken       = fiber.NewError(fiber.StatusUnauthorized, ErrorInvalidToken)
)

func unauthorized(ctx fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
	})
}
