// Package http wires the fiber application of the note service.
package http

import (
	"github.com/gofiber/fiber/v3"

	"noted/internal/server/adapters/http/auth"
	"noted/internal/server/adapters/http/middleware"
	"noted/internal/server/adapters/http/notes"
	"noted/internal/server/app"
	"noted/internal/server/ports/services"
)

// SetupRouter registers all routes of the note service.
func SetupRouter(fiberApp *fiber.App, authUC *app.AuthUseCase, noteUC *app.NoteUseCase, tokens services.TokenService) {
	authHandler := auth.NewHandler(authUC)
	notesHandler := notes.NewHandler(noteUC)

	fiberApp.Use(middleware.NewLoggerMiddleware())
	fiberApp.Use(middleware.NewRecoveryMiddleware())

	apiV1 := fiberApp.Group("/api/v1")

	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	userRoutes := apiV1.Group("/user")
	userRoutes.Use(middleware.NewAuthMiddleware(tokens))
	userRoutes.Get("/profile", authHandler.GetProfile)

	// Note routes allow anonymous reads and public anonymous creates; the
	// use case enforces ownership on mutations.
	notesRoutes := apiV1.Group("/notes")
	notesRoutes.Use(middleware.NewOptionalAuthMiddleware(tokens))
	notesRoutes.Get("/", notesHandler.ListFeed)
	notesRoutes.Post("/", notesHandler.CreateNote)
	notesRoutes.Get("/:note_id", notesHandler.GetNote)
	notesRoutes.Patch("/:note_id", notesHandler.UpdateNote)
	notesRoutes.Delete("/:note_id", notesHandler.DeleteNote)

	fiberApp.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
