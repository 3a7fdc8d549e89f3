// Package notes contains the HTTP handlers for the note feed and mutations.
package notes

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"noted/internal/server/adapters/http/dto"
	"noted/internal/server/adapters/http/middleware"
	"noted/internal/server/app"
	"noted/pkg/logger"
)

const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerGetNote    = "handling get note request"
	LogHandlerListFeed   = "handling list feed request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerDeleteNote = "handling delete note request"

	ErrMsgInvalidNoteID      = "invalid note id"
	ErrMsgInvalidLimit       = "limit must be an integer"
	ErrMsgInvalidRequestBody = "invalid request body"
)

// Handler serves the note endpoints.
type Handler struct {
	notes *app.NoteUseCase
}

// NewHandler creates a new note handler.
func NewHandler(notes *app.NoteUseCase) *Handler {
	return &Handler{notes: notes}
}

// ListFeed returns one page of the feed. Query parameters: limit, cursor and
// my_notes. Anonymous callers see public notes only.
func (h *Handler) ListFeed(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.ListFeed"))
	log.Debug(userCtx, LogHandlerListFeed)

	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			log.Debug(userCtx, ErrMsgInvalidLimit, zap.Error(err))
			return badRequest(ctx, ErrMsgInvalidLimit)
		}
		limit = parsed
	}

	myNotes := ctx.Query("my_notes") == "true"
	cursor := ctx.Query("cursor")

	page, err := h.notes.ListFeed(userCtx, limit, myNotes, cursor, middleware.CallerID(ctx))
	if err != nil {
		log.Error(userCtx, "failed to list feed", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.JSON(page); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// GetNote returns a single note by id.
func (h *Handler) GetNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.GetNote"))
	log.Debug(userCtx, LogHandlerGetNote)

	noteID := ctx.Params("note_id")
	if noteID == "" {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	note, err := h.notes.GetNote(userCtx, middleware.CallerID(ctx), noteID)
	if err != nil {
		log.Error(userCtx, "failed to get note", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.JSON(note); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// CreateNote creates a note. Anonymous callers may create public notes.
func (h *Handler) CreateNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(userCtx, LogHandlerCreateNote)

	var req dto.CreateNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	note, err := h.notes.CreateNote(userCtx, middleware.CallerID(ctx), req.Title, req.Content, req.IsPrivate)
	if err != nil {
		log.Error(userCtx, "failed to create note", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.Status(fiber.StatusCreated).JSON(note); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// UpdateNote patches a note owned by the caller.
func (h *Handler) UpdateNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.UpdateNote"))
	log.Debug(userCtx, LogHandlerUpdateNote)

	noteID := ctx.Params("note_id")
	if noteID == "" {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	var req dto.UpdateNoteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		log.Debug(userCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return badRequest(ctx, ErrMsgInvalidRequestBody)
	}

	note, err := h.notes.UpdateNote(userCtx, middleware.CallerID(ctx), noteID, app.NotePatch{
		Title:     req.Title,
		Content:   req.Content,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		log.Error(userCtx, "failed to update note", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.JSON(note); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// DeleteNote removes a note owned by the caller and returns it, so the
// client can offer an undo.
func (h *Handler) DeleteNote(ctx fiber.Ctx) error {
	userCtx := middleware.RequestContext(ctx)
	log := logger.Log(userCtx).With(zap.String("handler", "Handler.DeleteNote"))
	log.Debug(userCtx, LogHandlerDeleteNote)

	noteID := ctx.Params("note_id")
	if noteID == "" {
		return badRequest(ctx, ErrMsgInvalidNoteID)
	}

	note, err := h.notes.DeleteNote(userCtx, middleware.CallerID(ctx), noteID)
	if err != nil {
		log.Error(userCtx, "failed to delete note", zap.Error(err))
		return handleError(ctx, err)
	}

	if err := ctx.JSON(note); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

func badRequest(ctx fiber.Ctx, message string) error {
	if err := ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	}); err != nil {
		return fmt.Errorf("failed to send bad request response: %w", err)
	}
	return nil
}

// handleError maps business errors onto HTTP statuses. The sentinel message
// travels verbatim in the error field.
func handleError(ctx fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, app.ErrPrivateNeedsAuthor):
		status, message = fiber.StatusUnauthorized, app.ErrPrivateNeedsAuthor.Error()
	case errors.Is(err, app.ErrUnauthorized):
		status, message = fiber.StatusUnauthorized, app.ErrUnauthorized.Error()
	case errors.Is(err, app.ErrForbidden):
		status, message = fiber.StatusForbidden, app.ErrForbidden.Error()
	case errors.Is(err, app.ErrNotFound):
		status, message = fiber.StatusNotFound, app.ErrNotFound.Error()
	default:
		for _, validationErr := range app.ValidationErrors {
			if errors.Is(err, validationErr) {
				status, message = fiber.StatusBadRequest, validationErr.Error()
				break
			}
		}
	}

	if err := ctx.Status(status).JSON(fiber.Map{
		"error": message,
	}); err != nil {
		return fmt.Errorf("error sending %d response: %w", status, err)
	}
	return nil
}
