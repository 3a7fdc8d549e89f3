// Package app implements the application business logic of the note service.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"noted/internal/server/domain/entities"
	"noted/internal/server/ports/cache"
	"noted/internal/server/ports/repositories"
	"noted/pkg/logger"
)

// Business-level errors. The HTTP adapter maps these onto status codes and
// the message text travels verbatim to the client.
var (
	ErrNotFound           = errors.New("note not found")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("you are not the author of this note")
	ErrTitleLength        = errors.New("title must be between 4 and 40 characters")
	ErrContentLength      = errors.New("content must be at most 180 characters")
	ErrPrivateNeedsAuthor = errors.New("private notes require a signed-in author")
	ErrInvalidLimit       = errors.New("limit must be between 1 and 100")
)

// ValidationErrors groups the input-shape errors for the HTTP status mapping.
var ValidationErrors = []error{ErrTitleLength, ErrContentLength, ErrInvalidLimit}

// Feed pagination bounds.
const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 100
)

// publicFeedCacheKey caches the first default-sized public page only; any
// successful mutation invalidates it.
const publicFeedCacheKey = "feed:public:first"

// FeedPage is one page of the feed. NextCursor is the id of the last note in
// the page, or "" when no further pages exist.
type FeedPage struct {
	Notes      []*entities.Note `json:"notes"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// NotePatch carries the optional fields of an update; nil means unchanged.
type NotePatch struct {
	Title     *string
	Content   *string
	IsPrivate *bool
}

// NoteUseCase implements note CRUD and cursor pagination over the feed.
type NoteUseCase struct {
	noteRepo repositories.NoteRepository
	userRepo repositories.UserRepository
	cache    cache.Cache
}

// NewNoteUseCase creates a new note use case. The cache may be nil, in which
// case every read goes to the repository.
func NewNoteUseCase(noteRepo repositories.NoteRepository, userRepo repositories.UserRepository, feedCache cache.Cache) *NoteUseCase {
	return &NoteUseCase{
		noteRepo: noteRepo,
		userRepo: userRepo,
		cache:    feedCache,
	}
}

// ListFeed returns one page of the feed. Ordering is (created_at DESC, id
// DESC); the cursor note is excluded; the next cursor is the id of the last
// note in the returned page. myNotes requires an authenticated caller.
func (uc *NoteUseCase) ListFeed(ctx context.Context, limit int, myNotes bool, cursor, callerID string) (*FeedPage, error) {
	log := logger.Log(ctx).With(zap.String("method", "ListFeed"))

	if limit == 0 {
		limit = DefaultFeedLimit
	}
	if limit < 0 || limit > MaxFeedLimit {
		return nil, fmt.Errorf("validating limit %d: %w", limit, ErrInvalidLimit)
	}
	if myNotes && callerID == "" {
		log.Debug(ctx, "my-notes feed requested anonymously")
		return nil, fmt.Errorf("listing my notes: %w", ErrUnauthorized)
	}

	cacheable := uc.cache != nil && callerID == "" && !myNotes && cursor == "" && limit == DefaultFeedLimit
	if cacheable {
		if page := uc.cachedPage(ctx); page != nil {
			log.Debug(ctx, "serving public feed from cache")
			return page, nil
		}
	}

	// One extra row decides whether a next page exists.
	notes, err := uc.noteRepo.ListFeed(ctx, repositories.FeedQuery{
		Fetch:    limit + 1,
		MyNotes:  myNotes,
		Cursor:   cursor,
		CallerID: callerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}

	page := &FeedPage{Notes: notes}
	if len(notes) > limit {
		page.Notes = notes[:limit]
		page.NextCursor = notes[limit-1].ID
	}

	if cacheable {
		uc.storePage(ctx, page)
	}

	return page, nil
}

// GetNote returns a single note. Private notes are visible to their author
// only; everyone else gets a not-found.
func (uc *NoteUseCase) GetNote(ctx context.Context, callerID, noteID string) (*entities.Note, error) {
	note, err := uc.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil || (note.IsPrivate && note.AuthorID() != callerID) {
		return nil, fmt.Errorf("looking up note %s: %w", noteID, ErrNotFound)
	}

	return note, nil
}

// CreateNote validates the input and persists a new note. Empty content is
// replaced with the default placeholder, newlines are converted to spaces.
// Anonymous callers may create public notes only.
func (uc *NoteUseCase) CreateNote(ctx context.Context, callerID, title, content string, isPrivate bool) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "CreateNote"))

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	content = normalizeContent(content)
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if isPrivate && callerID == "" {
		log.Debug(ctx, "anonymous private note rejected")
		return nil, fmt.Errorf("creating private note: %w: %w", ErrPrivateNeedsAuthor, ErrUnauthorized)
	}

	author, err := uc.resolveAuthor(ctx, callerID)
	if err != nil {
		return nil, err
	}

	note, err := uc.noteRepo.Create(ctx, entities.NewNote(author, title, content, isPrivate))
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	uc.invalidateFeed(ctx)
	log.Info(ctx, "note created", zap.String("note_id", note.ID), zap.Bool("is_private", note.IsPrivate))
	return note, nil
}

// UpdateNote merges the patch into an existing note owned by the caller.
func (uc *NoteUseCase) UpdateNote(ctx context.Context, callerID, noteID string, patch NotePatch) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "UpdateNote"), zap.String("note_id", noteID))

	note, err := uc.ownedNote(ctx, callerID, noteID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
		note.Title = *patch.Title
	}
	if patch.Content != nil {
		content := normalizeContent(*patch.Content)
		if err := validateContent(content); err != nil {
			return nil, err
		}
		if content == "" {
			content = entities.DefaultContent
		}
		note.Content = content
	}
	if patch.IsPrivate != nil {
		note.IsPrivate = *patch.IsPrivate
	}

	if err := uc.noteRepo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	uc.invalidateFeed(ctx)
	log.Info(ctx, "note updated")
	return note, nil
}

// DeleteNote removes a note owned by the caller and returns it.
func (uc *NoteUseCase) DeleteNote(ctx context.Context, callerID, noteID string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "DeleteNote"), zap.String("note_id", noteID))

	note, err := uc.ownedNote(ctx, callerID, noteID)
	if err != nil {
		return nil, err
	}

	if err := uc.noteRepo.Delete(ctx, noteID); err != nil {
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}

	uc.invalidateFeed(ctx)
	log.Info(ctx, "note deleted")
	return note, nil
}

// ownedNote loads a note and checks the caller is its author.
func (uc *NoteUseCase) ownedNote(ctx context.Context, callerID, noteID string) (*entities.Note, error) {
	if callerID == "" {
		return nil, fmt.Errorf("mutating note: %w", ErrUnauthorized)
	}

	note, err := uc.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil {
		return nil, fmt.Errorf("looking up note %s: %w", noteID, ErrNotFound)
	}
	if note.AuthorID() != callerID {
		return nil, fmt.Errorf("checking ownership: %w", ErrForbidden)
	}

	return note, nil
}

func (uc *NoteUseCase) resolveAuthor(ctx context.Context, callerID string) (*entities.Author, error) {
	if callerID == "" {
		return nil, nil
	}

	user, err := uc.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("resolving author %s: %w", callerID, ErrUnauthorized)
	}

	return &entities.Author{ID: user.ID, Name: user.Username, AvatarURL: user.AvatarURL}, nil
}

// Cache failures only degrade to the repository, they are never surfaced.
func (uc *NoteUseCase) cachedPage(ctx context.Context) *FeedPage {
	raw, err := uc.cache.Get(ctx, publicFeedCacheKey)
	if err != nil || raw == "" {
		return nil
	}

	var page FeedPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		logger.Log(ctx).Warn(ctx, "dropping malformed cached feed page", zap.Error(err))
		return nil
	}
	return &page
}

func (uc *NoteUseCase) storePage(ctx context.Context, page *FeedPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, publicFeedCacheKey, string(raw), 0); err != nil {
		logger.Log(ctx).Warn(ctx, "failed to cache feed page", zap.Error(err))
	}
}

func (uc *NoteUseCase) invalidateFeed(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, publicFeedCacheKey); err != nil {
		logger.Log(ctx).Warn(ctx, "failed to invalidate feed cache", zap.Error(err))
	}
}

func validateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length < entities.TitleMinLen || length > entities.TitleMaxLen {
		return fmt.Errorf("validating title: %w", ErrTitleLength)
	}
	return nil
}

func validateContent(content string) error {
	if utf8.RuneCountInString(content) > entities.ContentMaxLen {
		return fmt.Errorf("validating content: %w", ErrContentLength)
	}
	return nil
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// normalizeContent converts newlines to spaces, matching the form behavior.
func normalizeContent(content string) string {
	return strings.TrimSpace(newlineReplacer.Replace(content))
}
