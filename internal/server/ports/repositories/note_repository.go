// Package repositories defines repository interfaces for the note service.
package repositories

import (
	"context"

	"noted/internal/server/domain/entities"
)

// FeedQuery selects a window of the note feed. Fetch is the number of rows to
// return (callers fetch one extra row to derive the next cursor). Cursor is
// the id of the last note of the previous page; the cursor note itself is
// excluded. CallerID is empty for anonymous callers.
type FeedQuery struct {
	Fetch    int
	MyNotes  bool
	Cursor   string
	CallerID string
}

// NoteRepository is the persistence port for notes. Lookups return (nil, nil)
// when the note does not exist.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)
	GetByID(ctx context.Context, noteID string) (*entities.Note, error)
	ListFeed(ctx context.Context, q FeedQuery) ([]*entities.Note, error)
	Update(ctx context.Context, note *entities.Note) error
	Delete(ctx context.Context, noteID string) error
}
