// Package remote talks to the note service over HTTP and maps its error
// responses onto typed error kinds.
package remote

import (
	"context"
	"errors"
	"fmt"

	"noted/internal/client/feed"
)

// Error kinds. Use errors.Is against these to branch on the failure class;
// the concrete error carries the server's message verbatim.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("authorization error")
	ErrNotFound     = errors.New("not found")
	ErrTransport    = errors.New("transport error")
)

// Error is a failure reported by the server or the transport.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates an error of the given kind carrying the message verbatim.
func NewError(kind error, message string) *Error {
	if message == "" {
		message = kind.Error()
	}
	return &Error{Kind: kind, Message: message}
}

// CreateInput carries the data for creating a note.
type CreateInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsPrivate bool   `json:"is_private"`
}

// Client is the remote surface the coordinator depends on.
type Client interface {
	FetchPage(ctx context.Context, scope feed.Scope, cursor string) (feed.Page, error)
	CreateNote(ctx context.Context, in CreateInput) (feed.Note, error)
	UpdateNote(ctx context.Context, id string, patch feed.Patch) (feed.Note, error)
	DeleteNote(ctx context.Context, id string) (feed.Note, error)
	CurrentUser(ctx context.Context) (*feed.Author, error)
}

// Session is the result of a register or login call.
type Session struct {
	Token string
	User  *feed.Author
}

func transportError(err error) *Error {
	return NewError(ErrTransport, fmt.Sprintf("request failed: %v", err))
}
