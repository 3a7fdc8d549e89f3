// Package entities defines the domain entities for the note service.
package entities

import "time"

// DefaultContent is stored when a note is created with empty content.
const DefaultContent = "no content"

// Title and content bounds.
const (
	TitleMinLen   = 4
	TitleMaxLen   = 40
	ContentMaxLen = 180
)

// Author identifies the account a note belongs to.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Note is a public or private note in the shared feed. Author is nil for
// anonymous notes; a private note always has an author.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPrivate bool      `json:"is_private"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNote creates a note, applying the default content placeholder.
func NewNote(author *Author, title, content string, isPrivate bool) *Note {
	if content == "" {
		content = DefaultContent
	}
	return &Note{
		Title:     title,
		Content:   content,
		IsPrivate: isPrivate,
		Author:    author,
		CreatedAt: time.Now(),
	}
}

// AuthorID returns the owning account id or "" for anonymous notes.
func (n *Note) AuthorID() string {
	if n.Author == nil {
		return ""
	}
	return n.Author.ID
}
