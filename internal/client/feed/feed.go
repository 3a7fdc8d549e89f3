// Package feed holds the client-side cache of the note feed: the pages
// fetched so far, plus the local edits the coordinator applies optimistically.
package feed

import "time"

// Author identifies the writer of a note.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Note mirrors the server's wire shape. Author is nil for anonymous notes.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPrivate bool      `json:"is_private"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is one fetched page. NextCursor is empty on the last page.
type Page struct {
	Notes      []Note `json:"notes"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Feed is the ordered list of pages fetched so far.
type Feed struct {
	Pages []Page
}

// Scope fixes which feed a store caches.
type Scope struct {
	Limit   int
	MyNotes bool
}

// Patch carries the optional fields of an edit; nil means unchanged.
type Patch struct {
	Title     *string
	Content   *string
	IsPrivate *bool
}
