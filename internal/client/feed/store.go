package feed

// Store caches the feed of one scope. It is not safe for concurrent use; the
// coordinator serializes all access to it.
type Store struct {
	scope Scope
	feed  Feed
}

// NewStore creates an empty store for the given scope.
func NewStore(scope Scope) *Store {
	return &Store{scope: scope}
}

// Scope returns the scope this store caches.
func (s *Store) Scope() Scope {
	return s.scope
}

// Snapshot returns a deep copy of the cached feed, suitable for rollback.
func (s *Store) Snapshot() Feed {
	return copyFeed(s.feed)
}

// Restore replaces the cached feed with a previously taken snapshot.
func (s *Store) Restore(snapshot Feed) {
	s.feed = copyFeed(snapshot)
}

// Reset drops every cached page and installs the given first page.
func (s *Store) Reset(page Page) {
	s.feed = Feed{Pages: []Page{copyPage(page)}}
}

// Append adds a fetched page after the ones already cached.
func (s *Store) Append(page Page) {
	s.feed.Pages = append(s.feed.Pages, copyPage(page))
}

// ReplaceFirstPage swaps the first page for a freshly fetched one, keeping
// the pages after it. An empty store behaves like Reset.
func (s *Store) ReplaceFirstPage(page Page) {
	if len(s.feed.Pages) == 0 {
		s.Reset(page)
		return
	}
	s.feed.Pages[0] = copyPage(page)
}

// InsertAtHead prepends a note to the first page, creating it if the feed is
// empty.
func (s *Store) InsertAtHead(note Note) {
	if len(s.feed.Pages) == 0 {
		s.feed.Pages = []Page{{Notes: []Note{note}}}
		return
	}

	first := &s.feed.Pages[0]
	first.Notes = append([]Note{note}, first.Notes...)
}

// Remove deletes the note with the given id from whichever page holds it.
// It reports whether the note was found.
func (s *Store) Remove(id string) bool {
	for p := range s.feed.Pages {
		notes := s.feed.Pages[p].Notes
		for i, note := range notes {
			if note.ID == id {
				s.feed.Pages[p].Notes = append(notes[:i:i], notes[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Replace merges a patch into the note with the given id. It reports whether
// the note was found.
func (s *Store) Replace(id string, patch Patch) bool {
	for p := range s.feed.Pages {
		for i := range s.feed.Pages[p].Notes {
			note := &s.feed.Pages[p].Notes[i]
			if note.ID != id {
				continue
			}
			if patch.Title != nil {
				note.Title = *patch.Title
			}
			if patch.Content != nil {
				note.Content = *patch.Content
			}
			if patch.IsPrivate != nil {
				note.IsPrivate = *patch.IsPrivate
			}
			return true
		}
	}
	return false
}

// Rename swaps the id of a note, used to settle temp ids after a create.
// It reports whether the note was found.
func (s *Store) Rename(oldID, newID string) bool {
	for p := range s.feed.Pages {
		for i := range s.feed.Pages[p].Notes {
			if s.feed.Pages[p].Notes[i].ID == oldID {
				s.feed.Pages[p].Notes[i].ID = newID
				return true
			}
		}
	}
	return false
}

// Flatten returns every cached note in feed order.
func (s *Store) Flatten() []Note {
	var notes []Note
	for _, page := range s.feed.Pages {
		notes = append(notes, page.Notes...)
	}
	return notes
}

// Len returns the number of cached notes.
func (s *Store) Len() int {
	total := 0
	for _, page := range s.feed.Pages {
		total += len(page.Notes)
	}
	return total
}

// NextCursor returns the cursor of the last cached page, or "" when either
// nothing is cached or the feed is exhausted.
func (s *Store) NextCursor() string {
	if len(s.feed.Pages) == 0 {
		return ""
	}
	return s.feed.Pages[len(s.feed.Pages)-1].NextCursor
}

func copyFeed(f Feed) Feed {
	if f.Pages == nil {
		return Feed{}
	}
	pages := make([]Page, len(f.Pages))
	for i, page := range f.Pages {
		pages[i] = copyPage(page)
	}
	return Feed{Pages: pages}
}

func copyPage(p Page) Page {
	copied := Page{NextCursor: p.NextCursor}
	if p.Notes != nil {
		copied.Notes = make([]Note, len(p.Notes))
		copy(copied.Notes, p.Notes)
	}
	return copied
}
