package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noted/internal/client/feed"
)

func note(id, title string) feed.Note {
	return feed.Note{ID: id, Title: title, Content: "no content"}
}

func seededStore() *feed.Store {
	s := feed.NewStore(feed.Scope{Limit: 2})
	s.Reset(feed.Page{Notes: []feed.Note{note("a", "Note A"), note("b", "Note B")}, NextCursor: "b"})
	s.Append(feed.Page{Notes: []feed.Note{note("c", "Note C")}})
	return s
}

func ids(notes []feed.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestStoreSnapshotRestore(t *testing.T) {
	s := seededStore()
	snapshot := s.Snapshot()

	require.True(t, s.Remove("b"))
	s.InsertAtHead(note("temp-1", "Temp note"))
	assert.Equal(t, []string{"temp-1", "a", "c"}, ids(s.Flatten()))

	s.Restore(snapshot)
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Flatten()))
}

func TestStoreSnapshotIsIsolated(t *testing.T) {
	s := seededStore()
	snapshot := s.Snapshot()

	title := "Mutated title"
	require.True(t, s.Replace("a", feed.Patch{Title: &title}))

	assert.Equal(t, "Note A", snapshot.Pages[0].Notes[0].Title, "snapshot must not see later edits")
}

func TestStoreInsertAtHead(t *testing.T) {
	t.Run("empty feed grows a first page", func(t *testing.T) {
		s := feed.NewStore(feed.Scope{})
		s.InsertAtHead(note("x", "First note"))
		assert.Equal(t, []string{"x"}, ids(s.Flatten()))
	})

	t.Run("prepends to the first page", func(t *testing.T) {
		s := seededStore()
		s.InsertAtHead(note("x", "New note"))
		assert.Equal(t, []string{"x", "a", "b", "c"}, ids(s.Flatten()))
	})
}

func TestStoreRemove(t *testing.T) {
	s := seededStore()

	assert.True(t, s.Remove("c"), "note on a later page")
	assert.False(t, s.Remove("c"), "second remove is a no-op")
	assert.False(t, s.Remove("ghost"))
	assert.Equal(t, []string{"a", "b"}, ids(s.Flatten()))
}

func TestStoreReplace(t *testing.T) {
	s := seededStore()

	title := "Renamed"
	private := true
	require.True(t, s.Replace("b", feed.Patch{Title: &title, IsPrivate: &private}))

	notes := s.Flatten()
	assert.Equal(t, "Renamed", notes[1].Title)
	assert.True(t, notes[1].IsPrivate)
	assert.Equal(t, "no content", notes[1].Content, "unset fields stay")

	assert.False(t, s.Replace("ghost", feed.Patch{Title: &title}))
}

func TestStoreRename(t *testing.T) {
	s := seededStore()

	require.True(t, s.Rename("a", "server-1"))
	assert.Equal(t, []string{"server-1", "b", "c"}, ids(s.Flatten()))
	assert.False(t, s.Rename("a", "server-2"))
}

func TestStoreCursorAndLen(t *testing.T) {
	s := feed.NewStore(feed.Scope{Limit: 2})
	assert.Empty(t, s.NextCursor())
	assert.Zero(t, s.Len())

	s.Reset(feed.Page{Notes: []feed.Note{note("a", "Note A")}, NextCursor: "a"})
	assert.Equal(t, "a", s.NextCursor())

	s.Append(feed.Page{Notes: []feed.Note{note("b", "Note B")}})
	assert.Empty(t, s.NextCursor(), "exhausted feed has no cursor")
	assert.Equal(t, 2, s.Len())
}

func TestStoreReplaceFirstPage(t *testing.T) {
	s := seededStore()
	s.ReplaceFirstPage(feed.Page{Notes: []feed.Note{note("z", "Fresh note")}, NextCursor: "z"})

	assert.Equal(t, []string{"z", "c"}, ids(s.Flatten()))
	assert.Empty(t, s.NextCursor())
}
