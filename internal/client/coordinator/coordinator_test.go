package coordinator_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noted/internal/client/coordinator"
	"noted/internal/client/feed"
	"noted/internal/client/remote"
)

// fakeRemote is an in-memory rendition of the server: ordered notes, keyset
// pagination, injectable failures.
type fakeRemote struct {
	mu     sync.Mutex
	nextID int
	notes  []feed.Note
	user   *feed.Author

	failCreate error
	failUpdate error
	failDelete error

	// when set, FetchPage signals fetchStarted and parks until fetchRelease
	// is closed
	fetchStarted chan struct{}
	fetchRelease chan struct{}
}

func (f *fakeRemote) seed(titles ...string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, len(titles))
	for i, title := range titles {
		f.nextID++
		id := fmt.Sprintf("note-%03d", f.nextID)
		f.notes = append(f.notes, feed.Note{
			ID:        id,
			Title:     title,
			Content:   "no content",
			CreatedAt: base.Add(time.Duration(f.nextID) * time.Minute),
		})
		ids[i] = id
	}
	return ids
}

func (f *fakeRemote) FetchPage(ctx context.Context, scope feed.Scope, cursor string) (feed.Page, error) {
	if f.fetchStarted != nil {
		f.fetchStarted <- struct{}{}
		<-f.fetchRelease
	}
	if err := ctx.Err(); err != nil {
		return feed.Page{}, remote.NewError(remote.ErrTransport, err.Error())
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ordered := make([]feed.Note, len(f.notes))
	copy(ordered, f.notes)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	if cursor != "" {
		after := -1
		for i, n := range ordered {
			if n.ID == cursor {
				after = i
				break
			}
		}
		if after == -1 {
			return feed.Page{}, nil
		}
		ordered = ordered[after+1:]
	}

	limit := scope.Limit
	if limit <= 0 {
		limit = 10
	}

	page := feed.Page{}
	if len(ordered) > limit {
		page.Notes = ordered[:limit]
		page.NextCursor = ordered[limit-1].ID
	} else {
		page.Notes = ordered
	}
	return page, nil
}

func (f *fakeRemote) CreateNote(_ context.Context, in remote.CreateInput) (feed.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate != nil {
		return feed.Note{}, f.failCreate
	}

	f.nextID++
	content := in.Content
	if content == "" {
		content = "no content"
	}
	note := feed.Note{
		ID:        fmt.Sprintf("note-%03d", f.nextID),
		Title:     in.Title,
		Content:   content,
		IsPrivate: in.IsPrivate,
		Author:    f.user,
		CreatedAt: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Minute),
	}
	f.notes = append(f.notes, note)
	return note, nil
}

func (f *fakeRemote) UpdateNote(_ context.Context, id string, patch feed.Patch) (feed.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdate != nil {
		return feed.Note{}, f.failUpdate
	}

	for i := range f.notes {
		if f.notes[i].ID != id {
			continue
		}
		if patch.Title != nil {
			f.notes[i].Title = *patch.Title
		}
		if patch.Content != nil {
			f.notes[i].Content = *patch.Content
		}
		if patch.IsPrivate != nil {
			f.notes[i].IsPrivate = *patch.IsPrivate
		}
		return f.notes[i], nil
	}
	return feed.Note{}, remote.NewError(remote.ErrNotFound, "note not found")
}

func (f *fakeRemote) DeleteNote(_ context.Context, id string) (feed.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDelete != nil {
		return feed.Note{}, f.failDelete
	}

	for i, note := range f.notes {
		if note.ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return note, nil
		}
	}
	return feed.Note{}, remote.NewError(remote.ErrNotFound, "note not found")
}

func (f *fakeRemote) CurrentUser(context.Context) (*feed.Author, error) {
	return f.user, nil
}

func ids(notes []feed.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func newCoordinator(srv *fakeRemote, scope feed.Scope, opts coordinator.Options) *coordinator.Coordinator {
	return coordinator.New(feed.NewStore(scope), srv, opts)
}

func TestRefreshAndFetchNext(t *testing.T) {
	// Remote has A, B, C; page size 2; cursors chain without overlap.
	ctx := context.Background()
	srv := &fakeRemote{}
	seeded := srv.seed("Note A title", "Note B title", "Note C title")

	c := newCoordinator(srv, feed.Scope{Limit: 2}, coordinator.Options{})

	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, []string{seeded[2], seeded[1]}, ids(c.Store().Flatten()))

	fetched, err := c.FetchNext(ctx)
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, []string{seeded[2], seeded[1], seeded[0]}, ids(c.Store().Flatten()))

	fetched, err = c.FetchNext(ctx)
	require.NoError(t, err)
	assert.False(t, fetched, "exhausted feed is a no-op")
	assert.Equal(t, 3, c.Store().Len())
}

func TestAddSettlesToServerState(t *testing.T) {
	// Post-settle cache must equal a fresh fetch.
	ctx := context.Background()
	srv := &fakeRemote{user: &feed.Author{ID: "user-1", Name: "alice"}}
	srv.seed("Note A title", "Note B title")

	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		User: &feed.Author{ID: "user-1", Name: "alice"},
	})
	require.NoError(t, c.Refresh(ctx))

	require.NoError(t, c.Add(ctx, "Fresh note", "", false))

	fresh, err := srv.FetchPage(ctx, feed.Scope{Limit: 10}, "")
	require.NoError(t, err)
	assert.Equal(t, ids(fresh.Notes), ids(c.Store().Flatten()))

	head := c.Store().Flatten()[0]
	assert.False(t, strings.HasPrefix(head.ID, "temp-"), "temp id must be settled")
	assert.Equal(t, "no content", head.Content, "empty content gets the default")
}

func TestAddRollsBackOnFailure(t *testing.T) {
	// Post-rollback cache must equal the pre-mutation cache.
	ctx := context.Background()
	srv := &fakeRemote{}
	srv.seed("Note A title", "Note B title")

	var notified []string
	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		Notifier: func(msg string) { notified = append(notified, msg) },
	})
	require.NoError(t, c.Refresh(ctx))
	before := ids(c.Store().Flatten())

	srv.failCreate = remote.NewError(remote.ErrTransport, "connection reset")

	err := c.Add(ctx, "Doomed note", "x", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrTransport)

	assert.Equal(t, before, ids(c.Store().Flatten()))
	require.Len(t, notified, 1)
	assert.Equal(t, "connection reset", notified[0], "failure message travels verbatim")
}

func TestAddValidationLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{}
	srv.seed("Note A title")

	began := 0
	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		OnBegin: func() { began++ },
	})
	require.NoError(t, c.Refresh(ctx))
	before := ids(c.Store().Flatten())

	assert.ErrorIs(t, c.Add(ctx, "abc", "x", false), remote.ErrValidation)
	assert.ErrorIs(t, c.Add(ctx, "Valid title", strings.Repeat("a", 181), false), remote.ErrValidation)

	assert.Equal(t, before, ids(c.Store().Flatten()))
	assert.Zero(t, began, "failed validation never begins a mutation")
}

func TestAddAnonymousPrivateIsUnauthorized(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{}
	srv.seed("Note A title")

	began := 0
	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		OnBegin: func() { began++ },
	})
	require.NoError(t, c.Refresh(ctx))
	before := ids(c.Store().Flatten())

	err := c.Add(ctx, "Valid title", "x", true)
	assert.ErrorIs(t, err, remote.ErrUnauthorized,
		"anonymous private note fails before the network")
	assert.NotErrorIs(t, err, remote.ErrValidation)

	assert.Equal(t, before, ids(c.Store().Flatten()))
	assert.Zero(t, began)
}

func TestUpdateOptimisticAndRollback(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{}
	seeded := srv.seed("Note A title", "Note B title")

	var notified []string
	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		Notifier: func(msg string) { notified = append(notified, msg) },
	})
	require.NoError(t, c.Refresh(ctx))

	title := "Renamed note"
	require.NoError(t, c.Update(ctx, seeded[0], feed.Patch{Title: &title}))

	var renamed feed.Note
	for _, n := range c.Store().Flatten() {
		if n.ID == seeded[0] {
			renamed = n
		}
	}
	assert.Equal(t, "Renamed note", renamed.Title)

	srv.failUpdate = remote.NewError(remote.ErrUnauthorized, "you are not the author of this note")
	before := c.Store().Flatten()

	again := "Another rename"
	err := c.Update(ctx, seeded[0], feed.Patch{Title: &again})
	require.Error(t, err)
	assert.Equal(t, before, c.Store().Flatten())
	require.Len(t, notified, 1)
	assert.Equal(t, "you are not the author of this note", notified[0])
}

func TestDeleteWaitsForUndoWindow(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{}
	seeded := srv.seed("Note A title", "Note B title")

	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		UndoWindow: 50 * time.Millisecond,
	})
	require.NoError(t, c.Refresh(ctx))

	c.Delete(seeded[0])
	assert.True(t, c.PendingDelete(seeded[0]))
	assert.Equal(t, 2, c.Store().Len(), "store untouched while the window is open")

	require.Eventually(t, func() bool {
		return c.Store().Len() == 1 && !c.PendingDelete(seeded[0])
	}, time.Second, 5*time.Millisecond)

	fresh, err := srv.FetchPage(ctx, feed.Scope{Limit: 10}, "")
	require.NoError(t, err)
	assert.Equal(t, ids(fresh.Notes), ids(c.Store().Flatten()))
}

func TestUndoCancelsDelete(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{}
	seeded := srv.seed("Note A title")

	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		UndoWindow: 50 * time.Millisecond,
	})
	require.NoError(t, c.Refresh(ctx))

	c.Delete(seeded[0])
	assert.True(t, c.Undo(seeded[0]))
	assert.False(t, c.PendingDelete(seeded[0]))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, c.Store().Len(), "undone delete never touches the store")
	assert.False(t, c.Undo(seeded[0]), "second undo is a no-op")
}

func TestDeleteRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{}
	seeded := srv.seed("Note A title", "Note B title")
	srv.failDelete = remote.NewError(remote.ErrNotFound, "note not found")

	var notified []string
	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{
		UndoWindow: 20 * time.Millisecond,
		Notifier:   func(msg string) { notified = append(notified, msg) },
	})
	require.NoError(t, c.Refresh(ctx))

	c.Delete(seeded[0])

	require.Eventually(t, func() bool {
		return len(notified) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "note not found", notified[0])
	assert.Equal(t, 2, c.Store().Len(), "failed delete is rolled back")
}

func TestFetchNextExhaustedKeepsFetchAlive(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{}
	srv.seed("Note A title", "Note B title")

	c := newCoordinator(srv, feed.Scope{Limit: 10}, coordinator.Options{})
	require.NoError(t, c.Refresh(ctx))
	srv.seed("Note C title")

	srv.fetchStarted = make(chan struct{})
	srv.fetchRelease = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- c.Refresh(ctx) }()
	<-srv.fetchStarted

	fetched, err := c.FetchNext(ctx)
	require.NoError(t, err)
	assert.False(t, fetched, "exhausted feed is a no-op")

	close(srv.fetchRelease)
	require.NoError(t, <-done)
	assert.Equal(t, 3, c.Store().Len(), "the in-flight refresh still lands")
}

func TestMutationCancelsInFlightFetch(t *testing.T) {
	ctx := context.Background()
	srv := &fakeRemote{user: &feed.Author{ID: "user-1", Name: "alice"}}
	srv.seed("Note A title", "Note B title", "Note C title")

	c := newCoordinator(srv, feed.Scope{Limit: 2}, coordinator.Options{
		User: &feed.Author{ID: "user-1", Name: "alice"},
	})
	require.NoError(t, c.Refresh(ctx))

	// Add settles and refetches; the store must converge on the server
	// regardless of the fetch that was in flight before the mutation.
	require.NoError(t, c.Add(ctx, "Fresh note", "hello", false))

	fresh, err := srv.FetchPage(ctx, feed.Scope{Limit: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, ids(fresh.Notes), ids(c.Store().Flatten()))
}
