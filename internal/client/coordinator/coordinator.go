// Package coordinator applies mutations to the local feed cache
// optimistically and reconciles them with the server: snapshot, apply,
// remote call, then commit or rollback, with a refetch of the first page as
// the authoritative convergence point.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"noted/internal/client/feed"
	"noted/internal/client/remote"
)

// Note validation bounds, mirroring the server rules so bad input fails
// before any network round trip.
const (
	TitleMinLen    = 4
	TitleMaxLen    = 40
	ContentMaxLen  = 180
	DefaultContent = "no content"
)

// Local precondition errors. They carry the kind the server would respond
// with so callers branch the same way as on server-side rejections.
var (
	ErrTitleLength        = remote.NewError(remote.ErrValidation, fmt.Sprintf("title must be between %d and %d characters", TitleMinLen, TitleMaxLen))
	ErrContentLength      = remote.NewError(remote.ErrValidation, fmt.Sprintf("content must be at most %d characters", ContentMaxLen))
	ErrPrivateNeedsAuthor = remote.NewError(remote.ErrUnauthorized, "private notes require a signed-in author")
)

// Notifier receives the user-facing message of a failed mutation.
type Notifier func(message string)

// Options configures a coordinator. Zero values are usable defaults.
type Options struct {
	// User is the signed-in author attached to optimistic notes, nil for
	// anonymous use.
	User *feed.Author
	// Notifier receives rollback messages; nil drops them.
	Notifier Notifier
	// OnBegin fires at the start of every mutation, before the store is
	// touched.
	OnBegin func()
	// UndoWindow is how long a delete can be undone; zero means the default.
	UndoWindow time.Duration
}

// Coordinator owns a feed store and serializes every mutation against it.
// Remote calls happen outside the lock; each mutation keeps its own
// snapshot for rollback.
type Coordinator struct {
	mu     sync.Mutex
	store  *feed.Store
	remote remote.Client
	opts   Options

	deletes     *DeleteQueue
	fetchCancel context.CancelFunc
}

// New creates a coordinator over the given store and remote client.
func New(store *feed.Store, client remote.Client, opts Options) *Coordinator {
	return &Coordinator{
		store:   store,
		remote:  client,
		opts:    opts,
		deletes: NewDeleteQueue(opts.UndoWindow),
	}
}

// Store exposes the underlying store for read-only walks. Callers must not
// mutate it.
func (c *Coordinator) Store() *feed.Store {
	return c.store
}

// Refresh drops the cache and fetches the first page.
func (c *Coordinator) Refresh(ctx context.Context) error {
	fetchCtx, scope, _ := c.beginFetch(ctx)

	page, err := c.remote.FetchPage(fetchCtx, scope, "")
	return c.settleFetch(fetchCtx, page, err, func(p feed.Page) {
		c.store.Reset(p)
	})
}

// FetchNext fetches the page after the last cached one. It reports whether a
// page was fetched; an exhausted feed is a no-op that leaves any in-flight
// fetch running.
func (c *Coordinator) FetchNext(ctx context.Context) (bool, error) {
	fetchCtx, scope, cursor, ok := c.beginFetchNext(ctx)
	if !ok {
		return false, nil
	}

	page, err := c.remote.FetchPage(fetchCtx, scope, cursor)
	if err := c.settleFetch(fetchCtx, page, err, func(p feed.Page) {
		c.store.Append(p)
	}); err != nil {
		return false, err
	}
	return true, nil
}

// Add creates a note optimistically: a temp-id copy appears at the head of
// the feed immediately and is reconciled with the server's version.
func (c *Coordinator) Add(ctx context.Context, title, content string, isPrivate bool) error {
	title = strings.TrimSpace(title)
	content = normalizeContent(content)
	if err := validateInput(title, content); err != nil {
		return err
	}
	if isPrivate && c.opts.User == nil {
		return ErrPrivateNeedsAuthor
	}

	c.begin()

	optimistic := feed.Note{
		ID:        "temp-" + uuid.NewString(),
		Title:     title,
		Content:   content,
		IsPrivate: isPrivate,
		Author:    c.opts.User,
		CreatedAt: time.Now(),
	}
	if optimistic.Content == "" {
		optimistic.Content = DefaultContent
	}

	snapshot := c.mutate(func() {
		c.store.InsertAtHead(optimistic)
	})

	created, err := c.remote.CreateNote(ctx, remote.CreateInput{
		Title:     title,
		Content:   content,
		IsPrivate: isPrivate,
	})
	if err != nil {
		c.rollback(snapshot, err)
		c.refetchFirst(ctx)
		return err
	}

	c.mutate(func() {
		c.store.Rename(optimistic.ID, created.ID)
		c.store.Replace(created.ID, fullPatch(created))
	})
	c.refetchFirst(ctx)
	return nil
}

// Update patches a note optimistically.
func (c *Coordinator) Update(ctx context.Context, id string, patch feed.Patch) error {
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	if patch.Content != nil {
		normalized := normalizeContent(*patch.Content)
		patch.Content = &normalized
	}
	if err := validatePatch(patch); err != nil {
		return err
	}

	c.begin()

	snapshot := c.mutate(func() {
		c.store.Replace(id, patch)
	})

	updated, err := c.remote.UpdateNote(ctx, id, patch)
	if err != nil {
		c.rollback(snapshot, err)
		c.refetchFirst(ctx)
		return err
	}

	c.mutate(func() {
		c.store.Replace(id, fullPatch(updated))
	})
	c.refetchFirst(ctx)
	return nil
}

// Delete arms the undo window for a note. The store and the server are only
// touched when the window elapses; Undo within the window cancels the whole
// operation.
func (c *Coordinator) Delete(id string) {
	c.deletes.Schedule(id, func() {
		c.commitDelete(context.Background(), id)
	})
}

// Undo cancels a pending delete. It reports whether the delete was still
// cancelable.
func (c *Coordinator) Undo(id string) bool {
	return c.deletes.Undo(id)
}

// PendingDelete reports whether a delete for the id is awaiting its window.
func (c *Coordinator) PendingDelete(id string) bool {
	return c.deletes.Pending(id)
}

// UndoWindow returns how long a delete stays cancelable.
func (c *Coordinator) UndoWindow() time.Duration {
	return c.deletes.Window()
}

// Close cancels pending deletes and in-flight fetches.
func (c *Coordinator) Close() {
	c.deletes.Stop()
	c.mu.Lock()
	c.cancelFetchLocked()
	c.mu.Unlock()
}

// commitDelete runs when the undo window elapses: remove optimistically,
// delete remotely, roll back on failure.
func (c *Coordinator) commitDelete(ctx context.Context, id string) {
	c.begin()

	snapshot := c.mutate(func() {
		c.store.Remove(id)
	})

	if _, err := c.remote.DeleteNote(ctx, id); err != nil {
		c.rollback(snapshot, err)
	}
	c.refetchFirst(ctx)
}

// begin fires the mutation hook before the store is touched.
func (c *Coordinator) begin() {
	if c.opts.OnBegin != nil {
		c.opts.OnBegin()
	}
}

// mutate cancels any in-flight fetch, snapshots the feed and applies fn, all
// atomically with respect to other store access.
func (c *Coordinator) mutate(fn func()) feed.Feed {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelFetchLocked()
	snapshot := c.store.Snapshot()
	fn()
	return snapshot
}

// rollback restores the pre-mutation snapshot and notifies with the failure
// message verbatim.
func (c *Coordinator) rollback(snapshot feed.Feed, err error) {
	c.mu.Lock()
	c.store.Restore(snapshot)
	c.mu.Unlock()

	if c.opts.Notifier != nil {
		c.opts.Notifier(err.Error())
	}
}

// refetchFirst re-reads the first page so the cache converges on the
// server's ordering after every settled mutation. Failures are ignored; the
// cache simply keeps its current state.
func (c *Coordinator) refetchFirst(ctx context.Context) {
	fetchCtx, scope, _ := c.beginFetch(ctx)

	page, err := c.remote.FetchPage(fetchCtx, scope, "")
	_ = c.settleFetch(fetchCtx, page, err, func(p feed.Page) {
		c.store.ReplaceFirstPage(p)
	})
}

// beginFetch replaces the in-flight fetch context and captures the scope and
// cursor under the lock.
func (c *Coordinator) beginFetch(ctx context.Context) (context.Context, feed.Scope, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelFetchLocked()
	fetchCtx, cancel := context.WithCancel(ctx)
	c.fetchCancel = cancel

	return fetchCtx, c.store.Scope(), c.store.NextCursor()
}

// beginFetchNext is beginFetch with the exhausted-feed check done under the
// same lock, so an exhausted feed never cancels an in-flight fetch.
func (c *Coordinator) beginFetchNext(ctx context.Context) (context.Context, feed.Scope, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cursor := c.store.NextCursor()
	if cursor == "" && c.store.Len() > 0 {
		return nil, feed.Scope{}, "", false
	}

	c.cancelFetchLocked()
	fetchCtx, cancel := context.WithCancel(ctx)
	c.fetchCancel = cancel

	return fetchCtx, c.store.Scope(), cursor, true
}

// settleFetch applies a fetched page unless the fetch was canceled by a
// mutation in the meantime; a canceled fetch is discarded silently.
func (c *Coordinator) settleFetch(fetchCtx context.Context, page feed.Page, err error, apply func(feed.Page)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fetchCtx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}

	apply(page)
	return nil
}

func (c *Coordinator) cancelFetchLocked() {
	if c.fetchCancel != nil {
		c.fetchCancel()
		c.fetchCancel = nil
	}
}

func validateInput(title, content string) error {
	length := utf8.RuneCountInString(title)
	if length < TitleMinLen || length > TitleMaxLen {
		return ErrTitleLength
	}
	if utf8.RuneCountInString(content) > ContentMaxLen {
		return ErrContentLength
	}
	return nil
}

func validatePatch(patch feed.Patch) error {
	if patch.Title != nil {
		if length := utf8.RuneCountInString(*patch.Title); length < TitleMinLen || length > TitleMaxLen {
			return ErrTitleLength
		}
	}
	if patch.Content != nil && utf8.RuneCountInString(*patch.Content) > ContentMaxLen {
		return ErrContentLength
	}
	return nil
}

func fullPatch(note feed.Note) feed.Patch {
	return feed.Patch{
		Title:     &note.Title,
		Content:   &note.Content,
		IsPrivate: &note.IsPrivate,
	}
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func normalizeContent(content string) string {
	return strings.TrimSpace(newlineReplacer.Replace(content))
}
