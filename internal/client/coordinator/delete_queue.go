package coordinator

import (
	"sync"
	"time"
)

// DefaultUndoWindow is how long a scheduled delete can still be undone.
const DefaultUndoWindow = 4 * time.Second

// deleteEntry is one armed delete. The generation ties a timer callback to
// the map slot it was armed for; a callback whose generation no longer
// matches has been superseded and must not commit.
type deleteEntry struct {
	timer *time.Timer
	gen   uint64
}

// DeleteQueue defers delete commits by an undo window. Each id holds at most
// one armed timer; the commit runs exactly once per armed id.
type DeleteQueue struct {
	mu     sync.Mutex
	window time.Duration
	gen    uint64
	timers map[string]deleteEntry
}

// NewDeleteQueue creates a queue with the given undo window. A zero window
// falls back to DefaultUndoWindow.
func NewDeleteQueue(window time.Duration) *DeleteQueue {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &DeleteQueue{
		window: window,
		timers: make(map[string]deleteEntry),
	}
}

// Window returns the undo window.
func (q *DeleteQueue) Window() time.Duration {
	return q.window
}

// Schedule arms the commit to run after the undo window. Scheduling an id
// that is already pending cancels the earlier timer and restarts the window.
func (q *DeleteQueue) Schedule(id string, commit func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.scheduleLocked(id, commit)
}

func (q *DeleteQueue) scheduleLocked(id string, commit func()) {
	if entry, ok := q.timers[id]; ok {
		entry.timer.Stop()
	}

	q.gen++
	gen := q.gen
	timer := time.AfterFunc(q.window, func() {
		q.mu.Lock()
		entry, ok := q.timers[id]
		if !ok || entry.gen != gen {
			// superseded by a re-arm or an undo while this callback was
			// waiting for the lock
			q.mu.Unlock()
			return
		}
		delete(q.timers, id)
		q.mu.Unlock()

		commit()
	})
	q.timers[id] = deleteEntry{timer: timer, gen: gen}
}

// Undo cancels a pending delete. It reports whether the commit was stopped
// before firing.
func (q *DeleteQueue) Undo(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.timers[id]
	if !ok {
		return false
	}
	delete(q.timers, id)
	entry.timer.Stop()
	return true
}

// Pending reports whether a delete for the id is still waiting to commit.
func (q *DeleteQueue) Pending(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, ok := q.timers[id]
	return ok
}

// Stop cancels every pending delete.
func (q *DeleteQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, entry := range q.timers {
		entry.timer.Stop()
		delete(q.timers, id)
	}
}
