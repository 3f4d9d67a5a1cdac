package query

import (
	"context"
	"sync"
	"time"
)

// progressEvictDelay is how long a terminal progress entry stays readable
// before it is removed from the tracker.
const progressEvictDelay = 5 * time.Second

type progressEntry struct {
	progress QueryProgress
	cancel   context.CancelFunc
}

// progressTracker owns the process-wide progress map. Every entry is
// exclusively written by its query's execution path; readers only ever get
// snapshots.
type progressTracker struct {
	mu      sync.Mutex
	entries map[string]*progressEntry
}

func newProgressTracker() *progressTracker {
	return &progressTracker{entries: make(map[string]*progressEntry)}
}

func (t *progressTracker) start(queryID string, sourceCount int, cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[queryID] = &progressEntry{
		progress: QueryProgress{
			QueryID:        queryID,
			Status:         StatusExecuting,
			CurrentStep:    "参数验证",
			CompletedSteps: make([]string, 0, sourceCount+3),
			TotalSteps:     3 + sourceCount,
			StartTime:      time.Now(),
		},
		cancel: cancel,
	}
}

// advance moves a live query to the next step. Completed or cancelled
// entries are left untouched so late tier results cannot resurrect them.
func (t *progressTracker) advance(queryID, step string, percentage int, completed ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[queryID]
	if !ok || entry.progress.Status != StatusExecuting {
		return
	}
	entry.progress.CurrentStep = step
	entry.progress.Percentage = percentage
	entry.progress.CompletedSteps = append(entry.progress.CompletedSteps, completed...)
}

func (t *progressTracker) finish(queryID string, status Status, errs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[queryID]
	if !ok {
		return
	}
	if entry.progress.Status == StatusExecuting {
		entry.progress.Status = status
		if status == StatusCompleted {
			entry.progress.Percentage = 100
		}
		now := time.Now()
		entry.progress.CompletedTime = &now
	}
	entry.progress.Errors = append(entry.progress.Errors, errs...)
	time.AfterFunc(progressEvictDelay, func() { t.evict(queryID) })
}

// cancelQuery flips a live query to cancelled and fires its context
// cancellation. Returns false when the query is unknown or already
// terminal.
func (t *progressTracker) cancelQuery(queryID string) bool {
	t.mu.Lock()
	entry, ok := t.entries[queryID]
	if !ok || entry.progress.Status != StatusExecuting {
		t.mu.Unlock()
		return false
	}
	entry.progress.Status = StatusCancelled
	now := time.Now()
	entry.progress.CompletedTime = &now
	cancel := entry.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	time.AfterFunc(progressEvictDelay, func() { t.evict(queryID) })
	return true
}

// snapshot returns a point-in-time copy of a query's progress.
func (t *progressTracker) snapshot(queryID string) (QueryProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[queryID]
	if !ok {
		return QueryProgress{}, false
	}
	progress := entry.progress
	progress.CompletedSteps = append([]string(nil), entry.progress.CompletedSteps...)
	progress.Errors = append([]string(nil), entry.progress.Errors...)
	return progress, true
}

func (t *progressTracker) status(queryID string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[queryID]; ok {
		return entry.progress.Status
	}
	return ""
}

func (t *progressTracker) evict(queryID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, queryID)
}
