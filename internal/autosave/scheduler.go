// Package autosave debounces edits to the open document and persists them
// through the workspace service, taking a content-history snapshot when the
// per-file snapshot interval has elapsed.
//
// The scheduler does not own a timer. Each edit returns a sequence number and
// the delay to wait; the host event loop schedules the tick and calls
// TimerFired with the sequence when it lands. A fire whose sequence is no
// longer current is ignored, which is what guarantees at most one persisted
// write per quiescence window — earlier pending timers can never race a
// newer one.
package autosave

import (
	"context"
	"time"

	"github.com/fakeyudi/promptdeck/internal/service"
)

const (
	// DefaultDebounce is the quiet period after the last edit before the
	// content is persisted.
	DefaultDebounce = time.Second

	// DefaultSnapshotInterval is the minimum spacing between history
	// snapshots of the same file.
	DefaultSnapshotInterval = 5 * time.Minute
)

// Result reports what a flush actually did.
type Result struct {
	Saved          bool
	Path           string // the path that was persisted
	SnapshotStored bool
}

// Options configures a Scheduler. Zero values fall back to the defaults;
// Now defaults to time.Now and exists for tests.
type Options struct {
	Debounce         time.Duration
	SnapshotInterval time.Duration
	Now              func() time.Time
}

// Scheduler is the per-workspace autosave state machine. It is not
// goroutine-safe: all methods are called from the single-threaded UI loop.
type Scheduler struct {
	svc      service.Workspace
	now      func() time.Time
	debounce time.Duration
	interval time.Duration

	seq       int // sequence of the most recent edit; stale timers no-op
	pending   bool
	path      string
	content   string
	suspended bool

	// lastSnapshot maps file path to the time a snapshot was last actually
	// stored. Process-lifetime state, deliberately not persisted.
	lastSnapshot map[string]time.Time
}

// New returns a Scheduler persisting through svc.
func New(svc service.Workspace, opts Options) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = DefaultSnapshotInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		svc:          svc,
		now:          opts.Now,
		debounce:     opts.Debounce,
		interval:     opts.SnapshotInterval,
		lastSnapshot: make(map[string]time.Time),
	}
}

// NoteEdit records an edit to path's content and (re)arms the debounce
// window. The caller schedules a tick after delay and hands seq back to
// TimerFired. While suspended (preview mode) nothing is armed.
func (s *Scheduler) NoteEdit(path, content string) (seq int, delay time.Duration, armed bool) {
	if s.suspended || path == "" {
		return 0, 0, false
	}
	s.seq++
	s.pending = true
	s.path = path
	s.content = content
	return s.seq, s.debounce, true
}

// TimerFired handles the debounce tick for seq. A stale sequence — an edit
// arrived after this tick was scheduled — is ignored without any service
// call.
func (s *Scheduler) TimerFired(ctx context.Context, seq int) (Result, error) {
	if !s.pending || seq != s.seq {
		return Result{}, nil
	}
	return s.flush(ctx)
}

// Flush persists any pending edit immediately, regardless of the debounce
// window. Used when the user switches documents so the previous file's last
// edits are not silently lost, and on teardown.
func (s *Scheduler) Flush(ctx context.Context) (Result, error) {
	if !s.pending {
		return Result{}, nil
	}
	return s.flush(ctx)
}

// Cancel drops any pending edit without persisting.
func (s *Scheduler) Cancel() {
	s.pending = false
	s.seq++
}

// Pending reports whether an unpersisted edit is waiting on its window.
func (s *Scheduler) Pending() bool { return s.pending }

// Suspend blocks arming while the history preview is active — the surface is
// read-only, so no debounce timer may exist. Any pending edit is dropped;
// the caller flushes first if it wants it kept.
func (s *Scheduler) Suspend() {
	s.Cancel()
	s.suspended = true
}

// Resume re-enables arming after the preview ends.
func (s *Scheduler) Resume() { s.suspended = false }

func (s *Scheduler) flush(ctx context.Context) (Result, error) {
	path, content := s.path, s.content
	s.pending = false

	if err := s.svc.WriteContent(ctx, path, content); err != nil {
		// The edit stays dirty on the document; the next debounce cycle
		// retries. Editing is never blocked on a failed save.
		return Result{}, err
	}
	res := Result{Saved: true, Path: path}

	if s.now().Sub(s.lastSnapshot[path]) < s.interval {
		return res, nil
	}
	stored, err := s.svc.SaveSnapshot(ctx, path, content)
	if err != nil {
		// Snapshot failure is non-fatal; the content itself is saved.
		return res, err
	}
	if stored {
		// Only an actually stored snapshot advances the clock: a
		// hash-identical "not saved" leaves the gate open for the next
		// genuinely new content.
		s.lastSnapshot[path] = s.now()
		res.SnapshotStored = true
	}
	return res, nil
}
