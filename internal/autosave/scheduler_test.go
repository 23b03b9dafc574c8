package autosave_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fakeyudi/promptdeck/internal/autosave"
	"github.com/fakeyudi/promptdeck/internal/service"
	"github.com/fakeyudi/promptdeck/internal/tree"
)

// saveRecorder is a Workspace fake that records writes and snapshot requests.
type saveRecorder struct {
	writes        []string // "path=content"
	snapshots     []string // paths
	snapshotSaved bool     // response to SaveSnapshot
	writeErr      error
}

func (r *saveRecorder) WriteContent(ctx context.Context, path, content string) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.writes = append(r.writes, path+"="+content)
	return nil
}

func (r *saveRecorder) SaveSnapshot(ctx context.Context, path, content string) (bool, error) {
	r.snapshots = append(r.snapshots, path)
	return r.snapshotSaved, nil
}

func (r *saveRecorder) ListTree(ctx context.Context) (*tree.Node, error) { return nil, nil }
func (r *saveRecorder) CreateFile(ctx context.Context, parentPath, name string) (string, error) {
	return "", nil
}
func (r *saveRecorder) CreateFolder(ctx context.Context, parentPath, name string) (string, error) {
	return "", nil
}
func (r *saveRecorder) RenameEntry(ctx context.Context, oldPath, newName string) (string, error) {
	return "", nil
}
func (r *saveRecorder) DeleteEntry(ctx context.Context, path string) error { return nil }
func (r *saveRecorder) MoveEntry(ctx context.Context, sourcePath, destDir string) (string, error) {
	return "", nil
}
func (r *saveRecorder) ReadContent(ctx context.Context, path string) (string, error) { return "", nil }
func (r *saveRecorder) ListHistory(ctx context.Context, path string, limit int) ([]service.Snapshot, error) {
	return nil, nil
}
func (r *saveRecorder) SnapshotContent(ctx context.Context, id string) (string, error) {
	return "", service.ErrNotFound
}
func (r *saveRecorder) ApplySnapshot(ctx context.Context, id, path string) (string, error) {
	return "", service.ErrNotFound
}

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}
func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newScheduler(rec *saveRecorder, clock *fakeClock) *autosave.Scheduler {
	return autosave.New(rec, autosave.Options{
		Debounce:         time.Second,
		SnapshotInterval: 5 * time.Minute,
		Now:              clock.now,
	})
}

func TestDebounceCoalescesEdits(t *testing.T) {
	rec := &saveRecorder{snapshotSaved: true}
	s := newScheduler(rec, newFakeClock())
	ctx := context.Background()

	seq1, _, _ := s.NoteEdit("a.md", "v1")
	seq2, _, _ := s.NoteEdit("a.md", "v2")
	seq3, delay, armed := s.NoteEdit("a.md", "v3")
	if !armed || delay != time.Second {
		t.Fatalf("NoteEdit = (delay %v, armed %v)", delay, armed)
	}

	// The two superseded timers land first; they must do nothing.
	for _, stale := range []int{seq1, seq2} {
		if res, err := s.TimerFired(ctx, stale); err != nil || res.Saved {
			t.Fatalf("stale timer %d flushed: %+v, %v", stale, res, err)
		}
	}
	if len(rec.writes) != 0 {
		t.Fatalf("stale timers wrote: %v", rec.writes)
	}

	res, err := s.TimerFired(ctx, seq3)
	if err != nil || !res.Saved || res.Path != "a.md" {
		t.Fatalf("TimerFired = %+v, %v", res, err)
	}
	if len(rec.writes) != 1 || rec.writes[0] != "a.md=v3" {
		t.Errorf("writes = %v, want exactly [a.md=v3]", rec.writes)
	}

	// The same timer landing twice must not write twice.
	if res, _ := s.TimerFired(ctx, seq3); res.Saved {
		t.Error("replayed timer flushed again")
	}
}

func TestSnapshotGatedByInterval(t *testing.T) {
	rec := &saveRecorder{snapshotSaved: true}
	clock := newFakeClock()
	s := newScheduler(rec, clock)
	ctx := context.Background()

	// First flush: no snapshot yet for this path, so one is requested.
	seq, _, _ := s.NoteEdit("a.md", "v1")
	res, _ := s.TimerFired(ctx, seq)
	if !res.SnapshotStored {
		t.Fatalf("first flush should snapshot: %+v", res)
	}

	// A second edit 10 seconds later saves content but must not snapshot.
	clock.advance(10 * time.Second)
	seq, _, _ = s.NoteEdit("a.md", "v2")
	res, _ = s.TimerFired(ctx, seq)
	if !res.Saved || res.SnapshotStored {
		t.Fatalf("second flush: %+v", res)
	}
	if len(rec.snapshots) != 1 {
		t.Errorf("snapshot calls = %d, want 1", len(rec.snapshots))
	}

	// Once the interval elapses the gate opens again.
	clock.advance(5 * time.Minute)
	seq, _, _ = s.NoteEdit("a.md", "v3")
	res, _ = s.TimerFired(ctx, seq)
	if !res.SnapshotStored {
		t.Fatalf("post-interval flush should snapshot: %+v", res)
	}
}

func TestUnchangedSnapshotDoesNotAdvanceClock(t *testing.T) {
	rec := &saveRecorder{snapshotSaved: false} // service reports hash-identical
	clock := newFakeClock()
	s := newScheduler(rec, clock)
	ctx := context.Background()

	seq, _, _ := s.NoteEdit("a.md", "v1")
	res, _ := s.TimerFired(ctx, seq)
	if res.SnapshotStored {
		t.Fatalf("not-saved response reported as stored: %+v", res)
	}

	// Clock was not advanced, so the very next flush may attempt again.
	rec.snapshotSaved = true
	clock.advance(10 * time.Second)
	seq, _, _ = s.NoteEdit("a.md", "v2")
	res, _ = s.TimerFired(ctx, seq)
	if !res.SnapshotStored {
		t.Fatalf("gate should still be open after a not-saved response: %+v", res)
	}
}

func TestSnapshotClockIsPerPath(t *testing.T) {
	rec := &saveRecorder{snapshotSaved: true}
	s := newScheduler(rec, newFakeClock())
	ctx := context.Background()

	seq, _, _ := s.NoteEdit("a.md", "v1")
	s.TimerFired(ctx, seq)
	seq, _, _ = s.NoteEdit("b.md", "v1")
	res, _ := s.TimerFired(ctx, seq)
	if !res.SnapshotStored {
		t.Fatalf("other path must have its own gate: %+v", res)
	}
}

func TestFlushOnSwitchPersistsPendingEdit(t *testing.T) {
	rec := &saveRecorder{snapshotSaved: true}
	s := newScheduler(rec, newFakeClock())

	s.NoteEdit("a.md", "last words")
	res, err := s.Flush(context.Background())
	if err != nil || !res.Saved || res.Path != "a.md" {
		t.Fatalf("Flush = %+v, %v", res, err)
	}
	if len(rec.writes) != 1 || rec.writes[0] != "a.md=last words" {
		t.Errorf("writes = %v", rec.writes)
	}

	// Nothing pending: Flush is a no-op.
	if res, _ := s.Flush(context.Background()); res.Saved {
		t.Error("empty flush saved something")
	}
}

func TestSuspendBlocksArming(t *testing.T) {
	rec := &saveRecorder{snapshotSaved: true}
	s := newScheduler(rec, newFakeClock())

	s.NoteEdit("a.md", "v1")
	s.Suspend()
	if s.Pending() {
		t.Error("suspend must drop the pending edit")
	}
	if _, _, armed := s.NoteEdit("a.md", "v2"); armed {
		t.Error("edits must not arm while suspended")
	}

	s.Resume()
	if _, _, armed := s.NoteEdit("a.md", "v3"); !armed {
		t.Error("arming must work again after resume")
	}
}

func TestWriteFailureIsNonFatal(t *testing.T) {
	rec := &saveRecorder{writeErr: errors.New("disk full")}
	s := newScheduler(rec, newFakeClock())
	ctx := context.Background()

	seq, _, _ := s.NoteEdit("a.md", "v1")
	res, err := s.TimerFired(ctx, seq)
	if err == nil || res.Saved {
		t.Fatalf("expected write failure, got %+v, %v", res, err)
	}
	if len(rec.snapshots) != 0 {
		t.Error("no snapshot may be requested when the save failed")
	}

	// The user keeps typing; the next cycle retries.
	rec.writeErr = nil
	seq, _, _ = s.NoteEdit("a.md", "v2")
	if res, err := s.TimerFired(ctx, seq); err != nil || !res.Saved {
		t.Fatalf("retry failed: %+v, %v", res, err)
	}
}
