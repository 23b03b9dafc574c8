// Package preview manages the mutually exclusive "live editing" vs "viewing a
// past snapshot" modes of the open document. While a preview is active the
// editor surface is read-only and the autosave scheduler is suspended; the
// live document is never touched until an explicit apply.
package preview

import (
	"context"
	"errors"

	"github.com/fakeyudi/promptdeck/internal/doc"
	"github.com/fakeyudi/promptdeck/internal/service"
)

// ErrNotPreviewing is returned by Apply outside preview mode.
var ErrNotPreviewing = errors.New("no snapshot is being previewed")

// State is the active preview. A nil State means edit mode; the two modes
// are mutually exclusive by construction.
type State struct {
	SnapshotID string
	Content    string
	Timestamp  int64 // epoch seconds
}

// Machine is the Editing/Previewing state machine.
type Machine struct {
	svc   service.Workspace
	state *State
}

// New returns a Machine in edit mode.
func New(svc service.Workspace) *Machine {
	return &Machine{svc: svc}
}

// Previewing reports whether a snapshot is being displayed.
func (m *Machine) Previewing() bool { return m.state != nil }

// State returns the active preview, or nil in edit mode.
func (m *Machine) State() *State { return m.state }

// Enter loads the snapshot's full content — the listed refs only carry a
// truncated preview — and switches to preview mode. The open document is
// untouched. Selecting another snapshot while previewing replaces the
// preview.
func (m *Machine) Enter(ctx context.Context, snap service.Snapshot) error {
	content, err := m.svc.SnapshotContent(ctx, snap.ID)
	if err != nil {
		return err
	}
	m.state = &State{SnapshotID: snap.ID, Content: content, Timestamp: snap.CreatedAt}
	return nil
}

// Cancel discards the preview and returns to edit mode. The document was
// never mutated, so the editor simply shows it again.
func (m *Machine) Cancel() { m.state = nil }

// Apply asks the service to materialize the previewed snapshot into the open
// document's file. On success the document takes the service-confirmed
// content (which may differ from the previewed content if the service
// normalizes it), is marked clean, and the machine returns to edit mode.
// On failure the machine stays in Previewing so the error is not hidden.
func (m *Machine) Apply(ctx context.Context, d *doc.Document) error {
	if m.state == nil {
		return ErrNotPreviewing
	}
	if !d.IsOpen() {
		return ErrNotPreviewing
	}
	content, err := m.svc.ApplySnapshot(ctx, m.state.SnapshotID, d.Path)
	if err != nil {
		return err
	}
	d.Content = content
	d.Dirty = false
	m.state = nil
	return nil
}
