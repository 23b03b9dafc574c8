// Package mutate orchestrates structural workspace mutations. The coordinator
// never mutates its tree optimistically: each create/rename/delete/move is
// sent to the workspace service, and only after the service confirms does the
// coordinator re-fetch the canonical tree and replace its copy wholesale.
// On failure the local tree is left exactly as it was.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fakeyudi/promptdeck/internal/doc"
	"github.com/fakeyudi/promptdeck/internal/service"
	"github.com/fakeyudi/promptdeck/internal/tree"
)

var (
	// ErrNameConflict reports a sibling name collision, detected either
	// client-side against the last-synchronized tree or by the service.
	ErrNameConflict = errors.New("an entry with that name already exists")

	// ErrCycle reports a folder move into its own subtree.
	ErrCycle = errors.New("cannot move a folder into its own subtree")

	// ErrNotFound reports a subject that no longer exists.
	ErrNotFound = errors.New("entry no longer exists")
)

// classify maps service errors onto the coordinator's error taxonomy.
// Anything that is not a recognized condition is a remote failure with an
// opaque message.
func classify(err error) error {
	switch {
	case errors.Is(err, service.ErrConflict):
		return ErrNameConflict
	case errors.Is(err, service.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("workspace service: %w", err)
	}
}

// Coordinator serializes structural mutations against the workspace service
// and keeps the open-document reference consistent across mutations that
// affect it. None of its errors are fatal; every failure leaves the tree and
// document in a usable state.
type Coordinator struct {
	svc  service.Workspace
	doc  *doc.Document
	root *tree.Node
}

// New returns a Coordinator for svc operating on the shared open document d.
// Call Refresh before first use to populate the tree.
func New(svc service.Workspace, d *doc.Document) *Coordinator {
	return &Coordinator{svc: svc, doc: d, root: &tree.Node{Kind: tree.Folder, Expanded: true}}
}

// Tree returns the last-synchronized tree. Callers must treat it as read-only
// and must not hold nodes across a mutation — the whole graph is replaced on
// every refresh.
func (c *Coordinator) Tree() *tree.Node { return c.root }

// Refresh re-fetches the canonical tree and replaces the local copy. If the
// open document's path no longer resolves in the fresh tree (e.g. the file
// was removed externally), the document is cleared rather than left pointing
// at a nonexistent location.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if err := c.fetch(ctx); err != nil {
		return err
	}
	c.reconcileDoc()
	return nil
}

// fetch replaces the tree, carrying folder expansion state over from the old
// copy so a refresh does not collapse the pane.
func (c *Coordinator) fetch(ctx context.Context) error {
	fresh, err := c.svc.ListTree(ctx)
	if err != nil {
		return classify(err)
	}
	old := c.root
	fresh.Walk(func(n *tree.Node) bool {
		if n.IsFolder() {
			if prev := old.Find(n.Path); prev != nil && prev.IsFolder() {
				n.Expanded = prev.Expanded
			}
		}
		return true
	})
	c.root = fresh
	return nil
}

func (c *Coordinator) reconcileDoc() {
	if !c.doc.IsOpen() {
		return
	}
	if n := c.root.Find(c.doc.Path); n == nil || n.IsFolder() {
		c.doc.Clear()
	}
}

// Open loads the file at path into the open document.
func (c *Coordinator) Open(ctx context.Context, path string) error {
	content, err := c.svc.ReadContent(ctx, path)
	if err != nil {
		return classify(err)
	}
	c.doc.Open(path, content)
	return nil
}

// CreateFile creates name under parentPath and opens the new file so the
// user lands in an editable document. Returns the created path.
func (c *Coordinator) CreateFile(ctx context.Context, parentPath, name string) (string, error) {
	if err := c.checkNewName(parentPath, name); err != nil {
		return "", err
	}
	newPath, err := c.svc.CreateFile(ctx, parentPath, name)
	if err != nil {
		return "", classify(err)
	}
	if err := c.fetch(ctx); err != nil {
		return newPath, err
	}
	if err := c.Open(ctx, newPath); err != nil {
		return newPath, err
	}
	return newPath, nil
}

// CreateFolder creates name under parentPath. The open document is
// unaffected.
func (c *Coordinator) CreateFolder(ctx context.Context, parentPath, name string) (string, error) {
	if err := c.checkNewName(parentPath, name); err != nil {
		return "", err
	}
	newPath, err := c.svc.CreateFolder(ctx, parentPath, name)
	if err != nil {
		return "", classify(err)
	}
	return newPath, c.fetch(ctx)
}

// Rename renames the entry at path to newName in place. If the renamed entry
// is (or contains) the open document, the document's path reference is
// rewritten to the new location.
func (c *Coordinator) Rename(ctx context.Context, path, newName string) (string, error) {
	subject := c.root.Find(path)
	if subject == nil {
		return "", ErrNotFound
	}
	if newName == subject.Name {
		return path, nil
	}
	if err := c.checkNewName(tree.Parent(path), newName); err != nil {
		return "", err
	}
	newPath, err := c.svc.RenameEntry(ctx, path, newName)
	if err != nil {
		return "", classify(err)
	}
	if err := c.fetch(ctx); err != nil {
		return newPath, err
	}
	c.rewriteDocPath(path, newPath)
	c.reconcileDoc()
	return newPath, nil
}

// Delete removes the entry at path. If the deleted entry is the open
// document, or a folder containing it, the document is cleared.
func (c *Coordinator) Delete(ctx context.Context, path string) error {
	if c.root.Find(path) == nil {
		return ErrNotFound
	}
	if err := c.svc.DeleteEntry(ctx, path); err != nil {
		return classify(err)
	}
	if err := c.fetch(ctx); err != nil {
		return err
	}
	if c.doc.IsOpen() && (c.doc.Path == path || tree.IsDescendant(path, c.doc.Path)) {
		c.doc.Clear()
	}
	c.reconcileDoc()
	return nil
}

// Move re-parents sourcePath under destDir ("" for the workspace root).
// Moving an entry to its current parent is a silent no-op; moving a folder
// into its own subtree is rejected before any service call. Returns the new
// path.
func (c *Coordinator) Move(ctx context.Context, sourcePath, destDir string) (string, error) {
	subject := c.root.Find(sourcePath)
	if subject == nil {
		return "", ErrNotFound
	}
	if subject.IsFolder() && (destDir == sourcePath || tree.IsDescendant(sourcePath, destDir)) {
		return "", ErrCycle
	}
	if tree.Parent(sourcePath) == destDir {
		return sourcePath, nil
	}
	if err := c.checkNewName(destDir, subject.Name); err != nil {
		return "", err
	}
	newPath, err := c.svc.MoveEntry(ctx, sourcePath, destDir)
	if err != nil {
		return "", classify(err)
	}
	if err := c.fetch(ctx); err != nil {
		return newPath, err
	}
	c.rewriteDocPath(sourcePath, newPath)
	c.reconcileDoc()
	return newPath, nil
}

// checkNewName is the advisory client-side collision check against the
// last-synchronized tree. The service remains the final authority; a stale
// tree can let a collision through, and the service's rejection is surfaced
// with the local tree untouched.
func (c *Coordinator) checkNewName(parentPath, name string) error {
	parent := c.root.Find(parentPath)
	if parent == nil || !parent.IsFolder() {
		return ErrNotFound
	}
	if parent.HasChild(name) {
		return ErrNameConflict
	}
	return nil
}

// rewriteDocPath repairs the open document's path after a rename or move of
// oldPath to newPath.
func (c *Coordinator) rewriteDocPath(oldPath, newPath string) {
	if !c.doc.IsOpen() {
		return
	}
	switch {
	case c.doc.Path == oldPath:
		c.doc.Path = newPath
	case tree.IsDescendant(oldPath, c.doc.Path):
		c.doc.Path = newPath + strings.TrimPrefix(c.doc.Path, oldPath)
	}
}
