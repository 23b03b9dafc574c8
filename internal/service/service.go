// Package service defines the workspace service boundary: every structural or
// content operation the editor engine performs goes through the Workspace
// interface. The engine never assumes an operation succeeded — the service's
// response is the sole source of truth, and the tree is re-fetched after every
// successful structural mutation.
package service

import (
	"context"
	"errors"

	"github.com/fakeyudi/promptdeck/internal/tree"
)

var (
	// ErrNotFound is returned when the addressed entry does not exist.
	ErrNotFound = errors.New("entry not found")

	// ErrConflict is returned when a create, rename or move would collide
	// with an existing sibling of the same name.
	ErrConflict = errors.New("an entry with that name already exists")

	// ErrInvalidName is returned for names that cannot form a path segment.
	ErrInvalidName = errors.New("invalid entry name")

	// ErrOutsideRoot is returned when a path escapes the workspace root.
	ErrOutsideRoot = errors.New("path escapes the workspace root")
)

// Snapshot is one stored content-history entry for a file. Snapshots are
// immutable: the service only ever creates or reads them.
type Snapshot struct {
	ID          string
	FilePath    string
	ContentHash string
	CreatedAt   int64 // epoch seconds
	Preview     string
}

// Workspace is the remote-authority boundary for one workspace. All paths are
// workspace-relative and '/'-delimited; "" addresses the workspace root.
// Every method is fallible and must be treated as such — in particular the
// name-conflict checks the engine performs before calling are advisory, the
// service re-checks authoritatively.
type Workspace interface {
	// ListTree returns the full canonical tree.
	ListTree(ctx context.Context) (*tree.Node, error)

	// CreateFile creates a new file under parentPath and returns its path.
	CreateFile(ctx context.Context, parentPath, name string) (string, error)
	// CreateFolder creates a new folder under parentPath and returns its path.
	CreateFolder(ctx context.Context, parentPath, name string) (string, error)
	// RenameEntry renames the entry at oldPath to newName in place and
	// returns the new path.
	RenameEntry(ctx context.Context, oldPath, newName string) (string, error)
	// DeleteEntry removes the entry at path; folders are removed recursively.
	DeleteEntry(ctx context.Context, path string) error
	// MoveEntry re-parents sourcePath under destDir ("" for the root) and
	// returns the new path. Fails with ErrConflict if destDir already has a
	// child of the same name.
	MoveEntry(ctx context.Context, sourcePath, destDir string) (string, error)

	ReadContent(ctx context.Context, path string) (string, error)
	WriteContent(ctx context.Context, path, content string) error

	// SaveSnapshot stores a history snapshot of content for path. Returns
	// false when the content hash matches the most recent stored snapshot,
	// in which case nothing was stored.
	SaveSnapshot(ctx context.Context, path, content string) (bool, error)
	// ListHistory returns up to limit snapshots for path, newest first.
	ListHistory(ctx context.Context, path string, limit int) ([]Snapshot, error)
	// SnapshotContent returns the full content of a stored snapshot; the
	// Snapshot records themselves only carry a truncated preview.
	SnapshotContent(ctx context.Context, id string) (string, error)
	// ApplySnapshot materializes the snapshot's content into the file at
	// path and returns the content as written.
	ApplySnapshot(ctx context.Context, id, path string) (string, error)
}
