package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/promptdeck/internal/prompt"
	"github.com/fakeyudi/promptdeck/internal/tree"
)

// dataDirName is the per-workspace directory holding promptdeck's own state
// (the history database). It is invisible to the tree.
const dataDirName = ".promptdeck"

// Local is the disk-backed Workspace implementation: the tree lives directly
// in the workspace directory, content history in a SQLite database under
// .promptdeck/. It is the authority the engine defers to — its conflict
// checks run against the real filesystem, not the engine's last-synced view.
type Local struct {
	root   string // absolute workspace root
	ignore []string
	hist   *historyStore
}

// Open opens the workspace rooted at dir. Entries matching ignorePatterns
// (glob, matched against base name and relative path) are hidden from the
// tree, as are dotfiles.
func Open(dir string, ignorePatterns []string) (*Local, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace path is not a directory: %s", root)
	}

	hist, err := openHistory(filepath.Join(root, dataDirName))
	if err != nil {
		return nil, err
	}
	return &Local{root: root, ignore: ignorePatterns, hist: hist}, nil
}

// Close releases the history database.
func (l *Local) Close() error { return l.hist.close() }

// Root returns the absolute workspace root directory.
func (l *Local) Root() string { return l.root }

// abs maps a workspace-relative path onto the filesystem, refusing anything
// that would escape the root.
func (l *Local) abs(rel string) (string, error) {
	if rel == "" {
		return l.root, nil
	}
	joined := filepath.Join(l.root, filepath.FromSlash(rel))
	if joined != l.root && !strings.HasPrefix(joined, l.root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return joined, nil
}

// validName rejects names that cannot form a single path segment. Dot-leading
// names are refused because the tree scan hides them.
func validName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	return nil
}

func (l *Local) isIgnored(name, rel string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range l.ignore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// ListTree scans the workspace directory into a fresh tree. Folders default
// to expanded; display order is folders first, case-insensitive.
func (l *Local) ListTree(ctx context.Context) (*tree.Node, error) {
	root := &tree.Node{Path: "", Kind: tree.Folder, Expanded: true}
	if err := l.scan(root); err != nil {
		return nil, err
	}
	root.Sort()
	return root, nil
}

func (l *Local) scan(folder *tree.Node) error {
	abs, err := l.abs(folder.Path)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("reading %s: %w", folder.Path, err)
	}
	for _, e := range entries {
		rel := tree.Join(folder.Path, e.Name())
		if l.isIgnored(e.Name(), rel) {
			continue
		}
		if e.IsDir() {
			child := &tree.Node{Name: e.Name(), Path: rel, Kind: tree.Folder, Expanded: true}
			if err := l.scan(child); err != nil {
				continue // unreadable subdirectory, skip
			}
			folder.Children = append(folder.Children, child)
		} else {
			folder.Children = append(folder.Children, &tree.Node{Name: e.Name(), Path: rel, Kind: tree.File})
		}
	}
	return nil
}

func (l *Local) CreateFile(ctx context.Context, parentPath, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := l.statDir(parentPath); err != nil {
		return "", err
	}
	rel := tree.Join(parentPath, name)
	abs, err := l.abs(rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err == nil {
		return "", ErrConflict
	}

	content := ""
	if strings.HasSuffix(name, ".md") {
		content = prompt.Template(name)
	}
	if err := atomicWrite(abs, []byte(content)); err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	return rel, nil
}

func (l *Local) CreateFolder(ctx context.Context, parentPath, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := l.statDir(parentPath); err != nil {
		return "", err
	}
	rel := tree.Join(parentPath, name)
	abs, err := l.abs(rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err == nil {
		return "", ErrConflict
	}
	if err := os.Mkdir(abs, 0o755); err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}
	return rel, nil
}

func (l *Local) RenameEntry(ctx context.Context, oldPath, newName string) (string, error) {
	if err := validName(newName); err != nil {
		return "", err
	}
	oldAbs, err := l.statEntry(oldPath)
	if err != nil {
		return "", err
	}
	newRel := tree.Join(tree.Parent(oldPath), newName)
	newAbs, err := l.abs(newRel)
	if err != nil {
		return "", err
	}
	if newRel == oldPath {
		return oldPath, nil
	}
	if _, err := os.Stat(newAbs); err == nil {
		return "", ErrConflict
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return "", fmt.Errorf("renaming: %w", err)
	}
	if err := l.hist.rewritePath(oldPath, newRel); err != nil {
		return "", err
	}
	return newRel, nil
}

func (l *Local) DeleteEntry(ctx context.Context, path string) error {
	abs, err := l.statEntry(path)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("deleting: %w", err)
	}
	return l.hist.deletePath(path)
}

func (l *Local) MoveEntry(ctx context.Context, sourcePath, destDir string) (string, error) {
	srcAbs, err := l.statEntry(sourcePath)
	if err != nil {
		return "", err
	}
	if err := l.statDir(destDir); err != nil {
		return "", err
	}
	newRel := tree.Join(destDir, tree.Base(sourcePath))
	newAbs, err := l.abs(newRel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(newAbs); err == nil {
		return "", ErrConflict
	}
	if err := os.Rename(srcAbs, newAbs); err != nil {
		return "", fmt.Errorf("moving: %w", err)
	}
	if err := l.hist.rewritePath(sourcePath, newRel); err != nil {
		return "", err
	}
	return newRel, nil
}

func (l *Local) ReadContent(ctx context.Context, path string) (string, error) {
	abs, err := l.abs(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading content: %w", err)
	}
	return string(data), nil
}

func (l *Local) WriteContent(ctx context.Context, path, content string) error {
	abs, err := l.abs(path)
	if err != nil {
		return err
	}
	if err := atomicWrite(abs, []byte(content)); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	return nil
}

func (l *Local) SaveSnapshot(ctx context.Context, path, content string) (bool, error) {
	return l.hist.save(path, content)
}

func (l *Local) ListHistory(ctx context.Context, path string, limit int) ([]Snapshot, error) {
	return l.hist.list(path, limit)
}

func (l *Local) SnapshotContent(ctx context.Context, id string) (string, error) {
	return l.hist.content(id)
}

func (l *Local) ApplySnapshot(ctx context.Context, id, path string) (string, error) {
	content, err := l.hist.content(id)
	if err != nil {
		return "", err
	}
	if err := l.WriteContent(ctx, path, content); err != nil {
		return "", err
	}
	return content, nil
}

// statEntry resolves path and requires it to exist.
func (l *Local) statEntry(path string) (string, error) {
	abs, err := l.abs(path)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrInvalidName // the root itself is never a mutation subject
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return abs, nil
}

// statDir resolves path and requires it to be an existing directory.
func (l *Local) statDir(path string) error {
	abs, err := l.abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a folder", ErrInvalidName, path)
	}
	return nil
}

// atomicWrite writes data via a temp file in the same directory so the final
// os.Rename is atomic.
func atomicWrite(abs string, data []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".promptdeck-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
