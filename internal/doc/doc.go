// Package doc holds the open-document reference shared by the editor, the
// autosave scheduler and the mutation coordinator.
package doc

// Document is the currently open workspace file. Path is the workspace-
// relative path, or "" when nothing is open. Dirty is true while Content has
// edits that have not been persisted yet.
//
// Exactly one writer mutates a Document at a time: either the autosave
// scheduler persisting an edit, or the preview machine applying a snapshot.
type Document struct {
	Path    string
	Content string
	Dirty   bool
}

// Open resets d to the given file and content, not dirty.
func (d *Document) Open(path, content string) {
	d.Path = path
	d.Content = content
	d.Dirty = false
}

// Clear empties d, e.g. after the open file was deleted.
func (d *Document) Clear() {
	d.Path = ""
	d.Content = ""
	d.Dirty = false
}

// IsOpen reports whether a file is open.
func (d *Document) IsOpen() bool { return d.Path != "" }
