// Package tree models the workspace file tree.
//
// Nodes are identified by their workspace-relative, '/'-delimited path; the
// path is the only durable identity. The whole tree is replaced on every
// refresh, so callers must never hold a *Node across an operation that can
// trigger a refresh — hold the path and re-resolve instead.
package tree

import (
	"sort"
	"strings"
)

// Kind distinguishes files from folders.
type Kind int

const (
	File Kind = iota
	Folder
)

// Node is one entry in the workspace tree. The root node has Path == "" and
// Kind == Folder. Children is populated for folders only and is kept in
// display order: folders first, then files, case-insensitively by name.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Kind     Kind    `json:"kind"`
	Children []*Node `json:"children,omitempty"`
	Expanded bool    `json:"expanded,omitempty"`
}

// IsFolder reports whether n is a folder.
func (n *Node) IsFolder() bool { return n.Kind == Folder }

// Join builds a child path under parent. An empty parent means the workspace
// root, so the child path is just the name.
func Join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// Parent returns the parent path of path, or "" when the entry sits at the
// workspace root.
func Parent(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Base returns the last path segment.
func Base(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path
	}
	return path[i+1:]
}

// IsDescendant reports whether path lies strictly inside ancestor. The check
// is segment-aware: "docs2/x" is not a descendant of "docs".
func IsDescendant(ancestor, path string) bool {
	if ancestor == "" {
		return path != ""
	}
	return strings.HasPrefix(path, ancestor+"/")
}

// Find resolves path against the tree rooted at n. The empty path resolves to
// n itself. Returns nil when no node with that path exists.
func (n *Node) Find(path string) *Node {
	if path == "" || path == n.Path {
		return n
	}
	if n.Path != "" && !IsDescendant(n.Path, path) {
		return nil
	}
	for _, c := range n.Children {
		if c.Path == path {
			return c
		}
		if c.IsFolder() && IsDescendant(c.Path, path) {
			return c.Find(path)
		}
	}
	return nil
}

// HasChild reports whether the folder n has a direct child with the given
// name.
func (n *Node) HasChild(name string) bool {
	for _, c := range n.Children {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Walk visits n and every descendant in display order. Returning false from
// fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Sort orders Children recursively: folders before files, then
// case-insensitive by name. Matches the display order of the workspace pane.
func (n *Node) Sort() {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.Children {
		if c.IsFolder() {
			c.Sort()
		}
	}
}
