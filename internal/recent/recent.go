// Package recent persists the list of recently opened workspaces so the user
// can jump back into one without retyping its path.
package recent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxEntries caps the list; the oldest entry falls off when a new workspace
// is recorded.
const maxEntries = 10

// Entry is one remembered workspace.
type Entry struct {
	Path     string    `json:"path"`
	OpenedAt time.Time `json:"opened_at"`
}

// Store persists the recent-workspace list.
type Store interface {
	Touch(path string) error
	List() ([]Entry, error)
	Remove(path string) error
}

// diskStore is the concrete Store that writes to the XDG data directory.
type diskStore struct {
	path string // full path to recent.json
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/promptdeck/recent.json or ~/.local/share/promptdeck/recent.json
func NewStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "recent.json")}, nil
}

// dataDir returns the promptdeck-specific XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "promptdeck"), nil
}

// Touch moves path to the front of the list, inserting it if absent, and
// trims the list to its cap.
func (d *diskStore) Touch(path string) error {
	entries, err := d.load()
	if err != nil {
		return err
	}
	next := []Entry{{Path: path, OpenedAt: time.Now()}}
	for _, e := range entries {
		if e.Path != path {
			next = append(next, e)
		}
	}
	if len(next) > maxEntries {
		next = next[:maxEntries]
	}
	return d.save(next)
}

// List returns the remembered workspaces, most recent first.
func (d *diskStore) List() ([]Entry, error) {
	return d.load()
}

// Remove drops path from the list. Removing an absent path is a no-op.
func (d *diskStore) Remove(path string) error {
	entries, err := d.load()
	if err != nil {
		return err
	}
	next := entries[:0]
	for _, e := range entries {
		if e.Path != path {
			next = append(next, e)
		}
	}
	return d.save(next)
}

func (d *diskStore) load() ([]Entry, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recent workspaces: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse recent workspaces: %w", err)
	}
	return entries, nil
}

// save marshals the list to JSON and writes it atomically via a temp file +
// os.Rename.
func (d *diskStore) save(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to persist recent workspaces: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "recent-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist recent workspaces: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist recent workspaces: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist recent workspaces: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist recent workspaces: %w", err)
	}
	return nil
}
