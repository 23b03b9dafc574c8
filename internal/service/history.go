package service

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// previewRunes is the length of the truncated content excerpt stored on each
// listed snapshot.
const previewRunes = 200

// historyStore persists content-history snapshots in a SQLite database under
// the workspace's .promptdeck directory.
type historyStore struct {
	db *sql.DB
	mu sync.Mutex
}

// openHistory opens (or creates) the snapshot database in dir.
func openHistory(dir string) (*historyStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring history database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS file_history (
			id           TEXT PRIMARY KEY,
			file_path    TEXT NOT NULL,
			content      TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			created_at   INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_file_history_path
			ON file_history(file_path, created_at DESC);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &historyStore{db: db}, nil
}

func (h *historyStore) close() error {
	return h.db.Close()
}

// save stores a snapshot of content for path unless the content hash matches
// the most recent stored snapshot. Returns true when a new row was written.
func (h *historyStore) save(path, content string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	hash := hashContent(content)

	var latest string
	err := h.db.QueryRow(
		`SELECT content_hash FROM file_history WHERE file_path = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		path,
	).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("checking latest snapshot: %w", err)
	}
	if err == nil && latest == hash {
		return false, nil
	}

	_, err = h.db.Exec(
		`INSERT INTO file_history (id, file_path, content, content_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), path, content, hash, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("storing snapshot: %w", err)
	}
	return true, nil
}

// list returns up to limit snapshots for path, newest first, with previews
// truncated to previewRunes runes.
func (h *historyStore) list(path string, limit int) ([]Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.db.Query(
		`SELECT id, file_path, content_hash, created_at, content
		 FROM file_history WHERE file_path = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		path, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		var content string
		if err := rows.Scan(&s.ID, &s.FilePath, &s.ContentHash, &s.CreatedAt, &content); err != nil {
			return nil, err
		}
		s.Preview = truncateRunes(content, previewRunes)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// content returns the full content of the snapshot with the given id.
func (h *historyStore) content(id string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var content string
	err := h.db.QueryRow(`SELECT content FROM file_history WHERE id = ?`, id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading snapshot: %w", err)
	}
	return content, nil
}

// rewritePath re-points history rows after a rename or move, so snapshots
// follow the file. oldPath may be a folder: descendants are rewritten too.
func (h *historyStore) rewritePath(oldPath, newPath string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(
		`UPDATE file_history
		 SET file_path = ?2 || substr(file_path, length(?1) + 1)
		 WHERE file_path = ?1 OR file_path LIKE ?1 || '/%'`,
		oldPath, newPath,
	)
	if err != nil {
		return fmt.Errorf("rewriting snapshot paths: %w", err)
	}
	return nil
}

// deletePath drops all history for path and, when path is a folder, for every
// descendant.
func (h *historyStore) deletePath(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(
		`DELETE FROM file_history WHERE file_path = ?1 OR file_path LIKE ?1 || '/%'`,
		path,
	)
	if err != nil {
		return fmt.Errorf("deleting snapshot history: %w", err)
	}
	return nil
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
