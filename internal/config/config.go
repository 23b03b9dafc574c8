package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configurable Promptdeck settings.
type Config struct {
	DebounceMs          int      `json:"debounce_ms"`           // autosave quiet period
	SnapshotIntervalMin int      `json:"snapshot_interval_min"` // min spacing between history snapshots
	HistoryLimit        int      `json:"history_limit"`         // snapshots shown per file
	IgnorePatterns      []string `json:"ignore_patterns"`
	DefaultExtension    string   `json:"default_extension"` // extension for new prompt files
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DebounceMs:          1000,
		SnapshotIntervalMin: 5,
		HistoryLimit:        50,
		IgnorePatterns:      []string{},
		DefaultExtension:    ".md",
	}
}

// Debounce returns the autosave quiet period as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// SnapshotInterval returns the snapshot spacing as a duration.
func (c Config) SnapshotInterval() time.Duration {
	return time.Duration(c.SnapshotIntervalMin) * time.Minute
}

// LoadGlobal reads ~/.config/promptdeck/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "promptdeck", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .promptdeck.json in the given workspace directory.
// Returns nil (no error) if the file is absent.
func LoadProject(dir string) (*Config, error) {
	return loadFile(filepath.Join(dir, ".promptdeck.json"), false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	// Apply global values over defaults.
	if global != nil {
		if global.DebounceMs > 0 {
			result.DebounceMs = global.DebounceMs
		}
		if global.SnapshotIntervalMin > 0 {
			result.SnapshotIntervalMin = global.SnapshotIntervalMin
		}
		if global.HistoryLimit > 0 {
			result.HistoryLimit = global.HistoryLimit
		}
		if len(global.IgnorePatterns) > 0 {
			result.IgnorePatterns = global.IgnorePatterns
		}
		if global.DefaultExtension != "" {
			result.DefaultExtension = global.DefaultExtension
		}
	}

	// Apply project values over global.
	if project != nil {
		if project.DebounceMs > 0 {
			result.DebounceMs = project.DebounceMs
		}
		if project.SnapshotIntervalMin > 0 {
			result.SnapshotIntervalMin = project.SnapshotIntervalMin
		}
		if project.HistoryLimit > 0 {
			result.HistoryLimit = project.HistoryLimit
		}
		if len(project.IgnorePatterns) > 0 {
			result.IgnorePatterns = project.IgnorePatterns
		}
		if project.DefaultExtension != "" {
			result.DefaultExtension = project.DefaultExtension
		}
	}

	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
