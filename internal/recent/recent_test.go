package recent

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	s, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestListEmptyWithoutFile(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}

func TestTouchOrdersMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"/a", "/b", "/c"} {
		if err := s.Touch(p); err != nil {
			t.Fatalf("Touch(%q): %v", p, err)
		}
	}
	// Re-opening /a moves it to the front without duplicating it.
	if err := s.Touch("/a"); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Path
	}
	want := []string{"/a", "/c", "/b"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths = %v, want %v", got, want)
			break
		}
	}
}

func TestTouchTrimsToCap(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < maxEntries+3; i++ {
		if err := s.Touch(filepath.Join("/ws", string(rune('a'+i)))); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != maxEntries {
		t.Errorf("len = %d, want %d", len(entries), maxEntries)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	s.Touch("/a")
	s.Touch("/b")
	if err := s.Remove("/a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	entries, _ := s.List()
	if len(entries) != 1 || entries[0].Path != "/b" {
		t.Errorf("entries = %v", entries)
	}
	// Removing an absent path is a no-op.
	if err := s.Remove("/nope"); err != nil {
		t.Errorf("Remove absent: %v", err)
	}
}

func TestCorruptFileSurfacesError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	s, err := NewStore()
	if err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "promptdeck", "recent.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(); err == nil {
		t.Error("expected parse error for corrupt file")
	}
}
