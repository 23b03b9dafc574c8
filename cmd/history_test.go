package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/promptdeck/internal/service"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// seedWorkspace creates a workspace with one file and two snapshots of it,
// returning the workspace dir and the older snapshot's id.
func seedWorkspace(t *testing.T) (dir, oldID string) {
	t.Helper()
	dir = t.TempDir()
	svc, err := service.Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer svc.Close()
	ctx := context.Background()

	if _, err := svc.CreateFile(ctx, "", "a.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveSnapshot(ctx, "a.md", "first draft"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveSnapshot(ctx, "a.md", "second draft"); err != nil {
		t.Fatal(err)
	}
	snaps, err := svc.ListHistory(ctx, "a.md", 10)
	if err != nil || len(snaps) != 2 {
		t.Fatalf("seed history = %v, %v", snaps, err)
	}
	return dir, snaps[1].ID
}

func TestHistoryListsSnapshotsNewestFirst(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, _ := seedWorkspace(t)

	out, err := executeCommand(rootCmd, "history", "a.md", "--dir", dir)
	if err != nil {
		t.Fatalf("history command error: %v", err)
	}
	if !strings.Contains(out, "Snapshots of a.md: 2") {
		t.Errorf("missing count line in output:\n%s", out)
	}
	first := strings.Index(out, "second draft")
	second := strings.Index(out, "first draft")
	if first == -1 || second == -1 || first > second {
		t.Errorf("snapshots not newest first:\n%s", out)
	}
}

func TestHistoryShowPrintsFullContent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, oldID := seedWorkspace(t)

	out, err := executeCommand(rootCmd, "history", "--dir", dir, "--show", oldID)
	if err != nil {
		t.Fatalf("history --show error: %v", err)
	}
	if !strings.Contains(out, "first draft") {
		t.Errorf("expected full snapshot content, got:\n%s", out)
	}
}

func TestHistoryRequiresFileWithoutShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir, _ := seedWorkspace(t)

	_, err := executeCommand(rootCmd, "history", "--dir", dir, "--show", "")
	if err == nil {
		t.Fatal("expected an error without a file argument")
	}
}
