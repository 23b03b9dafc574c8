package drag_test

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/promptdeck/internal/drag"
	"github.com/fakeyudi/promptdeck/internal/tree"
)

// workspace builds:
//
//	root
//	├── docs/
//	│   ├── sub/
//	│   └── a.md
//	└── a.md
func workspace() *tree.Node {
	sub := &tree.Node{Name: "sub", Path: "docs/sub", Kind: tree.Folder}
	docsA := &tree.Node{Name: "a.md", Path: "docs/a.md", Kind: tree.File}
	docs := &tree.Node{Name: "docs", Path: "docs", Kind: tree.Folder, Children: []*tree.Node{sub, docsA}}
	a := &tree.Node{Name: "a.md", Path: "a.md", Kind: tree.File}
	return &tree.Node{Path: "", Kind: tree.Folder, Children: []*tree.Node{docs, a}}
}

func testResolver() *drag.Resolver {
	r := drag.NewResolver()
	r.SetBounds(0, 1, 30, 10)
	r.SetRows([]Row{
		{Path: "docs", IsFolder: true, Y: 1},
		{Path: "docs/sub", IsFolder: true, Y: 2},
		{Path: "docs/a.md", Y: 3},
		{Path: "a.md", Y: 4},
	})
	return r
}

type Row = drag.Row

func TestCandidateAt(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name string
		x, y int
		want drag.Candidate
	}{
		{"folder row", 3, 1, drag.Candidate{TargetPath: "docs"}},
		{"nested folder row", 3, 2, drag.Candidate{TargetPath: "docs/sub"}},
		{"file row targets its folder", 3, 3, drag.Candidate{TargetPath: "docs"}},
		{"top-level file row is the root zone", 3, 4, drag.Candidate{IsRootZone: true}},
		{"blank space below rows is the root zone", 3, 8, drag.Candidate{IsRootZone: true}},
		{"outside the pane", 35, 2, drag.Candidate{}},
		{"above the pane", 3, 0, drag.Candidate{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CandidateAt(tt.x, tt.y); got != tt.want {
				t.Errorf("CandidateAt(%d, %d) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	root := workspace()

	tests := []struct {
		name    string
		subject string
		cand    drag.Candidate
		wantDir string
		wantOK  bool
		wantErr error
	}{
		{"valid move into folder", "a.md", drag.Candidate{TargetPath: "docs/sub"}, "docs/sub", true, nil},
		{"root drop collides with existing name", "docs/a.md", drag.Candidate{IsRootZone: true}, "", false, drag.ErrNameTaken},
		{"move folder to root is valid", "docs/sub", drag.Candidate{IsRootZone: true}, "", true, nil},
		{"no target", "a.md", drag.Candidate{}, "", false, nil},
		{"drop onto itself", "docs", drag.Candidate{TargetPath: "docs"}, "", false, nil},
		{"folder into own descendant", "docs", drag.Candidate{TargetPath: "docs/sub"}, "", false, drag.ErrCycle},
		{"already in place", "docs/a.md", drag.Candidate{TargetPath: "docs"}, "", false, nil},
		{"already at root", "a.md", drag.Candidate{IsRootZone: true}, "", false, nil},
		{"name collision", "a.md", drag.Candidate{TargetPath: "docs"}, "", false, drag.ErrNameTaken},
		{"vanished subject", "gone.md", drag.Candidate{TargetPath: "docs"}, "", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, ok, err := drag.Validate(root, tt.subject, tt.cand)
			if dir != tt.wantDir || ok != tt.wantOK || !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q, %+v) = (%q, %v, %v), want (%q, %v, %v)",
					tt.subject, tt.cand, dir, ok, err, tt.wantDir, tt.wantOK, tt.wantErr)
			}
		})
	}
}

// Property: a folder is never movable into its own subtree, however deep.
func TestCycleAlwaysRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		depth := rapid.IntRange(1, 6).Draw(t, "depth")
		below := rapid.IntRange(0, 4).Draw(t, "below")

		// Build a chain of folders f0/f1/.../fN and pick the subject somewhere
		// above the target on the chain.
		root := &tree.Node{Path: "", Kind: tree.Folder}
		parent := root
		var chain []string
		path := ""
		for i := 0; i < depth+below+1; i++ {
			path = tree.Join(path, "f")
			n := &tree.Node{Name: "f", Path: path, Kind: tree.Folder}
			parent.Children = append(parent.Children, n)
			parent = n
			chain = append(chain, path)
		}

		subject := chain[below]
		target := chain[len(chain)-1]

		dir, ok, err := drag.Validate(root, subject, drag.Candidate{TargetPath: target})
		if ok {
			t.Fatalf("moving %q into its descendant %q validated as (%q, true)", subject, target, dir)
		}
		if subject != target && !errors.Is(err, drag.ErrCycle) {
			t.Fatalf("expected ErrCycle for %q -> %q, got %v", subject, target, err)
		}
	})
}
