package drag

import (
	"errors"

	"github.com/fakeyudi/promptdeck/internal/tree"
)

var (
	// ErrNameTaken reports a drop target that already has a child named like
	// the dragged entry. This check runs against the last-synchronized tree
	// and is advisory; the workspace service re-checks authoritatively.
	ErrNameTaken = errors.New("target folder already has an entry with that name")

	// ErrCycle reports an attempt to move a folder into its own subtree.
	ErrCycle = errors.New("cannot move a folder into itself")
)

// Row is the rendered bounds of one tree row, captured each render. The
// resolver hit-tests pointer coordinates against this snapshot instead of
// relying on per-row hover callbacks, which go stale when a leave event is
// missed.
type Row struct {
	Path     string
	IsFolder bool
	Y        int // absolute terminal row
}

// Candidate is the current drop target: a folder path, the workspace root
// zone, or nothing.
type Candidate struct {
	TargetPath string
	IsRootZone bool
}

// None reports that no valid target is under the pointer.
func (c Candidate) None() bool { return c.TargetPath == "" && !c.IsRootZone }

// destDir returns the destination directory the candidate stands for.
func (c Candidate) destDir() string {
	if c.IsRootZone {
		return ""
	}
	return c.TargetPath
}

// Resolver computes drop candidates from pointer position and the latest row
// bounds snapshot.
type Resolver struct {
	rows       []Row
	paneX0     int
	paneX1     int
	paneY0     int
	paneY1     int
	haveBounds bool
}

// NewResolver returns an empty Resolver; SetBounds and SetRows must be called
// before CandidateAt yields anything.
func NewResolver() *Resolver { return &Resolver{} }

// SetBounds records the rectangle of the tree pane, exclusive of x1/y1.
func (r *Resolver) SetBounds(x0, y0, x1, y1 int) {
	r.paneX0, r.paneY0, r.paneX1, r.paneY1 = x0, y0, x1, y1
	r.haveBounds = true
}

// SetRows replaces the row bounds snapshot. Call on every render of the tree
// pane so the snapshot matches what is on screen.
func (r *Resolver) SetRows(rows []Row) { r.rows = rows }

// CandidateAt maps pointer coordinates to the current drop candidate:
// a folder row targets that folder, a file row targets its containing folder,
// and blank space inside the pane is the root zone. Outside the pane there is
// no candidate.
func (r *Resolver) CandidateAt(x, y int) Candidate {
	if !r.haveBounds || x < r.paneX0 || x >= r.paneX1 || y < r.paneY0 || y >= r.paneY1 {
		return Candidate{}
	}
	for _, row := range r.rows {
		if row.Y != y {
			continue
		}
		if row.IsFolder {
			return Candidate{TargetPath: row.Path}
		}
		parent := tree.Parent(row.Path)
		if parent == "" {
			return Candidate{IsRootZone: true}
		}
		return Candidate{TargetPath: parent}
	}
	return Candidate{IsRootZone: true}
}

// Validate decides at drop time whether releasing subjectPath onto cand
// should issue a move, evaluating against the last-synchronized tree.
// It returns the destination directory and ok=true when a move request should
// be sent. Self-drops, drops onto the current parent, and drops with no
// target are silent no-ops (ok=false, err=nil); a folder dropped into its own
// subtree returns ErrCycle and a sibling name collision returns ErrNameTaken,
// both without any move being issued.
func Validate(root *tree.Node, subjectPath string, cand Candidate) (destDir string, ok bool, err error) {
	if cand.None() || subjectPath == "" {
		return "", false, nil
	}
	subject := root.Find(subjectPath)
	if subject == nil {
		// Subject vanished from a refreshed tree mid-drag; drop is a no-op.
		return "", false, nil
	}
	dest := cand.destDir()

	if dest == subjectPath {
		return "", false, nil
	}
	if subject.IsFolder() && (dest == subjectPath || tree.IsDescendant(subjectPath, dest)) {
		return "", false, ErrCycle
	}
	if tree.Parent(subjectPath) == dest {
		return "", false, nil
	}

	destNode := root.Find(dest)
	if destNode == nil || !destNode.IsFolder() {
		return "", false, nil
	}
	if destNode.HasChild(subject.Name) {
		return "", false, ErrNameTaken
	}
	return dest, true, nil
}
