// Package drag implements pointer-driven tree reorganization: a small state
// machine turning press/move/release into a drag session, and a resolver that
// maps pointer position onto a drop target and validates the prospective
// move. The host surface has no native drag-and-drop, so the press-move
// threshold below is what keeps ordinary clicks from turning into drags.
package drag

// Phase is the drag session state.
type Phase int

const (
	Idle Phase = iota
	Pressed
	Dragging
)

// DefaultThreshold is the Chebyshev distance (in terminal cells) the pointer
// must travel from the press origin before a press becomes a drag.
const DefaultThreshold = 2

// Controller is the pointer state machine. The subject is held as a path, not
// a node reference: the tree may be replaced while a drag is in flight, and
// the path is re-resolved at drop time.
type Controller struct {
	threshold int
	phase     Phase
	subject   string
	originX   int
	originY   int
}

// NewController returns a Controller with the default drag threshold.
func NewController() *Controller {
	return &Controller{threshold: DefaultThreshold}
}

// Phase returns the current session phase.
func (c *Controller) Phase() Phase { return c.phase }

// Subject returns the path of the pressed or dragged entry, or "" when Idle.
func (c *Controller) Subject() string { return c.subject }

// Dragging reports whether a drag is in progress. The TUI derives the
// "this row is being dragged" highlight from Dragging() and Subject().
func (c *Controller) Dragging() bool { return c.phase == Dragging }

// PointerDown arms a session on the entry at subjectPath. Only the primary
// button arms; any other button is ignored with no state change.
func (c *Controller) PointerDown(subjectPath string, x, y int, primary bool) {
	if !primary || subjectPath == "" {
		return
	}
	c.phase = Pressed
	c.subject = subjectPath
	c.originX, c.originY = x, y
}

// PointerMove feeds a motion event. A Pressed session becomes Dragging once
// the pointer moves beyond the threshold; sub-threshold jitter does nothing,
// so a shaky click stays a click. Returns true while Dragging.
func (c *Controller) PointerMove(x, y int) bool {
	switch c.phase {
	case Pressed:
		if chebyshev(x-c.originX, y-c.originY) > c.threshold {
			c.phase = Dragging
		}
	case Dragging:
		// Hover recomputation is the resolver's job; nothing to do here.
	}
	return c.phase == Dragging
}

// PointerUp ends the session unconditionally. It returns the subject path and
// whether the session was Dragging at release — only then should the release
// be treated as a drop. A release while merely Pressed is a click.
func (c *Controller) PointerUp() (subject string, wasDragging bool) {
	subject = c.subject
	wasDragging = c.phase == Dragging
	c.phase = Idle
	c.subject = ""
	return subject, wasDragging
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
