// Package tui provides the Bubble Tea interface: a workspace tree pane with
// pointer-driven reorganization, a prompt editor with debounced autosave, and
// a content-history overlay with snapshot preview.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/promptdeck/internal/autosave"
	"github.com/fakeyudi/promptdeck/internal/config"
	"github.com/fakeyudi/promptdeck/internal/doc"
	"github.com/fakeyudi/promptdeck/internal/drag"
	"github.com/fakeyudi/promptdeck/internal/mutate"
	"github.com/fakeyudi/promptdeck/internal/preview"
	"github.com/fakeyudi/promptdeck/internal/service"
	"github.com/fakeyudi/promptdeck/internal/tree"
	"github.com/fakeyudi/promptdeck/internal/watcher"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Selected tree row
	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))

	// The row being dragged
	dragRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	// The folder the drag would drop into
	dropTargetStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	folderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	dirtyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	previewBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("178")).
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	paneSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

// treeWidth is the fixed width of the tree pane, separator excluded.
const treeWidth = 32

// ── Modes ────────────────────

type uiMode int

const (
	modeBrowse uiMode = iota // focus on the tree pane
	modeEdit                 // focus on the editor
	modeDialog               // naming a new or renamed entry
	modeConfirmDelete
	modeHistory // snapshot list / preview overlay
)

type dialogKind int

const (
	dialogNewFile dialogKind = iota
	dialogNewFolder
	dialogRename
)

// ── Messages ─────────────────

// autosaveTickMsg is the debounce timer landing. The sequence lets the
// scheduler ignore ticks that were superseded by a later edit.
type autosaveTickMsg struct{ seq int }

// workspaceChangedMsg reports an external change to the workspace directory.
type workspaceChangedMsg struct{}

// ── Model ────────────────────

// visibleRow is one row of the flattened tree pane.
type visibleRow struct {
	node  *tree.Node
	depth int
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	cfg      config.Config
	svc      service.Workspace
	document *doc.Document
	coord    *mutate.Coordinator
	sched    *autosave.Scheduler
	hist     *preview.Machine
	watch    *watcher.Watcher

	workspaceName string

	mode   uiMode
	width  int
	height int
	ready  bool

	// Tree pane
	rows     []visibleRow
	cursor   int
	scroll   int
	dragC    *drag.Controller
	resolver *drag.Resolver
	// Current drop highlight while dragging.
	dropActive bool
	dropDir    string
	dropRoot   bool

	editor textarea.Model

	// Naming dialog
	input        textinput.Model
	dialog       dialogKind
	dialogParent string // creation parent, or rename subject path

	deletePath string

	// History overlay
	snaps      []service.Snapshot
	snapCursor int
	histVP     viewport.Model

	status    string
	statusErr bool
}

// New builds the root model over an already-opened workspace service.
// watch may be nil when external-change watching is disabled.
func New(svc service.Workspace, cfg config.Config, workspaceName string, watch *watcher.Watcher) Model {
	d := &doc.Document{}

	ta := textarea.New()
	ta.Placeholder = "Select a prompt file to edit"
	ta.CharLimit = 0

	ti := textinput.New()
	ti.CharLimit = 120

	return Model{
		ctx:           context.Background(),
		cfg:           cfg,
		svc:           svc,
		document:      d,
		coord:         mutate.New(svc, d),
		sched: autosave.New(svc, autosave.Options{
			Debounce:         cfg.Debounce(),
			SnapshotInterval: cfg.SnapshotInterval(),
		}),
		hist:          preview.New(svc),
		watch:         watch,
		workspaceName: workspaceName,
		dragC:         drag.NewController(),
		resolver:      drag.NewResolver(),
		editor:        ta,
		input:         ti,
	}
}

// ── Bubble Tea interface ───────────────

// Init issues a synthetic change message: the handler does the first tree
// fetch and arms the watcher listener, so exactly one listener ever exists.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return workspaceChangedMsg{} }
}

// listenForChanges blocks on the watcher's coalesced signal channel.
func listenForChanges(w *watcher.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Events()
		return workspaceChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case workspaceChangedMsg:
		wasOpen := m.document.IsOpen()
		if err := m.coord.Refresh(m.ctx); err != nil {
			m.setError(err)
		}
		m.rebuildRows()
		if wasOpen && !m.document.IsOpen() {
			// The open file vanished under us.
			m.sched.Cancel()
			m.editor.SetValue("")
			m.setError(fmt.Errorf("open file was removed externally"))
			if m.mode == modeEdit || m.mode == modeHistory {
				m.hist.Cancel()
				m.sched.Resume()
				m.mode = modeBrowse
				m.editor.Blur()
			}
		}
		return m, listenForChanges(m.watch)

	case autosaveTickMsg:
		res, err := m.sched.TimerFired(m.ctx, msg.seq)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		if res.Saved {
			if m.document.IsOpen() && m.document.Path == res.Path {
				m.document.Dirty = false
			}
			m.setStatus("Saved " + res.Path)
		}
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeDialog:
			return m.updateDialog(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeHistory:
			return m.updateHistory(msg)
		}
	}
	return m, nil
}

// ── Key handling ──────────────────────

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()

	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)

	case "enter", " ":
		m = m.activateRow(m.cursor)
		if m.mode == modeEdit {
			return m, textarea.Blink
		}

	case "tab":
		if m.document.IsOpen() {
			m.mode = modeEdit
			m.editor.Focus()
			return m, textarea.Blink
		}

	case "n":
		m.openDialog(dialogNewFile, "New file name")
	case "N":
		m.openDialog(dialogNewFolder, "New folder name")
	case "r":
		if r, ok := m.selectedRow(); ok {
			m.dialog = dialogRename
			m.dialogParent = r.node.Path
			m.input.Placeholder = "New name"
			m.input.SetValue(r.node.Name)
			m.input.CursorEnd()
			m.input.Focus()
			m.mode = modeDialog
		}
	case "d":
		if r, ok := m.selectedRow(); ok {
			m.deletePath = r.node.Path
			m.mode = modeConfirmDelete
		}

	case "h":
		if r, ok := m.selectedRow(); ok && !r.node.IsFolder() {
			return m.enterHistory(r.node.Path)
		}
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		m.mode = modeBrowse
		m.editor.Blur()
		return m, nil

	case "ctrl+s":
		if res, err := m.sched.Flush(m.ctx); err != nil {
			m.setError(err)
		} else if res.Saved {
			m.document.Dirty = false
			m.setStatus("Saved " + res.Path)
		}
		return m, nil

	case "ctrl+h":
		return m.enterHistory(m.document.Path)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if v := m.editor.Value(); m.document.IsOpen() && v != m.document.Content {
		m.document.Content = v
		m.document.Dirty = true
		if seq, delay, armed := m.sched.NoteEdit(m.document.Path, v); armed {
			tick := tea.Tick(delay, func(time.Time) tea.Msg { return autosaveTickMsg{seq} })
			return m, tea.Batch(cmd, tick)
		}
	}
	return m, cmd
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.input.Value())
		m.mode = modeBrowse
		m.input.Blur()
		if name == "" {
			return m, nil
		}
		switch m.dialog {
		case dialogNewFile:
			if m.cfg.DefaultExtension != "" && !strings.Contains(name, ".") {
				name += m.cfg.DefaultExtension
			}
			newPath, err := m.coord.CreateFile(m.ctx, m.dialogParent, name)
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.rebuildRows()
			m.selectPath(newPath)
			m.editor.SetValue(m.document.Content)
			m.mode = modeEdit
			m.editor.Focus()
			m.setStatus("Created " + newPath)
			return m, textarea.Blink

		case dialogNewFolder:
			newPath, err := m.coord.CreateFolder(m.ctx, m.dialogParent, name)
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.rebuildRows()
			m.selectPath(newPath)
			m.setStatus("Created " + newPath)

		case dialogRename:
			newPath, err := m.coord.Rename(m.ctx, m.dialogParent, name)
			if err != nil {
				m.setError(err)
				return m, nil
			}
			m.rebuildRows()
			m.selectPath(newPath)
			m.setStatus("Renamed to " + newPath)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		path := m.deletePath
		m.mode = modeBrowse
		m.deletePath = ""
		docAffected := m.document.IsOpen() &&
			(m.document.Path == path || tree.IsDescendant(path, m.document.Path))
		if err := m.coord.Delete(m.ctx, path); err != nil {
			m.setError(err)
			return m, nil
		}
		if docAffected {
			m.sched.Cancel()
			m.editor.SetValue("")
		}
		m.rebuildRows()
		m.clampCursor()
		m.setStatus("Deleted " + path)
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.deletePath = ""
	}
	return m, nil
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		if m.hist.Previewing() {
			// Back to the snapshot list; the document was never touched.
			m.hist.Cancel()
			return m, nil
		}
		m.exitHistory()
		return m, nil

	case "up", "k":
		if !m.hist.Previewing() && m.snapCursor > 0 {
			m.snapCursor--
		}
	case "down", "j":
		if !m.hist.Previewing() && m.snapCursor < len(m.snaps)-1 {
			m.snapCursor++
		}

	case "enter":
		if !m.hist.Previewing() && len(m.snaps) > 0 {
			if err := m.hist.Enter(m.ctx, m.snaps[m.snapCursor]); err != nil {
				m.setError(err)
				return m, nil
			}
			m.histVP.SetContent(m.hist.State().Content)
			m.histVP.GotoTop()
		}

	case "a":
		if m.hist.Previewing() {
			if err := m.hist.Apply(m.ctx, m.document); err != nil {
				// Stay in the preview so the failure is visible.
				m.setError(err)
				return m, nil
			}
			m.exitHistory()
			m.editor.SetValue(m.document.Content)
			m.setStatus("Restored snapshot into " + m.document.Path)
			return m, nil
		}
	}

	if m.hist.Previewing() {
		var cmd tea.Cmd
		m.histVP, cmd = m.histVP.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ── Mouse handling ────────────────────

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// The overlay and dialogs are keyboard-only surfaces.
	if m.mode == modeDialog || m.mode == modeConfirmDelete || m.mode == modeHistory {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.X < treeWidth {
			m.scrollBy(-1)
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if msg.X < treeWidth {
			m.scrollBy(1)
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.X >= treeWidth {
			return m, nil
		}
		if idx, ok := m.rowIndexAt(msg.Y); ok {
			m.cursor = idx
			m.dragC.PointerDown(m.rows[idx].node.Path, msg.X, msg.Y,
				msg.Button == tea.MouseButtonLeft)
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.dragC.PointerMove(msg.X, msg.Y) {
			cand := m.resolver.CandidateAt(msg.X, msg.Y)
			m.dropActive = !cand.None()
			m.dropDir = cand.TargetPath
			m.dropRoot = cand.IsRootZone
		}
		return m, nil

	case tea.MouseActionRelease:
		subject, wasDragging := m.dragC.PointerUp()
		m.dropActive, m.dropDir, m.dropRoot = false, "", false
		if !wasDragging {
			// A plain click activates the pressed row.
			if idx, ok := m.rowIndexAt(msg.Y); ok && msg.X < treeWidth {
				m = m.activateRow(idx)
				if m.mode == modeEdit {
					return m, textarea.Blink
				}
			}
			return m, nil
		}
		return m.completeDrop(subject, msg.X, msg.Y), nil
	}
	return m, nil
}

// completeDrop validates the release position and issues at most one move.
func (m Model) completeDrop(subject string, x, y int) Model {
	cand := m.resolver.CandidateAt(x, y)
	destDir, ok, err := drag.Validate(m.coord.Tree(), subject, cand)
	if err != nil {
		m.setError(err)
		return m
	}
	if !ok {
		return m
	}
	newPath, err := m.coord.Move(m.ctx, subject, destDir)
	if err != nil {
		m.setError(err)
		return m
	}
	m.rebuildRows()
	m.selectPath(newPath)
	dest := destDir
	if dest == "" {
		dest = "workspace root"
	}
	m.setStatus("Moved " + tree.Base(newPath) + " to " + dest)
	return m
}

// ── Tree pane state ───────────────────

// rebuildRows reflattens the visible tree and refreshes the resolver's row
// bounds snapshot. Call after anything that changes the tree, the scroll
// position, or the layout.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		for _, c := range n.Children {
			m.rows = append(m.rows, visibleRow{node: c, depth: depth})
			if c.IsFolder() && c.Expanded {
				walk(c, depth+1)
			}
		}
	}
	walk(m.coord.Tree(), 0)
	m.clampCursor()
	m.syncResolver()
}

// syncResolver mirrors the on-screen rows into the drop resolver.
func (m *Model) syncResolver() {
	top, height := m.treeViewport()
	rows := make([]drag.Row, 0, height)
	for i := m.scroll; i < len(m.rows) && i < m.scroll+height; i++ {
		rows = append(rows, drag.Row{
			Path:     m.rows[i].node.Path,
			IsFolder: m.rows[i].node.IsFolder(),
			Y:        top + (i - m.scroll),
		})
	}
	m.resolver.SetRows(rows)
	m.resolver.SetBounds(0, top, treeWidth, top+height)
}

// treeViewport returns the first terminal row of the tree pane and its height.
func (m *Model) treeViewport() (top, height int) {
	// title(1) + statusBar(1) are the fixed rows.
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return 1, h
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	_, height := m.treeViewport()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+height {
		m.scroll = m.cursor - height + 1
	}
	m.syncResolver()
}

func (m *Model) scrollBy(delta int) {
	m.scroll += delta
	if max := len(m.rows) - 1; m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
	m.syncResolver()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.scroll >= len(m.rows) {
		m.scroll = 0
	}
}

func (m *Model) selectedRow() (visibleRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return visibleRow{}, false
	}
	return m.rows[m.cursor], true
}

// rowIndexAt maps a terminal row onto an index into m.rows.
func (m *Model) rowIndexAt(y int) (int, bool) {
	top, height := m.treeViewport()
	idx := m.scroll + (y - top)
	if y < top || y >= top+height || idx < 0 || idx >= len(m.rows) {
		return 0, false
	}
	return idx, true
}

// activateRow opens a file row or toggles a folder row.
func (m Model) activateRow(idx int) Model {
	if idx < 0 || idx >= len(m.rows) {
		return m
	}
	n := m.rows[idx].node
	m.cursor = idx
	if n.IsFolder() {
		n.Expanded = !n.Expanded
		m.rebuildRows()
		return m
	}
	if m.document.IsOpen() && m.document.Path == n.Path {
		m.mode = modeEdit
		m.editor.Focus()
		return m
	}
	// Leaving a document: its pending edits flush rather than evaporate.
	if res, err := m.sched.Flush(m.ctx); err != nil {
		m.setError(err)
	} else if res.Saved {
		m.document.Dirty = false
	}
	if err := m.coord.Open(m.ctx, n.Path); err != nil {
		m.setError(err)
		return m
	}
	m.editor.SetValue(m.document.Content)
	m.mode = modeEdit
	m.editor.Focus()
	m.setStatus("Opened " + n.Path)
	return m
}

// selectPath moves the cursor to path if it is visible.
func (m *Model) selectPath(path string) {
	for i, r := range m.rows {
		if r.node.Path == path {
			m.cursor = i
			m.moveCursor(0)
			return
		}
	}
}

// openDialog prepares the naming dialog for a creation under the selected
// folder (or the parent of the selected file).
func (m *Model) openDialog(kind dialogKind, placeholder string) {
	parent := ""
	if r, ok := m.selectedRow(); ok {
		if r.node.IsFolder() {
			parent = r.node.Path
		} else {
			parent = tree.Parent(r.node.Path)
		}
	}
	m.dialog = kind
	m.dialogParent = parent
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	m.mode = modeDialog
}

// ── History overlay ───────────────────

// enterHistory flushes any pending edit, suspends autosave, and opens the
// snapshot list for the open document.
func (m Model) enterHistory(path string) (tea.Model, tea.Cmd) {
	if !m.document.IsOpen() || m.document.Path != path {
		if err := m.coord.Open(m.ctx, path); err != nil {
			m.setError(err)
			return m, nil
		}
		m.editor.SetValue(m.document.Content)
	}
	if res, err := m.sched.Flush(m.ctx); err != nil {
		m.setError(err)
		return m, nil
	} else if res.Saved {
		m.document.Dirty = false
	}
	m.sched.Suspend()

	snaps, err := m.svc.ListHistory(m.ctx, m.document.Path, m.cfg.HistoryLimit)
	if err != nil {
		m.sched.Resume()
		m.setError(err)
		return m, nil
	}
	m.snaps = snaps
	m.snapCursor = 0
	m.mode = modeHistory
	m.editor.Blur()
	return m, nil
}

// exitHistory leaves the overlay and re-enables autosave.
func (m *Model) exitHistory() {
	m.hist.Cancel()
	m.sched.Resume()
	if m.mode == modeHistory {
		m.mode = modeEdit
		m.editor.Focus()
	}
}

// ── Teardown ──────────────────────────

func (m Model) quit() (tea.Model, tea.Cmd) {
	// Last edits survive the exit.
	if res, err := m.sched.Flush(m.ctx); err == nil && res.Saved {
		m.document.Dirty = false
	}
	return m, tea.Quit
}

// ── Status line ───────────────────────

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// ── View ──────────────────────────────

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := m.workspaceName
	if m.document.IsOpen() {
		title += "  ·  " + m.document.Path
		if m.document.Dirty {
			title += " " + dirtyStyle.Render("●")
		}
	}
	titleBar := titleStyle.Width(m.width).Render("  promptdeck  " + title)

	_, height := m.treeViewport()
	left := m.renderTree(height)
	right := m.renderMain(height)
	sep := strings.TrimSuffix(strings.Repeat(paneSepStyle.Render("│")+"\n", height), "\n")
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, sep, right)

	return lipgloss.JoinVertical(lipgloss.Left, titleBar, body, m.renderStatusBar())
}

func (m Model) renderTree(height int) string {
	lines := make([]string, 0, height)
	for i := m.scroll; i < len(m.rows) && len(lines) < height; i++ {
		r := m.rows[i]
		indent := strings.Repeat("  ", r.depth)

		var label string
		if r.node.IsFolder() {
			arrow := "▸"
			if r.node.Expanded {
				arrow = "▾"
			}
			label = indent + arrow + " " + folderStyle.Render(r.node.Name)
		} else {
			label = indent + "  " + r.node.Name
			if m.document.IsOpen() && m.document.Path == r.node.Path && m.document.Dirty {
				label += dirtyStyle.Render(" ●")
			}
		}

		line := " " + label
		switch {
		case m.dragC.Dragging() && m.dragC.Subject() == r.node.Path:
			line = dragRowStyle.Width(treeWidth).Render(line)
		case m.dropActive && !m.dropRoot && r.node.Path == m.dropDir && r.node.IsFolder():
			line = dropTargetStyle.Width(treeWidth).Render(line)
		case i == m.cursor && m.mode == modeBrowse:
			line = selectedRowStyle.Width(treeWidth).Render(line)
		default:
			line = lipgloss.NewStyle().Width(treeWidth).MaxWidth(treeWidth).Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < height {
		blank := ""
		if m.dropActive && m.dropRoot && len(lines) == len(m.rows)-m.scroll {
			blank = dropTargetStyle.Width(treeWidth).Render(" ⤶ workspace root")
		} else {
			blank = strings.Repeat(" ", treeWidth)
		}
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderMain(height int) string {
	mainWidth := m.width - treeWidth - 1
	if mainWidth < 10 {
		mainWidth = 10
	}

	switch m.mode {
	case modeDialog:
		var verb string
		switch m.dialog {
		case dialogNewFile:
			verb = "New file"
		case dialogNewFolder:
			verb = "New folder"
		case dialogRename:
			verb = "Rename"
		}
		where := m.dialogParent
		if where == "" && m.dialog != dialogRename {
			where = "workspace root"
		}
		box := sectionHeader.Render("  "+verb) + dimStyle.Render("  ("+where+")") +
			"\n\n  " + m.input.View() +
			"\n\n" + dimStyle.Render("  enter confirm · esc cancel")
		return pad(box, mainWidth, height)

	case modeConfirmDelete:
		box := sectionHeader.Render("  Delete "+m.deletePath+"?") +
			"\n\n" + dimStyle.Render("  This also removes its content history.") +
			"\n\n" + dimStyle.Render("  y delete · n cancel")
		return pad(box, mainWidth, height)

	case modeHistory:
		return m.renderHistory(mainWidth, height)
	}

	if !m.document.IsOpen() {
		empty := "\n\n" + dimStyle.Render("  No prompt open.") +
			"\n\n" + dimStyle.Render("  enter open · n new file · N new folder") +
			"\n" + dimStyle.Render("  drag rows with the mouse to reorganize")
		return pad(empty, mainWidth, height)
	}

	ed := m.editor
	ed.SetWidth(mainWidth)
	ed.SetHeight(height)
	return ed.View()
}

func (m Model) renderHistory(width, height int) string {
	if st := m.hist.State(); st != nil {
		badge := previewBadgeStyle.Render("PREVIEW") + timeStyle.Render(
			"  "+time.Unix(st.Timestamp, 0).Format("2006-01-02 15:04:05"))
		vp := m.histVP
		vp.Width = width
		vp.Height = height - 2
		return badge + "\n" + dimStyle.Render(strings.Repeat("─", width)) + "\n" + vp.View()
	}

	var sb strings.Builder
	sb.WriteString(sectionHeader.Render(fmt.Sprintf("  History — %s (%d)", m.document.Path, len(m.snaps))) + "\n\n")
	if len(m.snaps) == 0 {
		sb.WriteString(dimStyle.Render("  (no snapshots yet)") + "\n")
	}
	for i, s := range m.snaps {
		ts := timeStyle.Render(time.Unix(s.CreatedAt, 0).Format("2006-01-02 15:04"))
		excerpt := strings.SplitN(s.Preview, "\n", 2)[0]
		if len(excerpt) > width-24 && width > 24 {
			excerpt = excerpt[:width-24] + "…"
		}
		row := fmt.Sprintf("  %s  %s", ts, excerpt)
		if i == m.snapCursor {
			row = selectedRowStyle.Width(width - 2).Render(row)
		}
		sb.WriteString(row + "\n")
	}
	return pad(sb.String(), width, height)
}

func (m Model) renderStatusBar() string {
	var hint string
	switch m.mode {
	case modeBrowse:
		hint = "↑/↓ move  enter open  n/N new  r rename  d delete  h history  drag to move  q quit"
	case modeEdit:
		hint = "esc tree  ctrl+s save  ctrl+h history  ctrl+c quit"
	case modeDialog:
		hint = "enter confirm  esc cancel"
	case modeConfirmDelete:
		hint = "y delete  n cancel"
	case modeHistory:
		if m.hist.Previewing() {
			hint = "a apply  esc back  ↑/↓ scroll"
		} else {
			hint = "↑/↓ select  enter preview  esc close"
		}
	}

	left := hint
	if m.status != "" {
		status := m.status
		if m.statusErr {
			status = errorStyle.Render(status)
		}
		left = status + dimStyle.Render("   ·   ") + hint
	}
	return statusBarStyle.Width(m.width).Render(left)
}

// pad fills content out to the pane rectangle so horizontal joins line up.
func pad(content string, width, height int) string {
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(content)
}

// layout re-applies sizes after a terminal resize.
func (m *Model) layout() {
	_, height := m.treeViewport()
	mainWidth := m.width - treeWidth - 1
	if mainWidth < 10 {
		mainWidth = 10
	}
	m.editor.SetWidth(mainWidth)
	m.editor.SetHeight(height)
	m.histVP = viewport.New(mainWidth, height-2)
	if st := m.hist.State(); st != nil {
		m.histVP.SetContent(st.Content)
	}
	m.input.Width = mainWidth - 6
	m.syncResolver()
}

// Run starts the TUI over an opened workspace.
func Run(svc service.Workspace, cfg config.Config, workspaceName string, watch *watcher.Watcher) error {
	p := tea.NewProgram(New(svc, cfg, workspaceName, watch),
		tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
