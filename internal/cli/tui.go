package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/layout"
	"github.com/matzehuels/noticeboard/pkg/render"
)

// A terminal cell stands in for this many canvas pixels.
const (
	cellWidthPx  = 8
	cellHeightPx = 16

	// chromeLines is the header, help and status lines around the board.
	chromeLines = 3
)

var (
	boardActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	boardMovableStyle = lipgloss.NewStyle().Foreground(colorWhite)
	boardStatusOK     = lipgloss.NewStyle().Foreground(colorGreen)
	boardStatusErr    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Messages
// =============================================================================

// snapshotMsg signals that the board published a new snapshot. The model
// reads the current one from the board, so a burst of changes collapses
// into a single redraw of the latest state.
type snapshotMsg struct{}

// notificationMsg carries a drag commit outcome.
type notificationMsg board.Notification

// waitSnapshot blocks until the board publishes a change.
func waitSnapshot(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return snapshotMsg{}
	}
}

func waitNotification(ch <-chan board.Notification) tea.Cmd {
	return func() tea.Msg { return notificationMsg(<-ch) }
}

// =============================================================================
// BoardModel - Interactive board
// =============================================================================

// dragState tracks a mouse drag in progress.
type dragState struct {
	cardID         string
	startX, startY int
}

// BoardModel is the bubbletea model for the interactive board.
type BoardModel struct {
	ctx   context.Context
	board *board.Board

	changed       chan struct{}
	notifications chan board.Notification

	snap   board.Snapshot
	cards  map[string]board.Card
	cols   int
	rows   int
	drag   *dragState
	status string
	failed bool
}

// NewBoardModel wires a model to b. The board must have been created with
// the notifier returned alongside, so commit outcomes reach the status line.
func NewBoardModel(ctx context.Context, b *board.Board, notifications chan board.Notification) BoardModel {
	changed := make(chan struct{}, 1)
	b.OnChange(func(board.Snapshot) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	m := BoardModel{
		ctx:           ctx,
		board:         b,
		changed:       changed,
		notifications: notifications,
		snap:          b.Snapshot(),
		cols:          80,
		rows:          24 - chromeLines,
	}
	m.refreshCards()
	return m
}

// boardNotifier forwards notifications to ch without blocking.
func boardNotifier(ch chan board.Notification) board.Notifier {
	return board.NotifierFunc(func(n board.Notification) {
		select {
		case ch <- n:
		default:
		}
	})
}

func (m *BoardModel) refreshCards() {
	cards := m.board.Cards()
	m.cards = make(map[string]board.Card, len(cards))
	for _, c := range cards {
		m.cards[c.ID] = c
	}
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(waitSnapshot(m.changed), waitNotification(m.notifications))
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = max(1, msg.Width)
		m.rows = max(1, msg.Height-chromeLines)
		m.board.Resize(layout.Canvas{
			Width:  float64(m.cols * cellWidthPx),
			Height: float64(m.rows * cellHeightPx),
		})
		m.snap = m.board.Snapshot()

	case snapshotMsg:
		m.snap = m.board.Snapshot()
		m.refreshCards()
		return m, waitSnapshot(m.changed)

	case notificationMsg:
		m.failed = msg.Level == board.LevelError
		m.status = msg.Message
		if m.failed && msg.Err != nil {
			m.status += ": " + errors.UserMessage(msg.Err)
		}
		return m, waitNotification(m.notifications)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m BoardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "v":
		m.board.SetViewMode(m.board.Mode().Next())
		m.snap = m.board.Snapshot()
		m.status = "View: " + m.snap.Mode.String()
		m.failed = false
	case "r":
		m.board.Relayout()
		m.snap = m.board.Snapshot()
	case "tab":
		m.board.SetActive(nextActive(m.snap, m.board.Active()))
	case "left", "h":
		m.nudge(-cellWidthPx, 0)
	case "right", "l":
		m.nudge(cellWidthPx, 0)
	case "up", "k":
		m.nudge(0, -cellHeightPx)
	case "down", "j":
		m.nudge(0, cellHeightPx)
	}
	return m, nil
}

// nudge drags the active card by a pixel delta.
func (m *BoardModel) nudge(dx, dy float64) {
	id := m.board.Active()
	if id == "" {
		return
	}
	m.endDrag(id, dx, dy)
}

func (m *BoardModel) handleMouse(msg tea.MouseMsg) {
	y := msg.Y - 1
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		id := cardAt(m.snap, m.board.Active(), m.cols, m.rows, msg.X, y)
		m.board.SetActive(id)
		if id != "" {
			m.drag = &dragState{cardID: id, startX: msg.X, startY: y}
		}
	case tea.MouseActionRelease:
		if m.drag == nil {
			return
		}
		d := m.drag
		m.drag = nil
		if msg.X == d.startX && y == d.startY {
			return
		}
		m.endDrag(d.cardID, float64((msg.X-d.startX)*cellWidthPx), float64((y-d.startY)*cellHeightPx))
	}
}

func (m *BoardModel) endDrag(id string, dx, dy float64) {
	err := m.board.EndDrag(m.ctx, board.DragEnd{CardID: id, Delta: layout.Point{X: dx, Y: dy}})
	if err != nil {
		m.status = errors.UserMessage(err)
		m.failed = true
		return
	}
	m.status = "Saving..."
	m.failed = false
}

func (m BoardModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("Noticeboard · %s · %d cards", m.snap.Mode, len(m.snap.Placements))
	if n := m.snap.Diagnostics.Exhausted; n > 0 {
		header += fmt.Sprintf(" · %d overlapping", n)
	}
	b.WriteString(StyleTitle.Render(header))
	b.WriteString("\n")

	grid := drawBoard(m.snap, m.cards, m.board.Active(), m.cols, m.rows)
	for _, line := range grid {
		b.WriteString(m.styleLine(line))
		b.WriteString("\n")
	}

	b.WriteString(StyleDim.Render("v view  tab select  ←↑↓→ move  drag with mouse  r relayout  q quit"))
	b.WriteString("\n")
	switch {
	case m.status == "":
	case m.failed:
		b.WriteString(boardStatusErr.Render(iconError + " " + m.status))
	default:
		b.WriteString(boardStatusOK.Render(iconSuccess + " " + m.status))
	}
	return b.String()
}

// styleLine colors runs of cells by the card they belong to.
func (m BoardModel) styleLine(line []cell) string {
	var b strings.Builder
	active := m.board.Active()
	for i := 0; i < len(line); {
		j := i
		for j < len(line) && line[j].card == line[i].card {
			j++
		}
		var run strings.Builder
		for _, c := range line[i:j] {
			run.WriteRune(c.r)
		}
		b.WriteString(m.cardStyle(line[i].card, active).Render(run.String()))
		i = j
	}
	return b.String()
}

func (m BoardModel) cardStyle(id, active string) lipgloss.Style {
	if id == "" {
		return StyleDim
	}
	if id == active {
		return boardActiveStyle
	}
	c := m.cards[id]
	if c.Movable {
		return boardMovableStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(render.PinColor(c.Category)))
}

// =============================================================================
// Drawing
// =============================================================================

// cell is one terminal character and the card drawn there, if any.
type cell struct {
	r    rune
	card string
}

// cellRect is a card's rectangle in terminal cells.
type cellRect struct {
	id         string
	x, y, w, h int
	z          int
}

// cardRects maps the snapshot onto a cols×rows cell grid, ordered from the
// bottom of the stack to the top.
func cardRects(s board.Snapshot, active string, cols, rows int) []cellRect {
	w := max(3, int(s.Card.Width*float64(cols)/100+0.5))
	h := max(3, int(s.Card.Height*float64(rows)/100+0.5))
	rs := s.Rendered(active)
	out := make([]cellRect, len(rs))
	for i, r := range rs {
		out[i] = cellRect{
			id: r.CardID,
			x:  int(r.Left*float64(cols)/100 + 0.5),
			y:  int(r.Top*float64(rows)/100 + 0.5),
			w:  w,
			h:  h,
			z:  r.ZIndex,
		}
	}
	slices.SortStableFunc(out, func(a, b cellRect) int { return cmp.Compare(a.z, b.z) })
	return out
}

// cardAt returns the topmost card covering the cell, or "".
func cardAt(s board.Snapshot, active string, cols, rows, x, y int) string {
	rects := cardRects(s, active, cols, rows)
	for i := len(rects) - 1; i >= 0; i-- {
		r := rects[i]
		if x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h {
			return r.id
		}
	}
	return ""
}

// nextActive cycles the active card through the snapshot order.
func nextActive(s board.Snapshot, active string) string {
	if len(s.Placements) == 0 {
		return ""
	}
	i := slices.IndexFunc(s.Placements, func(p layout.Placement) bool { return p.CardID == active })
	return s.Placements[(i+1)%len(s.Placements)].CardID
}

// drawBoard paints the snapshot onto a cols×rows grid. Cards are boxes with
// their title on the first inner line; later cards cover earlier ones.
func drawBoard(s board.Snapshot, cards map[string]board.Card, active string, cols, rows int) [][]cell {
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	set := func(x, y int, r rune, id string) {
		if x >= 0 && x < cols && y >= 0 && y < rows {
			grid[y][x] = cell{r: r, card: id}
		}
	}

	for _, r := range cardRects(s, active, cols, rows) {
		for y := r.y; y < r.y+r.h; y++ {
			for x := r.x; x < r.x+r.w; x++ {
				ch := ' '
				switch {
				case (y == r.y || y == r.y+r.h-1) && (x == r.x || x == r.x+r.w-1):
					ch = '+'
				case y == r.y || y == r.y+r.h-1:
					ch = '-'
				case x == r.x || x == r.x+r.w-1:
					ch = '|'
				}
				set(x, y, ch, r.id)
			}
		}
		title := cards[r.id].Title
		if title == "" {
			title = r.id
		}
		for i, ch := range []rune(title) {
			if i >= r.w-2 {
				break
			}
			set(r.x+1+i, r.y+1, ch, r.id)
		}
	}
	return grid
}
