package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/cardstore"
	"github.com/matzehuels/noticeboard/pkg/cardstore/memory"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

func twoCardSnapshot() board.Snapshot {
	return board.Snapshot{
		Mode: layout.ModeScattered,
		Card: layout.Size{Width: 20, Height: 25},
		Placements: []layout.Placement{
			{CardID: "a", Position: layout.Position{Left: 0, Top: 0, ZIndex: 1}},
			{CardID: "b", Position: layout.Position{Left: 10, Top: 10, ZIndex: 2}},
		},
	}
}

func TestDrawBoard(t *testing.T) {
	cards := map[string]board.Card{"a": {ID: "a", Title: "Alpha"}, "b": {ID: "b"}}
	grid := drawBoard(twoCardSnapshot(), cards, "", 40, 20)

	if len(grid) != 20 || len(grid[0]) != 40 {
		t.Fatalf("grid = %dx%d, want 40x20", len(grid[0]), len(grid))
	}

	tests := []struct {
		name string
		x, y int
		r    rune
		card string
	}{
		{"corner of a", 0, 0, '+', "a"},
		{"top edge of a", 3, 0, '-', "a"},
		{"title of a", 1, 1, 'A', "a"},
		{"b covers a", 4, 2, '+', "b"},
		{"b falls back to id", 5, 3, 'b', "b"},
		{"empty board", 30, 15, ' ', ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grid[tt.y][tt.x]
			if got.r != tt.r || got.card != tt.card {
				t.Errorf("cell(%d,%d) = %q/%q, want %q/%q", tt.x, tt.y, got.r, got.card, tt.r, tt.card)
			}
		})
	}
}

func TestDrawBoardClipsOffscreenCards(t *testing.T) {
	s := board.Snapshot{
		Card:       layout.Size{Width: 50, Height: 50},
		Placements: []layout.Placement{{CardID: "low", Position: layout.Position{Left: 80, Top: 180}}},
	}
	grid := drawBoard(s, nil, "", 10, 10)
	for y := range grid {
		for x := range grid[y] {
			if grid[y][x].card != "" {
				t.Fatalf("cell(%d,%d) drawn for off-screen card", x, y)
			}
		}
	}
}

func TestCardAt(t *testing.T) {
	s := twoCardSnapshot()

	tests := []struct {
		name   string
		active string
		x, y   int
		want   string
	}{
		{"only a", "", 1, 1, "a"},
		{"overlap picks top", "", 5, 3, "b"},
		{"active lifted", "a", 5, 3, "a"},
		{"nothing", "", 30, 15, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cardAt(s, tt.active, 40, 20, tt.x, tt.y); got != tt.want {
				t.Errorf("cardAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextActive(t *testing.T) {
	s := twoCardSnapshot()
	tests := []struct{ from, want string }{
		{"", "a"},
		{"a", "b"},
		{"b", "a"},
		{"gone", "a"},
	}
	for _, tt := range tests {
		if got := nextActive(s, tt.from); got != tt.want {
			t.Errorf("nextActive(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
	if got := nextActive(board.Snapshot{}, "a"); got != "" {
		t.Errorf("nextActive(empty) = %q, want empty", got)
	}
}

// newTestBoard opens a board over a memory store holding one pinned card
// owned by alice.
func newTestBoard(t *testing.T) (*board.Board, cardstore.Store, chan board.Notification) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	t.Cleanup(func() { st.Close() })

	cards := []board.Card{{ID: "fair", Title: "Spring fair", PositionX: board.Float(10), PositionY: board.Float(10)}}
	if _, _, err := importCards(ctx, st, "demo", "alice", cards); err != nil {
		t.Fatalf("importCards() error: %v", err)
	}
	visible, err := cardstore.BoardCards(ctx, st, "demo", "alice")
	if err != nil {
		t.Fatalf("BoardCards() error: %v", err)
	}

	notifications := make(chan board.Notification, 4)
	b := board.New(
		board.WithUpdater(cardstore.Updater{Store: st, Actor: "alice"}),
		board.WithNotifier(boardNotifier(notifications)),
	)
	b.SetCards(visible)
	return b, st, notifications
}

func TestBoardModelResize(t *testing.T) {
	b, _, notes := newTestBoard(t)
	m := NewBoardModel(context.Background(), b, notes)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 43})
	m = next.(BoardModel)

	want := layout.Canvas{Width: 800, Height: 640}
	if got := b.Canvas(); got != want {
		t.Errorf("canvas = %+v, want %+v", got, want)
	}
	if m.cols != 100 || m.rows != 40 {
		t.Errorf("grid = %dx%d, want 100x40", m.cols, m.rows)
	}
}

func TestBoardModelSnapshotShowsLatest(t *testing.T) {
	b, _, notes := newTestBoard(t)
	m := NewBoardModel(context.Background(), b, notes)

	// Two changes before the model drains its wake-up channel.
	b.SetViewMode(layout.ModeList)
	b.SetViewMode(layout.ModeGrid)
	if got := len(m.changed); got != 1 {
		t.Fatalf("pending wake-ups = %d, want 1", got)
	}

	next, cmd := m.Update(snapshotMsg{})
	m = next.(BoardModel)
	if m.snap.Mode != layout.ModeGrid {
		t.Errorf("snapshot mode = %v, want grid", m.snap.Mode)
	}
	if cmd == nil {
		t.Error("snapshot message should re-arm the wait")
	}

	// A queued wake-up after a synchronous update must not roll back.
	b.SetViewMode(layout.ModeList)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})
	m = next.(BoardModel)
	next, _ = m.Update(snapshotMsg{})
	m = next.(BoardModel)
	if m.snap.Mode != b.Mode() {
		t.Errorf("snapshot mode = %v, board mode = %v", m.snap.Mode, b.Mode())
	}
}

func TestBoardModelKeys(t *testing.T) {
	b, _, notes := newTestBoard(t)
	m := NewBoardModel(context.Background(), b, notes)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(BoardModel)
	if got := b.Active(); got != "fair" {
		t.Errorf("active after tab = %q, want fair", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})
	m = next.(BoardModel)
	if got := b.Mode(); got != layout.ModeList {
		t.Errorf("mode after v = %v, want list", got)
	}

	// Cards cannot move outside scattered view.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(BoardModel)
	if !m.failed || m.status == "" {
		t.Errorf("status = %q (failed=%v), want a failure", m.status, m.failed)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBoardModelMouseDrag(t *testing.T) {
	b, st, notes := newTestBoard(t)
	m := NewBoardModel(context.Background(), b, notes)

	// 125x50 cells is a 1000x800 canvas; the card spans cells x 13..31, y 5..17.
	next, _ := m.Update(tea.WindowSizeMsg{Width: 125, Height: 53})
	m = next.(BoardModel)

	next, _ = m.Update(tea.MouseMsg{X: 15, Y: 7, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(BoardModel)
	if got := b.Active(); got != "fair" {
		t.Fatalf("active after press = %q, want fair", got)
	}

	next, _ = m.Update(tea.MouseMsg{X: 25, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(BoardModel)
	if m.failed {
		t.Fatalf("drag failed: %s", m.status)
	}
	if err := b.Wait(); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	n := <-notes
	if n.Level != board.LevelSuccess {
		t.Errorf("notification = %+v, want success", n)
	}

	// 10 cells right and 5 down is 80px each way.
	stored, err := st.GetCard(context.Background(), "fair")
	if err != nil {
		t.Fatalf("GetCard() error: %v", err)
	}
	if *stored.PositionX != 18 || *stored.PositionY != 20 {
		t.Errorf("stored position = (%v, %v), want (18, 20)", *stored.PositionX, *stored.PositionY)
	}

	next, _ = m.Update(notificationMsg(n))
	m = next.(BoardModel)
	if m.status != "Card position saved" {
		t.Errorf("status = %q", m.status)
	}
}

func TestBoardModelView(t *testing.T) {
	b, _, notes := newTestBoard(t)
	m := NewBoardModel(context.Background(), b, notes)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(BoardModel)

	view := m.View()
	if view == "" {
		t.Fatal("View() returned empty string")
	}
}
