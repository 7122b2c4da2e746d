package board

import (
	"context"
	stderrors "errors"
	"math"
	"sync"
	"testing"

	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

// memoryUpdater stores positions in a map and records notifications.
type memoryUpdater struct {
	mu    sync.Mutex
	cards map[string]Card
	err   error
	gate  chan struct{}
}

func newMemoryUpdater(cards []Card) *memoryUpdater {
	m := &memoryUpdater{cards: make(map[string]Card)}
	for _, c := range cards {
		m.cards[c.ID] = c
	}
	return m
}

func (m *memoryUpdater) UpdatePosition(_ context.Context, u PositionUpdate) (Card, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Card{}, m.err
	}
	c := m.cards[u.ID]
	c.PositionX, c.PositionY = Float(u.PositionX), Float(u.PositionY)
	m.cards[u.ID] = c
	return c, nil
}

type recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}
	}
	return r.items[len(r.items)-1]
}

var canvas = layout.Canvas{Width: 1000, Height: 800}

func newDragBoard(t *testing.T, cards []Card) (*Board, *memoryUpdater, *recorder) {
	t.Helper()
	up := newMemoryUpdater(cards)
	rec := &recorder{}
	b := New(WithSeed(4), WithCanvas(canvas), WithUpdater(up), WithNotifier(rec))
	b.SetCards(cards)
	return b, up, rec
}

func TestDropPosition(t *testing.T) {
	card := layout.Size{Width: 15, Height: 25}
	tests := []struct {
		name   string
		offset layout.Point
		wantX  float64
		wantY  float64
	}{
		{"inside", layout.Point{X: 420, Y: 140}, 42, 17.5},
		{"negative clamps to origin", layout.Point{X: -50, Y: -50}, 0, 0},
		{"past the edge clamps to far bound", layout.Point{X: 1500, Y: 1300}, 85, 75},
		{"exact far bound", layout.Point{X: 850, Y: 600}, 85, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := DropPosition(tt.offset, canvas, card)
			if math.Abs(x-tt.wantX) > eps || math.Abs(y-tt.wantY) > eps {
				t.Errorf("DropPosition(%+v) = (%v, %v), want (%v, %v)", tt.offset, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestCommitDragRoundTrip(t *testing.T) {
	b, _, rec := newDragBoard(t, testCards(3))
	before := rendered(t, b, "c1")

	card, err := b.CommitDrag(context.Background(), DragEnd{
		CardID: "c1",
		Delta:  layout.Point{X: 50, Y: 40},
	})
	if err != nil {
		t.Fatalf("CommitDrag: %v", err)
	}

	wantX := layout.Clamp(before.Left+5, 0, 85)
	wantY := layout.Clamp(before.Top+5, 0, 75)
	if math.Abs(*card.PositionX-wantX) > eps || math.Abs(*card.PositionY-wantY) > eps {
		t.Errorf("committed (%v, %v), want (%v, %v)", *card.PositionX, *card.PositionY, wantX, wantY)
	}

	after := rendered(t, b, "c1")
	if math.Abs(after.Left-wantX) > eps || math.Abs(after.Top-wantY) > eps {
		t.Errorf("rendered (%v, %v) after commit, want (%v, %v)", after.Left, after.Top, wantX, wantY)
	}
	if got, _ := b.Card("c1"); !got.Pinned() {
		t.Error("card not pinned after commit")
	}
	if n := rec.last(); n.Level != LevelSuccess || n.CardID != "c1" {
		t.Errorf("notification = %+v, want success for c1", n)
	}

	// Resizing keeps the committed position.
	b.Resize(layout.Canvas{Width: 1600, Height: 900})
	if r := rendered(t, b, "c1"); math.Abs(r.Left-wantX) > eps || math.Abs(r.Top-wantY) > eps {
		t.Errorf("rendered (%v, %v) after resize, want (%v, %v)", r.Left, r.Top, wantX, wantY)
	}
}

func TestCommitDragBoundaries(t *testing.T) {
	b, _, _ := newDragBoard(t, testCards(2))
	start := rendered(t, b, "c0")
	leftPx, topPx := start.Left*canvas.Width/100, start.Top*canvas.Height/100

	card, err := b.CommitDrag(context.Background(), DragEnd{
		CardID: "c0",
		Delta:  layout.Point{X: -50 - leftPx, Y: -50 - topPx},
	})
	if err != nil {
		t.Fatalf("CommitDrag: %v", err)
	}
	if *card.PositionX != 0 || *card.PositionY != 0 {
		t.Errorf("drag to (-50, -50) committed (%v, %v), want (0, 0)", *card.PositionX, *card.PositionY)
	}

	card, err = b.CommitDrag(context.Background(), DragEnd{
		CardID: "c0",
		Delta:  layout.Point{X: canvas.Width + 500, Y: canvas.Height + 500},
	})
	if err != nil {
		t.Fatalf("CommitDrag: %v", err)
	}
	if *card.PositionX != 85 || *card.PositionY != 75 {
		t.Errorf("drag past the far edge committed (%v, %v), want (85, 75)", *card.PositionX, *card.PositionY)
	}
}

func TestCommitDragRejected(t *testing.T) {
	cards := testCards(2)
	cards[1].Movable = false

	tests := []struct {
		name  string
		setup func(*Board)
		req   DragEnd
		code  errors.Code
	}{
		{"unknown card", nil, DragEnd{CardID: "nope"}, errors.ErrCodeCardNotFound},
		{"not movable", nil, DragEnd{CardID: "c1"}, errors.ErrCodeNotDraggable},
		{"list view", func(b *Board) { b.SetViewMode(layout.ModeList) }, DragEnd{CardID: "c0"}, errors.ErrCodeNotDraggable},
		{"invalid canvas", nil, DragEnd{CardID: "c0", Canvas: layout.Canvas{Width: 0, Height: 10}}, errors.ErrCodeInvalidCanvas},
		{"NaN delta", nil, DragEnd{CardID: "c0", Delta: layout.Point{X: math.NaN()}}, errors.ErrCodeInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, rec := newDragBoard(t, cards)
			if tt.setup != nil {
				tt.setup(b)
			}
			_, err := b.CommitDrag(context.Background(), tt.req)
			if !errors.Is(err, tt.code) {
				t.Errorf("CommitDrag error = %v, want code %v", err, tt.code)
			}
			if err := b.EndDrag(context.Background(), tt.req); !errors.Is(err, tt.code) {
				t.Errorf("EndDrag error = %v, want code %v", err, tt.code)
			}
			if n := rec.last(); n.Level != "" {
				t.Errorf("rejected drag sent notification %+v", n)
			}
		})
	}
}

func TestCommitDragWithoutUpdater(t *testing.T) {
	b := New()
	b.SetCards(testCards(1))
	if _, err := b.CommitDrag(context.Background(), DragEnd{CardID: "c0"}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeUnsupported)
	}
}

func TestEndDragAsync(t *testing.T) {
	b, up, rec := newDragBoard(t, testCards(3))
	up.gate = make(chan struct{})

	var changes int
	var mu sync.Mutex
	b.OnChange(func(Snapshot) {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	if err := b.EndDrag(context.Background(), DragEnd{CardID: "c2", Delta: layout.Point{X: 10, Y: 10}}); err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	if c, _ := b.Card("c2"); c.Pinned() {
		t.Fatal("card pinned before the commit finished")
	}

	close(up.gate)
	if err := b.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if c, _ := b.Card("c2"); !c.Pinned() {
		t.Error("card not pinned after the commit finished")
	}
	if n := rec.last(); n.Level != LevelSuccess {
		t.Errorf("notification = %+v, want success", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if changes != 1 {
		t.Errorf("listener called %d times, want 1", changes)
	}
}

func TestEndDragFailure(t *testing.T) {
	b, up, rec := newDragBoard(t, testCards(2))
	up.err = stderrors.New("database is locked")
	before := rendered(t, b, "c0")

	if err := b.EndDrag(context.Background(), DragEnd{CardID: "c0", Delta: layout.Point{X: 100}}); err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	err := b.Wait()
	if !errors.Is(err, errors.ErrCodePersistence) {
		t.Fatalf("Wait error = %v, want %v", err, errors.ErrCodePersistence)
	}

	n := rec.last()
	if n.Level != LevelError || n.Err == nil {
		t.Errorf("notification = %+v, want an error", n)
	}
	if after := rendered(t, b, "c0"); after != before {
		t.Errorf("position changed after failed commit: %+v → %+v", before, after)
	}
	if c, _ := b.Card("c0"); c.Pinned() {
		t.Error("card pinned after failed commit")
	}
}

func TestEndDragStaleCard(t *testing.T) {
	b, up, rec := newDragBoard(t, testCards(3))
	up.gate = make(chan struct{})

	if err := b.EndDrag(context.Background(), DragEnd{CardID: "c1", Delta: layout.Point{X: 5}}); err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	// The card disappears while its commit is in flight.
	b.SetCards(testCards(1))
	close(up.gate)

	if err := b.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if _, ok := b.Card("c1"); ok {
		t.Error("stale commit resurrected the card")
	}
	if len(b.Positions()) != 1 {
		t.Errorf("got %d positions, want 1", len(b.Positions()))
	}
	if n := rec.last(); n.Level != LevelSuccess {
		t.Errorf("notification = %+v, want success", n)
	}
}

func TestEndDragConcurrentCards(t *testing.T) {
	b, _, _ := newDragBoard(t, testCards(6))
	for _, id := range []string{"c0", "c1", "c2", "c3", "c4", "c5"} {
		if err := b.EndDrag(context.Background(), DragEnd{CardID: id, Delta: layout.Point{X: 3, Y: 3}}); err != nil {
			t.Fatalf("EndDrag(%s): %v", id, err)
		}
	}
	if err := b.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	for _, c := range b.Cards() {
		if !c.Pinned() {
			t.Errorf("%s not pinned", c.ID)
		}
	}
}

func TestEndDragJoinedByConcurrentWait(t *testing.T) {
	cards := testCards(8)
	b, up, _ := newDragBoard(t, cards)

	var wg sync.WaitGroup
	for _, c := range cards {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := c.ID
			if err := b.EndDrag(context.Background(), DragEnd{CardID: id, Delta: layout.Point{X: 2, Y: 2}}); err != nil {
				t.Errorf("EndDrag(%s): %v", id, err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := b.Wait(); err != nil {
				t.Errorf("Wait: %v", err)
			}
		}()
	}
	wg.Wait()
	if err := b.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	// Every commit landed in a group some Wait joined.
	up.mu.Lock()
	defer up.mu.Unlock()
	for id, c := range up.cards {
		if c.PositionX == nil || c.PositionY == nil {
			t.Errorf("%s was not committed before Wait returned", id)
		}
	}
}
