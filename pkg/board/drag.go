package board

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/layout"
	"github.com/matzehuels/noticeboard/pkg/observability"
)

// =============================================================================
// Collaborators
// =============================================================================

// PositionUpdate is the durable position sent to the persistence layer.
type PositionUpdate struct {
	ID        string  `json:"id"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

// Updater persists card positions. It returns the stored card, whose
// position becomes durable on the board.
type Updater interface {
	UpdatePosition(ctx context.Context, u PositionUpdate) (Card, error)
}

// UpdaterFunc adapts a function to [Updater].
type UpdaterFunc func(ctx context.Context, u PositionUpdate) (Card, error)

// UpdatePosition implements [Updater].
func (f UpdaterFunc) UpdatePosition(ctx context.Context, u PositionUpdate) (Card, error) {
	return f(ctx, u)
}

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient, user-visible message about a drag commit.
type Notification struct {
	Level   Level
	CardID  string
	Message string
	Err     error
}

// Notifier receives drag commit notifications. Notify may be called from a
// background goroutine.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(n Notification)

// Notify implements [Notifier].
func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a logger.
func LogNotifier(l *log.Logger) Notifier {
	return NotifierFunc(func(n Notification) {
		if n.Level == LevelError {
			l.Error(n.Message, "card", n.CardID, "err", n.Err)
			return
		}
		l.Info(n.Message, "card", n.CardID)
	})
}

// =============================================================================
// Drag Commit
// =============================================================================

// DragEnd describes a finished pointer drag.
type DragEnd struct {
	CardID string
	// Delta is the pointer movement in pixels since the drag started.
	Delta layout.Point
	// Canvas is the canvas at drop time. A zero canvas uses the board's.
	Canvas layout.Canvas
}

// DropPosition converts a pixel offset on canvas into a durable position,
// clamped so the card stays fully on the canvas.
func DropPosition(offset layout.Point, canvas layout.Canvas, card layout.Size) (x, y float64) {
	x = layout.Clamp(100*offset.X/canvas.Width, 0, max(0, 100-card.Width))
	y = layout.Clamp(100*offset.Y/canvas.Height, 0, max(0, 100-card.Height))
	return x, y
}

// EndDrag validates a drop and persists it in the background. Validation
// errors are returned immediately; the persistence outcome is reported to
// the Notifier. Use [Board.Wait] to join pending commits.
func (b *Board) EndDrag(ctx context.Context, req DragEnd) error {
	upd, err := b.prepare(req)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	// Go runs under mu; Wait swaps the group under the same lock.
	b.mu.Lock()
	b.commits.Go(func() error {
		_, err := b.commit(ctx, upd)
		return err
	})
	b.mu.Unlock()
	return nil
}

// CommitDrag validates and persists a drop synchronously and returns the
// stored card.
func (b *Board) CommitDrag(ctx context.Context, req DragEnd) (Card, error) {
	upd, err := b.prepare(req)
	if err != nil {
		return Card{}, err
	}
	return b.commit(ctx, upd)
}

// Wait blocks until every commit started by EndDrag has finished and
// returns the first error.
func (b *Board) Wait() error {
	b.mu.Lock()
	g := b.commits
	b.commits = new(errgroup.Group)
	b.mu.Unlock()
	return g.Wait()
}

// prepare turns a drag into a position update using the current snapshot.
func (b *Board) prepare(req DragEnd) (PositionUpdate, error) {
	if !finite(req.Delta.X) || !finite(req.Delta.Y) {
		return PositionUpdate{}, errors.New(errors.ErrCodeInvalidPosition, "drag delta must be finite")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.updater == nil {
		return PositionUpdate{}, errors.New(errors.ErrCodeUnsupported, "board has no position updater")
	}
	if b.mode != layout.ModeScattered {
		return PositionUpdate{}, errors.New(errors.ErrCodeNotDraggable, "cards can only be moved in scattered view")
	}
	i := b.indexLocked(req.CardID)
	if i < 0 {
		return PositionUpdate{}, errors.New(errors.ErrCodeCardNotFound, "card %s is not on the board", req.CardID)
	}
	if !b.cards[i].Movable {
		return PositionUpdate{}, errors.New(errors.ErrCodeNotDraggable, "card %s cannot be moved", req.CardID)
	}
	canvas := req.Canvas
	if canvas == (layout.Canvas{}) {
		canvas = b.canvas
	}
	if !canvas.Valid() {
		return PositionUpdate{}, errors.New(errors.ErrCodeInvalidCanvas, "canvas %vx%v is not drawable", canvas.Width, canvas.Height)
	}
	p, ok := b.current.Placement(req.CardID)
	if !ok {
		return PositionUpdate{}, errors.New(errors.ErrCodeCardNotFound, "card %s has no placement", req.CardID)
	}

	offset := layout.Point{
		X: p.Position.Left*canvas.Width/100 + req.Delta.X,
		Y: p.Position.Top*canvas.Height/100 + req.Delta.Y,
	}
	x, y := DropPosition(offset, canvas, b.current.Card)
	return PositionUpdate{ID: req.CardID, PositionX: x, PositionY: y}, nil
}

// commit writes the update through the Updater and applies the result.
func (b *Board) commit(ctx context.Context, upd PositionUpdate) (Card, error) {
	hooks := observability.Drag()
	hooks.OnDragCommit(ctx, upd.ID, upd.PositionX, upd.PositionY)
	start := time.Now()

	card, err := b.updater.UpdatePosition(ctx, upd)
	hooks.OnDragComplete(ctx, upd.ID, time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodePersistence, err, "save position of %s", upd.ID)
		}
		b.logger.Error("drag commit failed", "card", upd.ID, "err", err)
		b.notify(Notification{
			Level:   LevelError,
			CardID:  upd.ID,
			Message: "Could not save the card position",
			Err:     err,
		})
		return Card{}, err
	}

	if card.ID == "" {
		card.ID = upd.ID
	}
	if !b.apply(card) {
		b.logger.Debug("card left the board before its commit finished", "card", card.ID)
	}
	b.logger.Debug("drag committed", "card", card.ID, "x", upd.PositionX, "y", upd.PositionY, "duration", time.Since(start))
	b.notify(Notification{
		Level:   LevelSuccess,
		CardID:  card.ID,
		Message: "Card position saved",
	})
	return card, nil
}

// apply copies the durable position of a stored card onto the visible card
// and re-runs the pass. It reports false when the card is no longer visible.
func (b *Board) apply(stored Card) bool {
	found := false
	b.update("commit", func() bool {
		i := b.indexLocked(stored.ID)
		if i < 0 {
			return false
		}
		found = true
		b.cards[i].PositionX = stored.PositionX
		b.cards[i].PositionY = stored.PositionY
		b.cards[i].Rotation = stored.Rotation
		return true
	})
	return found
}

func (b *Board) notify(n Notification) {
	if b.notifier != nil {
		b.notifier.Notify(n)
	}
}
