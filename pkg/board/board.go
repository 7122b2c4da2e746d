package board

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/noticeboard/pkg/layout"
	"github.com/matzehuels/noticeboard/pkg/observability"
)

// Board is the layout orchestrator for one noticeboard.
//
// Each trigger ([Board.SetCards], [Board.SetViewMode], [Board.SetNarrow],
// [Board.Resize]) runs a full layout pass over the visible cards and merges
// it with the previous result. Listeners registered with [Board.OnChange]
// fire only when a position changed.
type Board struct {
	mu sync.Mutex

	opts     layout.Options
	sources  layout.SourceFunc
	logger   *log.Logger
	updater  Updater
	notifier Notifier

	cards  []Card
	mode   layout.ViewMode
	narrow bool
	canvas layout.Canvas

	current   Snapshot
	active    string
	listeners []func(Snapshot)
	commits   *errgroup.Group
}

// Option configures a Board.
type Option func(*Board)

// WithOptions sets the layout geometry.
func WithOptions(o layout.Options) Option {
	return func(b *Board) { b.opts = o }
}

// WithSeed derives per-card random streams from seed.
func WithSeed(seed uint64) Option {
	return func(b *Board) { b.sources = layout.Seeded(seed) }
}

// WithSource injects the random streams used by the scatter strategy.
func WithSource(fn layout.SourceFunc) Option {
	return func(b *Board) {
		if fn != nil {
			b.sources = fn
		}
	}
}

// WithLogger sets the logger. Nil discards output.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithUpdater sets the persistence collaborator used by drag commits.
func WithUpdater(u Updater) Option {
	return func(b *Board) { b.updater = u }
}

// WithNotifier sets the receiver of drag commit notifications.
func WithNotifier(n Notifier) Option {
	return func(b *Board) { b.notifier = n }
}

// WithViewMode sets the initial view mode.
func WithViewMode(m layout.ViewMode) Option {
	return func(b *Board) {
		if m.Valid() {
			b.mode = m
		}
	}
}

// WithCanvas sets the initial canvas. Invalid canvases are ignored.
func WithCanvas(c layout.Canvas) Option {
	return func(b *Board) {
		if c.Valid() {
			b.canvas = c
		}
	}
}

// New creates an empty board in scattered mode on the default canvas.
func New(opts ...Option) *Board {
	b := &Board{
		opts:    layout.DefaultOptions(),
		sources: layout.Seeded(layout.DefaultSeed),
		logger:  log.New(io.Discard),
		canvas:  layout.DefaultCanvas(),
		commits: new(errgroup.Group),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.opts.SetDefaults()
	b.narrow = b.canvas.Narrow()
	b.current, _ = b.relayoutLocked("init")
	return b
}

// =============================================================================
// Triggers
// =============================================================================

// SetCards replaces the visible card set. The slice order is the ordinal
// order used for grid cells and stacking.
func (b *Board) SetCards(cards []Card) bool {
	return b.update("cards", func() bool {
		b.cards = slices.Clone(cards)
		return true
	})
}

// SetViewMode switches the view mode. Unknown modes are ignored.
func (b *Board) SetViewMode(m layout.ViewMode) bool {
	return b.update("mode", func() bool {
		if !m.Valid() || m == b.mode {
			return false
		}
		b.mode = m
		return true
	})
}

// SetNarrow overrides the viewport class derived from the canvas width.
func (b *Board) SetNarrow(narrow bool) bool {
	return b.update("viewport", func() bool {
		if narrow == b.narrow {
			return false
		}
		b.narrow = narrow
		return true
	})
}

// Resize records new canvas metrics and re-runs the pass. The viewport
// class follows the new width. Invalid canvases are ignored.
func (b *Board) Resize(c layout.Canvas) bool {
	return b.update("resize", func() bool {
		if !c.Valid() {
			b.logger.Debug("ignoring invalid canvas", "width", c.Width, "height", c.Height)
			return false
		}
		b.canvas = c
		b.narrow = c.Narrow()
		return true
	})
}

// Relayout re-runs the pass without changing any input.
func (b *Board) Relayout() bool {
	return b.update("relayout", func() bool { return true })
}

// update applies mutate and runs a pass under the lock, then notifies
// listeners outside it. mutate returns false to skip the pass.
func (b *Board) update(reason string, mutate func() bool) bool {
	b.mu.Lock()
	if !mutate() {
		b.mu.Unlock()
		return false
	}
	snap, changed := b.relayoutLocked(reason)
	b.current = snap
	var listeners []func(Snapshot)
	if changed {
		listeners = slices.Clone(b.listeners)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return changed
}

func (b *Board) relayoutLocked(reason string) (Snapshot, bool) {
	ctx := context.Background()
	mode := b.mode.String()
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, mode, len(b.cards))
	start := time.Now()

	items := make([]layout.Item, len(b.cards))
	for i, c := range b.cards {
		items[i] = c.item()
	}
	res := layout.Compute(items, layout.Params{
		Mode:    b.mode,
		Narrow:  b.narrow,
		Canvas:  b.canvas,
		Options: &b.opts,
	}, b.sources)

	next := Snapshot{
		Mode:        res.Mode,
		Narrow:      b.narrow,
		Canvas:      b.canvas,
		Grid:        res.Grid,
		Card:        res.Card,
		Placements:  res.Placements,
		Diagnostics: res.Diagnostics,
	}
	merged, changed := Merge(b.current, next)

	d := res.Diagnostics
	elapsed := time.Since(start)
	b.logger.Debug("layout pass",
		"reason", reason,
		"mode", mode,
		"cards", d.Cards,
		"durable", d.Durable,
		"exhausted", d.Exhausted,
		"changed", changed,
		"duration", elapsed)
	hooks.OnLayoutComplete(ctx, mode, observability.LayoutStats{
		Cards:        d.Cards,
		Durable:      d.Durable,
		Exhausted:    d.Exhausted,
		Attempts:     d.Attempts,
		OverlapPairs: d.OverlapPairs,
		OverlapRate:  d.OverlapRate,
		Changed:      changed,
	}, elapsed, nil)

	return merged, changed
}

// =============================================================================
// Queries
// =============================================================================

// Positions returns the rendered tuples of the current snapshot, with the
// active card promoted above all others.
func (b *Board) Positions() []Rendered {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current.Rendered(b.active)
}

// Snapshot returns a copy of the current snapshot.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.current
	s.Placements = slices.Clone(s.Placements)
	return s
}

// Cards returns a copy of the visible cards.
func (b *Board) Cards() []Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.cards)
}

// Card returns the visible card with the given ID.
func (b *Board) Card(id string) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return Card{}, false
	}
	return b.cards[i], true
}

// Mode returns the current view mode.
func (b *Board) Mode() layout.ViewMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// Canvas returns the current canvas metrics.
func (b *Board) Canvas() layout.Canvas {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canvas
}

// SetActive marks the hovered or dragged card. An empty ID clears it.
// The active card only changes rendered stacking, never the layout.
func (b *Board) SetActive(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = id
}

// Active returns the active card ID.
func (b *Board) Active() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// OnChange registers fn to receive every snapshot whose positions differ
// from the previous one. fn runs on the goroutine that triggered the pass
// and must not block.
func (b *Board) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

func (b *Board) indexLocked(id string) int {
	return slices.IndexFunc(b.cards, func(c Card) bool { return c.ID == id })
}
