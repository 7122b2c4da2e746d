package render

import (
	"cmp"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/noticeboard/pkg/board"
)

// Default output size when neither the options nor the snapshot carry one.
const (
	DefaultWidth  = 1000
	DefaultHeight = 800
)

// Option configures rendering.
type Option func(*config)

type config struct {
	width, height int
	titles        bool
	active        string
}

// WithSize sets the output size in pixels. Non-positive values keep the
// snapshot canvas size.
func WithSize(width, height int) Option {
	return func(c *config) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithoutTitles draws cards without their title text.
func WithoutTitles() Option {
	return func(c *config) { c.titles = false }
}

// WithActive lifts the given card above all others.
func WithActive(cardID string) Option {
	return func(c *config) { c.active = cardID }
}

func newConfig(s board.Snapshot, opts []Option) config {
	c := config{width: DefaultWidth, height: DefaultHeight, titles: true}
	if s.Canvas.Valid() {
		c.width, c.height = int(s.Canvas.Width), int(s.Canvas.Height)
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// rect is one card in pixel space, ready to paint.
type rect struct {
	id       string
	title    string
	date     string
	pin      string
	durable  bool
	x, y     float64
	w, h     float64
	rotate   float64
	zIndex   int
	category string
}

// buildScene converts the snapshot into pixel rectangles sorted for
// painting.
func buildScene(s board.Snapshot, cards []board.Card, c config) []rect {
	byID := make(map[string]board.Card, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}

	W, H := float64(c.width), float64(c.height)
	w, h := s.Card.Width*W/100, s.Card.Height*H/100

	out := make([]rect, 0, len(s.Placements))
	for i, r := range s.Rendered(c.active) {
		card := byID[r.CardID]
		title := card.Title
		if title == "" {
			title = r.CardID
		}
		out = append(out, rect{
			id:       r.CardID,
			title:    title,
			date:     card.Date,
			category: card.Category,
			pin:      PinColor(card.Category),
			durable:  s.Placements[i].Durable,
			x:        r.Left * W / 100,
			y:        r.Top * H / 100,
			w:        w,
			h:        h,
			rotate:   r.Rotate,
			zIndex:   r.ZIndex,
		})
	}
	slices.SortStableFunc(out, func(a, b rect) int {
		return cmp.Compare(a.zIndex, b.zIndex)
	})
	return out
}

// sceneHeight grows the image for list views, whose cards may run past
// the bottom of the canvas.
func sceneHeight(rects []rect, height int) int {
	bottom := float64(height)
	for _, r := range rects {
		if end := r.y + r.h; end > float64(height) {
			bottom = max(bottom, end+10)
		}
	}
	return int(bottom)
}

var pinColors = []string{"#ef4444", "#3b82f6", "#22c55e", "#eab308"}

// PinColor returns the pin color for a category as a hex string. The same
// category always gets the same color; uncategorized cards get red.
func PinColor(category string) string {
	if category == "" {
		return pinColors[0]
	}
	return pinColors[xxhash.Sum64String(category)%uint64(len(pinColors))]
}

const (
	boardColor  = "#c8a165"
	paperColor  = "#fffdf5"
	borderColor = "#d6cfb8"
	inkColor    = "#1f2937"
	mutedColor  = "#6b7280"
)
