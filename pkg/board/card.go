package board

import (
	"math"

	"github.com/matzehuels/noticeboard/pkg/layout"
)

// Card is an event card as seen by the layout engine. Only ID and the
// durable position fields influence placement; the rest is carried through
// for hosts that draw the card.
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Date     string `json:"date,omitempty"`

	// PositionX and PositionY are the durable position in canvas percent.
	// Nil means the card has never been placed by a user.
	PositionX *float64 `json:"position_x"`
	PositionY *float64 `json:"position_y"`

	// Rotation is the durable rotation in degrees. Nil renders as 0 once the
	// card is pinned.
	Rotation *float64 `json:"rotation,omitempty"`

	// Movable reports whether the current actor may drag the card.
	Movable bool `json:"movable,omitempty"`
}

// Pinned reports whether the card has a usable durable position.
func (c Card) Pinned() bool {
	return c.PositionX != nil && c.PositionY != nil && finite(*c.PositionX) && finite(*c.PositionY)
}

func (c Card) item() layout.Item {
	it := layout.Item{ID: c.ID}
	if c.Pinned() {
		pin := &layout.Pin{Left: *c.PositionX, Top: *c.PositionY}
		if c.Rotation != nil && finite(*c.Rotation) {
			pin.Rotate = *c.Rotation
		}
		it.Pin = pin
	}
	return it
}

// Float returns a pointer to v, for building cards with durable positions.
func Float(v float64) *float64 { return &v }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
