package layout

// Placement is the computed position of one card.
type Placement struct {
	CardID   string   `json:"card_id"`
	Position Position `json:"position"`

	// Durable is set when the position came from a persisted pin.
	Durable bool `json:"durable,omitempty"`

	// Attempts is the number of candidates drawn by the scatter loop.
	Attempts int `json:"attempts,omitempty"`

	// Exhausted is set when every candidate overlapped an obstacle and the
	// last one was kept anyway.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Pass carries the state shared by all placements of one layout pass.
type Pass struct {
	Options Options
	Mode    ViewMode
	Grid    Grid
	Count   int
	Card    Size

	// Obstacles holds durable positions and every position accepted so far.
	Obstacles []Position
}

// Strategy places the card at index within a pass.
// Implementations must keep the result inside the canvas bounds of their
// mode and must not mutate pass.
type Strategy interface {
	Place(index int, pass *Pass, src Source) Placement
}

// JitterFactor returns the spread used at the given retry attempt. It
// decays linearly from spread at attempt 0 towards zero at the budget, so
// later candidates stay closer to the cell center.
func JitterFactor(attempt, budget int, spread float64) float64 {
	if budget <= 0 {
		return 0
	}
	return max(0, spread*(1-float64(attempt)/float64(budget)))
}

// =============================================================================
// Scattered
// =============================================================================

// ScatterStrategy places cards around their cell center with decaying
// random jitter and rejects candidates that overlap obstacles.
type ScatterStrategy struct{}

// Place implements [Strategy].
func (ScatterStrategy) Place(index int, pass *Pass, src Source) Placement {
	o, card := pass.Options, pass.Card
	z := pass.Count - index

	if pass.Count == 1 {
		pos := Position{
			Left:   Clamp(50-card.Width/2, 0, max(0, 100-card.Width)),
			Top:    Clamp(DefaultSingleCardTop, 0, max(0, 100-card.Height)),
			Rotate: rotation(src, o.RotationRange),
			ZIndex: z,
		}
		return Placement{Position: pos, Attempts: 1}
	}

	cell := pass.Grid.CellSize()
	// Jitter is applied around the base after it is clamped into the margin.
	baseLeft, baseTop := cellCenter(index, pass.Grid, card)
	baseLeft = clampInset(baseLeft, card.Width, o.Margin)
	baseTop = clampInset(baseTop, card.Height, o.Margin)

	budget := max(1, o.MaxAttempts)
	var last Position
	for attempt := range budget {
		factor := JitterFactor(attempt, budget, o.SpreadFactor)
		dx := (src.Float64() - 0.5) * factor / 100 * cell.Width
		dy := (src.Float64() - 0.5) * factor / 100 * cell.Height

		last = Position{
			Left:   clampInset(baseLeft+dx, card.Width, o.Margin),
			Top:    clampInset(baseTop+dy, card.Height, o.Margin),
			Rotate: rotation(src, o.RotationRange),
			ZIndex: z,
		}
		if !overlapsAny(last, pass.Obstacles, card, o.Padding) {
			return Placement{Position: last, Attempts: attempt + 1}
		}
	}
	return Placement{Position: last, Attempts: budget, Exhausted: true}
}

// =============================================================================
// List
// =============================================================================

// ListStrategy stacks cards top to bottom at the left margin.
// Top is not clamped: the list is a scrolling surface.
type ListStrategy struct{}

// Place implements [Strategy].
func (ListStrategy) Place(index int, pass *Pass, _ Source) Placement {
	return Placement{
		Position: Position{
			Left:   pass.Options.Margin,
			Top:    float64(index) * (pass.Card.Height + pass.Options.ListGap),
			ZIndex: pass.Count - index,
		},
		Attempts: 1,
	}
}

// =============================================================================
// Grid
// =============================================================================

// GridStrategy centers each card in its cell without jitter or rotation.
type GridStrategy struct{}

// Place implements [Strategy].
func (GridStrategy) Place(index int, pass *Pass, _ Source) Placement {
	left, top := cellCenter(index, pass.Grid, pass.Card)
	return Placement{
		Position: Position{
			Left:   clampInset(left, pass.Card.Width, pass.Options.Margin),
			Top:    clampInset(top, pass.Card.Height, pass.Options.Margin),
			ZIndex: pass.Count - index,
		},
		Attempts: 1,
	}
}

// cellCenter returns the top-left corner that centers a card in its cell.
func cellCenter(index int, g Grid, card Size) (left, top float64) {
	row, col := g.Cell(index)
	cell := g.CellSize()
	left = float64(col)*cell.Width + (cell.Width-card.Width)/2
	top = float64(row)*cell.Height + (cell.Height-card.Height)/2
	return left, top
}

// clampInset keeps a card of size dim inside [margin, 100-margin-dim].
// The margin shrinks when the card is too large to honor it, so the card
// never leaves [0, 100-dim].
func clampInset(v, dim, margin float64) float64 {
	hi := max(0, 100-dim)
	inset := min(margin, hi/2)
	return Clamp(v, inset, hi-inset)
}

func rotation(src Source, rng float64) float64 {
	if rng <= 0 {
		return 0
	}
	return src.Float64()*2*rng - rng
}
