package layout

// Item is one card handed to a layout pass. The slice order defines the
// ordinal index and therefore the grid cell and stacking order.
type Item struct {
	ID  string
	Pin *Pin
}

// Pin is a durable position chosen by a user drag.
type Pin struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Rotate float64 `json:"rotate"`
}

// Params describes the environment of a layout pass.
type Params struct {
	Mode   ViewMode
	Narrow bool
	Canvas Canvas

	// Options overrides the geometry. Nil uses [DefaultOptions].
	Options *Options
}

// Result is the outcome of one layout pass.
type Result struct {
	Mode        ViewMode    `json:"mode"`
	Grid        Grid        `json:"grid"`
	Card        Size        `json:"card"`
	Placements  []Placement `json:"placements"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Compute runs a layout pass over items.
//
// In scattered mode, pinned items keep their durable position (clamped to
// the canvas) and are placed first so that every other card avoids them.
// Pins are ignored in list and grid modes. The stacking order is
// ZIndex = len(items) - index for every mode.
//
// A nil sources uses [Seeded] with [DefaultSeed].
func Compute(items []Item, params Params, sources SourceFunc) Result {
	opts := DefaultOptions()
	if params.Options != nil {
		opts = *params.Options
		opts.SetDefaults()
	}
	if sources == nil {
		sources = Seeded(DefaultSeed)
	}
	mode := params.Mode
	if !mode.Valid() {
		mode = ModeScattered
	}

	n := len(items)
	card := opts.CardSize(params.Narrow)
	pass := &Pass{
		Options: opts,
		Mode:    mode,
		Grid:    opts.Partition(n, mode, params.Narrow, params.Canvas.AspectRatio()),
		Count:   n,
		Card:    card,
	}

	placements := make([]Placement, n)
	if mode == ModeScattered {
		for i, it := range items {
			if !it.Pin.usable() {
				continue
			}
			pos := it.Pin.position(card)
			pos.ZIndex = n - i
			placements[i] = Placement{CardID: it.ID, Position: pos, Durable: true}
			pass.Obstacles = append(pass.Obstacles, pos)
		}
	}

	strategy := mode.Strategy()
	for i, it := range items {
		if placements[i].Durable {
			continue
		}
		pl := strategy.Place(i, pass, sources(it.ID))
		pl.CardID = it.ID
		placements[i] = pl
		pass.Obstacles = append(pass.Obstacles, pl.Position)
	}

	padding := 0.0
	if mode == ModeScattered {
		padding = opts.Padding
	}
	return Result{
		Mode:        mode,
		Grid:        pass.Grid,
		Card:        card,
		Placements:  placements,
		Diagnostics: Diagnose(placements, card, padding),
	}
}

func (p *Pin) usable() bool {
	return p != nil && finite(p.Left) && finite(p.Top)
}

// position converts the pin into a position inside [0, 100-dim].
func (p *Pin) position(card Size) Position {
	rot := p.Rotate
	if !finite(rot) {
		rot = 0
	}
	return Position{
		Left:   Clamp(p.Left, 0, max(0, 100-card.Width)),
		Top:    Clamp(p.Top, 0, max(0, 100-card.Height)),
		Rotate: rot,
	}
}
