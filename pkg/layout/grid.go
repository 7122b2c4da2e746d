package layout

import "math"

// Grid is the row and column partition of the canvas used to seed card
// positions.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Cell returns the zero-based row and column of the card at index i.
func (g Grid) Cell(i int) (row, col int) {
	cols := max(1, g.Cols)
	return i / cols, i % cols
}

// CellSize returns the width and height of one cell in canvas percent.
func (g Grid) CellSize() Size {
	return Size{
		Width:  100 / float64(max(1, g.Cols)),
		Height: 100 / float64(max(1, g.Rows)),
	}
}

// Partition divides the canvas for n cards using [DefaultOptions].
func Partition(n int, mode ViewMode, narrow bool, aspect float64) Grid {
	return DefaultOptions().Partition(n, mode, narrow, aspect)
}

// Partition divides the canvas into rows and columns for n cards.
//
// List mode uses a single column. Otherwise narrow canvases use up to
// NarrowMaxCols columns and wide canvases use ceil(sqrt(n × aspect))
// columns capped at MaxCols. The result always satisfies
// Rows × Cols ≥ n with both at least 1.
func (o Options) Partition(n int, mode ViewMode, narrow bool, aspect float64) Grid {
	if n <= 0 {
		return Grid{Rows: 1, Cols: 1}
	}
	if mode == ModeList {
		return Grid{Rows: n, Cols: 1}
	}
	if n == 1 {
		return Grid{Rows: 1, Cols: 1}
	}

	var cols int
	if narrow {
		cols = min(n, max(1, o.NarrowMaxCols))
	} else {
		if !finite(aspect) || aspect <= 0 {
			aspect = DefaultCanvasWidth / DefaultCanvasHeight
		}
		cols = int(math.Ceil(math.Sqrt(float64(n) * aspect)))
		cols = max(1, min(max(1, o.MaxCols), cols))
	}
	rows := (n + cols - 1) / cols
	return Grid{Rows: rows, Cols: cols}
}
