package layout

// Position is where a card sits on the canvas. Left and Top are percentages
// of the canvas, Rotate is in degrees and ZIndex orders the stacking.
type Position struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Rotate float64 `json:"rotate"`
	ZIndex int     `json:"z_index"`
}

// Overlaps reports whether two cards of the given size intersect once
// padding is added on the separating axis. Rotation is ignored.
//
// Two rectangles are disjoint when one lies entirely to the left, right,
// above or below the other with at least padding between them.
func Overlaps(a, b Position, width, height, padding float64) bool {
	aRight, aBottom := a.Left+width, a.Top+height
	bRight, bBottom := b.Left+width, b.Top+height
	return !(aRight+padding < b.Left ||
		a.Left > bRight+padding ||
		aBottom+padding < b.Top ||
		a.Top > bBottom+padding)
}

// overlapsAny reports whether p overlaps any of the obstacles.
func overlapsAny(p Position, obstacles []Position, size Size, padding float64) bool {
	for _, o := range obstacles {
		if Overlaps(p, o, size.Width, size.Height, padding) {
			return true
		}
	}
	return false
}
