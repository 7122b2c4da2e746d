package layout

// Diagnostics summarizes how well a pass avoided overlaps.
type Diagnostics struct {
	Cards     int `json:"cards"`
	Durable   int `json:"durable"`
	Exhausted int `json:"exhausted"`

	// Attempts is the total number of candidates drawn.
	Attempts int `json:"attempts"`

	// OverlapPairs counts pairs of ephemeral cards that overlap.
	OverlapPairs int `json:"overlap_pairs"`

	// OverlapRate is OverlapPairs divided by the number of ephemeral pairs.
	OverlapRate float64 `json:"overlap_rate"`
}

// Diagnose computes diagnostics for placements of the given card size.
// Only ephemeral cards are compared pairwise; durable cards are where the
// user put them.
func Diagnose(placements []Placement, card Size, padding float64) Diagnostics {
	d := Diagnostics{Cards: len(placements)}
	ephemeral := make([]Position, 0, len(placements))
	for _, p := range placements {
		d.Attempts += p.Attempts
		if p.Exhausted {
			d.Exhausted++
		}
		if p.Durable {
			d.Durable++
			continue
		}
		ephemeral = append(ephemeral, p.Position)
	}

	for i := range ephemeral {
		for j := i + 1; j < len(ephemeral); j++ {
			if Overlaps(ephemeral[i], ephemeral[j], card.Width, card.Height, padding) {
				d.OverlapPairs++
			}
		}
	}
	if m := len(ephemeral); m > 1 {
		d.OverlapRate = float64(d.OverlapPairs) / float64(m*(m-1)/2)
	}
	return d
}
