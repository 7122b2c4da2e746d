package board

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/noticeboard/pkg/layout"
)

// =============================================================================
// Snapshot - Result of a Layout Pass
// =============================================================================

// Snapshot is the outcome of one layout pass together with the inputs that
// shaped it.
type Snapshot struct {
	Mode        layout.ViewMode    `json:"mode"`
	Narrow      bool               `json:"narrow,omitempty"`
	Canvas      layout.Canvas      `json:"canvas"`
	Grid        layout.Grid        `json:"grid"`
	Card        layout.Size        `json:"card"`
	Placements  []layout.Placement `json:"placements"`
	Diagnostics layout.Diagnostics `json:"diagnostics"`
}

// Placement returns the placement of a card.
func (s Snapshot) Placement(cardID string) (layout.Placement, bool) {
	for _, p := range s.Placements {
		if p.CardID == cardID {
			return p, true
		}
	}
	return layout.Placement{}, false
}

// Merge folds a freshly computed snapshot into the previous one.
//
// When every card kept the same position the previous placements are reused
// and changed is false, so hosts can skip redrawing. The returned snapshot
// always carries the latest canvas and diagnostics.
func Merge(prev, next Snapshot) (merged Snapshot, changed bool) {
	if samePositions(prev.Placements, next.Placements) {
		next.Placements = prev.Placements
		return next, false
	}
	return next, true
}

func samePositions(a, b []layout.Placement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].CardID != b[i].CardID || a[i].Position != b[i].Position || a[i].Durable != b[i].Durable {
			return false
		}
	}
	return true
}

// =============================================================================
// Rendered - Host Output
// =============================================================================

// Rendered is the position tuple handed to hosts for drawing.
type Rendered struct {
	CardID string  `json:"card_id"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Rotate float64 `json:"rotate"`
	ZIndex int     `json:"z_index"`
}

// Rendered converts the placements into host tuples. The active card, if
// any, is lifted above every other card.
func (s Snapshot) Rendered(active string) []Rendered {
	out := make([]Rendered, len(s.Placements))
	top := len(s.Placements) + 1
	for i, p := range s.Placements {
		z := p.Position.ZIndex
		if active != "" && p.CardID == active {
			z = top
		}
		out[i] = Rendered{
			CardID: p.CardID,
			Left:   p.Position.Left,
			Top:    p.Position.Top,
			Rotate: p.Position.Rotate,
			ZIndex: z,
		}
	}
	return out
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalSnapshot serializes a Snapshot to pretty-printed JSON bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalSnapshot deserializes JSON bytes into a Snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

// WriteSnapshotFile writes a Snapshot to a JSON file.
func WriteSnapshotFile(s Snapshot, path string) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSnapshotFile reads a Snapshot from a JSON file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalSnapshot(data)
}

// UnmarshalCards decodes a JSON array of cards, or an object with a
// "cards" array.
func UnmarshalCards(data []byte) ([]Card, error) {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err == nil {
		return cards, nil
	}
	var wrapped struct {
		Cards []Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal cards: %w", err)
	}
	return wrapped.Cards, nil
}

// ReadCardsFile reads cards from a JSON file.
func ReadCardsFile(path string) ([]Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalCards(data)
}
