package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/noticeboard/pkg/errors"
)

// ViewMode selects how cards are arranged on the canvas.
type ViewMode int

const (
	// ModeScattered places cards around grid cells with random jitter and rotation.
	ModeScattered ViewMode = iota
	// ModeList stacks cards vertically without rotation.
	ModeList
	// ModeGrid centers cards in their grid cells without jitter.
	ModeGrid
)

// Modes lists every view mode in cycling order.
var Modes = []ViewMode{ModeScattered, ModeList, ModeGrid}

// String returns the canonical name of the mode.
func (m ViewMode) String() string {
	switch m {
	case ModeScattered:
		return "scattered"
	case ModeList:
		return "list"
	case ModeGrid:
		return "grid"
	default:
		return fmt.Sprintf("ViewMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m ViewMode) Valid() bool {
	return m >= ModeScattered && m <= ModeGrid
}

// Next returns the mode following m in [Modes], wrapping around.
func (m ViewMode) Next() ViewMode {
	return Modes[(int(m)+1)%len(Modes)]
}

// ParseViewMode parses a mode name. "noticeboard" is accepted as an alias
// for the scattered mode.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scattered", "noticeboard", "scatter":
		return ModeScattered, nil
	case "list":
		return ModeList, nil
	case "grid":
		return ModeGrid, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidViewMode, "unknown view mode %q (want scattered, list or grid)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m ViewMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidViewMode, "invalid view mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ViewMode) UnmarshalText(text []byte) error {
	v, err := ParseViewMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Strategy returns the placement strategy for the mode.
func (m ViewMode) Strategy() Strategy {
	switch m {
	case ModeList:
		return ListStrategy{}
	case ModeGrid:
		return GridStrategy{}
	default:
		return ScatterStrategy{}
	}
}
