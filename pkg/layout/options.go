package layout

import (
	"github.com/matzehuels/noticeboard/pkg/errors"
)

// NarrowBreakpoint is the canvas width in pixels at or below which the
// narrow (mobile) card size and column cap apply.
const NarrowBreakpoint = 768.0

// DefaultSingleCardTop is the top offset used when a scattered board holds
// exactly one card.
const DefaultSingleCardTop = 10.0

// Options tunes layout geometry. All sizes are percentages of the canvas.
type Options struct {
	// SpreadFactor scales the random offset around a cell center, as a
	// percentage of the cell size. Default: 60.
	SpreadFactor float64 `json:"spread_factor" toml:"spread_factor"`

	// RotationRange bounds the random rotation in degrees to
	// [-RotationRange, +RotationRange]. Default: 5.
	RotationRange float64 `json:"rotation_range" toml:"rotation_range"`

	// CardWidth and CardHeight are the card size on wide canvases.
	// Default: 15×25.
	CardWidth  float64 `json:"card_width" toml:"card_width"`
	CardHeight float64 `json:"card_height" toml:"card_height"`

	// NarrowCardWidth and NarrowCardHeight are the card size on narrow
	// canvases. Default: 40×35.
	NarrowCardWidth  float64 `json:"narrow_card_width" toml:"narrow_card_width"`
	NarrowCardHeight float64 `json:"narrow_card_height" toml:"narrow_card_height"`

	// Padding is the minimum gap kept between scattered cards. Default: 5.
	Padding float64 `json:"padding" toml:"padding"`

	// Margin keeps scattered cards away from the canvas edge. Default: 5.
	Margin float64 `json:"margin" toml:"margin"`

	// MaxAttempts is the retry budget of the scatter loop. Default: 30.
	MaxAttempts int `json:"max_attempts" toml:"max_attempts"`

	// MaxCols caps the columns on wide canvases. Default: 4.
	MaxCols int `json:"max_cols" toml:"max_cols"`

	// NarrowMaxCols caps the columns on narrow canvases. Default: 2.
	NarrowMaxCols int `json:"narrow_max_cols" toml:"narrow_max_cols"`

	// ListGap is the vertical gap between cards in list mode. Default: 2.
	ListGap float64 `json:"list_gap" toml:"list_gap"`
}

// DefaultOptions returns the stock noticeboard geometry.
func DefaultOptions() Options {
	return Options{
		SpreadFactor:     60,
		RotationRange:    5,
		CardWidth:        15,
		CardHeight:       25,
		NarrowCardWidth:  40,
		NarrowCardHeight: 35,
		Padding:          5,
		Margin:           5,
		MaxAttempts:      30,
		MaxCols:          4,
		NarrowMaxCols:    2,
		ListGap:          2,
	}
}

// SetDefaults fills zero values that have no meaningful zero setting.
// Spread, rotation, padding, margin and gap may legitimately be zero and
// are left untouched.
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	if o.CardWidth <= 0 {
		o.CardWidth = d.CardWidth
	}
	if o.CardHeight <= 0 {
		o.CardHeight = d.CardHeight
	}
	if o.NarrowCardWidth <= 0 {
		o.NarrowCardWidth = d.NarrowCardWidth
	}
	if o.NarrowCardHeight <= 0 {
		o.NarrowCardHeight = d.NarrowCardHeight
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.MaxCols <= 0 {
		o.MaxCols = d.MaxCols
	}
	if o.NarrowMaxCols <= 0 {
		o.NarrowMaxCols = d.NarrowMaxCols
	}
}

// Validate checks that the options describe a drawable layout.
func (o Options) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"card_width", o.CardWidth},
		{"card_height", o.CardHeight},
		{"narrow_card_width", o.NarrowCardWidth},
		{"narrow_card_height", o.NarrowCardHeight},
	} {
		if !finite(f.v) || f.v <= 0 || f.v > 100 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be within (0, 100], got %v", f.name, f.v)
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"spread_factor", o.SpreadFactor},
		{"rotation_range", o.RotationRange},
		{"padding", o.Padding},
		{"margin", o.Margin},
		{"list_gap", o.ListGap},
	} {
		if !finite(f.v) || f.v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be non-negative, got %v", f.name, f.v)
		}
	}
	if o.Margin >= 50 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must be below 50, got %v", o.Margin)
	}
	if o.MaxAttempts < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "max_attempts must be at least 1")
	}
	if o.MaxCols < 1 || o.NarrowMaxCols < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "column caps must be at least 1")
	}
	return nil
}

// CardSize returns the card size for the viewport class.
func (o Options) CardSize(narrow bool) Size {
	if narrow {
		return Size{Width: o.NarrowCardWidth, Height: o.NarrowCardHeight}
	}
	return Size{Width: o.CardWidth, Height: o.CardHeight}
}
