// Package pipeline provides the layout → render pipeline shared by the CLI
// and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Prepare: Validate card IDs and drop duplicates
//  2. Layout: Run a layout pass for the requested view and canvas
//  3. Render: Generate output in various formats (SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// Layouts and artifacts are cached by content hash through a [Runner].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Mode:    "scattered",
//	    Width:   1280,
//	    Height:  720,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, cards, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/cache"
	"github.com/matzehuels/noticeboard/pkg/errors"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = layout.DefaultCanvasWidth

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = layout.DefaultCanvasHeight

	// DefaultSeed is the default board seed for reproducibility.
	DefaultSeed = layout.DefaultSeed

	// DefaultMode is the default view mode.
	DefaultMode = "scattered"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Mode   string          `json:"mode,omitempty"`
	Narrow *bool           `json:"narrow,omitempty"` // nil derives the class from Width
	Width  float64         `json:"width,omitempty"`
	Height float64         `json:"height,omitempty"`
	Seed   uint64          `json:"seed,omitempty"`
	Layout *layout.Options `json:"layout,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	NoTitles bool     `json:"no_titles,omitempty"`
	Active   string   `json:"active,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Cards are the prepared cards the layout was computed for.
	Cards []board.Card

	// CardsHash is the content hash of the prepared cards.
	CardsHash string

	// Snapshot is the computed layout.
	Snapshot board.Snapshot

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CardCount  int
	Exhausted  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Layout == nil {
		d := layout.DefaultOptions()
		o.Layout = &d
	} else {
		o.Layout.SetDefaults()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := layout.ParseViewMode(o.Mode); err != nil {
		return err
	}
	if err := errors.ValidateCanvas(o.Width, o.Height); err != nil {
		return err
	}
	return o.Layout.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ViewMode returns the parsed view mode, defaulting to scattered.
func (o *Options) ViewMode() layout.ViewMode {
	m, err := layout.ParseViewMode(o.Mode)
	if err != nil {
		return layout.ModeScattered
	}
	return m
}

// Canvas returns the canvas described by Width and Height.
func (o *Options) Canvas() layout.Canvas {
	return layout.Canvas{Width: o.Width, Height: o.Height}
}

// IsNarrow returns the viewport class, derived from Width unless set.
func (o *Options) IsNarrow() bool {
	if o.Narrow != nil {
		return *o.Narrow
	}
	return layout.IsNarrow(o.Width)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:        o.ViewMode().String(),
		Narrow:      o.IsNarrow(),
		Width:       o.Width,
		Height:      o.Height,
		Seed:        o.Seed,
		OptionsHash: cache.HashJSON(o.Layout),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  int(o.Width),
		Height: int(o.Height),
		Titles: !o.NoTitles,
	}
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("%s %vx%v seed=%d", o.ViewMode(), o.Width, o.Height, o.Seed)
}
