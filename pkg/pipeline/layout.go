package pipeline

import (
	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

// ComputeLayout runs one layout pass for cards and returns its snapshot.
// Options must have passed ValidateForLayout.
func ComputeLayout(cards []board.Card, opts Options) board.Snapshot {
	b := board.New(
		board.WithOptions(*opts.Layout),
		board.WithSeed(opts.Seed),
		board.WithViewMode(opts.ViewMode()),
		board.WithCanvas(opts.Canvas()),
		board.WithLogger(opts.Logger),
	)
	if opts.Narrow != nil {
		b.SetNarrow(*opts.Narrow)
	}
	b.SetCards(cards)
	return b.Snapshot()
}

// canvasFor returns the canvas a snapshot was computed for, falling back
// to the options.
func canvasFor(s board.Snapshot, opts Options) layout.Canvas {
	if s.Canvas.Valid() {
		return s.Canvas
	}
	return opts.Canvas()
}
