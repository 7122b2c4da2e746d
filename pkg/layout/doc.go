// Package layout computes card placements for a noticeboard canvas.
//
// # Overview
//
// A noticeboard shows a changing set of equally sized rectangular cards on a
// canvas whose pixel size is only known at render time. This package turns
// an ordered list of cards into positions expressed as percentages of the
// canvas: a left and top offset, a rotation in degrees and a stacking order.
// All coordinates are percentages so a layout survives canvas resizes
// without recomputing pixel values.
//
// # View Modes
//
// Three view modes are supported, each backed by a [Strategy]:
//
//   - [ModeScattered]: the corkboard look. Cards start at the center of a
//     grid cell and receive random jitter and rotation. A decaying retry
//     loop rejects candidates that overlap cards already placed.
//   - [ModeList]: cards stacked vertically at a fixed left margin with no
//     rotation. The list is a scrolling surface, so top grows without bound.
//   - [ModeGrid]: cards centered in their grid cell with no jitter.
//
// # Computing a Layout
//
// [Compute] runs one layout pass:
//
//	res := layout.Compute(items, layout.Params{
//	    Mode:   layout.ModeScattered,
//	    Canvas: layout.Canvas{Width: 1280, Height: 720},
//	}, layout.Seeded(42))
//
// Items carrying a [Pin] (a durable, user-placed position) are used verbatim
// in scattered mode and act as obstacles for every other card.
//
// # Randomness
//
// The scatter strategy draws from a [Source]. [Seeded] derives one stream
// per card from a board seed and the card ID, so an unchanged pass produces
// the same layout and adding a card does not reshuffle the others' random
// draws. Tests inject fixed sources to make stochastic behavior exact.
//
// # Best Effort
//
// Overlap avoidance is best effort. When the retry budget is spent the last
// candidate is kept and the placement is flagged [Placement.Exhausted].
// [Diagnostics] summarizes these cases so callers can monitor density.
package layout
