// Package overlapgraph draws the overlap structure of a board snapshot as a
// node-link diagram.
//
// Each card is a node. Two ephemeral cards that overlap (with the layout
// padding applied) are joined by an edge. Durable cards are drawn with a
// double outline since the user put them where they are, and cards whose
// scatter budget ran out are filled red. The diagram is a debugging aid for
// tuning spread factor, padding and attempt budgets.
//
//	dot := overlapgraph.ToDOT(snap, overlapgraph.Options{Padding: 5})
//	svg, err := overlapgraph.RenderSVG(ctx, dot)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package overlapgraph
