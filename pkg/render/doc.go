// Package render draws a board snapshot as an image.
//
// # Overview
//
// The layout engine only produces percentages, rotations and stacking
// order. This package turns a [board.Snapshot] into something a person can
// look at: an SVG document for browsers and a PNG raster for previews and
// terminals that can display images.
//
//	svg := render.RenderSVG(snap, cards)
//	png, err := render.RenderPNG(snap, cards, render.WithSize(1280, 720))
//
// Cards are painted in ascending z-index order so that higher cards cover
// lower ones, and each card is rotated about its center. The pin color is
// derived from the card category.
package render
