package pipeline

import (
	"fmt"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/render"
)

// RenderSnapshot generates artifacts in the requested formats.
func RenderSnapshot(s board.Snapshot, cards []board.Card, opts Options) (map[string][]byte, error) {
	c := canvasFor(s, opts)
	renderOpts := []render.Option{
		render.WithSize(int(c.Width), int(c.Height)),
		render.WithActive(opts.Active),
	}
	if opts.NoTitles {
		renderOpts = append(renderOpts, render.WithoutTitles())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(s, cards, renderOpts...)
		case FormatPNG:
			data, err = render.RenderPNG(s, cards, renderOpts...)
		case FormatJSON:
			data, err = board.MarshalSnapshot(s)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
