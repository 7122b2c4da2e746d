package overlapgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

// Options configures overlap diagram rendering.
type Options struct {
	// Padding is the gap two cards must keep to count as disjoint.
	Padding float64

	// Titles labels nodes with card titles instead of IDs.
	Titles map[string]string
}

// Edge is a pair of overlapping cards.
type Edge struct {
	From, To string
}

// Edges returns every overlapping pair of ephemeral cards in placement
// order. Durable cards never produce edges.
func Edges(s board.Snapshot, padding float64) []Edge {
	var out []Edge
	for i, a := range s.Placements {
		if a.Durable {
			continue
		}
		for _, b := range s.Placements[i+1:] {
			if b.Durable {
				continue
			}
			if layout.Overlaps(a.Position, b.Position, s.Card.Width, s.Card.Height, padding) {
				out = append(out, Edge{From: a.CardID, To: b.CardID})
			}
		}
	}
	return out
}

// ToDOT converts a snapshot to Graphviz DOT format.
func ToDOT(s board.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for _, p := range s.Placements {
		fmt.Fprintf(&buf, "  %q [%s];\n", p.CardID, strings.Join(fmtAttrs(p, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range Edges(s, opts.Padding) {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(p layout.Placement, opts Options) []string {
	label := p.CardID
	if t := opts.Titles[p.CardID]; t != "" {
		label = t
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case p.Exhausted:
		attrs = append(attrs, "fillcolor=\"#fca5a5\"")
	case p.Durable:
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a plain
// viewBox so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
