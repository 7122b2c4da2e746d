package render

import (
	"bytes"
	"fmt"
	"html"
	"unicode/utf8"

	"github.com/matzehuels/noticeboard/pkg/board"
)

// RenderSVG draws the snapshot as a standalone SVG document.
func RenderSVG(s board.Snapshot, cards []board.Card, opts ...Option) []byte {
	c := newConfig(s, opts)
	rects := buildScene(s, cards, c)
	height := sceneHeight(rects, c.height)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		c.width, height, c.width, height)
	buf.WriteString(`  <defs>
    <filter id="shadow" x="-10%" y="-10%" width="130%" height="130%">
      <feDropShadow dx="2" dy="3" stdDeviation="2" flood-opacity="0.35"/>
    </filter>
  </defs>` + "\n")
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", boardColor)

	for _, r := range rects {
		writeCard(&buf, r, c.titles)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeCard(buf *bytes.Buffer, r rect, titles bool) {
	cx, cy := r.x+r.w/2, r.y+r.h/2
	fmt.Fprintf(buf, `  <g id="card-%s" class="card" data-z="%d" data-durable="%t" transform="rotate(%.2f %.2f %.2f)">`+"\n",
		html.EscapeString(r.id), r.zIndex, r.durable, r.rotate, cx, cy)
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="4" fill="%s" stroke="%s" filter="url(#shadow)"/>`+"\n",
		r.x, r.y, r.w, r.h, paperColor, borderColor)
	fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="#00000055"/>`+"\n",
		cx, r.y+8, pinRadius(r.w), r.pin)

	if titles {
		size := fontSize(r.w)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" font-weight="600" fill="%s" text-anchor="middle">%s</text>`+"\n",
			cx, r.y+24+size, size, inkColor, html.EscapeString(truncate(r.title, maxChars(r.w, size))))
		if r.date != "" {
			fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle">%s</text>`+"\n",
				cx, r.y+30+2*size, size*0.85, mutedColor, html.EscapeString(r.date))
		}
	}
	buf.WriteString("  </g>\n")
}

func pinRadius(w float64) float64 { return max(3, min(7, w/24)) }

func fontSize(w float64) float64 { return max(8, min(16, w/11)) }

// maxChars estimates how many glyphs of the given size fit in width w.
func maxChars(w, size float64) int {
	return max(4, int((w-12)/(size*0.55)))
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
