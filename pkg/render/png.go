package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/noticeboard/pkg/board"
)

var (
	fontOnce sync.Once
	ttf      *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		ttf, fontErr = truetype.Parse(goregular.TTF)
	})
	return ttf, fontErr
}

// RenderPNG rasterizes the snapshot.
func RenderPNG(s board.Snapshot, cards []board.Card, opts ...Option) ([]byte, error) {
	c := newConfig(s, opts)
	rects := buildScene(s, cards, c)
	height := sceneHeight(rects, c.height)

	dc := gg.NewContext(c.width, height)
	dc.SetColor(hexColor(boardColor))
	dc.Clear()

	var f *truetype.Font
	if c.titles {
		var err error
		if f, err = loadFont(); err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
	}

	for _, r := range rects {
		drawCard(dc, r, f)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCard(dc *gg.Context, r rect, f *truetype.Font) {
	cx, cy := r.x+r.w/2, r.y+r.h/2
	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(gg.Radians(r.rotate), cx, cy)

	// Shadow, then paper.
	dc.SetRGBA(0, 0, 0, 0.25)
	dc.DrawRoundedRectangle(r.x+2, r.y+3, r.w, r.h, 4)
	dc.Fill()
	dc.SetColor(hexColor(paperColor))
	dc.DrawRoundedRectangle(r.x, r.y, r.w, r.h, 4)
	dc.FillPreserve()
	dc.SetColor(hexColor(borderColor))
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.SetColor(hexColor(r.pin))
	dc.DrawCircle(cx, r.y+8, pinRadius(r.w))
	dc.Fill()

	if f == nil {
		return
	}
	size := fontSize(r.w)
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}))
	dc.SetColor(hexColor(inkColor))
	lines := dc.WordWrap(r.title, r.w-12)
	maxLines := max(1, int((r.h-30)/(size*1.3)))
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] += "…"
	}
	y := r.y + 24 + size
	for _, line := range lines {
		dc.DrawStringAnchored(line, cx, y, 0.5, 0)
		y += size * 1.3
	}
	if r.date != "" && y < r.y+r.h-4 {
		dc.SetColor(hexColor(mutedColor))
		dc.DrawStringAnchored(r.date, cx, y+2, 0.5, 0)
	}
}

// hexColor parses "#rrggbb" or "#rrggbbaa".
func hexColor(s string) color.Color {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || (len(s) != 6 && len(s) != 8) {
		return color.Black
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
}
