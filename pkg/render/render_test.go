package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/noticeboard/pkg/board"
	"github.com/matzehuels/noticeboard/pkg/layout"
)

func testSnapshot(t *testing.T, mode layout.ViewMode) (board.Snapshot, []board.Card) {
	t.Helper()
	cards := []board.Card{
		{ID: "fair", Title: "Summer <Fair>", Category: "community", Date: "2025-07-12"},
		{ID: "choir", Title: "Choir rehearsal", Category: "music"},
		{ID: "swap", Title: "Book swap", PositionX: board.Float(42), PositionY: board.Float(17.5)},
	}
	b := board.New(board.WithViewMode(mode), board.WithCanvas(layout.Canvas{Width: 800, Height: 600}))
	b.SetCards(cards)
	return b.Snapshot(), cards
}

func TestRenderSVG(t *testing.T) {
	snap, cards := testSnapshot(t, layout.ModeScattered)
	svg := string(RenderSVG(snap, cards))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800 600"`) {
		t.Errorf("unexpected header: %.80s", svg)
	}
	if got := strings.Count(svg, `class="card"`); got != 3 {
		t.Errorf("rendered %d cards, want 3", got)
	}
	if !strings.Contains(svg, "Summer &lt;Fair&gt;") {
		t.Error("title not escaped")
	}
	if !strings.Contains(svg, `id="card-swap" class="card" data-z="1" data-durable="true"`) {
		t.Error("durable card not marked")
	}

	// Lowest z-index is painted first.
	if strings.Index(svg, `id="card-swap"`) > strings.Index(svg, `id="card-fair"`) {
		t.Error("cards not painted in z-index order")
	}
}

func TestRenderSVGActiveOnTop(t *testing.T) {
	snap, cards := testSnapshot(t, layout.ModeScattered)
	svg := string(RenderSVG(snap, cards, WithActive("swap")))

	if !strings.Contains(svg, `id="card-swap" class="card" data-z="4"`) {
		t.Error("active card not promoted")
	}
	if strings.LastIndex(svg, `class="card"`) != strings.Index(svg, `id="card-swap"`)+len(`id="card-swap" `) {
		t.Error("active card not painted last")
	}
}

func TestRenderSVGWithoutTitles(t *testing.T) {
	snap, cards := testSnapshot(t, layout.ModeGrid)
	svg := string(RenderSVG(snap, cards, WithoutTitles(), WithSize(400, 300)))
	if strings.Contains(svg, "<text") {
		t.Error("titles drawn despite WithoutTitles")
	}
	if !strings.Contains(svg, `width="400" height="300"`) {
		t.Error("WithSize not applied")
	}
}

func TestRenderSVGListGrows(t *testing.T) {
	cards := make([]board.Card, 8)
	for i := range cards {
		cards[i] = board.Card{ID: string(rune('a' + i))}
	}
	b := board.New(board.WithViewMode(layout.ModeList), board.WithCanvas(layout.Canvas{Width: 800, Height: 600}))
	b.SetCards(cards)

	svg := string(RenderSVG(b.Snapshot(), cards))
	if strings.Contains(svg, `height="600"`) {
		t.Error("list view image not extended to fit all cards")
	}
}

func TestRenderPNG(t *testing.T) {
	snap, cards := testSnapshot(t, layout.ModeScattered)
	data, err := RenderPNG(snap, cards)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("image size = %dx%d, want 800x600", b.Dx(), b.Dy())
	}
}

func TestPinColor(t *testing.T) {
	if PinColor("") != "#ef4444" {
		t.Error("uncategorized cards should use a red pin")
	}
	if PinColor("music") != PinColor("music") {
		t.Error("PinColor should be deterministic")
	}
}

func TestHexColor(t *testing.T) {
	r, g, b, a := hexColor("#ff0000").RGBA()
	if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("hexColor(#ff0000) = %v %v %v %v", r, g, b, a)
	}
	if _, _, _, a := hexColor("#00000000").RGBA(); a != 0 {
		t.Error("alpha channel ignored")
	}
}
