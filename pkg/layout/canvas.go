package layout

import "math"

// Default canvas used when the real one has not been measured yet.
const (
	DefaultCanvasWidth  = 1000.0
	DefaultCanvasHeight = 800.0
)

// Canvas is the pixel size of the drawing surface. It is an input to a
// layout pass and is never persisted.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultCanvas returns the fallback canvas.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}
}

// Valid reports whether both dimensions are finite and positive.
func (c Canvas) Valid() bool {
	return finite(c.Width) && finite(c.Height) && c.Width > 0 && c.Height > 0
}

// AspectRatio returns width divided by height, using the default canvas
// when c is not valid.
func (c Canvas) AspectRatio() float64 {
	if !c.Valid() {
		return DefaultCanvasWidth / DefaultCanvasHeight
	}
	return c.Width / c.Height
}

// Narrow reports whether the canvas falls into the narrow viewport class.
func (c Canvas) Narrow() bool {
	return c.Valid() && IsNarrow(c.Width)
}

// IsNarrow reports whether a viewport width in pixels is at or below
// [NarrowBreakpoint].
func IsNarrow(widthPx float64) bool {
	return widthPx <= NarrowBreakpoint
}

// Size is a width and height in canvas percent.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a pixel offset.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Clamp limits v to [lo, hi]. When hi < lo the lower bound wins, which keeps
// oversized cards pinned to the leading edge.
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
