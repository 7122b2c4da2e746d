package layout

import (
	"math"
	"testing"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		mode   ViewMode
		narrow bool
		aspect float64
		want   Grid
	}{
		{"empty", 0, ModeScattered, false, 1.25, Grid{1, 1}},
		{"negative", -3, ModeScattered, false, 1.25, Grid{1, 1}},
		{"single", 1, ModeScattered, false, 1.25, Grid{1, 1}},
		{"list", 5, ModeList, false, 1.25, Grid{5, 1}},
		{"narrow two", 2, ModeScattered, true, 0.5, Grid{1, 2}},
		{"narrow five", 5, ModeScattered, true, 0.5, Grid{3, 2}},
		{"wide eight", 8, ModeScattered, false, 1.25, Grid{2, 4}},
		{"wide four", 4, ModeScattered, false, 1.25, Grid{2, 3}},
		{"wide capped", 20, ModeScattered, false, 16.0 / 9.0, Grid{5, 4}},
		{"grid mode matches scattered", 8, ModeGrid, false, 1.25, Grid{2, 4}},
		{"NaN aspect falls back", 4, ModeScattered, false, math.NaN(), Grid{2, 3}},
		{"zero aspect falls back", 4, ModeScattered, false, 0, Grid{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Partition(tt.n, tt.mode, tt.narrow, tt.aspect); got != tt.want {
				t.Errorf("Partition(%d) = %+v, want %+v", tt.n, got, tt.want)
			}
		})
	}
}

func TestPartitionCoversAllCards(t *testing.T) {
	aspects := []float64{0.2, 0.5, 1, 1.25, 16.0 / 9.0, 4, math.Inf(1), -1}
	for _, mode := range Modes {
		for _, narrow := range []bool{false, true} {
			for _, aspect := range aspects {
				for n := 0; n <= 60; n++ {
					g := Partition(n, mode, narrow, aspect)
					if g.Rows < 1 || g.Cols < 1 {
						t.Fatalf("Partition(%d, %v, %v, %v) = %+v, want rows and cols >= 1", n, mode, narrow, aspect, g)
					}
					if n > 0 && g.Rows*g.Cols < n {
						t.Fatalf("Partition(%d, %v, %v, %v) = %+v, want rows*cols >= n", n, mode, narrow, aspect, g)
					}
				}
			}
		}
	}
}

func TestGridCell(t *testing.T) {
	g := Grid{Rows: 2, Cols: 3}
	tests := []struct {
		index    int
		row, col int
	}{
		{0, 0, 0},
		{2, 0, 2},
		{3, 1, 0},
		{5, 1, 2},
	}
	for _, tt := range tests {
		row, col := g.Cell(tt.index)
		if row != tt.row || col != tt.col {
			t.Errorf("Cell(%d) = (%d, %d), want (%d, %d)", tt.index, row, col, tt.row, tt.col)
		}
	}

	size := g.CellSize()
	if math.Abs(size.Width-100.0/3) > 1e-9 || size.Height != 50 {
		t.Errorf("CellSize() = %+v, want {33.33 50}", size)
	}
}
