package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1000, 800, 500, 500)

	// Should be centered on the grid
	if cam.X != 250 || cam.Y != 250 {
		t.Errorf("expected camera at (250, 250), got (%f, %f)", cam.X, cam.Y)
	}
	// Fit zoom is min(1000/500, 800/500) = 1.6
	if math.Abs(float64(cam.Zoom-1.6)) > 1e-6 {
		t.Errorf("expected zoom 1.6, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1000, 800, 500, 500)

	sx, sy := cam.WorldToScreen(250, 250)
	if math.Abs(float64(sx-500)) > 0.01 || math.Abs(float64(sy-400)) > 0.01 {
		t.Errorf("expected screen center (500, 400), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1000, 800, 300, 400)
	cam.SetZoom(3)
	cam.Pan(40, -25)

	testCases := []struct{ sx, sy float32 }{
		{500, 400},
		{100, 100},
		{900, 700},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestScreenToCell(t *testing.T) {
	cam := New(100, 100, 10, 10) // 10 pixels per cell

	tests := []struct {
		name     string
		sx, sy   float32
		row, col int
		ok       bool
	}{
		{"top-left cell", 5, 5, 0, 0, true},
		{"row 3 col 7", 75, 35, 3, 7, true},
		{"last cell", 99, 99, 9, 9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, ok := cam.ScreenToCell(tt.sx, tt.sy)
			if row != tt.row || col != tt.col || ok != tt.ok {
				t.Errorf("ScreenToCell(%v,%v) = (%d,%d,%v), want (%d,%d,%v)",
					tt.sx, tt.sy, row, col, ok, tt.row, tt.col, tt.ok)
			}
		})
	}

	cam.SetZoom(20)
	cam.Pan(-1000, 0) // center clamps to x=0, left half of screen is off-grid
	if _, _, ok := cam.ScreenToCell(10, 50); ok {
		t.Error("point left of the grid should not map to a cell")
	}
}

func TestPanClamps(t *testing.T) {
	cam := New(1000, 800, 500, 500)
	cam.Pan(-100000, 100000)

	if cam.X != 0 || cam.Y != 500 {
		t.Errorf("expected center clamped to (0, 500), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1000, 800, 500, 500)

	cam.SetZoom(0.1)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.SetZoom(1000)
	if cam.Zoom != maxPixelsPerCell {
		t.Errorf("expected zoom clamped to %d, got %f", maxPixelsPerCell, cam.Zoom)
	}
}

func TestVisibleWorldBoundsClipped(t *testing.T) {
	cam := New(1000, 800, 500, 500)
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 || maxX != 500 || maxY != 500 {
		t.Errorf("fit view should cover the grid, got (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}

	cam.SetZoom(10)
	minX, minY, maxX, maxY = cam.VisibleWorldBounds()
	if maxX-minX != 100 || maxY-minY != 80 {
		t.Errorf("visible extent = %fx%f, want 100x80", maxX-minX, maxY-minY)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(100, 100, 100, 100)
	cam.SetZoom(4) // 25x25 cells visible around (50, 50)

	if !cam.IsVisible(50, 50, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(90, 90, 1) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(64, 50, 2) {
		t.Error("edge point with radius should be visible")
	}
}

func TestSetGridResets(t *testing.T) {
	cam := New(1000, 800, 500, 500)
	cam.SetZoom(8)
	cam.Pan(300, 300)

	cam.SetGrid(100, 200)
	if cam.X != 100 || cam.Y != 50 {
		t.Errorf("expected center (100, 50), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 5 {
		t.Errorf("expected fit zoom 5, got %f", cam.Zoom)
	}
}
