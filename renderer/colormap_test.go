package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/modelg/model"
)

func TestChannel(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		want      uint8
	}{
		{"at min", 1, 1, 3, 0},
		{"at max", 3, 1, 3, 255},
		{"midpoint", 2, 1, 3, 128},
		{"flat range", 5, 2, 2, 0},
		{"below range", -1, 0, 1, 0},
		{"above range", 2, 0, 1, 255},
		{"nan value", math.NaN(), 0, 1, 0},
		{"infinite range", 0.5, math.Inf(-1), math.Inf(1), 0},
		{"sentinel range", 1, math.Inf(1), math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Channel(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Channel(%v, %v, %v) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestFillRGBA(t *testing.T) {
	f := model.NewField(3, 3, model.Conc{G: 1, X: 1, Y: 1})
	i := f.Index(1, 1)
	f.Cells[i], f.Cells[i+1], f.Cells[i+2] = 2, 0.5, 1
	frame := model.Frame{
		Rows: 3, Cols: 3, Cells: f.Cells,
		Extrema: model.Extrema{GMin: 1, GMax: 2, XMin: 0.5, XMax: 1, YMin: 1, YMax: 1},
	}

	dst := make([]color.RGBA, 9)
	FillRGBA(dst, frame, ModeRGB)
	if want := (color.RGBA{R: 255, G: 0, B: 0, A: 255}); dst[4] != want {
		t.Errorf("center pixel = %v, want %v", dst[4], want)
	}
	if want := (color.RGBA{R: 0, G: 255, B: 0, A: 255}); dst[0] != want {
		t.Errorf("corner pixel = %v, want %v", dst[0], want)
	}

	FillRGBA(dst, frame, ModeX)
	if dst[0].R != 255 || dst[0].G != 255 || dst[4].R != 0 {
		t.Errorf("grayscale X wrong: corner %v center %v", dst[0], dst[4])
	}

	img := Image(nil, frame, ModeRGB)
	if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("image center = %v", got)
	}
}

func TestModeNextCycles(t *testing.T) {
	m := ModeRGB
	for range Modes {
		m = m.Next()
	}
	if m != ModeRGB {
		t.Errorf("cycle ended at %v", m)
	}
}
