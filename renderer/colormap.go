// Package renderer turns committed engine frames into pixels: the colour
// mapping shared by every surface and the MJPEG recorder.
package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/pthm-cable/modelg/model"
)

// Mode selects how a frame is coloured.
type Mode int

const (
	// ModeRGB maps G, X and Y to the red, green and blue channels.
	ModeRGB Mode = iota
	// ModeG, ModeX and ModeY show one species as grayscale.
	ModeG
	ModeX
	ModeY
)

// Modes lists every mode in cycling order.
var Modes = []Mode{ModeRGB, ModeG, ModeX, ModeY}

// String returns a short label for the HUD.
func (m Mode) String() string {
	switch m {
	case ModeG:
		return "G"
	case ModeX:
		return "X"
	case ModeY:
		return "Y"
	}
	return "GXY"
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	return Modes[(int(m)+1)%len(Modes)]
}

// Channel maps v into [0, 255] relative to [lo, hi]. A flat range and
// non-finite results map to 0; values outside the range are clamped.
func Channel(v, lo, hi float64) uint8 {
	if hi == lo {
		return 0
	}
	s := 255 * (v - lo) / (hi - lo)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	if s <= 0 {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(math.Round(s))
}

// FillRGBA colours every cell of f into dst, one pixel per cell in row-major
// order. dst must hold at least Rows*Cols entries.
func FillRGBA(dst []color.RGBA, f model.Frame, mode Mode) {
	e := f.Extrema
	n := f.Rows * f.Cols
	for i := 0; i < n; i++ {
		idx := model.Stride * i
		g := Channel(f.Cells[idx], e.GMin, e.GMax)
		x := Channel(f.Cells[idx+1], e.XMin, e.XMax)
		y := Channel(f.Cells[idx+2], e.YMin, e.YMax)
		switch mode {
		case ModeG:
			dst[i] = color.RGBA{R: g, G: g, B: g, A: 255}
		case ModeX:
			dst[i] = color.RGBA{R: x, G: x, B: x, A: 255}
		case ModeY:
			dst[i] = color.RGBA{R: y, G: y, B: y, A: 255}
		default:
			dst[i] = color.RGBA{R: g, G: x, B: y, A: 255}
		}
	}
}

// Image renders f into img, reallocating it when the grid size changed.
func Image(img *image.RGBA, f model.Frame, mode Mode) *image.RGBA {
	if img == nil || img.Rect.Dx() != f.Cols || img.Rect.Dy() != f.Rows {
		img = image.NewRGBA(image.Rect(0, 0, f.Cols, f.Rows))
	}
	e := f.Extrema
	for row := 0; row < f.Rows; row++ {
		for col := 0; col < f.Cols; col++ {
			c := f.At(row, col)
			off := img.PixOffset(col, row)
			px := img.Pix[off : off+4 : off+4]
			g := Channel(c.G, e.GMin, e.GMax)
			x := Channel(c.X, e.XMin, e.XMax)
			y := Channel(c.Y, e.YMin, e.YMax)
			switch mode {
			case ModeG:
				px[0], px[1], px[2] = g, g, g
			case ModeX:
				px[0], px[1], px[2] = x, x, x
			case ModeY:
				px[0], px[1], px[2] = y, y, y
			default:
				px[0], px[1], px[2] = g, x, y
			}
			px[3] = 255
		}
	}
	return img
}
