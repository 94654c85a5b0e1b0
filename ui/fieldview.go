package ui

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/modelg/camera"
	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/probes"
	"github.com/pthm-cable/modelg/renderer"
)

// FieldView uploads committed frames to a GPU texture, one texel per cell,
// and draws it through the camera.
type FieldView struct {
	tex    rl.Texture2D
	pixels []color.RGBA
	rows   int
	cols   int

	maskTex   rl.Texture2D
	maskValid bool
	mask      model.Mask
}

// NewFieldView allocates textures for a rows x cols grid.
func NewFieldView(rows, cols int) *FieldView {
	fv := &FieldView{}
	fv.allocate(rows, cols)
	return fv
}

func (fv *FieldView) allocate(rows, cols int) {
	fv.Unload()
	img := rl.GenImageColor(cols, rows, rl.Black)
	fv.tex = rl.LoadTextureFromImage(img)
	fv.maskTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	fv.pixels = make([]color.RGBA, rows*cols)
	fv.rows, fv.cols = rows, cols
	fv.maskValid = false
}

// Update colours frame f into the texture, reallocating on a size change.
func (fv *FieldView) Update(f model.Frame, mode renderer.Mode) {
	if f.Rows != fv.rows || f.Cols != fv.cols {
		fv.allocate(f.Rows, f.Cols)
	}
	renderer.FillRGBA(fv.pixels, f, mode)
	rl.UpdateTexture(fv.tex, fv.pixels)
}

// Draw renders the field texture scaled to the camera.
func (fv *FieldView) Draw(cam *camera.Camera) {
	rl.DrawTexturePro(fv.tex, fv.source(), fv.dest(cam), rl.Vector2{}, 0, rl.White)
}

// DrawMask shades the cells m rejects.
func (fv *FieldView) DrawMask(cam *camera.Camera, m model.Mask) {
	if !fv.maskValid || m != fv.mask {
		shade := rl.Color{R: 0, G: 0, B: 0, A: 160}
		for row := 0; row < fv.rows; row++ {
			for col := 0; col < fv.cols; col++ {
				c := color.RGBA{}
				if !m.Accept(col, row, fv.rows, fv.cols) {
					c = shade
				}
				fv.pixels[row*fv.cols+col] = c
			}
		}
		rl.UpdateTexture(fv.maskTex, fv.pixels)
		fv.mask = m
		fv.maskValid = true
	}
	rl.DrawTexturePro(fv.maskTex, fv.source(), fv.dest(cam), rl.Vector2{}, 0, rl.White)
}

// DrawBorders outlines the grid and the fixed boundary ring.
func (fv *FieldView) DrawBorders(cam *camera.Camera) {
	outer := fv.dest(cam)
	rl.DrawRectangleLinesEx(outer, 1, rl.Gray)
	inset := cam.Zoom
	inner := rl.Rectangle{
		X:      outer.X + inset,
		Y:      outer.Y + inset,
		Width:  outer.Width - 2*inset,
		Height: outer.Height - 2*inset,
	}
	rl.DrawRectangleLinesEx(inner, 1, rl.DarkGray)
}

// DrawProbes marks each probe cell.
func (fv *FieldView) DrawProbes(cam *camera.Camera, all []probes.Probe) {
	for _, p := range all {
		wx := float32(p.Site.Col) + 0.5
		wy := float32(p.Site.Row) + 0.5
		if !cam.IsVisible(wx, wy, 2) {
			continue
		}
		sx, sy := cam.WorldToScreen(wx, wy)
		radius := cam.Zoom
		if radius < 4 {
			radius = 4
		}
		rl.DrawCircleLines(int32(sx), int32(sy), radius, rl.White)
		rl.DrawText(p.Label.Name, int32(sx+radius+2), int32(sy-6), 12, rl.White)
	}
}

// Unload releases the GPU textures.
func (fv *FieldView) Unload() {
	if fv.tex.ID != 0 {
		rl.UnloadTexture(fv.tex)
		fv.tex = rl.Texture2D{}
	}
	if fv.maskTex.ID != 0 {
		rl.UnloadTexture(fv.maskTex)
		fv.maskTex = rl.Texture2D{}
	}
}

func (fv *FieldView) source() rl.Rectangle {
	return rl.Rectangle{Width: float32(fv.cols), Height: float32(fv.rows)}
}

func (fv *FieldView) dest(cam *camera.Camera) rl.Rectangle {
	x, y := cam.WorldToScreen(0, 0)
	return rl.Rectangle{
		X:      x,
		Y:      y,
		Width:  float32(fv.cols) * cam.Zoom,
		Height: float32(fv.rows) * cam.Zoom,
	}
}
