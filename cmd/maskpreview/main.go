// Mask preview tool - interactive visualization of mask shapes with sliders.
//
// Usage: go run ./cmd/maskpreview
package main

import (
	"fmt"
	"image/color"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/modelg/model"
)

const (
	windowWidth  = 1000
	windowHeight = 600
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
)

// MaskParams holds the preview settings.
type MaskParams struct {
	Shape     int
	Threshold float32
	Rows      int
	Cols      int
}

func defaultMaskParams() MaskParams {
	return MaskParams{Shape: 1, Threshold: 0.1, Rows: 128, Cols: 128}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Mask Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultMaskParams()

	// Texture at the largest preview grid; smaller grids use a sub-rectangle
	const maxGrid = 512
	img := rl.GenImageColor(maxGrid, maxGrid, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	pixels := make([]color.RGBA, maxGrid*maxGrid)

	needsRegen := true
	accepted := 0

	for !rl.WindowShouldClose() {
		mask := model.Mask{
			Shape:     model.MaskShapes[params.Shape],
			Threshold: float64(params.Threshold),
		}

		if needsRegen {
			accepted = fillMask(pixels, maxGrid, params.Rows, params.Cols, mask)
			rl.UpdateTexture(texture, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview keeps the grid aspect ratio
		scale := float32(previewSize) / float32(max(params.Rows, params.Cols))
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(params.Cols), Height: float32(params.Rows)},
			rl.Rectangle{X: 10, Y: 10, Width: float32(params.Cols) * scale, Height: float32(params.Rows) * scale},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		interior := (params.Rows - 2) * (params.Cols - 2)
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Active: %d of %d interior cells (%.1f%%)", accepted, interior,
			100*float64(accepted)/float64(interior)), 15, statsY, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Mask Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Shape selection
		rl.DrawText("Shape (click to cycle)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 24}, string(mask.Shape)) {
			params.Shape = (params.Shape + 1) % len(model.MaskShapes)
			needsRegen = true
		}
		panelY += 40

		// Threshold slider
		rl.DrawText("Threshold", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newThreshold := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"-1", "1",
			params.Threshold, -1, 1,
		)
		rl.DrawText(fmt.Sprintf("%.3f", params.Threshold), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newThreshold != params.Threshold {
			params.Threshold = newThreshold
			needsRegen = true
		}
		panelY += 35

		// Rows slider
		rl.DrawText("Rows", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newRows := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"3", "512",
			float32(params.Rows), 3, maxGrid,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Rows), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newRows) != params.Rows {
			params.Rows = int(newRows)
			needsRegen = true
		}
		panelY += 35

		// Cols slider
		rl.DrawText("Cols", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCols := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"3", "512",
			float32(params.Cols), 3, maxGrid,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Cols), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newCols) != params.Cols {
			params.Cols = int(newCols)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultMaskParams()
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yaml := maskYAML(mask)
		for _, line := range strings.Split(yaml, "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// fillMask paints accepted cells white and rejected cells dark into a
// stride x stride pixel buffer. Border cells are drawn grey since the
// engine never updates them. Returns the number of active interior cells.
func fillMask(pixels []color.RGBA, stride, rows, cols int, m model.Mask) int {
	border := color.RGBA{R: 120, G: 120, B: 120, A: 255}
	active := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	inactive := color.RGBA{R: 30, G: 30, B: 40, A: 255}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := inactive
			switch {
			case row == 0 || col == 0 || row == rows-1 || col == cols-1:
				c = border
			case m.Accept(col, row, rows, cols):
				c = active
			}
			pixels[row*stride+col] = c
		}
	}
	return m.AcceptedCount(rows, cols)
}

func maskYAML(m model.Mask) string {
	return fmt.Sprintf("mask:\n  shape: %s\n  threshold: %.3f", m.Shape, m.Threshold)
}
