// Package camera provides a 2D camera for viewing the simulation grid.
package camera

import "math"

// Camera controls the viewport onto a bounded grid. World units are cells:
// x runs along columns and y along rows.
type Camera struct {
	// Position is the camera center in grid coordinates
	X, Y float32

	// Zoom level in screen pixels per cell
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid dimensions in cells
	GridW, GridH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// maxPixelsPerCell bounds how far the view can zoom in.
const maxPixelsPerCell = 32

// New creates a camera showing the whole grid centered in the viewport.
func New(viewportW, viewportH float32, rows, cols int) *Camera {
	c := &Camera{ViewportW: viewportW, ViewportH: viewportH}
	c.SetGrid(rows, cols)
	return c
}

// SetGrid adopts new grid dimensions and resets the view to fit.
func (c *Camera) SetGrid(rows, cols int) {
	c.GridW = float32(cols)
	c.GridH = float32(rows)
	c.updateLimits()
	c.Reset()
}

// FitZoom returns the zoom at which the whole grid fits the viewport.
func (c *Camera) FitZoom() float32 {
	zx := c.ViewportW / c.GridW
	zy := c.ViewportH / c.GridH
	if zy < zx {
		return zy
	}
	return zx
}

func (c *Camera) updateLimits() {
	c.MinZoom = c.FitZoom()
	c.MaxZoom = maxPixelsPerCell
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = c.MinZoom
	}
}

// WorldToScreen converts grid coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to grid coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// ScreenToCell returns the cell under a screen position and whether it lies
// on the grid.
func (c *Camera) ScreenToCell(sx, sy float32) (row, col int, ok bool) {
	wx, wy := c.ScreenToWorld(sx, sy)
	col = int(math.Floor(float64(wx)))
	row = int(math.Floor(float64(wy)))
	ok = col >= 0 && row >= 0 && col < int(c.GridW) && row < int(c.GridH)
	return row, col, ok
}

// IsVisible returns true if a circle at (wx, wy) with given radius in cells
// could be visible on screen.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateLimits()
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels. The center stays
// on the grid.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, 0, c.GridW)
	c.Y = clamp(c.Y+dy/c.Zoom, 0, c.GridH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the grid and zooms to fit.
func (c *Camera) Reset() {
	c.X = c.GridW / 2
	c.Y = c.GridH / 2
	c.Zoom = c.MinZoom
}

// VisibleWorldBounds returns the grid-coordinate bounds of the visible area
// clipped to the grid.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = clamp(c.X-halfW, 0, c.GridW)
	maxX = clamp(c.X+halfW, 0, c.GridW)
	minY = clamp(c.Y-halfH, 0, c.GridH)
	maxY = clamp(c.Y+halfH, 0, c.GridH)
	return
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
