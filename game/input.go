package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/modelg/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		running := !g.runner.Running()
		g.runner.SetRunning(running)
	}

	// Single step while paused
	if rl.IsKeyPressed(rl.KeyN) && !g.runner.Running() {
		if err := g.runner.Step(); err != nil {
			g.setStatus(fmt.Sprintf("step failed: %v", err))
		}
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.runner.SetStepsPerUpdate(g.runner.StepsPerUpdate() / 2)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.runner.SetStepsPerUpdate(g.runner.StepsPerUpdate() * 2)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		if err := g.runner.Reset(); err != nil {
			g.setStatus(fmt.Sprintf("reset failed: %v", err))
		} else {
			g.shownIteration = 0
			g.frameValid = false
			g.setStatus("field reset")
		}
	}

	if rl.IsKeyPressed(rl.KeyV) {
		g.mode = g.mode.Next()
		g.frameValid = false
	}

	if rl.IsKeyPressed(rl.KeySlash) {
		g.controls.Toggle()
	}

	g.handleOverlayKeys()
	g.handleCameraInput()
	g.handleProbeClick()
}

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		g.overlays.HandleKeyPress(key)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.paramPanel.SetPosition(int32(w)-430, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed in screen pixels per frame
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Drag with the middle mouse button
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}

	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		g.camera.ZoomBy(1.0 + wheelMove*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleProbeClick adds a probe on left click and removes the nearest one on
// right click. Clicks over the parameter panel are left to raygui.
func (g *Game) handleProbeClick() {
	left := rl.IsMouseButtonPressed(rl.MouseButtonLeft)
	right := rl.IsMouseButtonPressed(rl.MouseButtonRight)
	if !left && !right {
		return
	}

	mouse := rl.GetMousePosition()
	if g.overlays.IsEnabled(ui.OverlayParams) && mouse.X >= g.screenWidth-440 {
		return
	}
	row, col, ok := g.camera.ScreenToCell(mouse.X, mouse.Y)
	if !ok {
		return
	}

	if left {
		name := fmt.Sprintf("p%d", g.nextProbe)
		g.nextProbe++
		g.runner.AddProbe(name, row, col)
		g.setStatus(fmt.Sprintf("probe %s at (%d, %d)", name, row, col))
		return
	}
	if g.runner.RemoveProbeNear(row, col, probePickRadius) {
		g.setStatus("probe removed")
	}
}
