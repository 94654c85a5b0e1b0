package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/ui"
)

// controlsText is the key legend at the bottom of the screen.
const controlsText = "Space pause | N step | < > steps | R reset | V view | click probe | / overlays"

// Update handles input and asks the runner for the next batch of steps.
func (g *Game) Update() {
	g.handleInput()
	if g.runner.Running() {
		g.runner.Trigger()
	}
}

// Draw renders the current state. The field texture is only refreshed when
// a newer iteration has been committed.
func (g *Game) Draw() {
	g.runner.RecordFrame()
	g.uploadFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 10, G: 10, B: 14, A: 255})

	_, mask := g.runner.Params()
	g.fieldView.Draw(g.camera)
	if g.overlays.IsEnabled(ui.OverlayMask) {
		g.fieldView.DrawMask(g.camera, mask)
	}
	if g.overlays.IsEnabled(ui.OverlayBorders) {
		g.fieldView.DrawBorders(g.camera)
	}

	all := g.runner.Probes()
	if g.overlays.IsEnabled(ui.OverlayProbes) {
		g.fieldView.DrawProbes(g.camera, all)
	}

	if g.overlays.IsEnabled(ui.OverlayHUD) {
		g.hud.Draw(g.hudData(mask))
	}
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.runner.Perf())
	}
	if g.overlays.IsEnabled(ui.OverlayProbes) {
		g.probePanel.Draw(all)
	}
	if g.overlays.IsEnabled(ui.OverlayParams) {
		g.drawParamPanel()
	}
	g.controls.Draw(g.overlays)
	g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsText)

	rl.EndDrawing()
}

// uploadFrame copies the committed frame into the field texture if it is
// newer than the one on screen.
func (g *Game) uploadFrame() {
	if g.frameValid && g.runner.Engine().Iteration() <= g.shownIteration {
		return
	}
	g.runner.Engine().View(func(f model.Frame) {
		g.fieldView.Update(f, g.mode)
		g.shownIteration = f.Iteration
		g.frameInfo = model.Frame{
			Rows:      f.Rows,
			Cols:      f.Cols,
			Extrema:   f.Extrema,
			Accepted:  f.Accepted,
			Iteration: f.Iteration,
			Slot:      f.Slot,
		}
	})
	g.frameValid = true
}

func (g *Game) hudData(mask model.Mask) ui.HUDData {
	status := ""
	if time.Now().Before(g.statusUntil) {
		status = g.status
	}
	return ui.HUDData{
		Title:          "Model G",
		Iteration:      g.frameInfo.Iteration,
		StepsPerUpdate: g.runner.StepsPerUpdate(),
		StepDuration:   g.runner.LastStepDuration(),
		FPS:            rl.GetFPS(),
		Paused:         !g.runner.Running(),
		Recording:      g.runner.Recording(),
		Status:         status,
		Rows:           g.frameInfo.Rows,
		Cols:           g.frameInfo.Cols,
		Accepted:       g.frameInfo.Accepted,
		Mode:           g.mode.String(),
		Mask:           mask,
		Extrema:        g.frameInfo.Extrema,
	}
}

// drawParamPanel renders the parameter panel and acts on its buttons.
func (g *Game) drawParamPanel() {
	switch g.paramPanel.Draw() {
	case ui.ParamApply:
		p, m := g.paramPanel.Pending()
		g.ApplyParams(p, m)
	case ui.ParamDefaults:
		p, _ := g.paramPanel.Pending()
		d := model.DefaultParams(p.Rows, p.Cols)
		g.paramPanel.SetPending(d, model.Mask{Shape: model.MaskNone, Threshold: 1})
	}
}
