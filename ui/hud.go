package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/probes"
	"github.com/pthm-cable/modelg/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Iteration      uint64
	StepsPerUpdate int
	StepDuration   time.Duration
	FPS            int32
	Paused         bool
	Recording      bool
	Status         string // transient message, e.g. after applying parameters
	Rows, Cols     int
	Accepted       int
	Mode           string
	Mask           model.Mask
	Extrema        model.Extrema
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x, y := int32(10), int32(10)
	width := int32(300)

	r.DrawPanel(x-5, y-5, width+10, 170)

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 25

	rl.DrawText(
		fmt.Sprintf("Iteration: %d | Steps/update: %d | FPS: %d", data.Iteration, data.StepsPerUpdate, data.FPS),
		x, y, 14, rl.LightGray,
	)
	y += 18
	rl.DrawText(
		fmt.Sprintf("Grid: %dx%d | Active: %d | Step: %s", data.Rows, data.Cols, data.Accepted, data.StepDuration.Round(time.Microsecond)),
		x, y, 14, rl.LightGray,
	)
	y += 18
	rl.DrawText(
		fmt.Sprintf("View: %s | Mask: %s (%.3g)", data.Mode, data.Mask.Shape, data.Mask.Threshold),
		x, y, 14, rl.LightGray,
	)
	y += 20

	y = r.DrawRangeBar(x, y, "G", data.Extrema.GMin, data.Extrema.GMax, rl.Red, width)
	y = r.DrawRangeBar(x, y, "X", data.Extrema.XMin, data.Extrema.XMax, rl.Green, width)
	y = r.DrawRangeBar(x, y, "Y", data.Extrema.YMin, data.Extrema.YMax, rl.Blue, width)

	statusText := "Running"
	statusColor := rl.Green
	if data.Paused {
		statusText = "PAUSED"
		statusColor = rl.Yellow
	}
	if data.Recording {
		statusText += " | REC"
	}
	if !data.Extrema.Finite() && data.Iteration > 0 && data.Accepted > 0 {
		statusText += " | non-finite values"
		statusColor = rl.Red
	}
	if data.Status != "" {
		statusText += " | " + data.Status
	}
	rl.DrawText(statusText, x, y+4, 14, statusColor)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the step phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y
	p.renderer.DrawPanel(x-5, y-5, 250, 110)

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f steps/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range []string{telemetry.PhaseSweep, telemetry.PhaseProbes, telemetry.PhaseTelemetry, telemetry.PhaseRecord} {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %6s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// ProbePanel lists probe readings.
type ProbePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewProbePanel creates a new probe panel.
func NewProbePanel(x, y, width int32) *ProbePanel {
	return &ProbePanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *ProbePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders one line per probe.
func (p *ProbePanel) Draw(all []probes.Probe) {
	if len(all) == 0 {
		return
	}
	r := p.renderer
	lineHeight := r.Theme.LineHeight
	height := int32(len(all))*lineHeight + lineHeight + r.Theme.Padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	y := p.y + r.Theme.Padding
	y = r.DrawSectionHeader(p.x+r.Theme.Padding, y, "Probes")
	for _, pr := range all {
		c := pr.Trace.Last
		r.DrawLabel(p.x+r.Theme.Padding, y, fmt.Sprintf("%s (%d,%d)  G %.4g  X %.4g  Y %.4g",
			pr.Label.Name, pr.Site.Row, pr.Site.Col, c.G, c.X, c.Y))
		y += lineHeight
	}
}
