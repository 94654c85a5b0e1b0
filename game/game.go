// Package game is the interactive shell around the simulation runner: window
// input, the render cadence and the on-screen panels.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/modelg/camera"
	"github.com/pthm-cable/modelg/config"
	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/renderer"
	"github.com/pthm-cable/modelg/sim"
	"github.com/pthm-cable/modelg/telemetry"
	"github.com/pthm-cable/modelg/ui"
)

// statusDuration is how long a status message stays on the HUD.
const statusDuration = 4 * time.Second

// probePickRadius is the click radius in cells for removing a probe.
const probePickRadius = 3

// Options configures a Game.
type Options struct {
	OutputDir      string
	RecordPath     string
	LogStats       bool
	Headless       bool
	StepsPerUpdate int
}

// Game holds the complete interactive state.
type Game struct {
	cfg    *config.Config
	runner *sim.Runner

	headless bool

	// Rendering (nil when headless)
	camera     *camera.Camera
	fieldView  *ui.FieldView
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	probePanel *ui.ProbePanel
	paramPanel *ui.ParamPanel
	controls   *ui.ControlsPanel
	overlays   *ui.OverlayRegistry

	mode           renderer.Mode
	shownIteration uint64
	frameValid     bool
	frameInfo      model.Frame // metadata of the last uploaded frame, Cells unset

	status      string
	statusUntil time.Time
	nextProbe   int

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates the runner and, unless headless, the UI.
// The window must already be open in graphical mode.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	runner, err := sim.New(cfg, sim.Options{
		OutputDir:      opts.OutputDir,
		RecordPath:     opts.RecordPath,
		LogStats:       opts.LogStats,
		StepsPerUpdate: opts.StepsPerUpdate,
	})
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:       cfg,
		runner:    runner,
		headless:  opts.Headless,
		nextProbe: len(cfg.Probes) + 1,
	}
	if opts.Headless {
		return g, nil
	}

	p, m := runner.Params()
	g.screenWidth = cfg.Derived.ScreenW32
	g.screenHeight = cfg.Derived.ScreenH32
	g.camera = camera.New(g.screenWidth, g.screenHeight, p.Rows, p.Cols)
	g.fieldView = ui.NewFieldView(p.Rows, p.Cols)
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 200)
	g.probePanel = ui.NewProbePanel(10, 320, 360)
	g.paramPanel = ui.NewParamPanel(int32(g.screenWidth)-430, 10, 420, p, m)
	g.controls = ui.NewControlsPanel(int32(g.screenWidth)-200, int32(g.screenHeight)-200, 190)
	g.overlays = ui.NewOverlayRegistry()

	// The runner steps on its own goroutine; Update only paces it.
	runner.Start()
	return g, nil
}

// ApplyParams hands a complete parameter set to the runner. A grid size
// change also refits the camera and the field texture.
func (g *Game) ApplyParams(p model.Params, m model.Mask) error {
	resized, err := g.runner.ApplyParams(p, m)
	if err != nil {
		g.setStatus(fmt.Sprintf("rejected: %v", err))
		return err
	}
	if g.paramPanel != nil {
		g.paramPanel.SetActive(p, m)
	}
	if resized {
		g.shownIteration = 0
		g.frameValid = false
		if g.camera != nil {
			g.camera.SetGrid(p.Rows, p.Cols)
		}
		g.setStatus(fmt.Sprintf("grid %dx%d, restarted", p.Rows, p.Cols))
	} else {
		g.setStatus("parameters applied")
	}
	return nil
}

// Step runs a single step synchronously.
func (g *Game) Step() error {
	return g.runner.Step()
}

// UpdateHeadless runs one batch of steps on the calling goroutine without
// going past maxSteps.
func (g *Game) UpdateHeadless(maxSteps uint64) error {
	_, err := g.runner.RunUntil(maxSteps)
	return err
}

// Running reports the run flag.
func (g *Game) Running() bool {
	return g.runner.Running()
}

// Iteration returns the number of committed steps.
func (g *Game) Iteration() uint64 {
	return g.runner.Engine().Iteration()
}

// Extrema returns the extrema of the last committed step.
func (g *Game) Extrema() model.Extrema {
	return g.runner.Engine().Extrema()
}

// History returns the extrema history for the exit plot.
func (g *Game) History() *telemetry.History {
	return g.runner.History()
}

// Unload stops the runner and releases resources.
func (g *Game) Unload() {
	if err := g.runner.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
	if g.fieldView != nil {
		g.fieldView.Unload()
	}
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusUntil = time.Now().Add(statusDuration)
}
