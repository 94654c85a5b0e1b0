// Package sim drives the Model G engine: it owns the active parameter set,
// runs steps on a background goroutine gated by a run flag, and feeds the
// step hooks (probes, telemetry windows, recording).
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/modelg/config"
	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/probes"
	"github.com/pthm-cable/modelg/renderer"
	"github.com/pthm-cable/modelg/telemetry"
)

// maxStepsPerUpdate caps the batch size of one update.
const maxStepsPerUpdate = 256

// Options configures a Runner.
type Options struct {
	OutputDir      string // CSV and config output, empty disables
	RecordPath     string // MJPEG output, empty disables
	LogStats       bool   // log window stats via slog
	StepsPerUpdate int    // 0 uses the config value
}

// Runner owns the engine and everything that happens between steps.
type Runner struct {
	cfg    *config.Config
	engine *model.Engine

	// mu serializes steps with parameter changes.
	mu     sync.Mutex
	params model.Params
	mask   model.Mask

	running        atomic.Bool
	stepsPerUpdate atomic.Int32
	lastStep       atomic.Int64 // nanoseconds of the last sweep

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	history   *telemetry.History
	logStats  bool

	probesMu  sync.Mutex
	probes    *probes.Set
	probeRows []telemetry.ProbeSample

	recorder    *renderer.Recorder
	recordEvery uint64
	recording   atomic.Bool

	trigger chan struct{}
	quit    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// New creates a runner from cfg. The engine is allocated and filled with the
// configured initial concentrations; no step has run yet.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	p := cfg.Params()
	engine, err := model.NewEngine(p,
		model.WithWorkers(cfg.Physics.Workers),
		model.WithStencil(cfg.Derived.Stencil),
	)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	r := &Runner{
		cfg:         cfg,
		engine:      engine,
		params:      p,
		mask:        cfg.MaskPredicate(),
		perf:        telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:   telemetry.NewCollector(cfg.Telemetry.StatsWindow, p.DT),
		history:     telemetry.NewHistory(cfg.Telemetry.HistorySize),
		logStats:    opts.LogStats,
		probes:      probes.NewSet(),
		recordEvery: uint64(max(cfg.Record.Every, 1)),
		trigger:     make(chan struct{}, 1),
	}

	steps := opts.StepsPerUpdate
	if steps <= 0 {
		steps = cfg.Physics.StepsPerUpdate
	}
	r.SetStepsPerUpdate(steps)
	r.running.Store(true)

	for _, pc := range cfg.Probes {
		r.probes.Add(pc.Name, pc.Row, pc.Col)
	}
	if n := r.probes.Retain(p.Rows, p.Cols); n > 0 {
		slog.Warn("probes outside the grid dropped", "count", n)
	}

	if r.output, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		engine.Close()
		return nil, err
	}
	if err := r.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if opts.RecordPath != "" {
		r.recorder, err = renderer.NewRecorder(opts.RecordPath, p.Rows, p.Cols,
			cfg.Record.FPS, cfg.Record.Quality, renderer.ModeRGB)
		if err != nil {
			r.output.Close()
			engine.Close()
			return nil, err
		}
		r.recording.Store(true)
	}

	slog.Info("engine ready",
		"rows", p.Rows,
		"cols", p.Cols,
		"workers", engine.Workers(),
		"stencil", engine.Stencil(),
		"mask", r.mask.Shape,
		"accepted", r.mask.AcceptedCount(p.Rows, p.Cols),
	)
	return r, nil
}

// Engine returns the engine for read access (View, Iteration).
func (r *Runner) Engine() *model.Engine {
	return r.engine
}

// Params returns the active parameter set and mask.
func (r *Runner) Params() (model.Params, model.Mask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params, r.mask
}

// ApplyParams replaces the whole parameter set and mask. They take effect on
// the next step. A grid size change reallocates the field, restarts the
// iteration count and reports resized.
func (r *Runner) ApplyParams(p model.Params, m model.Mask) (resized bool, err error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	resized = !r.params.SameGrid(p)
	if resized {
		if err := r.engine.Reset(p); err != nil {
			return false, err
		}
		r.collector.Reset(0)

		r.probesMu.Lock()
		if r.output != nil && len(r.probeRows) > 0 {
			if err := r.output.WriteProbes(r.probeRows); err != nil {
				slog.Error("failed to write probes", "error", err)
			}
		}
		dropped := r.probes.Retain(p.Rows, p.Cols)
		r.probeRows = r.probeRows[:0]
		r.probesMu.Unlock()
		if dropped > 0 {
			slog.Warn("probes outside the grid dropped", "count", dropped)
		}

		if r.recorder != nil {
			r.closeRecorder()
			slog.Warn("recording stopped: grid size changed")
		}
	}

	r.params = p
	r.mask = m
	r.collector.SetDT(p.DT)

	slog.Info("parameters applied",
		"rows", p.Rows,
		"cols", p.Cols,
		"dt", p.DT,
		"mask", m.Shape,
		"threshold", m.Threshold,
		"resized", resized,
	)
	return resized, nil
}

// Reset refills the field with the active initial concentrations.
func (r *Runner) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.engine.Reset(r.params); err != nil {
		return err
	}
	r.collector.Reset(0)
	slog.Info("field reset", "g0", r.params.G0, "x0", r.params.X0, "y0", r.params.Y0)
	return nil
}

// Step runs one engine step followed by the step hooks.
func (r *Runner) Step() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stepLocked()
}

func (r *Runner) stepLocked() error {
	r.perf.StartTick()
	r.perf.StartPhase(telemetry.PhaseSweep)

	start := time.Now()
	if err := r.engine.Step(r.params, r.mask); err != nil {
		r.perf.EndTick()
		return err
	}
	r.lastStep.Store(int64(time.Since(start)))

	iteration := r.engine.Iteration()
	ext := r.engine.Extrema()
	r.collector.RecordStep(iteration, ext)
	r.history.Add(ext)

	r.perf.StartPhase(telemetry.PhaseProbes)
	r.sampleProbes()

	r.perf.StartPhase(telemetry.PhaseTelemetry)
	r.flushTelemetry(iteration)

	r.perf.StartPhase(telemetry.PhaseRecord)
	r.recordFrame(iteration)

	r.perf.EndTick()
	return nil
}

// Run executes up to n steps, stopping early when the run flag is cleared.
// It returns the number of steps completed.
func (r *Runner) Run(n int) (int, error) {
	done := 0
	for done < n && r.running.Load() {
		if err := r.Step(); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// RunUntil runs one batch of StepsPerUpdate steps, shortened so the
// iteration count stops at target. It returns the number of steps completed.
func (r *Runner) RunUntil(target uint64) (int, error) {
	iteration := r.engine.Iteration()
	if iteration >= target {
		return 0, nil
	}
	return r.Run(int(min(uint64(r.StepsPerUpdate()), target-iteration)))
}

// Running reports the run flag.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// SetRunning sets the run flag. Clearing it stops the loop after the step in
// progress; a step is never interrupted.
func (r *Runner) SetRunning(running bool) {
	r.running.Store(running)
}

// StepsPerUpdate returns the number of steps run per update.
func (r *Runner) StepsPerUpdate() int {
	return int(r.stepsPerUpdate.Load())
}

// SetStepsPerUpdate sets the batch size, clamped to [1, 256].
func (r *Runner) SetStepsPerUpdate(n int) {
	r.stepsPerUpdate.Store(int32(min(max(n, 1), maxStepsPerUpdate)))
}

// Start launches the background loop. Each Trigger runs one batch of
// StepsPerUpdate steps while the run flag is set.
func (r *Runner) Start() {
	if r.started {
		return
	}
	r.started = true
	r.quit = make(chan struct{})
	r.wg.Add(1)
	go r.loop()
}

// Trigger asks the background loop for another batch. It never blocks; a
// batch already pending absorbs the request.
func (r *Runner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.quit:
			return
		case <-r.trigger:
		}
		if _, err := r.Run(r.StepsPerUpdate()); err != nil {
			slog.Error("step failed", "error", err)
			r.running.Store(false)
		}
	}
}

// Stop clears the run flag and waits for the background loop to exit.
func (r *Runner) Stop() {
	r.running.Store(false)
	if !r.started {
		return
	}
	close(r.quit)
	r.wg.Wait()
	r.started = false
}

// LastStepDuration returns the sweep time of the most recent step.
func (r *Runner) LastStepDuration() time.Duration {
	return time.Duration(r.lastStep.Load())
}

// Perf returns the rolling step performance.
func (r *Runner) Perf() telemetry.PerfStats {
	return r.perf.Stats()
}

// RecordFrame records render frame timing.
func (r *Runner) RecordFrame() {
	r.perf.RecordFrame()
}

// History returns the extrema history. It is only safe to read once the
// runner is stopped or from the stepping goroutine.
func (r *Runner) History() *telemetry.History {
	return r.history
}

// Recording reports whether frames are being written to a video.
func (r *Runner) Recording() bool {
	return r.recording.Load()
}

// AddProbe places a named probe on a cell.
func (r *Runner) AddProbe(name string, row, col int) ecs.Entity {
	r.probesMu.Lock()
	defer r.probesMu.Unlock()
	return r.probes.Add(name, row, col)
}

// RemoveProbeNear removes the probe closest to (row, col) within radius cells.
func (r *Runner) RemoveProbeNear(row, col int, radius float64) bool {
	r.probesMu.Lock()
	defer r.probesMu.Unlock()
	e, ok := r.probes.Nearest(row, col, radius)
	if !ok {
		return false
	}
	return r.probes.Remove(e)
}

// Probes returns a copy of every probe with its latest reading.
func (r *Runner) Probes() []probes.Probe {
	r.probesMu.Lock()
	defer r.probesMu.Unlock()
	return r.probes.All()
}

// ProbeCount returns the number of probes.
func (r *Runner) ProbeCount() int {
	r.probesMu.Lock()
	defer r.probesMu.Unlock()
	return r.probes.Len()
}

// Close stops the loop and finalizes all outputs.
func (r *Runner) Close() error {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if r.output != nil && len(r.probeRows) > 0 {
		errs = append(errs, r.output.WriteProbes(r.probeRows))
		r.probeRows = r.probeRows[:0]
	}
	errs = append(errs, r.closeRecorder(), r.output.Close())
	r.output = nil
	r.engine.Close()
	return errors.Join(errs...)
}

func (r *Runner) closeRecorder() error {
	if r.recorder == nil {
		return nil
	}
	frames := r.recorder.Frames()
	err := r.recorder.Close()
	r.recorder = nil
	r.recording.Store(false)
	slog.Info("recording closed", "frames", frames)
	return err
}
