package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/modelg/model"
)

// Collector accumulates steps within windows and produces WindowStats.
type Collector struct {
	windowSteps uint64
	dt          float64

	windowStart uint64
	steps       int
	warned      bool

	fieldStats FieldStats
}

// NewCollector creates a new stats collector.
// windowSteps: number of engine steps per stats window
// dt: time step used to convert iterations to simulated time
func NewCollector(windowSteps int, dt float64) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		windowSteps: uint64(windowSteps),
		dt:          dt,
	}
}

// RecordStep counts a completed step and warns once per window when the
// extrema stop being finite.
func (c *Collector) RecordStep(iteration uint64, ext model.Extrema) {
	c.steps++
	if !c.warned && !ext.Finite() && !ext.Empty(model.SpeciesG) {
		slog.Warn("field is no longer finite", "iteration", iteration, "extrema", ext)
		c.warned = true
	}
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(iteration uint64) bool {
	return iteration-c.windowStart >= c.windowSteps
}

// SetDT updates the time step used for simulated time.
func (c *Collector) SetDT(dt float64) {
	c.dt = dt
}

// Reset starts a fresh window at iteration, used after an engine reset.
func (c *Collector) Reset(iteration uint64) {
	c.windowStart = iteration
	c.steps = 0
	c.warned = false
}

// Flush produces a WindowStats from the committed frame and resets counters
// for the next window.
func (c *Collector) Flush(f model.Frame) WindowStats {
	sp := c.fieldStats.Compute(f)
	ext := f.Extrema

	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   f.Iteration,
		SimTime:     float64(f.Iteration) * c.dt,
		Steps:       c.steps,
		Accepted:    f.Accepted,

		GMin: ext.GMin,
		GMax: ext.GMax,
		XMin: ext.XMin,
		XMax: ext.XMax,
		YMin: ext.YMin,
		YMax: ext.YMax,

		GMean: sp[0].Mean,
		GStd:  sp[0].Std,
		XMean: sp[1].Mean,
		XStd:  sp[1].Std,
		XP10:  sp[1].P10,
		XP50:  sp[1].P50,
		XP90:  sp[1].P90,
		YMean: sp[2].Mean,
		YStd:  sp[2].Std,

		Finite: ext.Finite(),
	}

	c.Reset(f.Iteration)
	return stats
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() uint64 {
	return c.windowSteps
}
