package sim

import (
	"log/slog"

	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/telemetry"
)

// sampleProbes reads every probe from the committed frame. Rows are buffered
// and written with the next telemetry window.
func (r *Runner) sampleProbes() {
	r.probesMu.Lock()
	defer r.probesMu.Unlock()

	if r.probes.Len() == 0 {
		return
	}
	r.engine.View(func(f model.Frame) {
		samples := r.probes.Sample(f)
		if r.output != nil {
			r.probeRows = append(r.probeRows, samples...)
		}
	})
}

// flushTelemetry closes the stats window when it is due.
func (r *Runner) flushTelemetry(iteration uint64) {
	if !r.collector.ShouldFlush(iteration) {
		return
	}

	var stats telemetry.WindowStats
	r.engine.View(func(f model.Frame) {
		stats = r.collector.Flush(f)
	})
	perfStats := r.perf.Stats()

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if r.output == nil {
		return
	}
	if err := r.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEnd); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	r.probesMu.Lock()
	rows := r.probeRows
	r.probeRows = r.probeRows[:0]
	r.probesMu.Unlock()
	if len(rows) > 0 {
		if err := r.output.WriteProbes(rows); err != nil {
			slog.Error("failed to write probes", "error", err)
		}
	}
}

// recordFrame appends the committed frame to the video every recordEvery steps.
func (r *Runner) recordFrame(iteration uint64) {
	if r.recorder == nil || iteration%r.recordEvery != 0 {
		return
	}
	var err error
	r.engine.View(func(f model.Frame) {
		err = r.recorder.AddFrame(f)
	})
	if err != nil {
		slog.Error("failed to record frame", "error", err)
		r.closeRecorder()
	}
}
