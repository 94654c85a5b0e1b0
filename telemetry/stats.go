package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/modelg/model"
)

// WindowStats holds aggregated statistics for a window of steps.
type WindowStats struct {
	WindowStart uint64  `csv:"-"`
	WindowEnd   uint64  `csv:"window_end"`
	SimTime     float64 `csv:"sim_time"`
	Steps       int     `csv:"steps"`
	Accepted    int     `csv:"accepted"`

	// Extrema of the last step in the window
	GMin float64 `csv:"g_min"`
	GMax float64 `csv:"g_max"`
	XMin float64 `csv:"x_min"`
	XMax float64 `csv:"x_max"`
	YMin float64 `csv:"y_min"`
	YMax float64 `csv:"y_max"`

	// Interior distribution at window end
	GMean float64 `csv:"g_mean"`
	GStd  float64 `csv:"g_std"`
	XMean float64 `csv:"x_mean"`
	XStd  float64 `csv:"x_std"`
	XP10  float64 `csv:"x_p10"`
	XP50  float64 `csv:"x_p50"`
	XP90  float64 `csv:"x_p90"`
	YMean float64 `csv:"y_mean"`
	YStd  float64 `csv:"y_std"`

	Finite bool `csv:"finite"`
}

// SpeciesStats summarizes one species over the interior cells.
type SpeciesStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// FieldStats computes per-species statistics over the interior of f.
// The buffers are reused across calls.
type FieldStats struct {
	values [3][]float64
}

// Compute returns statistics for G, X and Y in storage order.
func (fs *FieldStats) Compute(f model.Frame) [3]SpeciesStats {
	for i := range fs.values {
		fs.values[i] = fs.values[i][:0]
	}
	for row := 1; row < f.Rows-1; row++ {
		for col := 1; col < f.Cols-1; col++ {
			c := f.At(row, col)
			fs.values[0] = append(fs.values[0], c.G)
			fs.values[1] = append(fs.values[1], c.X)
			fs.values[2] = append(fs.values[2], c.Y)
		}
	}

	var out [3]SpeciesStats
	for i, v := range fs.values {
		out[i] = Summarize(v)
	}
	return out
}

// Summarize returns mean, population std and percentiles of values.
// values is sorted in place. Returns zeros if empty.
func Summarize(values []float64) SpeciesStats {
	if len(values) == 0 {
		return SpeciesStats{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	sort.Float64s(values)
	return SpeciesStats{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.10, stat.LinInterp, values, nil),
		P50:  stat.Quantile(0.50, stat.LinInterp, values, nil),
		P90:  stat.Quantile(0.90, stat.LinInterp, values, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStart),
		slog.Uint64("window_end", s.WindowEnd),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("steps", s.Steps),
		slog.Int("accepted", s.Accepted),
		slog.Float64("g_min", s.GMin),
		slog.Float64("g_max", s.GMax),
		slog.Float64("x_min", s.XMin),
		slog.Float64("x_max", s.XMax),
		slog.Float64("y_min", s.YMin),
		slog.Float64("y_max", s.YMax),
		slog.Float64("g_mean", s.GMean),
		slog.Float64("x_mean", s.XMean),
		slog.Float64("y_mean", s.YMean),
		slog.Bool("finite", s.Finite),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"sim_time", s.SimTime,
		"steps", s.Steps,
		"accepted", s.Accepted,
		"g_min", s.GMin,
		"g_max", s.GMax,
		"x_min", s.XMin,
		"x_max", s.XMax,
		"y_min", s.YMin,
		"y_max", s.YMax,
		"g_mean", s.GMean,
		"g_std", s.GStd,
		"x_mean", s.XMean,
		"x_std", s.XStd,
		"x_p50", s.XP50,
		"y_mean", s.YMean,
		"y_std", s.YStd,
	)
}
