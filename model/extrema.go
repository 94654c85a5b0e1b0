package model

import (
	"log/slog"
	"math"
)

// Extrema holds the per-step min/max of each species over accepted cells.
type Extrema struct {
	GMin, GMax float64
	XMin, XMax float64
	YMin, YMax float64
}

// NewExtrema returns the (+Inf, -Inf) sentinel record.
func NewExtrema() Extrema {
	pos, neg := math.Inf(1), math.Inf(-1)
	return Extrema{
		GMin: pos, GMax: neg,
		XMin: pos, XMax: neg,
		YMin: pos, YMax: neg,
	}
}

// Observe folds one cell into the record. Min and max are updated
// independently so a single cell may move both.
func (e *Extrema) Observe(c Conc) {
	e.GMin = math.Min(e.GMin, c.G)
	e.GMax = math.Max(e.GMax, c.G)
	e.XMin = math.Min(e.XMin, c.X)
	e.XMax = math.Max(e.XMax, c.X)
	e.YMin = math.Min(e.YMin, c.Y)
	e.YMax = math.Max(e.YMax, c.Y)
}

// Merge folds another record into e.
func (e *Extrema) Merge(o Extrema) {
	e.GMin = math.Min(e.GMin, o.GMin)
	e.GMax = math.Max(e.GMax, o.GMax)
	e.XMin = math.Min(e.XMin, o.XMin)
	e.XMax = math.Max(e.XMax, o.XMax)
	e.YMin = math.Min(e.YMin, o.YMin)
	e.YMax = math.Max(e.YMax, o.YMax)
}

// Range returns the min and max for species s.
func (e Extrema) Range(s Species) (lo, hi float64) {
	switch s {
	case SpeciesX:
		return e.XMin, e.XMax
	case SpeciesY:
		return e.YMin, e.YMax
	}
	return e.GMin, e.GMax
}

// Empty reports whether species s is still at the sentinel pair.
func (e Extrema) Empty(s Species) bool {
	lo, hi := e.Range(s)
	return math.IsInf(lo, 1) && math.IsInf(hi, -1)
}

// Finite reports whether all six values are finite numbers.
func (e Extrema) Finite() bool {
	for _, v := range [...]float64{e.GMin, e.GMax, e.XMin, e.XMax, e.YMin, e.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer for structured logging.
func (e Extrema) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("g_min", e.GMin),
		slog.Float64("g_max", e.GMax),
		slog.Float64("x_min", e.XMin),
		slog.Float64("x_max", e.XMax),
		slog.Float64("y_min", e.YMin),
		slog.Float64("y_max", e.YMax),
	)
}
