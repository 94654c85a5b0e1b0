package telemetry

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/pthm-cable/modelg/model"
)

// History keeps the most recent extrema per species for terminal plots.
type History struct {
	size int
	lo   [3][]float64
	hi   [3][]float64
}

// NewHistory creates a history holding up to size points per series.
func NewHistory(size int) *History {
	if size < 2 {
		size = 2
	}
	return &History{size: size}
}

// Add appends one extrema record. Sentinel species are skipped.
func (h *History) Add(ext model.Extrema) {
	for i, s := range model.AllSpecies {
		if ext.Empty(s) {
			continue
		}
		lo, hi := ext.Range(s)
		h.lo[i] = pushBounded(h.lo[i], lo, h.size)
		h.hi[i] = pushBounded(h.hi[i], hi, h.size)
	}
}

// Len returns the number of points recorded for species s.
func (h *History) Len(s model.Species) int {
	return len(h.hi[s])
}

// Plot renders the max and min series of every species as ASCII charts.
func (h *History) Plot(height, width int) string {
	var b strings.Builder
	for i, s := range model.AllSpecies {
		if len(h.hi[i]) < 2 {
			continue
		}
		for _, series := range []struct {
			name string
			data []float64
		}{{"max", h.hi[i]}, {"min", h.lo[i]}} {
			if !finiteSeries(series.data) {
				fmt.Fprintf(&b, "%s %s: non-finite values, plot skipped\n", s, series.name)
				continue
			}
			b.WriteString(asciigraph.Plot(series.data,
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.Caption(fmt.Sprintf("%s %s", s, series.name))))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func pushBounded(v []float64, x float64, size int) []float64 {
	v = append(v, x)
	if len(v) > size {
		v = v[len(v)-size:]
	}
	return v
}

func finiteSeries(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
