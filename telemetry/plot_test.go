package telemetry

import (
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/modelg/model"
)

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(5)
	for i := 0; i < 12; i++ {
		v := float64(i)
		h.Add(model.Extrema{GMin: v, GMax: v + 1, XMin: v, XMax: v, YMin: -v, YMax: v})
	}
	if got := h.Len(model.SpeciesX); got != 5 {
		t.Errorf("len = %d, want 5", got)
	}

	h.Add(model.NewExtrema())
	if got := h.Len(model.SpeciesG); got != 5 {
		t.Errorf("sentinel record should be skipped, len = %d", got)
	}

	out := h.Plot(4, 30)
	for _, caption := range []string{"G max", "X min", "Y max"} {
		if !strings.Contains(out, caption) {
			t.Errorf("plot missing %q", caption)
		}
	}
}

func TestHistorySkipsNonFinite(t *testing.T) {
	h := NewHistory(10)
	h.Add(model.Extrema{GMin: 1, GMax: 2, XMin: 1, XMax: 2, YMin: 1, YMax: 2})
	h.Add(model.Extrema{GMin: math.NaN(), GMax: math.NaN(), XMin: 1, XMax: 3, YMin: 1, YMax: 3})

	out := h.Plot(4, 20)
	if !strings.Contains(out, "G max: non-finite") {
		t.Errorf("expected non-finite notice, got:\n%s", out)
	}
	if !strings.Contains(out, "X max") {
		t.Error("finite series should still plot")
	}
}
