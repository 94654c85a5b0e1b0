// Package probes tracks user-placed sample points on the grid. Each probe is
// an ECS entity carrying its location and a running trace of the values it
// has observed.
package probes

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/modelg/model"
	"github.com/pthm-cable/modelg/telemetry"
)

// Label names a probe.
type Label struct {
	Name string
}

// Site is the grid cell a probe samples.
type Site struct {
	Row, Col int
}

// Trace accumulates the values observed at a site.
type Trace struct {
	Last     model.Conc
	Min, Max model.Conc
	Samples  int
}

func (t *Trace) observe(c model.Conc) {
	if t.Samples == 0 {
		t.Min, t.Max = c, c
	} else {
		t.Min = model.Conc{G: math.Min(t.Min.G, c.G), X: math.Min(t.Min.X, c.X), Y: math.Min(t.Min.Y, c.Y)}
		t.Max = model.Conc{G: math.Max(t.Max.G, c.G), X: math.Max(t.Max.X, c.X), Y: math.Max(t.Max.Y, c.Y)}
	}
	t.Last = c
	t.Samples++
}

// Probe is a read-only copy of one probe's state.
type Probe struct {
	Entity ecs.Entity
	Label  Label
	Site   Site
	Trace  Trace
}

// Set owns the probe world. It is not safe for concurrent use.
type Set struct {
	world  *ecs.World
	mapper *ecs.Map3[Label, Site, Trace]
	filter *ecs.Filter3[Label, Site, Trace]
	traces *ecs.Map1[Trace]

	samples []telemetry.ProbeSample
}

// NewSet creates an empty probe set.
func NewSet() *Set {
	world := ecs.NewWorld()
	return &Set{
		world:  world,
		mapper: ecs.NewMap3[Label, Site, Trace](world),
		filter: ecs.NewFilter3[Label, Site, Trace](world),
		traces: ecs.NewMap1[Trace](world),
	}
}

// Add places a probe at (row, col).
func (s *Set) Add(name string, row, col int) ecs.Entity {
	label := Label{Name: name}
	site := Site{Row: row, Col: col}
	trace := Trace{}
	return s.mapper.NewEntity(&label, &site, &trace)
}

// Remove deletes a probe. It reports false if e is not alive.
func (s *Set) Remove(e ecs.Entity) bool {
	if !s.world.Alive(e) {
		return false
	}
	s.world.RemoveEntity(e)
	return true
}

// Len returns the number of probes.
func (s *Set) Len() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Nearest returns the probe closest to (row, col) within radius cells.
func (s *Set) Nearest(row, col int, radius float64) (ecs.Entity, bool) {
	var (
		best  ecs.Entity
		found bool
	)
	bestDist := radius * radius
	query := s.filter.Query()
	for query.Next() {
		_, site, _ := query.Get()
		dr := float64(site.Row - row)
		dc := float64(site.Col - col)
		if d := dr*dr + dc*dc; d <= bestDist {
			best, bestDist, found = query.Entity(), d, true
		}
	}
	return best, found
}

// Retain removes probes outside a rows x cols grid and clears the traces of
// the rest. It returns the number removed.
func (s *Set) Retain(rows, cols int) int {
	var drop []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		_, site, trace := query.Get()
		if site.Row < 0 || site.Row >= rows || site.Col < 0 || site.Col >= cols {
			drop = append(drop, query.Entity())
			continue
		}
		*trace = Trace{}
	}
	for _, e := range drop {
		s.world.RemoveEntity(e)
	}
	return len(drop)
}

// Sample reads every probe from f and returns one row per probe. The returned
// slice is reused by the next call. Probes outside f are skipped.
func (s *Set) Sample(f model.Frame) []telemetry.ProbeSample {
	s.samples = s.samples[:0]
	query := s.filter.Query()
	for query.Next() {
		label, site, trace := query.Get()
		if site.Row < 0 || site.Row >= f.Rows || site.Col < 0 || site.Col >= f.Cols {
			continue
		}
		c := f.At(site.Row, site.Col)
		trace.observe(c)
		s.samples = append(s.samples, telemetry.ProbeSample{
			Iteration: f.Iteration,
			Probe:     label.Name,
			Row:       site.Row,
			Col:       site.Col,
			G:         c.G,
			X:         c.X,
			Y:         c.Y,
		})
	}
	return s.samples
}

// Trace returns the trace of probe e.
func (s *Set) Trace(e ecs.Entity) (Trace, bool) {
	if !s.world.Alive(e) {
		return Trace{}, false
	}
	return *s.traces.Get(e), true
}

// All returns a copy of every probe.
func (s *Set) All() []Probe {
	var out []Probe
	query := s.filter.Query()
	for query.Next() {
		label, site, trace := query.Get()
		out = append(out, Probe{Entity: query.Entity(), Label: *label, Site: *site, Trace: *trace})
	}
	return out
}
