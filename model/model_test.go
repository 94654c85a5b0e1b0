package model

import (
	"errors"
	"math"
	"testing"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{"defaults", func(*Params) {}, nil},
		{"too few rows", func(p *Params) { p.Rows = 2 }, ErrInvalidGrid},
		{"too few cols", func(p *Params) { p.Cols = 0 }, ErrInvalidGrid},
		{"zero dt", func(p *Params) { p.DT = 0 }, ErrInvalidTimeStep},
		{"negative dt", func(p *Params) { p.DT = -0.1 }, ErrInvalidTimeStep},
		{"nan dt", func(p *Params) { p.DT = math.NaN() }, ErrInvalidTimeStep},
		{"inf dt", func(p *Params) { p.DT = math.Inf(1) }, ErrInvalidTimeStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams(10, 10)
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLaplacianUniformIsZero(t *testing.T) {
	f := NewField(5, 5, Conc{G: 3, X: 3, Y: 3})
	for _, st := range []Stencil{StencilDiagonal, StencilAdjacent} {
		lap := st.Func()
		for off := 0; off < Stride; off++ {
			if got := lap(f.Cells, f.Index(2, 2)+off, f.RowStride()); got != 0 {
				t.Errorf("%s: laplacian of uniform field = %v", st, got)
			}
		}
	}
}

func TestLaplacianWeights(t *testing.T) {
	f := NewField(5, 5, Conc{})
	stride := f.RowStride()

	tests := []struct {
		name         string
		row, col     int
		wantDiag     float64
		wantAdjacent float64
	}{
		{"center", 2, 2, -6, -4},
		{"axis", 1, 2, 1, 1},
		{"diagonal", 1, 1, 0.5, 0},
		{"outside", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.Fill(Conc{})
			f.Cells[f.Index(tt.row, tt.col)+1] = 1
			idx := f.Index(2, 2) + 1
			if got := Laplacian(f.Cells, idx, stride); got != tt.wantDiag {
				t.Errorf("Laplacian = %v, want %v", got, tt.wantDiag)
			}
			if got := LaplacianAdjacent(f.Cells, idx, stride); got != tt.wantAdjacent {
				t.Errorf("LaplacianAdjacent = %v, want %v", got, tt.wantAdjacent)
			}
			// Species channels stay separate.
			if got := Laplacian(f.Cells, idx-1, stride); got != 0 {
				t.Errorf("G channel saw X value: %v", got)
			}
		})
	}
}

func TestParseStencil(t *testing.T) {
	if s, err := ParseStencil(""); err != nil || s != StencilDiagonal {
		t.Errorf("empty name = %q, %v", s, err)
	}
	if s, err := ParseStencil("adjacent"); err != nil || s != StencilAdjacent {
		t.Errorf("adjacent = %q, %v", s, err)
	}
	if _, err := ParseStencil("hex"); err == nil {
		t.Error("expected error for unknown stencil")
	}
}

func TestRatesAtFixedPoint(t *testing.T) {
	p := DefaultParams(3, 3)
	r := Rates(Conc{G: 2.0 / 3.0, X: 1.0 / 3.0, Y: 3}, &p)
	if math.Abs(r.G) > 1e-12 || math.Abs(r.X) > 1e-12 || math.Abs(r.Y) > 1e-12 {
		t.Errorf("rates at fixed point = %+v, want zero", r)
	}
}

func TestReactIncludesDiffusion(t *testing.T) {
	p := DefaultParams(3, 3)
	p.DG, p.DX, p.DY = 2, 3, 4
	c := Conc{G: 2.0 / 3.0, X: 1.0 / 3.0, Y: 3}
	lap := Conc{G: 1, X: 1, Y: 1}
	got := React(c, lap, &p)
	want := Conc{G: c.G + 0.5*2, X: c.X + 0.5*3, Y: c.Y + 0.5*4}
	if math.Abs(got.G-want.G) > 1e-12 || math.Abs(got.X-want.X) > 1e-12 || math.Abs(got.Y-want.Y) > 1e-12 {
		t.Errorf("React = %+v, want %+v", got, want)
	}
}

func TestMaskAccept(t *testing.T) {
	// On a 10x10 grid, (col 2, row 8) maps to im = -0.3, jm = 0.3.
	tests := []struct {
		shape     MaskShape
		threshold float64
		want      bool
	}{
		{MaskNone, -100, true},
		{MaskElliptic, 0.2, true},
		{MaskElliptic, 0.1, false},
		{MaskInnerElliptic, 0.1, true},
		{MaskInnerElliptic, 0.2, false},
		{MaskVertical, 0, true},
		{MaskVertical, -0.4, false},
		{MaskHorizontal, 0.4, true},
		{MaskHorizontal, 0.2, false},
		{MaskRhombic, 0.1, true},
		{MaskRhombic, -0.1, false},
		{MaskTriangle, -0.7, true},
		{MaskTriangle, -0.5, false},
		{MaskShape("spiral"), 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			m := Mask{Shape: tt.shape, Threshold: tt.threshold}
			if got := m.Accept(2, 8, 10, 10); got != tt.want {
				t.Errorf("Accept with threshold %v = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestParseMaskShape(t *testing.T) {
	if got := ParseMaskShape(""); got != MaskNone {
		t.Errorf("empty = %q", got)
	}
	got := ParseMaskShape("spiral")
	if got.Known() {
		t.Error("spiral should not be a known shape")
	}
	if !(Mask{Shape: got}).Accept(1, 1, 3, 3) {
		t.Error("unknown shape should accept")
	}
	if n := (Mask{Shape: MaskElliptic}).AcceptedCount(20, 20); n != 0 {
		t.Errorf("elliptic 0 accepted %d cells", n)
	}
	if n := NoMask.AcceptedCount(20, 20); n != 18*18 {
		t.Errorf("none accepted %d cells, want %d", n, 18*18)
	}
}

func TestExtremaSentinelAndMerge(t *testing.T) {
	e := NewExtrema()
	for _, s := range AllSpecies {
		if !e.Empty(s) {
			t.Errorf("%s not empty", s)
		}
	}
	if e.Finite() {
		t.Error("sentinel should not be finite")
	}

	e.Observe(Conc{G: 1, X: 2, Y: 3})
	if e.GMin != 1 || e.GMax != 1 {
		t.Errorf("single observation should set min and max: %+v", e)
	}

	o := NewExtrema()
	o.Observe(Conc{G: -1, X: 5, Y: 3})
	e.Merge(o)
	want := Extrema{GMin: -1, GMax: 1, XMin: 2, XMax: 5, YMin: 3, YMax: 3}
	if e != want {
		t.Errorf("merge = %+v, want %+v", e, want)
	}
	if !e.Finite() {
		t.Error("merged record should be finite")
	}

	e.Observe(Conc{G: math.NaN(), X: 0, Y: 0})
	if !math.IsNaN(e.GMin) || !math.IsNaN(e.GMax) {
		t.Errorf("NaN should propagate: %+v", e)
	}
	if e.Finite() {
		t.Error("NaN record reported finite")
	}
}
