package model

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func mustEngine(t *testing.T, p Params, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(p, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestNewEngineRejectsInvalidParams(t *testing.T) {
	p := DefaultParams(2, 10)
	if _, err := NewEngine(p); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
	p = DefaultParams(10, 10)
	p.DT = 0
	if _, err := NewEngine(p); !errors.Is(err, ErrInvalidTimeStep) {
		t.Errorf("expected ErrInvalidTimeStep, got %v", err)
	}
}

func TestFiveByFiveScenario(t *testing.T) {
	p := DefaultParams(5, 5)
	e := mustEngine(t, p)

	if err := e.Step(p, NoMask); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if e.Iteration() != 1 {
		t.Fatalf("iteration = %d, want 1", e.Iteration())
	}

	ok := e.View(func(f Frame) {
		for row := 0; row < 5; row++ {
			for col := 0; col < 5; col++ {
				got := f.At(row, col)
				want := Conc{G: 1, X: 1, Y: 1}
				if row >= 1 && row <= 3 && col >= 1 && col <= 3 {
					// dX = k2 G - (k-2 + k3 B + k5) X + k4 X^2 Y = -1
					want = Conc{G: 1, X: 0.5, Y: 1}
				}
				if got != want {
					t.Errorf("cell (%d,%d) = %+v, want %+v", row, col, got, want)
				}
			}
		}
		want := Extrema{GMin: 1, GMax: 1, XMin: 0.5, XMax: 0.5, YMin: 1, YMax: 1}
		if f.Extrema != want {
			t.Errorf("extrema = %+v, want %+v", f.Extrema, want)
		}
		if f.Accepted != 9 {
			t.Errorf("accepted = %d, want 9", f.Accepted)
		}
	})
	if !ok {
		t.Fatal("View reported uninitialized engine")
	}
}

func TestSteadyStateIsPreserved(t *testing.T) {
	p := DefaultParams(12, 12)
	p.DT = 0.1
	// Homogeneous fixed point of the default kinetics.
	p.G0, p.X0, p.Y0 = 2.0/3.0, 1.0/3.0, 3.0
	e := mustEngine(t, p)

	for i := 0; i < 20; i++ {
		if err := e.Step(p, NoMask); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	e.View(func(f Frame) {
		for i := 0; i < len(f.Cells); i += Stride {
			if math.Abs(f.Cells[i]-p.G0) > 1e-9 ||
				math.Abs(f.Cells[i+1]-p.X0) > 1e-9 ||
				math.Abs(f.Cells[i+2]-p.Y0) > 1e-9 {
				t.Fatalf("cell %d drifted to (%v, %v, %v)", i/Stride, f.Cells[i], f.Cells[i+1], f.Cells[i+2])
			}
		}
	})
}

func TestBordersNeverWritten(t *testing.T) {
	p := DefaultParams(9, 7)
	p.DT = 0.05
	p.G0, p.X0, p.Y0 = 1.25, 0.75, 2.5
	e := mustEngine(t, p)

	for i := 0; i < 120; i++ {
		if err := e.Step(p, NoMask); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	init := p.Initial()
	for slot := 0; slot < 2; slot++ {
		buf := e.Buffer(slot)
		for row := 0; row < p.Rows; row++ {
			for col := 0; col < p.Cols; col++ {
				if buf.Interior(row, col) {
					continue
				}
				if got := buf.At(row, col); got != init {
					t.Errorf("slot %d border (%d,%d) = %+v, want %+v", slot, row, col, got, init)
				}
			}
		}
	}
}

func TestMaskCoverage(t *testing.T) {
	p := DefaultParams(8, 8)

	t.Run("none updates every interior cell", func(t *testing.T) {
		e := mustEngine(t, p)
		if err := e.Step(p, NoMask); err != nil {
			t.Fatal(err)
		}
		e.View(func(f Frame) {
			if f.Accepted != 36 {
				t.Errorf("accepted = %d, want 36", f.Accepted)
			}
			for row := 1; row < p.Rows-1; row++ {
				for col := 1; col < p.Cols-1; col++ {
					if f.At(row, col).X == p.X0 {
						t.Errorf("cell (%d,%d) not updated", row, col)
					}
				}
			}
		})
	})

	t.Run("elliptic zero updates nothing", func(t *testing.T) {
		e := mustEngine(t, p)
		m := Mask{Shape: MaskElliptic, Threshold: 0}
		if err := e.Step(p, m); err != nil {
			t.Fatal(err)
		}
		e.View(func(f Frame) {
			if f.Accepted != 0 {
				t.Errorf("accepted = %d, want 0", f.Accepted)
			}
			for _, s := range AllSpecies {
				if !f.Extrema.Empty(s) {
					t.Errorf("species %s extrema not at sentinel: %+v", s, f.Extrema)
				}
			}
			init := p.Initial()
			for row := 0; row < p.Rows; row++ {
				for col := 0; col < p.Cols; col++ {
					if got := f.At(row, col); got != init {
						t.Errorf("cell (%d,%d) = %+v, want untouched %+v", row, col, got, init)
					}
				}
			}
		})
	})
}

func TestExtremaOrdering(t *testing.T) {
	p := DefaultParams(16, 16)
	p.DT = 0.05
	e := mustEngine(t, p)
	m := Mask{Shape: MaskElliptic, Threshold: 0.1}

	for i := 0; i < 30; i++ {
		if err := e.Step(p, m); err != nil {
			t.Fatal(err)
		}
		ext := e.Extrema()
		for _, s := range AllSpecies {
			lo, hi := ext.Range(s)
			if lo > hi {
				t.Fatalf("step %d species %s: min %v > max %v", i, s, lo, hi)
			}
		}
	}
}

func TestPingPongParity(t *testing.T) {
	p := DefaultParams(6, 6)
	e := mustEngine(t, p)
	initial := &e.Buffer(0).Cells[0]

	for n := 1; n <= 7; n++ {
		if err := e.Step(p, NoMask); err != nil {
			t.Fatal(err)
		}
		if got := e.Current(); got != n%2 {
			t.Errorf("after %d steps current = %d, want %d", n, got, n%2)
		}
		e.View(func(f Frame) {
			same := &f.Cells[0] == initial
			if same != (n%2 == 0) {
				t.Errorf("after %d steps committed buffer is initial = %v", n, same)
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	p := DefaultParams(40, 33)
	p.DT = 0.05
	m := Mask{Shape: MaskInnerElliptic, Threshold: 0.02}

	run := func(opts ...Option) (Field, Extrema) {
		e := mustEngine(t, p, opts...)
		for i := 0; i < 50; i++ {
			if err := e.Step(p, m); err != nil {
				t.Fatal(err)
			}
		}
		f, ext, _ := e.Snapshot()
		return f, ext
	}

	seqA, extA := run()
	seqB, extB := run()
	par, extP := run(WithWorkers(4))

	for i := range seqA.Cells {
		if math.Float64bits(seqA.Cells[i]) != math.Float64bits(seqB.Cells[i]) {
			t.Fatalf("sequential runs differ at %d: %v vs %v", i, seqA.Cells[i], seqB.Cells[i])
		}
		if math.Float64bits(seqA.Cells[i]) != math.Float64bits(par.Cells[i]) {
			t.Fatalf("parallel run differs at %d: %v vs %v", i, seqA.Cells[i], par.Cells[i])
		}
	}
	if extA != extB || extA != extP {
		t.Errorf("extrema differ: %+v / %+v / %+v", extA, extB, extP)
	}
}

func TestStepDimensionMismatch(t *testing.T) {
	p := DefaultParams(6, 6)
	e := mustEngine(t, p)

	q := DefaultParams(7, 6)
	if err := e.Step(q, NoMask); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if e.Iteration() != 0 || e.Current() != 0 {
		t.Errorf("failed step mutated state: iteration %d, current %d", e.Iteration(), e.Current())
	}
}

func TestZeroEngine(t *testing.T) {
	var e Engine
	if err := e.Step(DefaultParams(5, 5), NoMask); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if e.View(func(Frame) { t.Error("callback ran on zero engine") }) {
		t.Error("View on zero engine reported true")
	}
}

func TestResetRestartsAndResizes(t *testing.T) {
	p := DefaultParams(6, 6)
	e := mustEngine(t, p)
	for i := 0; i < 3; i++ {
		if err := e.Step(p, NoMask); err != nil {
			t.Fatal(err)
		}
	}

	q := DefaultParams(10, 8)
	q.G0 = 2
	if err := e.Reset(q); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if e.Iteration() != 0 || e.Current() != 0 {
		t.Errorf("reset left iteration %d, current %d", e.Iteration(), e.Current())
	}
	rows, cols := e.Size()
	if rows != 10 || cols != 8 {
		t.Errorf("size = %dx%d, want 10x8", rows, cols)
	}
	for slot := 0; slot < 2; slot++ {
		if got := e.Buffer(slot).At(4, 4); got != q.Initial() {
			t.Errorf("slot %d not refilled: %+v", slot, got)
		}
	}
	if err := e.Step(p, NoMask); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("old params accepted after resize: %v", err)
	}
}

func TestViewNeverTorn(t *testing.T) {
	p := DefaultParams(24, 24)
	p.DT = 0.05
	e := mustEngine(t, p, WithWorkers(2))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := e.Step(p, NoMask); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		e.View(func(f Frame) {
			if f.Iteration == 0 {
				return
			}
			got := NewExtrema()
			for row := 1; row < f.Rows-1; row++ {
				for col := 1; col < f.Cols-1; col++ {
					got.Observe(f.At(row, col))
				}
			}
			if got != f.Extrema {
				t.Errorf("iteration %d: buffer extrema %+v, recorded %+v", f.Iteration, got, f.Extrema)
			}
		})
	}
	wg.Wait()
}
