package model

import (
	"fmt"
	"math"
)

// Params is the complete Parameter Set read by one step.
// It is a value: the orchestration layer replaces it wholesale between steps.
type Params struct {
	// Forward rate constants k1..k5.
	K1, K2, K3, K4, K5 float64
	// Reverse rate constants k-1..k-5.
	KR1, KR2, KR3, KR4, KR5 float64

	// Diffusion coefficients per species.
	DG, DX, DY float64

	// Reservoir concentrations, constant during a run.
	A, B, Z, Omega float64

	// Uniform initial concentrations used to fill the buffers.
	G0, X0, Y0 float64

	DT   float64
	Rows int
	Cols int
}

// DefaultParams returns the classic symmetric configuration:
// every rate constant 1 except k-3 = k-4 = k-5 = 0, unit diffusion and
// reservoirs, uniform initial concentrations of 1 and dt = 0.5.
func DefaultParams(rows, cols int) Params {
	return Params{
		K1: 1, K2: 1, K3: 1, K4: 1, K5: 1,
		KR1: 1, KR2: 1,
		DG: 1, DX: 1, DY: 1,
		A: 1, B: 1, Z: 1, Omega: 1,
		G0: 1, X0: 1, Y0: 1,
		DT:   0.5,
		Rows: rows,
		Cols: cols,
	}
}

// Validate reports configuration errors that must be rejected before any step.
func (p Params) Validate() error {
	if p.Rows < 3 || p.Cols < 3 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, p.Rows, p.Cols)
	}
	if !(p.DT > 0) || math.IsInf(p.DT, 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeStep, p.DT)
	}
	return nil
}

// SameGrid reports whether q uses the same dimensions as p.
func (p Params) SameGrid(q Params) bool {
	return p.Rows == q.Rows && p.Cols == q.Cols
}

// Initial returns the uniform initial concentration triple.
func (p Params) Initial() Conc {
	return Conc{G: p.G0, X: p.X0, Y: p.Y0}
}

// Cells returns the number of grid cells.
func (p Params) Cells() int {
	return p.Rows * p.Cols
}
