package model

import "fmt"

// StencilFunc evaluates a discrete Laplacian at flat scalar index idx.
// rowStride is the number of scalars in one grid row.
type StencilFunc func(v []float64, idx, rowStride int) float64

// Stencil selects the Laplacian weighting.
type Stencil string

const (
	// StencilDiagonal weights axis neighbours 1 and diagonals 0.5 (center -6).
	StencilDiagonal Stencil = "diagonal"
	// StencilAdjacent is the plain 5-point stencil (center -4).
	StencilAdjacent Stencil = "adjacent"
)

// ParseStencil maps a config name to a Stencil. Empty means diagonal.
func ParseStencil(name string) (Stencil, error) {
	switch Stencil(name) {
	case "", StencilDiagonal:
		return StencilDiagonal, nil
	case StencilAdjacent:
		return StencilAdjacent, nil
	}
	return "", fmt.Errorf("model: unknown stencil %q", name)
}

// Func returns the Laplacian implementation for s.
func (s Stencil) Func() StencilFunc {
	if s == StencilAdjacent {
		return LaplacianAdjacent
	}
	return Laplacian
}

// Laplacian is the 9-point operator. No bounds checks: idx must belong to an
// interior cell so all eight neighbours exist.
func Laplacian(v []float64, idx, rowStride int) float64 {
	up := idx - rowStride
	down := idx + rowStride
	return -6*v[idx] +
		v[idx+Stride] + v[idx-Stride] + v[down] + v[up] +
		0.5*(v[down+Stride]+v[down-Stride]+v[up+Stride]+v[up-Stride])
}

// LaplacianAdjacent is the 5-point operator.
func LaplacianAdjacent(v []float64, idx, rowStride int) float64 {
	return -4*v[idx] +
		v[idx+Stride] + v[idx-Stride] + v[idx+rowStride] + v[idx-rowStride]
}
