// Package analysis studies the homogeneous kinetics of a parameter set:
// the spatially uniform fixed point, its linear stability and the Turing
// dispersion relation of the linearized reaction-diffusion operator.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/modelg/model"
)

// ErrNoSteadyState indicates the search stopped away from a zero of the rates.
var ErrNoSteadyState = errors.New("analysis: no steady state found")

// residualTolerance is the largest rate norm accepted as a fixed point.
const residualTolerance = 1e-9

// SteadyState is a homogeneous fixed point of the kinetics.
type SteadyState struct {
	Conc       model.Conc
	Residual   float64 // Euclidean norm of the rates at Conc
	Iterations int     // BFGS major iterations
	Newton     int     // Newton polish iterations
}

// FindSteadyState searches for a uniform state with zero reaction rate,
// starting at guess. Diffusion plays no part for a uniform field.
func FindSteadyState(p model.Params, guess model.Conc) (SteadyState, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			r := model.Rates(toConc(x), &p)
			return 0.5 * (r.G*r.G + r.X*r.X + r.Y*r.Y)
		},
		Grad: func(grad, x []float64) {
			c := toConc(x)
			r := model.Rates(c, &p)
			j := Jacobian(c, p)
			// grad = J^T r
			g := mat.NewVecDense(3, grad)
			g.MulVec(j.T(), mat.NewVecDense(3, []float64{r.G, r.X, r.Y}))
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-14,
		MajorIterations:   1000,
	}

	x0 := []float64{guess.G, guess.X, guess.Y}
	res, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if res == nil {
		return SteadyState{}, fmt.Errorf("%w: %v", ErrNoSteadyState, err)
	}

	ss := SteadyState{Conc: toConc(res.X), Iterations: res.Stats.MajorIterations}
	ss.Conc, ss.Newton = polish(ss.Conc, p)
	ss.Residual = rateNorm(ss.Conc, p)
	if !(ss.Residual <= residualTolerance) {
		return ss, fmt.Errorf("%w: residual %.3g at %+v", ErrNoSteadyState, ss.Residual, ss.Conc)
	}
	return ss, nil
}

// polish refines c with a few Newton steps J·d = -r.
func polish(c model.Conc, p model.Params) (model.Conc, int) {
	const maxNewton = 8
	n := 0
	for ; n < maxNewton; n++ {
		r := model.Rates(c, &p)
		if math.Sqrt(r.G*r.G+r.X*r.X+r.Y*r.Y) < 1e-15 {
			break
		}
		var d mat.VecDense
		rhs := mat.NewVecDense(3, []float64{-r.G, -r.X, -r.Y})
		if err := d.SolveVec(Jacobian(c, p), rhs); err != nil {
			break
		}
		next := model.Conc{G: c.G + d.AtVec(0), X: c.X + d.AtVec(1), Y: c.Y + d.AtVec(2)}
		if rateNorm(next, p) >= rateNorm(c, p) {
			break
		}
		c = next
	}
	return c, n
}

// Jacobian returns d(rates)/d(G, X, Y) at c.
func Jacobian(c model.Conc, p model.Params) *mat.Dense {
	x2 := c.X * c.X
	xy := c.X * c.Y
	return mat.NewDense(3, 3, []float64{
		-(p.KR1 + p.K2), p.KR2, 0,
		p.K2, -(p.KR2 + p.K3*p.B + p.K5) - 3*p.KR4*x2 + 2*p.K4*xy, p.KR3*p.Z + p.K4*x2,
		0, p.K3*p.B + 3*p.KR4*x2 - 2*p.K4*xy, -p.KR3*p.Z - p.K4*x2,
	})
}

// Stability summarizes the eigenvalues of the kinetic Jacobian.
type Stability struct {
	Eigenvalues []complex128
	MaxReal     float64
	Stable      bool // every eigenvalue has negative real part
	Oscillatory bool // the dominant eigenvalue has an imaginary part
}

// Analyze computes the linear stability of the uniform state c.
func Analyze(c model.Conc, p model.Params) (Stability, error) {
	vals, err := eigenvalues(Jacobian(c, p))
	if err != nil {
		return Stability{}, err
	}
	s := Stability{Eigenvalues: vals, MaxReal: math.Inf(-1)}
	for _, v := range vals {
		if real(v) > s.MaxReal {
			s.MaxReal = real(v)
			s.Oscillatory = math.Abs(imag(v)) > 1e-12
		}
	}
	s.Stable = s.MaxReal < 0
	return s, nil
}

// DispersionPoint is the largest growth rate at one wavenumber.
type DispersionPoint struct {
	Q      float64
	Growth float64
}

// Dispersion samples the growth rate of Fourier modes exp(i q·r) around c for
// n wavenumbers in [0, qMax]: the largest real eigenvalue of J - q²·diag(D).
func Dispersion(c model.Conc, p model.Params, qMax float64, n int) ([]DispersionPoint, error) {
	if n < 2 {
		return nil, fmt.Errorf("analysis: need at least 2 wavenumbers, got %d", n)
	}
	qs := floats.Span(make([]float64, n), 0, qMax)
	j := Jacobian(c, p)
	out := make([]DispersionPoint, n)
	var m mat.Dense
	for i, q := range qs {
		m.CloneFrom(j)
		q2 := q * q
		m.Set(0, 0, m.At(0, 0)-q2*p.DG)
		m.Set(1, 1, m.At(1, 1)-q2*p.DX)
		m.Set(2, 2, m.At(2, 2)-q2*p.DY)
		vals, err := eigenvalues(&m)
		if err != nil {
			return nil, fmt.Errorf("analysis: q=%v: %w", q, err)
		}
		g := math.Inf(-1)
		for _, v := range vals {
			g = math.Max(g, real(v))
		}
		out[i] = DispersionPoint{Q: q, Growth: g}
	}
	return out, nil
}

// TuringPeak returns the fastest growing nonzero wavenumber and reports
// whether the uniform state is stable at q = 0 yet unstable at that peak.
func TuringPeak(points []DispersionPoint) (DispersionPoint, bool) {
	if len(points) < 2 {
		return DispersionPoint{}, false
	}
	growth := make([]float64, len(points)-1)
	for i, pt := range points[1:] {
		growth[i] = pt.Growth
	}
	peak := points[1+floats.MaxIdx(growth)]
	return peak, points[0].Growth < 0 && peak.Growth > 0
}

// StableTimeStep returns the explicit Euler diffusion limit for the 9-point
// stencil: the most negative stencil eigenvalue is -8 on a unit grid.
func StableTimeStep(p model.Params) float64 {
	d := math.Max(p.DG, math.Max(p.DX, p.DY))
	if d <= 0 {
		return math.Inf(1)
	}
	return 2 / (8 * d)
}

func eigenvalues(a mat.Matrix) ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil, errors.New("analysis: eigendecomposition failed")
	}
	vals := eig.Values(nil)
	for _, v := range vals {
		if cmplx.IsNaN(v) {
			return nil, errors.New("analysis: non-finite eigenvalue")
		}
	}
	return vals, nil
}

func rateNorm(c model.Conc, p model.Params) float64 {
	r := model.Rates(c, &p)
	return math.Sqrt(r.G*r.G + r.X*r.X + r.Y*r.Y)
}

func toConc(x []float64) model.Conc {
	return model.Conc{G: x[0], X: x[1], Y: x[2]}
}
