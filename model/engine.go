// Package model implements the Model G reaction-diffusion integrator:
// the parameter set, the ping-pong field buffers, the Laplacian stencils,
// the reaction kernel, the spatial mask and the step engine.
package model

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// frame is the committed state published after each step.
type frame struct {
	slot       int
	rows, cols int
	extrema    Extrema
	accepted   int
	iteration  uint64
}

// Frame is a consistent read-only view of the last committed step.
// Cells aliases engine memory and is only valid inside the View callback.
type Frame struct {
	Rows, Cols int
	Cells      []float64
	Extrema    Extrema
	Accepted   int
	Iteration  uint64
	Slot       int
}

// At returns the triple stored at (row, col).
func (f Frame) At(row, col int) Conc {
	return cellAt(f.Cells, CellIndex(row, col, f.Cols))
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers splits each sweep across n goroutines. n <= 1 keeps the sweep
// on the calling goroutine; a negative n uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithStencil selects the Laplacian used by the sweep.
func WithStencil(s Stencil) Option {
	return func(e *Engine) { e.stencil = s }
}

// Engine owns the buffer pair and performs explicit time steps.
//
// Step and Reset are serialized internally. View may be called from any
// goroutine; it always observes one complete committed buffer together with
// the extrema computed for it.
type Engine struct {
	stepMu sync.Mutex

	bufs   [2]Field
	slotMu [2]sync.RWMutex

	committed atomic.Pointer[frame]

	stencil Stencil
	lap     StencilFunc
	workers int
	pool    *workerPool
}

// NewEngine validates p and allocates buffers filled with p's initial
// concentrations.
func NewEngine(p Params, opts ...Option) (*Engine, error) {
	e := &Engine{stencil: StencilDiagonal}
	for _, opt := range opts {
		opt(e)
	}
	e.lap = e.stencil.Func()
	if e.workers < 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.workers > 1 {
		e.pool = newWorkerPool(e.workers)
	}
	if err := e.Reset(p); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset reallocates both buffers for p's grid, refills them with p's initial
// concentrations and sets the iteration counter back to zero.
func (e *Engine) Reset(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	e.slotMu[0].Lock()
	e.slotMu[1].Lock()
	init := p.Initial()
	for i := range e.bufs {
		if e.bufs[i].Rows == p.Rows && e.bufs[i].Cols == p.Cols {
			e.bufs[i].Fill(init)
		} else {
			e.bufs[i] = NewField(p.Rows, p.Cols, init)
		}
	}
	e.committed.Store(&frame{
		slot:    0,
		rows:    p.Rows,
		cols:    p.Cols,
		extrema: NewExtrema(),
	})
	e.slotMu[1].Unlock()
	e.slotMu[0].Unlock()
	return nil
}

// Step performs exactly one explicit time step with p and mask m.
// It returns ErrNotInitialized for a zero Engine and ErrDimensionMismatch if
// p does not describe the allocated grid; in both cases nothing is mutated.
func (e *Engine) Step(p Params, m Mask) error {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	cur := e.committed.Load()
	if cur == nil {
		return ErrNotInitialized
	}
	if p.Rows != cur.rows || p.Cols != cur.cols {
		return fmt.Errorf("%w: params %dx%d, buffers %dx%d",
			ErrDimensionMismatch, p.Rows, p.Cols, cur.rows, cur.cols)
	}

	read, write := cur.slot, 1-cur.slot
	src := e.bufs[read].Cells
	dst := e.bufs[write].Cells

	e.slotMu[write].Lock()
	var res sweepResult
	if e.pool != nil && p.Rows-2 >= parallelRowThreshold {
		res = e.pool.sweep(src, dst, &p, m, e.lap)
	} else {
		res = sweepRows(src, dst, &p, m, e.lap, 1, p.Rows-1)
	}
	e.slotMu[write].Unlock()

	e.committed.Store(&frame{
		slot:      write,
		rows:      cur.rows,
		cols:      cur.cols,
		extrema:   res.extrema,
		accepted:  res.accepted,
		iteration: cur.iteration + 1,
	})
	return nil
}

// View calls fn with the last committed frame. It reports false if the
// engine was never initialized.
func (e *Engine) View(fn func(Frame)) bool {
	for {
		f := e.committed.Load()
		if f == nil {
			return false
		}
		mu := &e.slotMu[f.slot]
		mu.RLock()
		if e.committed.Load() != f {
			// A newer step or a reset landed while we waited; retry.
			mu.RUnlock()
			continue
		}
		fn(Frame{
			Rows:      f.rows,
			Cols:      f.cols,
			Cells:     e.bufs[f.slot].Cells,
			Extrema:   f.extrema,
			Accepted:  f.accepted,
			Iteration: f.iteration,
			Slot:      f.slot,
		})
		mu.RUnlock()
		return true
	}
}

// Snapshot copies the committed buffer into a new Field.
func (e *Engine) Snapshot() (Field, Extrema, uint64) {
	var (
		out  Field
		ext  Extrema
		iter uint64
	)
	e.View(func(f Frame) {
		out = Field{Rows: f.Rows, Cols: f.Cols, Cells: append([]float64(nil), f.Cells...)}
		ext = f.Extrema
		iter = f.Iteration
	})
	return out, ext, iter
}

// Iteration returns the number of completed steps since the last reset.
func (e *Engine) Iteration() uint64 {
	if f := e.committed.Load(); f != nil {
		return f.iteration
	}
	return 0
}

// Extrema returns the record of the last completed step.
func (e *Engine) Extrema() Extrema {
	if f := e.committed.Load(); f != nil {
		return f.extrema
	}
	return NewExtrema()
}

// Current returns the slot index (0 or 1) of the committed buffer.
func (e *Engine) Current() int {
	if f := e.committed.Load(); f != nil {
		return f.slot
	}
	return 0
}

// Buffer exposes the field stored in slot. Callers must not read it while
// steps are running on another goroutine; use View instead.
func (e *Engine) Buffer(slot int) Field {
	return e.bufs[slot&1]
}

// Size returns the allocated grid dimensions.
func (e *Engine) Size() (rows, cols int) {
	if f := e.committed.Load(); f != nil {
		return f.rows, f.cols
	}
	return 0, 0
}

// Stencil returns the Laplacian weighting in use.
func (e *Engine) Stencil() Stencil { return e.stencil }

// Workers returns the number of sweep goroutines (1 when sequential).
func (e *Engine) Workers() int {
	if e.pool == nil {
		return 1
	}
	return e.pool.numWorkers
}

// Close stops the worker goroutines, if any.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.stop()
	}
}

// sweepResult carries the per-sweep bookkeeping.
type sweepResult struct {
	extrema  Extrema
	accepted int
}

// sweepRows updates interior rows [r0, r1) from src into dst.
// Border columns 0 and Cols-1 are never touched.
func sweepRows(src, dst []float64, p *Params, m Mask, lap StencilFunc, r0, r1 int) sweepResult {
	res := sweepResult{extrema: NewExtrema()}
	stride := Stride * p.Cols
	for row := r0; row < r1; row++ {
		base := row * stride
		for col := 1; col < p.Cols-1; col++ {
			if !m.Accept(col, row, p.Rows, p.Cols) {
				continue
			}
			idx := base + Stride*col
			cur := Conc{G: src[idx], X: src[idx+1], Y: src[idx+2]}
			l := Conc{
				G: lap(src, idx, stride),
				X: lap(src, idx+1, stride),
				Y: lap(src, idx+2, stride),
			}
			next := React(cur, l, p)
			dst[idx] = next.G
			dst[idx+1] = next.X
			dst[idx+2] = next.Y
			res.extrema.Observe(next)
			res.accepted++
		}
	}
	return res
}
