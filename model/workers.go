package model

import "sync"

// parallelRowThreshold is the minimum interior row count to use the pool.
// Below this a single goroutine is faster than the dispatch overhead.
const parallelRowThreshold = 16

// rowChunk is a band of interior rows assigned to one worker.
type rowChunk struct {
	worker     int
	start, end int
	src, dst   []float64
	params     *Params
	mask       Mask
	lap        StencilFunc
}

// workerPool holds persistent goroutines that sweep row bands.
// Every worker reads only src and writes disjoint rows of dst.
type workerPool struct {
	numWorkers int
	partials   []sweepResult

	workChan chan rowChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool(n int) *workerPool {
	return &workerPool{
		numWorkers: n,
		partials:   make([]sweepResult, n),
	}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case c, ok := <-p.workChan:
			if !ok {
				return
			}
			p.partials[c.worker] = sweepRows(c.src, c.dst, c.params, c.mask, c.lap, c.start, c.end)
			p.doneChan <- struct{}{}
		}
	}
}

// sweep dispatches interior rows in equal bands and merges the partial
// results in worker order.
func (p *workerPool) sweep(src, dst []float64, params *Params, m Mask, lap StencilFunc) sweepResult {
	if !p.running {
		p.start()
	}

	first, last := 1, params.Rows-1
	n := last - first
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := first + w*chunkSize
		end := start + chunkSize
		if end > last {
			end = last
		}
		if start >= end {
			p.partials[w] = sweepResult{extrema: NewExtrema()}
			continue
		}
		p.workChan <- rowChunk{
			worker: w,
			start:  start,
			end:    end,
			src:    src,
			dst:    dst,
			params: params,
			mask:   m,
			lap:    lap,
		}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}

	res := sweepResult{extrema: NewExtrema()}
	for _, part := range p.partials {
		res.extrema.Merge(part.extrema)
		res.accepted += part.accepted
	}
	return res
}
