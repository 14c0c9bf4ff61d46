package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrPoolBusy is returned when every worker is busy and the wait queue is
// full.
var ErrPoolBusy = errors.New("worker: pool busy")

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Workers is the number of isolated workers. Values below 1 use 1.
	Workers int

	// QueueDepth is how many callers may wait for an idle worker before
	// Do returns ErrPoolBusy.
	QueueDepth int

	// Worker configures each worker.
	Worker Options
}

// Pool fans requests over a fixed set of workers. Requests are
// independent; each is handed to whichever worker is idle first.
type Pool struct {
	workers []*Worker
	idle    chan *Worker
	admit   chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool

	rejected atomic.Uint64
}

// PoolStats is a point-in-time view of pool activity.
type PoolStats struct {
	Workers   int
	Processed uint64
	Failed    uint64
	Rejected  uint64
}

// NewPool starts cfg.Workers workers.
func NewPool(cfg PoolConfig) *Pool {
	n := cfg.Workers
	if n < 1 {
		n = 1
	}
	depth := cfg.QueueDepth
	if depth < 0 {
		depth = 0
	}

	p := &Pool{
		workers: make([]*Worker, n),
		idle:    make(chan *Worker, n),
		admit:   make(chan struct{}, n+depth),
		stopCh:  make(chan struct{}),
	}
	for i := range p.workers {
		opts := cfg.Worker
		base := opts.Name
		if base == "" {
			base = "SelectWorker"
		}
		opts.Name = fmt.Sprintf("%s-%d", base, i)
		w := New(opts)
		p.workers[i] = w
		p.idle <- w
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Do runs req on the next idle worker and waits for the response. If ctx
// ends while the request is running, Do returns ctx.Err() and the worker
// finishes the request in the background before taking new work.
func (p *Pool) Do(ctx context.Context, req *Request) (*Response, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrWorkerClosed
	}
	select {
	case p.admit <- struct{}{}:
	default:
		p.mu.Unlock()
		p.rejected.Add(1)
		return nil, ErrPoolBusy
	}
	p.wg.Add(1)
	p.mu.Unlock()

	var w *Worker
	select {
	case w = <-p.idle:
	case <-ctx.Done():
		p.leave()
		return nil, ctx.Err()
	case <-p.stopCh:
		p.leave()
		return nil, ErrWorkerClosed
	}

	ch, err := w.Submit(ctx, req)
	if err != nil {
		p.release(w)
		return nil, err
	}

	select {
	case resp := <-ch:
		p.release(w)
		return resp, resp.Err
	case <-ctx.Done():
		go func() {
			discard(ch)
			p.release(w)
		}()
		return nil, ctx.Err()
	}
}

func (p *Pool) release(w *Worker) {
	p.idle <- w
	p.leave()
}

func (p *Pool) leave() {
	<-p.admit
	p.wg.Done()
}

// Stats reports totals across all workers.
func (p *Pool) Stats() PoolStats {
	s := PoolStats{Workers: len(p.workers), Rejected: p.rejected.Load()}
	for _, w := range p.workers {
		s.Processed += w.Processed()
		s.Failed += w.Failed()
	}
	return s
}

// Close rejects new requests, waits for admitted ones to finish and stops
// every worker. It is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
	for _, w := range p.workers {
		w.Close()
	}
}
