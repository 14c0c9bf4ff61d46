// Package worker runs the selection kernel on isolated goroutines.
//
// A Worker accepts exactly one request at a time. Submitting a request
// moves its point buffer into the worker; the caller must not read or
// write it again. The mask comes back in a Response and belongs to the
// caller until Release is called.
//
// There is no mid-flight cancellation. A context only bounds how long the
// caller waits to hand a request over or to receive the result; a request
// that has started always runs to completion and an abandoned response is
// dropped.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/pointselect/internal/monitoring"
	"github.com/banshee-data/pointselect/internal/selection"
	"github.com/banshee-data/pointselect/internal/timeutil"
	"github.com/google/uuid"
)

// ErrWorkerClosed is returned when submitting to a closed worker or pool.
var ErrWorkerClosed = errors.New("worker: closed")

// Request is one unit of work.
type Request struct {
	// ID correlates the request with its response. A uuid is assigned when
	// empty.
	ID string

	Selection selection.Request
}

// Response carries the result of one Request.
type Response struct {
	ID      string
	Mask    selection.Mask
	Err     error
	Points  int
	Elapsed time.Duration
}

// Release hands the mask back for reuse. The mask must not be used after
// Release. Safe to call on a nil Response.
func (r *Response) Release() {
	if r == nil || r.Mask == nil {
		return
	}
	putMask(r.Mask)
	r.Mask = nil
}

// Options configures a Worker.
type Options struct {
	// Shards controls parallelism inside a single request.
	Shards selection.ShardOptions

	// SlowThreshold logs requests slower than this. Zero disables it.
	SlowThreshold time.Duration

	// Name labels log lines; defaults to "SelectWorker".
	Name string

	// Clock times requests; defaults to the wall clock.
	Clock timeutil.Clock
}

type envelope struct {
	ctx    context.Context
	req    *Request
	respCh chan *Response
}

// Worker owns one goroutine that processes requests sequentially.
type Worker struct {
	opts  Options
	clock timeutil.Clock
	logf  func(format string, v ...interface{})

	reqCh  chan envelope
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once

	processed atomic.Uint64
	failed    atomic.Uint64
}

// New starts a worker.
func New(opts Options) *Worker {
	name := opts.Name
	if name == "" {
		name = "SelectWorker"
	}
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	w := &Worker{
		opts:   opts,
		clock:  clock,
		logf:   monitoring.Component(name),
		reqCh:  make(chan envelope),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.doneCh)
	for {
		select {
		case env := <-w.reqCh:
			env.respCh <- w.process(env.ctx, env.req)
		case <-w.stopCh:
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, req *Request) *Response {
	start := w.clock.Now()
	n := req.Selection.PointCount()
	resp := &Response{ID: req.ID, Points: n}

	mask := getMask(n)
	// Started requests are never cancelled.
	err := req.Selection.SelectShardedInto(context.WithoutCancel(ctx), mask, w.opts.Shards)
	resp.Elapsed = w.clock.Since(start)

	if err != nil {
		putMask(mask)
		resp.Err = err
		w.failed.Add(1)
		w.logf("request %s rejected: %v", req.ID, err)
		return resp
	}

	resp.Mask = mask
	w.processed.Add(1)
	monitoring.SlowCall(w.logf, "selection "+req.ID, resp.Elapsed, w.opts.SlowThreshold)
	return resp
}

// Submit hands req to the worker and returns a channel that receives
// exactly one Response. It blocks until the worker is free to accept the
// request, ctx is done, or the worker is closed.
func (w *Worker) Submit(ctx context.Context, req *Request) (<-chan *Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	env := envelope{ctx: ctx, req: req, respCh: make(chan *Response, 1)}

	// Fail fast if already closed, even when the loop could still accept.
	select {
	case <-w.stopCh:
		return nil, ErrWorkerClosed
	default:
	}

	select {
	case w.reqCh <- env:
		return env.respCh, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.stopCh:
		return nil, ErrWorkerClosed
	}
}

// Do submits req and waits for its response. A kernel error is returned
// both as the error and in Response.Err.
func (w *Worker) Do(ctx context.Context, req *Request) (*Response, error) {
	ch, err := w.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	select {
	case resp := <-ch:
		return resp, resp.Err
	case <-ctx.Done():
		go discard(ch)
		return nil, ctx.Err()
	}
}

// Close stops the worker after any in-flight request finishes. It is safe
// to call multiple times.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// Processed returns the number of successfully completed requests.
func (w *Worker) Processed() uint64 { return w.processed.Load() }

// Failed returns the number of requests rejected by the kernel.
func (w *Worker) Failed() uint64 { return w.failed.Load() }

// discard drains an abandoned response and recycles its mask.
func discard(ch <-chan *Response) {
	if resp := <-ch; resp != nil {
		resp.Release()
	}
}
