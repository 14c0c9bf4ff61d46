package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/banshee-data/pointselect/internal/monitoring"
	"github.com/banshee-data/pointselect/internal/selection"
	"github.com/banshee-data/pointselect/internal/selection/wire"
	"github.com/banshee-data/pointselect/internal/selection/worker"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service implements SelectionServer on top of a worker pool.
type Service struct {
	pool    *worker.Pool
	timeout time.Duration
	logf    func(format string, v ...interface{})
}

// NewService returns a Service that runs requests on pool. A positive
// timeout bounds how long each call waits for a result.
func NewService(pool *worker.Pool, timeout time.Duration) *Service {
	return &Service{
		pool:    pool,
		timeout: timeout,
		logf:    monitoring.Component("SelectRPC"),
	}
}

var _ SelectionServer = (*Service)(nil)

// Select runs one selection. The request's point buffer moves into the
// worker without copying.
func (s *Service) Select(ctx context.Context, req *wire.SelectRequest) (*wire.SelectResponse, error) {
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}

	kreq, err := req.ToKernel()
	if err != nil {
		s.logf("request %s: %v", id, err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.pool.Do(ctx, &worker.Request{ID: id, Selection: *kreq})
	if err != nil {
		s.logf("request %s: %v", id, err)
		return nil, statusFor(err)
	}

	// The pooled mask is recycled here; the response gets its own copy
	// because gRPC marshals after the handler returns.
	mask := append(selection.Mask(nil), resp.Mask...)
	resp.Release()
	return wire.NewSelectResponse(id, mask), nil
}

// statusFor maps worker and kernel errors to gRPC status errors.
func statusFor(err error) error {
	switch {
	case errors.Is(err, selection.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, worker.ErrPoolBusy):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, worker.ErrWorkerClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
