package rpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/banshee-data/pointselect/internal/monitoring"
	"github.com/banshee-data/pointselect/internal/selection"
	"github.com/banshee-data/pointselect/internal/selection/wire"
	"github.com/banshee-data/pointselect/internal/selection/worker"
	"github.com/banshee-data/pointselect/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

// startBufconn serves svc over an in-memory listener and returns a
// connected client.
func startBufconn(t *testing.T, svc SelectionServer) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(DefaultConfig(), svc)
	require.NoError(t, srv.Serve(lis))
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet", 0,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func newPoolService(t *testing.T, workers int) *Service {
	t.Helper()
	pool := worker.NewPool(worker.PoolConfig{Workers: workers, QueueDepth: 8})
	t.Cleanup(pool.Close)
	return NewService(pool, 5*time.Second)
}

func triangleRequest(screen ...[2]float32) *selection.Request {
	region, _ := selection.PolygonRegionFromSlice([]float32{0, 0, 400, 0, 200, 400})
	return &selection.Request{
		Points:   testutil.PointsAtScreen(800, 600, screen...),
		Model:    testutil.IdentityMatrix(),
		View:     testutil.IdentityMatrix(),
		Proj:     testutil.IdentityMatrix(),
		Viewport: selection.Viewport{Width: 800, Height: 600},
		Region:   region,
	}
}

func TestSelect_EndToEnd(t *testing.T) {
	client := startBufconn(t, newPoolService(t, 2))

	req := triangleRequest([2]float32{200, 100}, [2]float32{10, 300}, [2]float32{600, 100})
	want, err := req.Select()
	require.NoError(t, err)

	got, err := client.Select(context.Background(), req)
	require.NoError(t, err)
	if diff := cmp.Diff(selection.Mask{1, 0, 0}, got); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want, got)
}

func TestSelect_RectEndToEnd(t *testing.T) {
	client := startBufconn(t, newPoolService(t, 1))

	req := triangleRequest([2]float32{200, 200}, [2]float32{50, 50})
	req.Region = selection.RectRegion(300, 300, 100, 100)

	got, err := client.Select(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, selection.Mask{1, 0}, got)
}

func TestSelect_EmptyBuffer(t *testing.T) {
	client := startBufconn(t, newPoolService(t, 1))

	req := triangleRequest()
	got, err := client.Select(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestSelect_InvalidInput(t *testing.T) {
	client := startBufconn(t, newPoolService(t, 1))

	t.Run("bad matrix", func(t *testing.T) {
		req := triangleRequest([2]float32{200, 100})
		req.Proj = req.Proj[:15]
		_, err := client.Select(context.Background(), req)
		assert.ErrorIs(t, err, selection.ErrInvalidInput)
	})

	t.Run("ragged points", func(t *testing.T) {
		req := triangleRequest([2]float32{200, 100})
		req.Points = append(req.Points, 0.5)
		_, err := client.Select(context.Background(), req)
		assert.ErrorIs(t, err, selection.ErrInvalidInput)
	})

	t.Run("unknown mode", func(t *testing.T) {
		raw := wire.NewSelectRequest("", triangleRequest([2]float32{200, 100}))
		raw.Mode = "lasso"
		_, err := client.Invoke(context.Background(), raw)
		assert.ErrorIs(t, err, selection.ErrInvalidInput)
	})

	t.Run("short polygon", func(t *testing.T) {
		raw := wire.NewSelectRequest("", triangleRequest([2]float32{200, 100}))
		raw.Polygon = raw.Polygon[:4]
		_, err := client.Invoke(context.Background(), raw)
		assert.ErrorIs(t, err, selection.ErrInvalidInput)
	})
}

func TestInvoke_EchoesRequestID(t *testing.T) {
	client := startBufconn(t, newPoolService(t, 1))

	raw := wire.NewSelectRequest("frame-42", triangleRequest([2]float32{200, 100}, [2]float32{200, 500}))
	resp, err := client.Invoke(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "frame-42", resp.RequestID)
	assert.Equal(t, uint64(1), resp.SelectedCount)
	assert.Equal(t, []byte{1, 0}, resp.Mask)

	raw = wire.NewSelectRequest("", triangleRequest([2]float32{200, 100}))
	resp, err = client.Invoke(context.Background(), raw)
	require.NoError(t, err)
	_, perr := uuid.Parse(resp.RequestID)
	assert.NoError(t, perr)
	assert.Equal(t, raw.RequestID, resp.RequestID)
}

// fakeServer returns a fixed response or error.
type fakeServer struct {
	resp *wire.SelectResponse
	err  error
}

func (f *fakeServer) Select(ctx context.Context, req *wire.SelectRequest) (*wire.SelectResponse, error) {
	return f.resp, f.err
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		server *fakeServer
		check  func(t *testing.T, err error)
	}{
		{
			name:   "busy",
			server: &fakeServer{err: status.Error(codes.ResourceExhausted, "busy")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnavailable)
			},
		},
		{
			name:   "internal",
			server: &fakeServer{err: status.Error(codes.Internal, "boom")},
			check: func(t *testing.T, err error) {
				assert.Equal(t, codes.Internal, status.Code(err))
			},
		},
		{
			name:   "invalid argument",
			server: &fakeServer{err: status.Error(codes.InvalidArgument, "bad region")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, selection.ErrInvalidInput)
				assert.ErrorContains(t, err, "bad region")
			},
		},
		{
			name:   "short mask",
			server: &fakeServer{resp: &wire.SelectResponse{Mask: []byte{1}}},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "mask has 1 entries for 2 points")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startBufconn(t, tt.server)
			_, err := client.Select(context.Background(), triangleRequest([2]float32{200, 100}, [2]float32{10, 300}))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want codes.Code
	}{
		{selection.ErrInvalidRegion, codes.InvalidArgument},
		{worker.ErrPoolBusy, codes.ResourceExhausted},
		{worker.ErrWorkerClosed, codes.Unavailable},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{errors.New("other"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(statusFor(tt.err)), "error %v", tt.err)
	}
}

func TestService_ClosedPool(t *testing.T) {
	pool := worker.NewPool(worker.PoolConfig{Workers: 1})
	pool.Close()
	svc := NewService(pool, 0)

	_, err := svc.Select(context.Background(), wire.NewSelectRequest("x", triangleRequest([2]float32{200, 100})))
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestServer_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = "localhost:0" // Use dynamic port to avoid conflicts
	srv := NewServer(cfg, newPoolService(t, 1))

	assert.Nil(t, srv.Addr())
	require.NoError(t, srv.Start())
	assert.NotNil(t, srv.Addr())
	assert.Error(t, srv.Start(), "second start should fail")

	client, err := Dial(srv.Addr().String(), 0)
	require.NoError(t, err)
	defer client.Close()

	got, err := client.Select(context.Background(), triangleRequest([2]float32{200, 100}))
	require.NoError(t, err)
	assert.Equal(t, selection.Mask{1}, got)

	srv.Stop()
	srv.Stop()
}

func TestNewClient_CloseIsNoop(t *testing.T) {
	c := NewClient(nil)
	assert.NoError(t, c.Close())
}
