package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/pointselect/internal/selection"
	"github.com/banshee-data/pointselect/internal/selection/wire"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Client calls a remote SelectionService.
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
}

// Dial connects to target without transport security. maxMessageBytes
// bounds sent and received messages; zero uses the server default.
func Dial(target string, maxMessageBytes int, opts ...grpc.DialOption) (*Client, error) {
	if maxMessageBytes <= 0 {
		maxMessageBytes = DefaultConfig().MaxMessageBytes
	}
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageBytes),
			grpc.MaxCallSendMsgSize(maxMessageBytes),
		),
	}
	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", target, err)
	}
	return &Client{cc: conn, conn: conn}, nil
}

// NewClient wraps an existing connection. Close is a no-op for clients
// created this way.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close closes the underlying connection if the client owns it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Invoke sends a raw request. A request id is stamped when empty.
func (c *Client) Invoke(ctx context.Context, req *wire.SelectRequest) (*wire.SelectResponse, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	resp := new(wire.SelectResponse)
	if err := c.cc.Invoke(ctx, SelectMethod, req, resp, grpc.ForceCodec(wire.Codec{})); err != nil {
		return nil, fromStatus(err)
	}
	return resp, nil
}

// Select runs r remotely and returns the mask. Invalid input reported by
// the server satisfies errors.Is(err, selection.ErrInvalidInput).
func (c *Client) Select(ctx context.Context, r *selection.Request) (selection.Mask, error) {
	resp, err := c.Invoke(ctx, wire.NewSelectRequest("", r))
	if err != nil {
		return nil, err
	}
	mask := resp.SelectionMask()
	if len(mask) != r.PointCount() {
		return nil, fmt.Errorf("select: mask has %d entries for %d points", len(mask), r.PointCount())
	}
	return mask, nil
}

// ErrUnavailable is returned when the server refused work because it is
// busy or shutting down.
var ErrUnavailable = errors.New("rpc: selection service unavailable")

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", selection.ErrInvalidInput, st.Message())
	case codes.ResourceExhausted, codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return err
	}
}
