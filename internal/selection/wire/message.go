// Package wire encodes selection requests and responses in protobuf wire
// format for the RPC boundary.
//
// Field layout (proto3):
//
//	message SelectRequest {
//	  string request_id      = 1;
//	  repeated float positions    = 2;
//	  repeated float model_matrix = 3;
//	  repeated float view_matrix  = 4;
//	  repeated float proj_matrix  = 5;
//	  uint32 viewport_width  = 6;
//	  uint32 viewport_height = 7;
//	  string mode            = 8; // "rect" or "polygon"
//	  repeated float rect    = 9;
//	  repeated float polygon = 10;
//	}
//
//	message SelectResponse {
//	  string request_id     = 1;
//	  bytes  mask           = 2;
//	  uint64 selected_count = 3;
//	  string error          = 4;
//	}
package wire

import (
	"errors"
	"fmt"

	"github.com/banshee-data/pointselect/internal/selection"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned when a buffer is not a valid encoding.
var ErrMalformed = errors.New("wire: malformed message")

// Message is implemented by every type carried over the boundary.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
}

const (
	reqRequestID      protowire.Number = 1
	reqPositions      protowire.Number = 2
	reqModelMatrix    protowire.Number = 3
	reqViewMatrix     protowire.Number = 4
	reqProjMatrix     protowire.Number = 5
	reqViewportWidth  protowire.Number = 6
	reqViewportHeight protowire.Number = 7
	reqMode           protowire.Number = 8
	reqRect           protowire.Number = 9
	reqPolygon        protowire.Number = 10

	respRequestID     protowire.Number = 1
	respMask          protowire.Number = 2
	respSelectedCount protowire.Number = 3
	// 4 is reserved; failures travel as gRPC status.
)

// SelectRequest is the request message of the Select RPC.
type SelectRequest struct {
	RequestID      string
	Positions      []float32
	ModelMatrix    []float32
	ViewMatrix     []float32
	ProjMatrix     []float32
	ViewportWidth  uint32
	ViewportHeight uint32
	Mode           string
	Rect           []float32
	Polygon        []float32
}

// SelectResponse is the response message of the Select RPC.
type SelectResponse struct {
	RequestID     string
	Mask          []byte
	SelectedCount uint64
}

var (
	_ Message = (*SelectRequest)(nil)
	_ Message = (*SelectResponse)(nil)
)

// NewSelectRequest builds the boundary form of a kernel request. Slices
// are shared with r, not copied.
func NewSelectRequest(id string, r *selection.Request) *SelectRequest {
	m := &SelectRequest{
		RequestID:      id,
		Positions:      r.Points,
		ModelMatrix:    r.Model,
		ViewMatrix:     r.View,
		ProjMatrix:     r.Proj,
		ViewportWidth:  r.Viewport.Width,
		ViewportHeight: r.Viewport.Height,
		Mode:           r.Region.Kind.String(),
	}
	switch r.Region.Kind {
	case selection.RegionRect:
		c := r.Region.Corners
		m.Rect = []float32{c[0].X, c[0].Y, c[1].X, c[1].Y}
	case selection.RegionPolygon:
		m.Polygon = make([]float32, 0, 2*len(r.Region.Vertices))
		for _, v := range r.Region.Vertices {
			m.Polygon = append(m.Polygon, v.X, v.Y)
		}
	}
	return m
}

// ToKernel converts m into a kernel request. The point buffer and
// matrices move into the result without copying; m should not be used
// afterwards. Errors wrap selection.ErrInvalidInput.
func (m *SelectRequest) ToKernel() (*selection.Request, error) {
	kind, err := selection.ParseRegionKind(m.Mode)
	if err != nil {
		return nil, err
	}

	var region selection.Region
	switch kind {
	case selection.RegionRect:
		region, err = selection.RectRegionFromSlice(m.Rect)
	case selection.RegionPolygon:
		region, err = selection.PolygonRegionFromSlice(m.Polygon)
	}
	if err != nil {
		return nil, err
	}

	return &selection.Request{
		Points:   m.Positions,
		Model:    m.ModelMatrix,
		View:     m.ViewMatrix,
		Proj:     m.ProjMatrix,
		Viewport: selection.Viewport{Width: m.ViewportWidth, Height: m.ViewportHeight},
		Region:   region,
	}, nil
}

// Marshal encodes m.
func (m *SelectRequest) Marshal() ([]byte, error) {
	size := 64 + 4*(len(m.Positions)+len(m.ModelMatrix)+len(m.ViewMatrix)+
		len(m.ProjMatrix)+len(m.Rect)+len(m.Polygon)) + len(m.RequestID) + len(m.Mode)
	b := make([]byte, 0, size)

	b = appendString(b, reqRequestID, m.RequestID)
	b = appendFloats(b, reqPositions, m.Positions)
	b = appendFloats(b, reqModelMatrix, m.ModelMatrix)
	b = appendFloats(b, reqViewMatrix, m.ViewMatrix)
	b = appendFloats(b, reqProjMatrix, m.ProjMatrix)
	b = appendVarint(b, reqViewportWidth, uint64(m.ViewportWidth))
	b = appendVarint(b, reqViewportHeight, uint64(m.ViewportHeight))
	b = appendString(b, reqMode, m.Mode)
	b = appendFloats(b, reqRect, m.Rect)
	b = appendFloats(b, reqPolygon, m.Polygon)
	return b, nil
}

// Unmarshal decodes b into m, replacing its contents. Decoded slices do
// not alias b.
func (m *SelectRequest) Unmarshal(b []byte) error {
	*m = SelectRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed("tag", n)
		}
		b = b[n:]

		switch num {
		case reqRequestID:
			m.RequestID, n = consumeString(typ, b)
		case reqPositions:
			m.Positions, n = consumeFloats(m.Positions, typ, b)
		case reqModelMatrix:
			m.ModelMatrix, n = consumeFloats(m.ModelMatrix, typ, b)
		case reqViewMatrix:
			m.ViewMatrix, n = consumeFloats(m.ViewMatrix, typ, b)
		case reqProjMatrix:
			m.ProjMatrix, n = consumeFloats(m.ProjMatrix, typ, b)
		case reqViewportWidth:
			m.ViewportWidth, n = consumeUint32(typ, b)
		case reqViewportHeight:
			m.ViewportHeight, n = consumeUint32(typ, b)
		case reqMode:
			m.Mode, n = consumeString(typ, b)
		case reqRect:
			m.Rect, n = consumeFloats(m.Rect, typ, b)
		case reqPolygon:
			m.Polygon, n = consumeFloats(m.Polygon, typ, b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return malformed(fmt.Sprintf("field %d", num), n)
		}
		b = b[n:]
	}
	return nil
}

// NewSelectResponse builds a successful response carrying mask. The mask
// is shared, not copied.
func NewSelectResponse(id string, mask selection.Mask) *SelectResponse {
	return &SelectResponse{
		RequestID:     id,
		Mask:          mask,
		SelectedCount: uint64(mask.Count()),
	}
}

// Marshal encodes m.
func (m *SelectResponse) Marshal() ([]byte, error) {
	b := make([]byte, 0, 32+len(m.Mask)+len(m.RequestID))
	b = appendString(b, respRequestID, m.RequestID)
	if len(m.Mask) > 0 {
		b = protowire.AppendTag(b, respMask, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Mask)
	}
	b = appendVarint(b, respSelectedCount, m.SelectedCount)
	return b, nil
}

// Unmarshal decodes b into m, replacing its contents.
func (m *SelectResponse) Unmarshal(b []byte) error {
	*m = SelectResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed("tag", n)
		}
		b = b[n:]

		switch num {
		case respRequestID:
			m.RequestID, n = consumeString(typ, b)
		case respMask:
			if typ != protowire.BytesType {
				return malformed("mask: unexpected wire type", 0)
			}
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				m.Mask = append(m.Mask[:0:0], v...)
			}
		case respSelectedCount:
			m.SelectedCount, n = consumeVarint(typ, b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return malformed(fmt.Sprintf("field %d", num), n)
		}
		b = b[n:]
	}
	return nil
}

// SelectionMask returns the decoded mask with kernel typing.
func (m *SelectResponse) SelectionMask() selection.Mask {
	if m.Mask == nil {
		return selection.Mask{}
	}
	return selection.Mask(m.Mask)
}

func malformed(what string, n int) error {
	switch n {
	case errWireType:
		return fmt.Errorf("%w: %s: unexpected wire type", ErrMalformed, what)
	case errOverflow:
		return fmt.Errorf("%w: %s: value out of range", ErrMalformed, what)
	}
	if n < 0 {
		if perr := protowire.ParseError(n); perr != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, what, perr)
		}
	}
	return fmt.Errorf("%w: %s", ErrMalformed, what)
}
