package selection

import (
	"fmt"

	"github.com/chewxy/math32"
)

// RegionKind tags the variant held by a Region.
type RegionKind uint8

const (
	// RegionRect selects points inside an axis-aligned screen rectangle.
	RegionRect RegionKind = iota + 1
	// RegionPolygon selects points inside a closed screen polygon.
	RegionPolygon
)

// Mode strings used at the message boundary.
const (
	ModeRect    = "rect"
	ModePolygon = "polygon"
)

// polygonEdgeEpsilon replaces a zero denominator on horizontal polygon
// edges. Points lying exactly on such an edge may classify either way.
const polygonEdgeEpsilon float32 = 1e-8

// String returns the boundary mode name for k.
func (k RegionKind) String() string {
	switch k {
	case RegionRect:
		return ModeRect
	case RegionPolygon:
		return ModePolygon
	default:
		return fmt.Sprintf("RegionKind(%d)", uint8(k))
	}
}

// ParseRegionKind maps a boundary mode name to a RegionKind.
func ParseRegionKind(mode string) (RegionKind, error) {
	switch mode {
	case ModeRect:
		return RegionRect, nil
	case ModePolygon:
		return RegionPolygon, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, mode)
	}
}

// Point2 is a screen-space position in pixels, origin top-left.
type Point2 struct {
	X, Y float32
}

// Region is a screen-space selection area. Kind decides which of Corners
// or Vertices is meaningful.
type Region struct {
	Kind RegionKind

	// Corners are two opposite rectangle corners in any order.
	Corners [2]Point2

	// Vertices is an implicitly closed polygon outline.
	Vertices []Point2
}

// RectRegion returns a rectangle region spanning (x0,y0)-(x1,y1).
func RectRegion(x0, y0, x1, y1 float32) Region {
	return Region{
		Kind:    RegionRect,
		Corners: [2]Point2{{X: x0, Y: y0}, {X: x1, Y: y1}},
	}
}

// RectRegionFromSlice builds a rectangle from [x0, y0, x1, y1].
func RectRegionFromSlice(rect []float32) (Region, error) {
	if len(rect) != 4 {
		return Region{}, fmt.Errorf("%w: rect has %d values, want 4", ErrInvalidRegion, len(rect))
	}
	return RectRegion(rect[0], rect[1], rect[2], rect[3]), nil
}

// PolygonRegion returns a polygon region over vertices. The slice is
// copied.
func PolygonRegion(vertices []Point2) (Region, error) {
	if len(vertices) < 3 {
		return Region{}, fmt.Errorf("%w: polygon has %d vertices, need at least 3", ErrInvalidRegion, len(vertices))
	}
	vs := make([]Point2, len(vertices))
	copy(vs, vertices)
	return Region{Kind: RegionPolygon, Vertices: vs}, nil
}

// PolygonRegionFromSlice builds a polygon from a flat [x0, y0, x1, y1, ...]
// slice.
func PolygonRegionFromSlice(flat []float32) (Region, error) {
	if len(flat)%2 != 0 {
		return Region{}, fmt.Errorf("%w: polygon has odd coordinate count %d", ErrInvalidRegion, len(flat))
	}
	vs := make([]Point2, len(flat)/2)
	for i := range vs {
		vs[i] = Point2{X: flat[2*i], Y: flat[2*i+1]}
	}
	if len(vs) < 3 {
		return Region{}, fmt.Errorf("%w: polygon has %d vertices, need at least 3", ErrInvalidRegion, len(vs))
	}
	return Region{Kind: RegionPolygon, Vertices: vs}, nil
}

// Validate reports whether r can be classified against.
func (r Region) Validate() error {
	switch r.Kind {
	case RegionRect:
		return nil
	case RegionPolygon:
		if len(r.Vertices) < 3 {
			return fmt.Errorf("%w: polygon has %d vertices, need at least 3", ErrInvalidRegion, len(r.Vertices))
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown region kind %d", ErrInvalidRegion, uint8(r.Kind))
	}
}

// Bounds returns the normalised min and max corners of the region's
// screen-space bounding box.
func (r Region) Bounds() (lo, hi Point2) {
	switch r.Kind {
	case RegionRect:
		a, b := r.Corners[0], r.Corners[1]
		lo = Point2{X: math32.Min(a.X, b.X), Y: math32.Min(a.Y, b.Y)}
		hi = Point2{X: math32.Max(a.X, b.X), Y: math32.Max(a.Y, b.Y)}
	case RegionPolygon:
		if len(r.Vertices) == 0 {
			return lo, hi
		}
		lo, hi = r.Vertices[0], r.Vertices[0]
		for _, v := range r.Vertices[1:] {
			lo.X = math32.Min(lo.X, v.X)
			lo.Y = math32.Min(lo.Y, v.Y)
			hi.X = math32.Max(hi.X, v.X)
			hi.Y = math32.Max(hi.Y, v.Y)
		}
	}
	return lo, hi
}

// Contains reports whether the screen position (sx, sy) lies inside r.
// Rectangles are inclusive on all edges.
func (r Region) Contains(sx, sy float32) bool {
	switch r.Kind {
	case RegionRect:
		lo, hi := r.Bounds()
		return insideRect(lo, hi, sx, sy)
	case RegionPolygon:
		return insidePolygon(r.Vertices, sx, sy)
	default:
		return false
	}
}

func insideRect(lo, hi Point2, sx, sy float32) bool {
	return sx >= lo.X && sx <= hi.X && sy >= lo.Y && sy <= hi.Y
}

// insidePolygon is an even-odd ray cast along +X from (sx, sy).
func insidePolygon(vs []Point2, sx, sy float32) bool {
	inside := false
	j := len(vs) - 1
	for i := range vs {
		xi, yi := vs[i].X, vs[i].Y
		xj, yj := vs[j].X, vs[j].Y
		if (yi > sy) != (yj > sy) {
			den := yj - yi
			if den == 0 {
				den = polygonEdgeEpsilon
			}
			if sx < (xj-xi)*(sy-yi)/den+xi {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
