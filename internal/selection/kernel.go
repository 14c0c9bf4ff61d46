package selection

import "fmt"

// Viewport is the drawable size in pixels.
type Viewport struct {
	Width  uint32
	Height uint32
}

// Empty reports whether either dimension is zero. Selection against an
// empty viewport selects nothing.
func (v Viewport) Empty() bool {
	return v.Width == 0 || v.Height == 0
}

// Request bundles the inputs of one selection call.
type Request struct {
	// Points is a flat XYZ buffer; point i occupies [3i, 3i+1, 3i+2].
	Points []float32

	// Model, View and Proj are column-major 4x4 matrices (16 elements).
	Model []float32
	View  []float32
	Proj  []float32

	Viewport Viewport
	Region   Region
}

// PointCount returns the number of XYZ triples in the request.
func (r *Request) PointCount() int {
	return len(r.Points) / 3
}

// prepared holds validated kernel inputs.
type prepared struct {
	mvp    Mat4
	vp     Viewport
	region Region
	lo, hi Point2
}

// prepare validates r and derives the combined transform.
func (r *Request) prepare() (*prepared, error) {
	if len(r.Points)%3 != 0 {
		return nil, fmt.Errorf("%w: point buffer length %d is not a multiple of 3", ErrInvalidInput, len(r.Points))
	}
	model, err := Mat4FromSlice(r.Model)
	if err != nil {
		return nil, fmt.Errorf("model matrix: %w", err)
	}
	view, err := Mat4FromSlice(r.View)
	if err != nil {
		return nil, fmt.Errorf("view matrix: %w", err)
	}
	proj, err := Mat4FromSlice(r.Proj)
	if err != nil {
		return nil, fmt.Errorf("projection matrix: %w", err)
	}
	if err := r.Region.Validate(); err != nil {
		return nil, err
	}

	p := &prepared{
		mvp:    ComposeMVP(model, view, proj),
		vp:     r.Viewport,
		region: r.Region,
	}
	p.lo, p.hi = r.Region.Bounds()
	return p, nil
}

// Select classifies every point in r against r.Region and returns one
// mask byte per point. Structurally invalid requests fail with an error
// wrapping ErrInvalidInput and produce no mask.
func (r *Request) Select() (Mask, error) {
	mask := make(Mask, r.PointCount())
	if err := r.SelectInto(mask); err != nil {
		return nil, err
	}
	return mask, nil
}

// SelectInto is Select writing into a caller-supplied mask, which must
// hold exactly one byte per point. Every byte of mask is overwritten.
func (r *Request) SelectInto(mask Mask) error {
	p, err := r.prepare()
	if err != nil {
		return err
	}
	if len(mask) != r.PointCount() {
		return fmt.Errorf("%w: mask length %d, want %d", ErrInvalidInput, len(mask), r.PointCount())
	}
	p.classify(r.Points, mask, 0, len(mask))
	return nil
}

// Select is the positional form of Request.Select.
func Select(points, model, view, proj []float32, vp Viewport, region Region) (Mask, error) {
	req := Request{
		Points:   points,
		Model:    model,
		View:     view,
		Proj:     proj,
		Viewport: vp,
		Region:   region,
	}
	return req.Select()
}

// ProjectToScreen maps an object-space point through mvp to screen pixels.
// ok is false when the point has w == 0 or falls outside the depth range.
func ProjectToScreen(mvp Mat4, x, y, z float32, vp Viewport) (sx, sy float32, ok bool) {
	c := mvp.Mul4x1(Vec4{x, y, z, 1})
	w := c[3]
	if w == 0 {
		return 0, 0, false
	}
	ndcX := c[0] / w
	ndcY := c[1] / w
	ndcZ := c[2] / w
	if ndcZ < -1 || ndcZ > 1 {
		return 0, 0, false
	}

	sx = (ndcX*0.5 + 0.5) * float32(vp.Width)
	sy = (1 - (ndcY*0.5 + 0.5)) * float32(vp.Height)
	return sx, sy, true
}

// classify fills mask[start:end] for the matching points. Each index is
// written exactly once, so disjoint ranges may run concurrently.
func (p *prepared) classify(points []float32, mask Mask, start, end int) {
	if p.vp.Empty() {
		for i := start; i < end; i++ {
			mask[i] = 0
		}
		return
	}

	for i := start; i < end; i++ {
		idx := 3 * i
		sx, sy, ok := ProjectToScreen(p.mvp, points[idx], points[idx+1], points[idx+2], p.vp)
		if !ok {
			mask[i] = 0
			continue
		}

		var inside bool
		if p.region.Kind == RegionRect {
			inside = insideRect(p.lo, p.hi, sx, sy)
		} else {
			inside = insidePolygon(p.region.Vertices, sx, sy)
		}
		if inside {
			mask[i] = 1
		} else {
			mask[i] = 0
		}
	}
}
