// Package synthetic generates deterministic point clouds and cameras for
// benchmarks, demos and tests.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/banshee-data/pointselect/internal/selection"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape selects the point distribution.
type Shape int

const (
	// ShapeDisc spreads points over a ground disc with a few raised
	// objects, like a single LiDAR sweep.
	ShapeDisc Shape = iota
	// ShapeSphere spreads points uniformly inside a ball.
	ShapeSphere
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeDisc:
		return "disc"
	case ShapeSphere:
		return "sphere"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape parses "disc" or "sphere".
func ParseShape(s string) (Shape, error) {
	switch s {
	case "disc":
		return ShapeDisc, nil
	case "sphere":
		return ShapeSphere, nil
	default:
		return 0, fmt.Errorf("unknown shape %q", s)
	}
}

// Generator produces point clouds. The same Seed always yields the same
// cloud.
type Generator struct {
	// Configuration
	PointCount     int     // points per cloud
	AreaRadius     float64 // metres, radius of the disc or ball
	ObjectFraction float64 // disc only: share of points raised 0-2m
	Shape          Shape
	Seed           int64
}

// NewGenerator returns a generator with single-sweep defaults.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		PointCount:     10000,
		AreaRadius:     50.0,
		ObjectFraction: 0.1,
		Shape:          ShapeDisc,
		Seed:           seed,
	}
}

// Cloud returns a flat XYZ buffer of g.PointCount points.
func (g *Generator) Cloud() []float32 {
	rng := rand.New(rand.NewSource(g.Seed))
	n := g.PointCount
	if n < 0 {
		n = 0
	}
	out := make([]float32, 3*n)

	for i := 0; i < n; i++ {
		var x, y, z float64
		switch g.Shape {
		case ShapeSphere:
			x, y, z = ballPoint(rng, g.AreaRadius)
		default:
			// Uniform disc distribution
			angle := rng.Float64() * 2 * math.Pi
			r := math.Sqrt(rng.Float64()) * g.AreaRadius
			x = r * math.Cos(angle)
			y = r * math.Sin(angle)
			if rng.Float64() < g.ObjectFraction {
				z = rng.Float64() * 2.0 // 0-2m height
			} else {
				z = rng.Float64()*0.2 - 0.1 // -0.1 to 0.1m
			}
		}
		out[3*i], out[3*i+1], out[3*i+2] = float32(x), float32(y), float32(z)
	}
	return out
}

// ballPoint samples uniformly inside a ball of the given radius.
func ballPoint(rng *rand.Rand, radius float64) (x, y, z float64) {
	// Direction from a normalised Gaussian, radius by cube root for
	// uniform volume density.
	for {
		x, y, z = rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
		if n := math.Sqrt(x*x + y*y + z*z); n > 1e-9 {
			s := radius * math.Cbrt(rng.Float64()) / n
			return x * s, y * s, z * s
		}
	}
}

// Camera describes an orbit camera looking at the origin with Z up.
type Camera struct {
	Distance  float32 // metres from the origin
	Azimuth   float32 // radians around Z, from +X
	Elevation float32 // radians above the XY plane
	FovY      float32 // radians
	Near, Far float32
	Viewport  selection.Viewport
}

// DefaultCamera frames a disc of radius 50m from above and to one side.
func DefaultCamera(vp selection.Viewport) Camera {
	return Camera{
		Distance:  120,
		Azimuth:   -math.Pi / 2,
		Elevation: math.Pi / 4,
		FovY:      math.Pi / 3,
		Near:      0.5,
		Far:       500,
		Viewport:  vp,
	}
}

// Eye returns the camera position.
func (c Camera) Eye() selection.Vec3 {
	ce := float32(math.Cos(float64(c.Elevation)))
	return selection.Vec3{
		c.Distance * ce * float32(math.Cos(float64(c.Azimuth))),
		c.Distance * ce * float32(math.Sin(float64(c.Azimuth))),
		c.Distance * float32(math.Sin(float64(c.Elevation))),
	}
}

// Matrices returns column-major model, view and projection matrices.
func (c Camera) Matrices() (model, view, proj selection.Mat4) {
	aspect := float32(1)
	if c.Viewport.Height > 0 {
		aspect = float32(c.Viewport.Width) / float32(c.Viewport.Height)
	}
	model = mgl32.Ident4()
	view = selection.LookAt(c.Eye(), selection.Vec3{0, 0, 0}, selection.Vec3{0, 0, 1})
	proj = selection.Perspective(c.FovY, aspect, c.Near, c.Far)
	return model, view, proj
}

// Request builds a kernel request selecting region from points as seen
// by c.
func (c Camera) Request(points []float32, region selection.Region) *selection.Request {
	model, view, proj := c.Matrices()
	return &selection.Request{
		Points:   points,
		Model:    model[:],
		View:     view[:],
		Proj:     proj[:],
		Viewport: c.Viewport,
		Region:   region,
	}
}

// CentredRect returns a rectangle covering frac of each viewport axis,
// centred on the viewport.
func CentredRect(vp selection.Viewport, frac float32) selection.Region {
	w, h := float32(vp.Width), float32(vp.Height)
	dx, dy := w*frac/2, h*frac/2
	return selection.RectRegion(w/2-dx, h/2-dy, w/2+dx, h/2+dy)
}

// CentredPolygon returns a regular n-gon inscribed in a circle of radius
// frac times half the smaller viewport side.
func CentredPolygon(vp selection.Viewport, n int, frac float32) (selection.Region, error) {
	if n < 3 {
		return selection.Region{}, fmt.Errorf("%w: polygon needs at least 3 sides, got %d", selection.ErrInvalidRegion, n)
	}
	w, h := float64(vp.Width), float64(vp.Height)
	r := math.Min(w, h) / 2 * float64(frac)
	vs := make([]selection.Point2, n)
	for i := range vs {
		a := 2 * math.Pi * float64(i) / float64(n)
		vs[i] = selection.Point2{
			X: float32(w/2 + r*math.Cos(a)),
			Y: float32(h/2 + r*math.Sin(a)),
		}
	}
	return selection.PolygonRegion(vs)
}
