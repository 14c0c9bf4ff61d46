// Package debugplot renders a selection result for inspection: projected
// points coloured by mask, with the selection region outlined.
package debugplot

import (
	"fmt"

	"github.com/banshee-data/pointselect/internal/selection"
)

// DefaultMaxPoints caps how many points a snapshot keeps. Larger clouds
// are decimated with a fixed stride.
const DefaultMaxPoints = 20000

// Snapshot holds screen-space positions of the visible points of one
// selection.
type Snapshot struct {
	Title    string
	Viewport selection.Viewport
	Region   selection.Region

	Selected   []selection.Point2
	Unselected []selection.Point2

	// Stride is the decimation step used; 1 keeps every point.
	Stride int
	// Hidden counts sampled points that did not project onto the screen.
	Hidden int
}

// NewSnapshot projects the points of req and splits them by mask.
// maxPoints <= 0 uses DefaultMaxPoints.
func NewSnapshot(title string, req *selection.Request, mask selection.Mask, maxPoints int) (*Snapshot, error) {
	n := req.PointCount()
	if len(mask) != n {
		return nil, fmt.Errorf("%w: mask length %d for %d points", selection.ErrInvalidInput, len(mask), n)
	}
	model, err := selection.Mat4FromSlice(req.Model)
	if err != nil {
		return nil, err
	}
	view, err := selection.Mat4FromSlice(req.View)
	if err != nil {
		return nil, err
	}
	proj, err := selection.Mat4FromSlice(req.Proj)
	if err != nil {
		return nil, err
	}
	mvp := selection.ComposeMVP(model, view, proj)

	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	stride := 1
	if n > maxPoints {
		stride = (n + maxPoints - 1) / maxPoints
	}

	s := &Snapshot{
		Title:    title,
		Viewport: req.Viewport,
		Region:   req.Region,
		Stride:   stride,
	}
	for i := 0; i < n; i += stride {
		p := req.Points[3*i : 3*i+3]
		sx, sy, ok := selection.ProjectToScreen(mvp, p[0], p[1], p[2], req.Viewport)
		if !ok || sx < 0 || sy < 0 || sx > float32(req.Viewport.Width) || sy > float32(req.Viewport.Height) {
			s.Hidden++
			continue
		}
		pt := selection.Point2{X: sx, Y: sy}
		if mask.Selected(i) {
			s.Selected = append(s.Selected, pt)
		} else {
			s.Unselected = append(s.Unselected, pt)
		}
	}
	return s, nil
}

// outline returns the closed region boundary in screen space.
func (s *Snapshot) outline() []selection.Point2 {
	switch s.Region.Kind {
	case selection.RegionRect:
		lo, hi := s.Region.Bounds()
		return []selection.Point2{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}, lo}
	case selection.RegionPolygon:
		if len(s.Region.Vertices) == 0 {
			return nil
		}
		out := append([]selection.Point2(nil), s.Region.Vertices...)
		return append(out, s.Region.Vertices[0])
	default:
		return nil
	}
}

// flipY converts screen y (down) to plot y (up).
func (s *Snapshot) flipY(y float32) float64 {
	return float64(s.Viewport.Height) - float64(y)
}

func (s *Snapshot) subtitle() string {
	return fmt.Sprintf("%dx%d %s selected=%d unselected=%d hidden=%d stride=%d",
		s.Viewport.Width, s.Viewport.Height, s.Region.Kind,
		len(s.Selected), len(s.Unselected), s.Hidden, s.Stride)
}
