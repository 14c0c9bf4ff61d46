package debugplot

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/pointselect/internal/fsutil"
	"github.com/banshee-data/pointselect/internal/selection"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	selectedColor   = color.RGBA{R: 220, G: 50, B: 47, A: 255}
	unselectedColor = color.RGBA{R: 150, G: 150, B: 150, A: 160}
	regionColor     = color.RGBA{R: 38, G: 139, B: 210, A: 255}
)

func (s *Snapshot) xys(pts []selection.Point2) plotter.XYs {
	out := make(plotter.XYs, 0, len(pts))
	for _, p := range pts {
		out = append(out, plotter.XY{X: float64(p.X), Y: s.flipY(p.Y)})
	}
	return out
}

// Plot builds the gonum plot for s.
func (s *Snapshot) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = "Screen X (px)"
	p.Y.Label.Text = fmt.Sprintf("Screen Y (px, flipped) - %s", s.subtitle())
	p.X.Min, p.X.Max = 0, float64(s.Viewport.Width)
	p.Y.Min, p.Y.Max = 0, float64(s.Viewport.Height)

	if len(s.Unselected) > 0 {
		sc, err := plotter.NewScatter(s.xys(s.Unselected))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = unselectedColor
		sc.GlyphStyle.Radius = vg.Points(1)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add("unselected", sc)
	}

	if len(s.Selected) > 0 {
		sc, err := plotter.NewScatter(s.xys(s.Selected))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = selectedColor
		sc.GlyphStyle.Radius = vg.Points(1.5)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add("selected", sc)
	}

	if outline := s.outline(); len(outline) > 0 {
		line, err := plotter.NewLine(s.xys(outline))
		if err != nil {
			return nil, err
		}
		line.Color = regionColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.Region.Kind.String(), line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// canvasSize keeps the viewport aspect ratio with the longer side at ten
// inches and neither side under one inch. An empty viewport gets a square
// canvas.
func (s *Snapshot) canvasSize() (w, h vg.Length) {
	const side = 10 * vg.Inch
	vp := s.Viewport
	if vp.Empty() {
		return side, side
	}
	w, h = side, side
	if vp.Width >= vp.Height {
		h = side * vg.Length(vp.Height) / vg.Length(vp.Width)
	} else {
		w = side * vg.Length(vp.Width) / vg.Length(vp.Height)
	}
	return max(w, vg.Inch), max(h, vg.Inch)
}

// SavePNG writes the plot to path on the local filesystem.
func (s *Snapshot) SavePNG(path string) error {
	return s.WritePNG(fsutil.OSFileSystem{}, path)
}

// WritePNG renders the plot as PNG into path on fsys, creating parent
// directories as needed.
func (s *Snapshot) WritePNG(fsys fsutil.FileSystem, path string) error {
	p, err := s.Plot()
	if err != nil {
		return err
	}
	w, h := s.canvasSize()
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return writeFile(fsys, path, wt.WriteTo)
}
