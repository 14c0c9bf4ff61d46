package debugplot

import (
	"fmt"
	"io"

	"github.com/banshee-data/pointselect/internal/fsutil"
	"github.com/banshee-data/pointselect/internal/selection"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func (s *Snapshot) scatterData(pts []selection.Point2) []opts.ScatterData {
	out := make([]opts.ScatterData, 0, len(pts))
	for _, p := range pts {
		out = append(out, opts.ScatterData{Value: []interface{}{p.X, s.flipY(p.Y)}})
	}
	return out
}

// Chart builds an interactive go-echarts scatter chart for s.
func (s *Snapshot) Chart() *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Title, Theme: "dark", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Subtitle: s.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: s.Viewport.Width, Name: "X (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: s.Viewport.Height, Name: "Y (px, flipped)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("unselected", s.scatterData(s.Unselected),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#969696"}),
	)
	scatter.AddSeries("selected", s.scatterData(s.Selected),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#dc322f"}),
	)
	if outline := s.outline(); len(outline) > 0 {
		scatter.AddSeries(s.Region.Kind.String(), s.scatterData(outline[:len(outline)-1]),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#268bd2"}),
		)
	}
	return scatter
}

// RenderHTML writes a standalone HTML page to w.
func (s *Snapshot) RenderHTML(w io.Writer) error {
	if err := s.Chart().Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// SaveHTML writes the HTML page to path on the local filesystem.
func (s *Snapshot) SaveHTML(path string) error {
	return s.WriteHTML(fsutil.OSFileSystem{}, path)
}

// WriteHTML writes the HTML page into path on fsys, creating parent
// directories as needed.
func (s *Snapshot) WriteHTML(fsys fsutil.FileSystem, path string) error {
	return writeFile(fsys, path, func(w io.Writer) (int64, error) {
		return 0, s.RenderHTML(w)
	})
}
