// Package preview renders an interactive HTML heatmap of group means laid
// out like the PNG grid, for viewing the report in a browser.
package preview

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/landuse.report/internal/fsutil"
	"github.com/banshee-data/landuse.report/internal/layout"
	"github.com/banshee-data/landuse.report/internal/monitoring"
	"github.com/banshee-data/landuse.report/internal/render"
	"github.com/banshee-data/landuse.report/internal/reporterr"
	"github.com/banshee-data/landuse.report/internal/summary"
)

// DefaultOutputPath is the preview file written next to the figure.
const DefaultOutputPath = "CW2_figure.html"

// Columns returns the x-axis categories, one per grid column. Spacer
// columns get a blank label.
func Columns(e *layout.Engine) []string {
	cols := make([]string, e.Cols())
	for c := range cols {
		k, ok := e.Key(layout.Cell{Row: 0, Col: c})
		if !ok {
			cols[c] = " "
			continue
		}
		cols[c] = fmt.Sprintf("%s %s", k.Sex, k.Diet)
	}
	return cols
}

// Rows returns the y-axis categories bottom-up, since echarts draws the
// first category at the bottom.
func Rows(e *layout.Engine) []string {
	ages := e.Ordering().Ages
	rows := make([]string, len(ages))
	for i, a := range ages {
		rows[len(ages)-1-i] = string(a)
	}
	return rows
}

// Data returns one heatmap cell per group. Groups without observations
// carry "-" so echarts leaves the cell blank.
func Data(s *summary.Summary, e *layout.Engine) ([]opts.HeatMapData, error) {
	data := make([]opts.HeatMapData, 0, len(s.Groups))
	for _, g := range s.Groups {
		c, err := e.Cell(g.Key)
		if err != nil {
			return nil, err
		}
		y := e.Rows() - 1 - c.Row
		var v interface{} = "-"
		if g.HasMean() {
			v = math.Round(g.Mean*100) / 100
		}
		data = append(data, opts.HeatMapData{Name: g.Key.String(), Value: [3]interface{}{c.Col, y, v}})
	}
	return data, nil
}

// Render writes the heatmap page to w.
func Render(w io.Writer, s *summary.Summary, e *layout.Engine) error {
	data, err := Data(s, e)
	if err != nil {
		return err
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Mean Land Use", Width: "1400px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: render.Title, Subtitle: fmt.Sprintf("observations=%d groups=%d", s.Total, len(s.Populated()))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: Columns(e), Name: render.DietAxisLabel, NameLocation: "middle", NameGap: 30, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: Rows(e), Name: render.AgeAxisLabel, NameLocation: "middle", NameGap: 50, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(s.Ranges.Color.Min),
			Max:        float32(s.Ranges.Color.Max),
			InRange:    &opts.VisualMapInRange{Color: render.DefaultStops},
		}),
	)
	hm.AddSeries("mean_land", data)

	return hm.Render(w)
}

// Write renders the preview to path atomically.
func Write(fsys fsutil.FileSystem, path string, s *summary.Summary, e *layout.Engine) error {
	if path == "" {
		path = DefaultOutputPath
	}
	err := fsutil.WriteFileAtomic(fsys, path, func(w io.Writer) error {
		return Render(w, s, e)
	})
	if err != nil {
		var le *reporterr.LayoutError
		if errors.As(err, &le) {
			return err
		}
		return &reporterr.IOError{Op: "write preview", Path: path, Err: err}
	}
	monitoring.Logf("wrote preview %s", path)
	return nil
}
