// Package render turns a summary into the density-grid figure and writes
// it as a PNG.
//
// Build produces a Figure: a plain model of every panel, its limits,
// labels and background, plus the shared chrome. Draw paints that model
// onto any gonum/plot canvas. Keeping the two apart lets callers inspect
// the layout without decoding pixels.
package render

import (
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/landuse.report/internal/dataset"
	"github.com/banshee-data/landuse.report/internal/density"
	"github.com/banshee-data/landuse.report/internal/layout"
	"github.com/banshee-data/landuse.report/internal/summary"
)

// Figure defaults.
const (
	DefaultWidth  = 24 * vg.Inch
	DefaultHeight = 12 * vg.Inch
	DefaultDPI    = 100

	Title         = "Comparisons and Distributions of Mean Land Use by Sex, Diet and Age"
	MeasureLabel  = "Mean Land Use (m²)"
	DietAxisLabel = "Diet Group"
	AgeAxisLabel  = "Age Group"
	DensityLabel  = "Density"
)

// Grid area and colorbar placement as figure fractions.
var (
	GridArea     = layout.Frame{X0: 0.125, Y0: 0.11, X1: 0.9, Y1: 0.88}
	ColorbarArea = layout.Frame{X0: 0.93, Y0: 0.3, X1: 0.945, Y1: 0.7}
)

// Options control figure construction.
type Options struct {
	Width, Height vg.Length
	DPI           int
	Title         string
	Gradient      *Gradient
	Accent        color.Color
}

// DefaultOptions returns the report defaults.
func DefaultOptions() Options {
	accent, _ := ParseHex(Accent)
	return Options{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		DPI:      DefaultDPI,
		Title:    Title,
		Gradient: DefaultGradient(),
		Accent:   accent,
	}
}

// Panel is one cell of the grid.
type Panel struct {
	Key   dataset.GroupKey
	Cell  layout.Cell
	Frame layout.Frame // data area as figure fractions

	XLim, YLim summary.Range

	// Background is nil for a group without observations.
	Background color.Color
	Curve      *density.Curve

	XTicks, YTicks bool
	XLabel, YLabel string
}

// HasData reports whether the panel's group has observations.
func (p Panel) HasData() bool { return p.Background != nil }

// Text is a free-standing label placed in figure fractions.
type Text struct {
	X, Y     float64
	Value    string
	Size     vg.Length
	Rotation float64 // radians
	XAlign   draw.XAlignment
	YAlign   draw.YAlignment
}

// Figure is the full drawable model.
type Figure struct {
	Panels   []Panel
	Ranges   summary.Ranges
	Colorbar Colorbar
	Texts    []Text
	Accent   color.Color
	Width    vg.Length
	Height   vg.Length
	DPI      int
}

// Colorbar describes the vertical gradient legend.
type Colorbar struct {
	Frame    layout.Frame
	Gradient *Gradient
	Label    string
}

// Build lays out every group of s onto the engine's grid.
func Build(s *summary.Summary, e *layout.Engine, opts Options) (*Figure, error) {
	opts = withDefaults(opts)

	keys := make([]dataset.GroupKey, len(s.Groups))
	for i, g := range s.Groups {
		keys[i] = g.Key
	}
	cells, err := e.Assign(keys)
	if err != nil {
		return nil, err
	}

	xlim := widen(s.Ranges.X)
	ylim := s.Ranges.Y
	if ylim.Max <= ylim.Min {
		ylim.Max = ylim.Min + 1
	}

	order := e.Ordering()
	fig := &Figure{
		Ranges: s.Ranges,
		Accent: opts.Accent,
		Width:  opts.Width,
		Height: opts.Height,
		DPI:    opts.DPI,
	}

	for _, g := range s.Groups {
		c := cells[g.Key]
		p := Panel{
			Key:   g.Key,
			Cell:  c,
			Frame: toFigure(e.Frame(c), GridArea),
			XLim:  xlim,
			YLim:  ylim,
			Curve: g.Curve,
		}
		if g.HasMean() {
			p.Background = opts.Gradient.Sample(s.Ranges.Color.Normalize(g.Mean))
		}
		if e.IsBottom(c) {
			p.XTicks = true
			p.XLabel = string(g.Key.Diet)
		}
		if e.IsLeft(c) {
			p.YTicks = true
			p.YLabel = string(g.Key.Age)
		}
		fig.Panels = append(fig.Panels, p)
	}

	cb := *opts.Gradient
	cr := colorbarRange(s.Ranges.Color)
	cb.SetMin(cr.Min)
	cb.SetMax(cr.Max)
	fig.Colorbar = Colorbar{Frame: ColorbarArea, Gradient: &cb, Label: MeasureLabel}

	fig.Texts = chrome(order, e, opts.Title)
	return fig, nil
}

// Lookup returns the panel for key.
func (f *Figure) Lookup(key dataset.GroupKey) (Panel, bool) {
	for _, p := range f.Panels {
		if p.Key == key {
			return p, true
		}
	}
	return Panel{}, false
}

// Populated returns the panels whose group has observations.
func (f *Figure) Populated() []Panel {
	var out []Panel
	for _, p := range f.Panels {
		if p.HasData() {
			out = append(out, p)
		}
	}
	return out
}

func chrome(order dataset.Ordering, e *layout.Engine, title string) []Text {
	texts := []Text{
		{X: 0.5, Y: 0.98, Value: title, Size: vg.Points(20), XAlign: draw.XCenter, YAlign: draw.YTop},
		{X: 0.1075, Y: 0.89, Value: DensityLabel, Size: vg.Points(10), XAlign: draw.XLeft, YAlign: draw.YBottom},
		{X: 0.90, Y: 0.09, Value: MeasureLabel, Size: vg.Points(10), XAlign: draw.XLeft, YAlign: draw.YBottom},
		{X: 0.49, Y: 0.03, Value: DietAxisLabel, Size: vg.Points(16), XAlign: draw.XLeft, YAlign: draw.YBottom},
		{X: 0.07, Y: 0.46, Value: AgeAxisLabel, Size: vg.Points(16), Rotation: math.Pi / 2, XAlign: draw.XLeft, YAlign: draw.YBottom},
	}
	for i, sex := range order.Sexes {
		x0, x1 := e.BlockSpan(i)
		x := GridArea.X0 + (x0+x1)/2*(GridArea.X1-GridArea.X0)
		texts = append(texts, Text{
			X: x, Y: 0.9, Value: displayName(string(sex)),
			Size: vg.Points(16), XAlign: draw.XCenter, YAlign: draw.YBottom,
		})
	}
	return texts
}

func displayName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// toFigure maps a unit frame into the area a, both in figure fractions.
func toFigure(f, a layout.Frame) layout.Frame {
	w, h := a.X1-a.X0, a.Y1-a.Y0
	return layout.Frame{
		X0: a.X0 + f.X0*w,
		X1: a.X0 + f.X1*w,
		Y0: a.Y0 + f.Y0*h,
		Y1: a.Y0 + f.Y1*h,
	}
}

// widen gives a zero-width range a unit span around its value.
func widen(r summary.Range) summary.Range {
	if r.Span() > 0 {
		return r
	}
	return summary.Range{Min: r.Min - 0.5, Max: r.Max + 0.5}
}

// colorbarRange keeps the legend drawable when every group shares one mean.
func colorbarRange(r summary.Range) summary.Range {
	if r.Span() > 0 {
		return r
	}
	return summary.Range{Min: r.Min, Max: r.Min + 1}
}

func withDefaults(o Options) Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Gradient == nil {
		o.Gradient = d.Gradient
	}
	if o.Accent == nil {
		o.Accent = d.Accent
	}
	return o
}

