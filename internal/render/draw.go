package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/landuse.report/internal/density"
	"github.com/banshee-data/landuse.report/internal/layout"
)

var (
	borderStyle = draw.LineStyle{Color: color.NRGBA{A: 51}, Width: vg.Points(1)}
	tickStyle   = draw.LineStyle{Color: color.Black, Width: vg.Points(0.8)}
)

// Draw paints the figure onto c, which should span the whole figure.
func (f *Figure) Draw(c draw.Canvas) {
	for _, p := range f.Panels {
		pl := f.panelPlot(p)
		pl.Draw(fitDataArea(pl, c, frameRect(c, p.Frame)))
	}
	f.drawColorbar(c)
	for _, t := range f.Texts {
		c.FillText(textStyle(t.Size, t.Rotation, t.XAlign, t.YAlign), framePoint(c, t.X, t.Y), t.Value)
	}
}

func (f *Figure) panelPlot(p Panel) *plot.Plot {
	pl := plot.New()
	pl.BackgroundColor = color.Transparent
	pl.X.Padding = 0
	pl.Y.Padding = 0

	pl.Add(background{color: p.Background})
	if p.Curve != nil {
		pl.Add(area{curve: p.Curve, color: f.Accent})
	}
	pl.Add(border{})

	pl.X.Min, pl.X.Max = p.XLim.Min, p.XLim.Max
	pl.Y.Min, pl.Y.Max = p.YLim.Min, p.YLim.Max

	if p.XTicks {
		pl.X.Label.Text = p.XLabel
		pl.X.Label.TextStyle.Font.Size = vg.Points(12)
		pl.X.Tick.Label.Font.Size = vg.Points(10)
	} else {
		pl.HideX()
	}
	if p.YTicks {
		pl.Y.Label.Text = p.YLabel
		pl.Y.Label.TextStyle.Font.Size = vg.Points(12)
		pl.Y.Tick.Label.Font.Size = vg.Points(10)
	} else {
		pl.HideY()
	}
	return pl
}

// drawColorbar draws the gradient legend with ticks and label on its right.
func (f *Figure) drawColorbar(c draw.Canvas) {
	cb := f.Colorbar
	pl := plot.New()
	pl.BackgroundColor = color.Transparent
	pl.X.Padding = 0
	pl.Y.Padding = 0
	pl.Add(&plotter.ColorBar{ColorMap: cb.Gradient, Vertical: true})
	pl.Add(border{})
	pl.HideAxes()

	want := frameRect(c, cb.Frame)
	pl.Draw(fitDataArea(pl, c, want))

	lo, hi := cb.Gradient.Min(), cb.Gradient.Max()
	tickLen := vg.Points(3.5)
	labelStyle := textStyle(vg.Points(10), 0, draw.XLeft, draw.YCenter)
	var widest vg.Length
	for _, t := range (plot.DefaultTicks{}).Ticks(lo, hi) {
		if t.IsMinor() || t.Value < lo || t.Value > hi {
			continue
		}
		y := want.Min.Y + vg.Length((t.Value-lo)/(hi-lo))*want.Size().Y
		c.StrokeLine2(tickStyle, want.Max.X, y, want.Max.X+tickLen, y)
		c.FillText(labelStyle, vg.Point{X: want.Max.X + 2*tickLen, Y: y}, t.Label)
		widest = vg.Length(math.Max(float64(widest), float64(labelStyle.Width(t.Label))))
	}

	x := want.Max.X + 3*tickLen + widest + vg.Points(6)
	labelStyle = textStyle(vg.Points(16), math.Pi/2, draw.XCenter, draw.YBottom)
	c.FillText(labelStyle, vg.Point{X: x, Y: (want.Min.Y + want.Max.Y) / 2}, cb.Label)
}

// fitDataArea returns a canvas on which p's data area lands on want.
// Axes and tick labels spill outside want, the way subplots with zero
// spacing share edges. Glyph padding depends on the canvas size, so the
// offset is refined a few times.
func fitDataArea(p *plot.Plot, c draw.Canvas, want vg.Rectangle) draw.Canvas {
	outer := want
	for i := 0; i < 4; i++ {
		got := p.DataCanvas(sub(c, outer)).Rectangle
		dx0, dy0 := got.Min.X-want.Min.X, got.Min.Y-want.Min.Y
		dx1, dy1 := got.Max.X-want.Max.X, got.Max.Y-want.Max.Y
		if near(dx0) && near(dy0) && near(dx1) && near(dy1) {
			break
		}
		outer.Min.X -= dx0
		outer.Min.Y -= dy0
		outer.Max.X -= dx1
		outer.Max.Y -= dy1
	}
	return sub(c, outer)
}

func near(d vg.Length) bool { return math.Abs(float64(d)) < 0.01 }

func sub(c draw.Canvas, r vg.Rectangle) draw.Canvas {
	return draw.Canvas{Canvas: c.Canvas, Rectangle: r}
}

func frameRect(c draw.Canvas, f layout.Frame) vg.Rectangle {
	return vg.Rectangle{Min: framePoint(c, f.X0, f.Y0), Max: framePoint(c, f.X1, f.Y1)}
}

func framePoint(c draw.Canvas, x, y float64) vg.Point {
	size := c.Rectangle.Size()
	return vg.Point{
		X: c.Min.X + vg.Length(x)*size.X,
		Y: c.Min.Y + vg.Length(y)*size.Y,
	}
}

func textStyle(size vg.Length, rot float64, xa draw.XAlignment, ya draw.YAlignment) text.Style {
	return text.Style{
		Color:    color.Black,
		Font:     font.From(plot.DefaultFont, size),
		Rotation: rot,
		XAlign:   xa,
		YAlign:   ya,
		Handler:  plot.DefaultTextHandler,
	}
}

func rectPoints(r vg.Rectangle) []vg.Point {
	return []vg.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}}
}

// background fills the whole data area.
type background struct{ color color.Color }

func (b background) Plot(c draw.Canvas, _ *plot.Plot) {
	if b.color == nil {
		return
	}
	c.FillPolygon(b.color, rectPoints(c.Rectangle))
}

// area fills the region between a density curve and y = 0.
type area struct {
	curve *density.Curve
	color color.Color
}

func (a area) Plot(c draw.Canvas, p *plot.Plot) {
	n := len(a.curve.X)
	if n == 0 {
		return
	}
	trX, trY := p.Transforms(&c)
	pts := make([]vg.Point, 0, n+2)
	pts = append(pts, vg.Point{X: trX(a.curve.X[0]), Y: trY(0)})
	for i, x := range a.curve.X {
		pts = append(pts, vg.Point{X: trX(x), Y: trY(a.curve.Y[i])})
	}
	pts = append(pts, vg.Point{X: trX(a.curve.X[n-1]), Y: trY(0)})
	c.FillPolygon(a.color, c.ClipPolygonXY(pts))
}

// border outlines the data area.
type border struct{}

func (border) Plot(c draw.Canvas, _ *plot.Plot) {
	pts := rectPoints(c.Rectangle)
	c.StrokeLines(borderStyle, append(pts, pts[0]))
}
