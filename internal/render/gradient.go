package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot/palette"
)

// DefaultStops are the background gradient stops, lightest first.
var DefaultStops = []string{"#FFAAAA", "#D46A6A", "#AA3939", "#801515", "#550000"}

// Accent is the density fill color.
const Accent = "#6378AA"

// Gradient is a piecewise linear RGB color map over evenly spaced stops.
// It implements palette.ColorMap so it can drive a plotter.ColorBar.
type Gradient struct {
	stops    []color.NRGBA
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*Gradient)(nil)

// NewGradient parses hex stops. At least two are required.
func NewGradient(stops ...string) (*Gradient, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("gradient needs at least two stops, got %d", len(stops))
	}
	g := &Gradient{max: 1, alpha: 1}
	for _, s := range stops {
		c, err := ParseHex(s)
		if err != nil {
			return nil, err
		}
		g.stops = append(g.stops, c)
	}
	return g, nil
}

// DefaultGradient returns the report gradient on [0, 1].
func DefaultGradient() *Gradient {
	g, err := NewGradient(DefaultStops...)
	if err != nil {
		panic(err)
	}
	return g
}

// ParseHex parses "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Sample returns the color at t in [0, 1]. t is clamped; NaN yields nil.
func (g *Gradient) Sample(t float64) color.Color {
	if math.IsNaN(t) {
		return nil
	}
	t = math.Max(0, math.Min(1, t))

	seg := t * float64(len(g.stops)-1)
	i := int(seg)
	if i >= len(g.stops)-1 {
		i = len(g.stops) - 2
	}
	f := seg - float64(i)
	a, b := g.stops[i], g.stops[i+1]
	return color.NRGBA{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: uint8(math.Round(g.alpha * 255)),
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// At implements palette.ColorMap.
func (g *Gradient) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < g.min:
		return nil, palette.ErrUnderflow
	case v > g.max:
		return nil, palette.ErrOverflow
	}
	if g.max == g.min {
		return g.Sample(0), nil
	}
	return g.Sample((v - g.min) / (g.max - g.min)), nil
}

// Min implements palette.ColorMap.
func (g *Gradient) Min() float64 { return g.min }

// SetMin implements palette.ColorMap.
func (g *Gradient) SetMin(v float64) { g.min = v }

// Max implements palette.ColorMap.
func (g *Gradient) Max() float64 { return g.max }

// SetMax implements palette.ColorMap.
func (g *Gradient) SetMax(v float64) { g.max = v }

// Alpha implements palette.ColorMap.
func (g *Gradient) Alpha() float64 { return g.alpha }

// SetAlpha implements palette.ColorMap.
func (g *Gradient) SetAlpha(a float64) { g.alpha = a }

// Palette implements palette.ColorMap.
func (g *Gradient) Palette(n int) palette.Palette {
	out := make(colors, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = g.Sample(t)
	}
	return out
}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }
