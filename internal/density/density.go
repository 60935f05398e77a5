// Package density fits Gaussian kernel density estimates to a group's
// measurements and evaluates them on a shared sample grid.
package density

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/landuse.report/internal/reporterr"
)

// DefaultGridPoints is the number of evaluation points per curve.
const DefaultGridPoints = 100

// DefaultSpikeFraction sizes the fallback bandwidth for zero-spread input
// as a fraction of the grid span.
const DefaultSpikeFraction = 0.01

// Rule selects the automatic bandwidth estimator.
type Rule int

const (
	// Scott uses sigma * n^(-1/5), the scipy gaussian_kde default.
	Scott Rule = iota
	// Silverman uses sigma * (3n/4)^(-1/5).
	Silverman
)

func (r Rule) String() string {
	switch r {
	case Scott:
		return "scott"
	case Silverman:
		return "silverman"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// ParseRule maps a config name to a Rule.
func ParseRule(s string) (Rule, error) {
	switch s {
	case "", "scott":
		return Scott, nil
	case "silverman":
		return Silverman, nil
	}
	return Scott, fmt.Errorf("unknown bandwidth rule %q (want scott or silverman)", s)
}

// Bandwidth returns the kernel standard deviation for values under rule r.
// It is zero when the values have no spread.
func (r Rule) Bandwidth(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	sd := stat.StdDev(values, nil)
	switch r {
	case Silverman:
		return sd * math.Pow(n*3/4, -0.2)
	default:
		return sd * math.Pow(n, -0.2)
	}
}

// Curve is a density evaluated on a grid. Y[i] is the density at X[i].
type Curve struct {
	X []float64
	Y []float64

	// Bandwidth is the kernel standard deviation actually used.
	Bandwidth float64
	// Degenerate marks a curve built with the spike fallback because the
	// input had no spread.
	Degenerate bool
}

// Max returns the largest density value on the curve.
func (c Curve) Max() float64 {
	if len(c.Y) == 0 {
		return 0
	}
	return floats.Max(c.Y)
}

// Estimator fits densities. The zero value uses Scott's rule and the
// default spike fraction.
type Estimator struct {
	Rule          Rule
	SpikeFraction float64
}

// Grid returns n evenly spaced points covering [lo, hi]. n must be at
// least 2.
func Grid(lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Estimate fits a Gaussian KDE to values and evaluates it on grid. The
// result is deterministic for a given input and grid. Values with no
// spread fall back to a narrow spike at their common value.
func (e Estimator) Estimate(values, grid []float64) (Curve, error) {
	if len(values) == 0 {
		return Curve{}, &reporterr.DataError{Err: fmt.Errorf("%w: density of empty sample", reporterr.ErrInsufficientData)}
	}
	if len(grid) == 0 {
		return Curve{}, fmt.Errorf("density: empty evaluation grid")
	}

	h := e.Rule.Bandwidth(values)
	degenerate := false
	if h <= 0 || math.IsNaN(h) {
		h = e.spikeBandwidth(grid)
		degenerate = true
	}

	kde := &stats.KDE{
		Sample:    stats.Sample{Xs: values},
		Kernel:    stats.GaussianKernel,
		Bandwidth: h,
	}

	c := Curve{
		X:          append([]float64(nil), grid...),
		Y:          make([]float64, len(grid)),
		Bandwidth:  h,
		Degenerate: degenerate,
	}
	for i, x := range grid {
		y := kde.PDF(x)
		if y < 0 || math.IsNaN(y) {
			y = 0
		}
		c.Y[i] = y
	}
	return c, nil
}

func (e Estimator) spikeBandwidth(grid []float64) float64 {
	frac := e.SpikeFraction
	if frac <= 0 {
		frac = DefaultSpikeFraction
	}
	span := grid[len(grid)-1] - grid[0]
	if span <= 0 {
		return 1
	}
	return frac * span
}
