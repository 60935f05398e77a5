// Package summary computes per-group statistics and the global ranges that
// every panel of the figure shares.
//
// All reductions are pure functions over the full slice of group
// statistics, so the result does not depend on group iteration order.
package summary

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/landuse.report/internal/dataset"
	"github.com/banshee-data/landuse.report/internal/density"
	"github.com/banshee-data/landuse.report/internal/monitoring"
	"github.com/banshee-data/landuse.report/internal/reporterr"
)

// DefaultMinObservations is the smallest group that gets a density curve.
const DefaultMinObservations = 2

// Range is a closed interval.
type Range struct {
	Min, Max float64
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Normalize maps v linearly onto [0, 1], clamping values outside the range.
// A degenerate range maps everything to 0. NaN stays NaN.
func (r Range) Normalize(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	span := r.Span()
	if span <= 0 {
		return 0
	}
	t := (v - r.Min) / span
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// Ranges are the global axis and color ranges.
type Ranges struct {
	X     Range // measurement extent over all observations
	Y     Range // [0, max density over every curve]
	Color Range // [min group mean, max group mean]
}

// GroupStats summarises one group.
type GroupStats struct {
	Key    dataset.GroupKey
	Count  int
	Mean   float64 // NaN for an empty group
	StdDev float64 // NaN for fewer than two observations
	Min    float64
	Max    float64

	// Curve is nil when the group has fewer than MinObservations values.
	Curve *density.Curve
}

// HasMean reports whether the group has at least one observation.
func (g GroupStats) HasMean() bool { return g.Count > 0 }

// Options control the summary computation.
type Options struct {
	GridPoints      int
	MinObservations int
	Estimator       density.Estimator
}

// DefaultOptions returns the report defaults.
func DefaultOptions() Options {
	return Options{
		GridPoints:      density.DefaultGridPoints,
		MinObservations: DefaultMinObservations,
	}
}

// Summary is the fully derived view of a dataset.
type Summary struct {
	Groups []GroupStats // one per key, in the order requested
	Ranges Ranges
	Grid   []float64 // shared evaluation grid
	Total  int       // number of observations
}

// Lookup returns the stats for key.
func (s *Summary) Lookup(key dataset.GroupKey) (GroupStats, bool) {
	for _, g := range s.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return GroupStats{}, false
}

// Populated returns the groups with at least one observation.
func (s *Summary) Populated() []GroupStats {
	var out []GroupStats
	for _, g := range s.Groups {
		if g.HasMean() {
			out = append(out, g)
		}
	}
	return out
}

// Compute derives group statistics for every key and the shared ranges.
// Groups smaller than opts.MinObservations keep their mean for the color
// range but get no curve and do not contribute to the y-range. It fails
// with a DataError when obs is empty or no key has any observation.
func Compute(obs []dataset.Observation, keys []dataset.GroupKey, opts Options) (*Summary, error) {
	if len(obs) == 0 {
		return nil, &reporterr.DataError{Err: fmt.Errorf("%w: no observations", reporterr.ErrInsufficientData)}
	}
	if opts.GridPoints < 2 {
		opts.GridPoints = density.DefaultGridPoints
	}
	if opts.MinObservations < 1 {
		opts.MinObservations = DefaultMinObservations
	}

	xr := XRange(dataset.Measurements(obs))
	grid := density.Grid(xr.Min, xr.Max, opts.GridPoints)
	parts := dataset.Partition(obs)

	groups := make([]GroupStats, len(keys))
	for i, k := range keys {
		g, err := groupStats(k, parts[k], grid, opts)
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}

	cr, ok := ColorRange(groups)
	if !ok {
		return nil, &reporterr.DataError{Err: fmt.Errorf("%w: no group in the layout has observations", reporterr.ErrInsufficientData)}
	}

	return &Summary{
		Groups: groups,
		Ranges: Ranges{X: xr, Y: YRange(groups), Color: cr},
		Grid:   grid,
		Total:  len(obs),
	}, nil
}

func groupStats(k dataset.GroupKey, values, grid []float64, opts Options) (GroupStats, error) {
	g := GroupStats{
		Key:    k,
		Count:  len(values),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
	}
	if len(values) == 0 {
		return g, nil
	}
	g.Mean = stat.Mean(values, nil)
	g.Min = floats.Min(values)
	g.Max = floats.Max(values)
	if len(values) > 1 {
		g.StdDev = stat.StdDev(values, nil)
	}
	if len(values) < opts.MinObservations {
		monitoring.Debugf("group %s: %d observation(s), below minimum %d; no density curve", k, len(values), opts.MinObservations)
		return g, nil
	}

	c, err := opts.Estimator.Estimate(values, grid)
	if err != nil {
		var de *reporterr.DataError
		if errors.As(err, &de) {
			de.Group = k.String()
		}
		return g, err
	}
	if c.Degenerate {
		monitoring.Logf("group %s has no spread; drawing spike with bandwidth %.4g", k, c.Bandwidth)
	}
	g.Curve = &c
	return g, nil
}

// XRange is the extent of the measurement column.
func XRange(values []float64) Range {
	if len(values) == 0 {
		return Range{}
	}
	return Range{Min: floats.Min(values), Max: floats.Max(values)}
}

// YRange is [0, max density] over every group that has a curve.
func YRange(groups []GroupStats) Range {
	r := Range{}
	for _, g := range groups {
		if g.Curve == nil {
			continue
		}
		r.Max = math.Max(r.Max, g.Curve.Max())
	}
	return r
}

// ColorRange is [min mean, max mean] over groups with observations. ok is
// false when no group has a mean.
func ColorRange(groups []GroupStats) (r Range, ok bool) {
	r = Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, g := range groups {
		if !g.HasMean() {
			continue
		}
		r.Min = math.Min(r.Min, g.Mean)
		r.Max = math.Max(r.Max, g.Mean)
		ok = true
	}
	if !ok {
		return Range{}, false
	}
	return r, true
}
