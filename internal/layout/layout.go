// Package layout maps groups onto the panel grid.
//
// The grid has one row per age group and one block of diet columns per
// sex. Blocks are separated by a narrow spacer column that never holds a
// panel. All functions here are pure; geometry is expressed in unit
// coordinates so the renderer can scale it to any canvas.
package layout

import (
	"fmt"

	"github.com/banshee-data/landuse.report/internal/dataset"
	"github.com/banshee-data/landuse.report/internal/reporterr"
)

// DefaultSpacerRatio is the spacer width relative to a panel column.
const DefaultSpacerRatio = 0.3

// Cell is a grid position. Row 0 is the top row, Col 0 the leftmost column.
type Cell struct {
	Row, Col int
}

// Frame is a rectangle in unit coordinates, origin at the bottom left.
type Frame struct {
	X0, Y0, X1, Y1 float64
}

// Engine places groups for one category ordering.
type Engine struct {
	order       dataset.Ordering
	spacerRatio float64
}

// New validates the ordering and returns an engine. A non-positive
// spacerRatio selects DefaultSpacerRatio.
func New(order dataset.Ordering, spacerRatio float64) (*Engine, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if spacerRatio <= 0 {
		spacerRatio = DefaultSpacerRatio
	}
	return &Engine{order: order, spacerRatio: spacerRatio}, nil
}

// Ordering returns the category ordering the engine was built with.
func (e *Engine) Ordering() dataset.Ordering { return e.order }

// Rows is the number of age rows.
func (e *Engine) Rows() int { return len(e.order.Ages) }

// Cols is the number of columns including spacers.
func (e *Engine) Cols() int {
	n := len(e.order.Sexes)
	return n*len(e.order.Diets) + n - 1
}

// BlockStart is the first column of the block for the i-th sex.
func (e *Engine) BlockStart(i int) int {
	return i * (len(e.order.Diets) + 1)
}

// IsSpacer reports whether col separates two sex blocks.
func (e *Engine) IsSpacer(col int) bool {
	if col < 0 || col >= e.Cols() {
		return false
	}
	return (col+1)%(len(e.order.Diets)+1) == 0
}

// Cell maps a group to its grid position.
func (e *Engine) Cell(k dataset.GroupKey) (Cell, error) {
	s, ok := e.order.SexIndex(k.Sex)
	if !ok {
		return Cell{}, layoutError(k, fmt.Errorf("%w: sex %q", reporterr.ErrUnknownCategory, k.Sex))
	}
	d, ok := e.order.DietIndex(k.Diet)
	if !ok {
		return Cell{}, layoutError(k, fmt.Errorf("%w: diet %q", reporterr.ErrUnknownCategory, k.Diet))
	}
	a, ok := e.order.AgeIndex(k.Age)
	if !ok {
		return Cell{}, layoutError(k, fmt.Errorf("%w: age %q", reporterr.ErrUnknownCategory, k.Age))
	}
	return Cell{Row: a, Col: e.BlockStart(s) + d}, nil
}

// Assign places every key and checks that no two keys share a cell and
// that no key lands on a spacer.
func (e *Engine) Assign(keys []dataset.GroupKey) (map[dataset.GroupKey]Cell, error) {
	out := make(map[dataset.GroupKey]Cell, len(keys))
	taken := make(map[Cell]dataset.GroupKey, len(keys))
	for _, k := range keys {
		c, err := e.Cell(k)
		if err != nil {
			return nil, err
		}
		if e.IsSpacer(c.Col) {
			return nil, layoutError(k, fmt.Errorf("assigned to spacer column %d", c.Col))
		}
		if prev, dup := taken[c]; dup && prev != k {
			return nil, layoutError(k, fmt.Errorf("cell %v already holds %s", c, prev))
		}
		taken[c] = k
		out[k] = c
	}
	return out, nil
}

// Key is the inverse of Cell. ok is false for spacer columns and
// out-of-range cells.
func (e *Engine) Key(c Cell) (dataset.GroupKey, bool) {
	if c.Row < 0 || c.Row >= e.Rows() || c.Col < 0 || c.Col >= e.Cols() || e.IsSpacer(c.Col) {
		return dataset.GroupKey{}, false
	}
	width := len(e.order.Diets) + 1
	return dataset.GroupKey{
		Age:  e.order.Ages[c.Row],
		Diet: e.order.Diets[c.Col%width],
		Sex:  e.order.Sexes[c.Col/width],
	}, true
}

// IsBottom reports whether c is in the bottom row.
func (e *Engine) IsBottom(c Cell) bool { return c.Row == e.Rows()-1 }

// IsLeft reports whether c is in the leftmost column of the figure.
func (e *Engine) IsLeft(c Cell) bool { return c.Col == 0 }

// WidthRatios returns the relative width of every column.
func (e *Engine) WidthRatios() []float64 {
	ratios := make([]float64, e.Cols())
	for i := range ratios {
		ratios[i] = 1
		if e.IsSpacer(i) {
			ratios[i] = e.spacerRatio
		}
	}
	return ratios
}

// Frame returns the unit-square rectangle of c with zero gutters.
func (e *Engine) Frame(c Cell) Frame {
	x0, x1 := e.columnSpan(c.Col, c.Col)
	rows := float64(e.Rows())
	return Frame{
		X0: x0,
		X1: x1,
		Y0: 1 - float64(c.Row+1)/rows,
		Y1: 1 - float64(c.Row)/rows,
	}
}

// BlockSpan returns the horizontal unit extent of the i-th sex block.
func (e *Engine) BlockSpan(i int) (x0, x1 float64) {
	start := e.BlockStart(i)
	return e.columnSpan(start, start+len(e.order.Diets)-1)
}

func (e *Engine) columnSpan(first, last int) (x0, x1 float64) {
	ratios := e.WidthRatios()
	var total, before, upto float64
	for i, r := range ratios {
		total += r
		if i < first {
			before += r
		}
		if i <= last {
			upto += r
		}
	}
	return before / total, upto / total
}

func layoutError(k dataset.GroupKey, err error) error {
	return &reporterr.LayoutError{Group: k.String(), Err: err}
}
