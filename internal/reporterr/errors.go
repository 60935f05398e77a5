// Package reporterr defines the error taxonomy shared by the report pipeline.
//
// DataError and IOError are user-facing: they describe bad input or an
// unwritable destination. LayoutError marks an internal invariant violation
// and should never surface for a correct build.
package reporterr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is wrapped when a required CSV column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnknownCategory is wrapped when a label is outside its enumeration.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInsufficientData is wrapped when a group or dataset is too small to
	// support the requested statistic.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrBadMeasurement is wrapped when a measurement is not a finite number.
	ErrBadMeasurement = errors.New("bad measurement")
)

// DataError reports a problem with the input dataset.
type DataError struct {
	Path   string // input file, if known
	Line   int    // 1-based CSV line, 0 if not row-specific
	Column string // column name, if column-specific
	Group  string // group key, if group-specific
	Err    error
}

func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString("data error")
	if e.Path != "" {
		fmt.Fprintf(&b, " in %s", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Group != "" {
		fmt.Fprintf(&b, " group %s", e.Group)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DataError) Unwrap() error { return e.Err }

// LayoutError reports a group that could not be placed in a unique cell.
type LayoutError struct {
	Group string
	Err   error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout error for group %s: %v", e.Group, e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }

// IOError reports a failure writing an output artefact.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsUserError reports whether err is a DataError or IOError, i.e. something
// the operator can fix without touching the code.
func IsUserError(err error) bool {
	var de *DataError
	var ioe *IOError
	return errors.As(err, &de) || errors.As(err, &ioe)
}
