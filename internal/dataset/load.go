package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/landuse.report/internal/fsutil"
	"github.com/banshee-data/landuse.report/internal/monitoring"
	"github.com/banshee-data/landuse.report/internal/reporterr"
)

// DefaultInputPath is the results file the report is built from.
const DefaultInputPath = "Results_21Mar2022.csv"

// Columns names the four CSV columns the loader reads.
type Columns struct {
	Measurement string
	Sex         string
	Diet        string
	Age         string
}

// DefaultColumns matches the header of the results file.
func DefaultColumns() Columns {
	return Columns{
		Measurement: "mean_land",
		Sex:         "sex",
		Diet:        "diet_group",
		Age:         "age_group",
	}
}

// Loader reads observations from a delimited file. Extra columns are
// ignored. The first malformed row aborts the load with a DataError that
// names the line and column.
type Loader struct {
	FS      fsutil.FileSystem
	Columns Columns
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// NewLoader returns a loader for the default schema on the real filesystem.
func NewLoader() *Loader {
	return &Loader{FS: fsutil.OSFileSystem{}, Columns: DefaultColumns()}
}

// Load opens path and parses every row.
func (l *Loader) Load(path string) ([]Observation, error) {
	f, err := l.FS.Open(path)
	if err != nil {
		return nil, &reporterr.DataError{Path: path, Err: err}
	}
	defer f.Close()

	obs, err := l.Read(f)
	if err != nil {
		var de *reporterr.DataError
		if errors.As(err, &de) && de.Path == "" {
			de.Path = path
		}
		return nil, err
	}
	monitoring.Logf("loaded %d observations from %s", len(obs), path)
	return obs, nil
}

// Read parses observations from r. The first record must be the header.
func (l *Loader) Read(r io.Reader) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	if l.Comma != 0 {
		cr.Comma = l.Comma
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &reporterr.DataError{Line: 1, Err: errors.New("empty file, no header")}
	}
	if err != nil {
		return nil, &reporterr.DataError{Err: fmt.Errorf("read header: %w", err)}
	}

	idx, err := l.columnIndex(header)
	if err != nil {
		return nil, err
	}

	var obs []Observation
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &reporterr.DataError{Line: pe.Line, Err: pe.Err}
			}
			return nil, &reporterr.DataError{Err: err}
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		o, de := parseRecord(rec, idx, l.Columns)
		if de != nil {
			de.Line = line
			return nil, de
		}
		obs = append(obs, o)
	}

	if len(obs) == 0 {
		return nil, &reporterr.DataError{Err: fmt.Errorf("%w: no observations", reporterr.ErrInsufficientData)}
	}
	return obs, nil
}

type columnIndex struct {
	measurement, sex, diet, age int
}

func (l *Loader) columnIndex(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	lookup := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, &reporterr.DataError{Line: 1, Column: name, Err: reporterr.ErrMissingColumn}
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.measurement, err = lookup(l.Columns.Measurement); err != nil {
		return idx, err
	}
	if idx.sex, err = lookup(l.Columns.Sex); err != nil {
		return idx, err
	}
	if idx.diet, err = lookup(l.Columns.Diet); err != nil {
		return idx, err
	}
	if idx.age, err = lookup(l.Columns.Age); err != nil {
		return idx, err
	}
	return idx, nil
}

func parseRecord(rec []string, idx columnIndex, cols Columns) (Observation, *reporterr.DataError) {
	field := func(i int, name string) (string, *reporterr.DataError) {
		if i >= len(rec) {
			return "", &reporterr.DataError{Column: name, Err: fmt.Errorf("row has %d fields", len(rec))}
		}
		return rec[i], nil
	}

	var o Observation

	raw, de := field(idx.measurement, cols.Measurement)
	if de != nil {
		return o, de
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return o, &reporterr.DataError{Column: cols.Measurement, Err: fmt.Errorf("%w: %q", reporterr.ErrBadMeasurement, raw)}
	}
	o.MeanLand = v

	if raw, de = field(idx.sex, cols.Sex); de != nil {
		return o, de
	}
	if o.Sex, err = ParseSex(raw); err != nil {
		return o, &reporterr.DataError{Column: cols.Sex, Err: err}
	}

	if raw, de = field(idx.diet, cols.Diet); de != nil {
		return o, de
	}
	if o.Diet, err = ParseDiet(raw); err != nil {
		return o, &reporterr.DataError{Column: cols.Diet, Err: err}
	}

	if raw, de = field(idx.age, cols.Age); de != nil {
		return o, de
	}
	if o.Age, err = ParseAge(raw); err != nil {
		return o, &reporterr.DataError{Column: cols.Age, Err: err}
	}
	return o, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
