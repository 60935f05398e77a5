// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Row is one fixture observation in results-file form.
type Row struct {
	MeanLand float64
	Sex      string
	Diet     string
	Age      string
}

// Header is the results-file header the fixtures use. The leading unnamed
// column mirrors the index column a dataframe export carries.
const Header = ",mean_ghgs,mean_land,sex,diet_group,age_group"

// CSV renders rows under Header. The ghgs column is filler so the loader is
// exercised against extra columns.
func CSV(rows ...Row) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for i, r := range rows {
		fmt.Fprintf(&b, "%d,%s,%s,%s,%s,%s\n", i, "1.0",
			strconv.FormatFloat(r.MeanLand, 'g', -1, 64), r.Sex, r.Diet, r.Age)
	}
	return b.String()
}

// Group expands one group into a row per value.
func Group(sex, diet, age string, values ...float64) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{MeanLand: v, Sex: sex, Diet: diet, Age: age}
	}
	return rows
}

// ScenarioRows is the two-group dataset used by end-to-end tests: young
// vegan women and older high-meat men.
func ScenarioRows() []Row {
	rows := Group("female", "vegan", "20-29", 5, 6, 7, 5.5, 6.5)
	return append(rows, Group("male", "meat100", "70-79", 50, 55, 52, 48, 51)...)
}

// WriteCSV writes rows to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name string, rows ...Row) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(CSV(rows...)), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
