package testutil

import (
	"os"
	"strings"
	"testing"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	got := CSV(Group("female", "vegan", "20-29", 5, 6.5)...)
	lines := strings.Split(strings.TrimSpace(got), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != Header {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "1,1.0,6.5,female,vegan,20-29" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestScenarioRows(t *testing.T) {
	t.Parallel()

	rows := ScenarioRows()
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	if rows[0].Diet != "vegan" || rows[9].Diet != "meat100" {
		t.Errorf("unexpected group order: %+v ... %+v", rows[0], rows[9])
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	path := WriteCSV(t, t.TempDir(), "results.csv", ScenarioRows()...)
	data, err := os.ReadFile(path)
	AssertNoError(t, err)
	if !strings.HasPrefix(string(data), Header) {
		t.Errorf("fixture missing header: %q", data)
	}
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertError_WithErr(t *testing.T) {
	t.Parallel()

	AssertError(t, os.ErrNotExist)
}
