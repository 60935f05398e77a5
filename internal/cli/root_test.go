package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/landuse.report/internal/dataset"
	"github.com/banshee-data/landuse.report/internal/db"
	"github.com/banshee-data/landuse.report/internal/summary"
	"github.com/banshee-data/landuse.report/internal/testutil"
	"github.com/banshee-data/landuse.report/internal/version"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func scenarioSummary(t *testing.T) *summary.Summary {
	t.Helper()
	obs, err := dataset.NewLoader().Read(strings.NewReader(testutil.CSV(testutil.ScenarioRows()...)))
	require.NoError(t, err)
	s, err := summary.Compute(obs, dataset.DefaultOrdering().Groups(), summary.DefaultOptions())
	require.NoError(t, err)
	return s
}

func TestRootCommand_RendersFigure(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "results.csv", testutil.ScenarioRows()...)
	output := filepath.Join(dir, "figure.png")
	preview := filepath.Join(dir, "figure.html")
	dbPath := filepath.Join(dir, "runs.db")

	stdout, _, err := execute(t, "-i", input, "-o", output, "--preview", preview, "--db", dbPath)
	require.NoError(t, err)

	assert.FileExists(t, output)
	assert.FileExists(t, preview)
	assert.Contains(t, stdout, "vegan")
	assert.Contains(t, stdout, "meat100")
	assert.Contains(t, stdout, "wrote "+output)
	assert.Contains(t, stdout, "10 observations, 2 of 72 groups populated")

	stdout, _, err = execute(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, input)
	assert.Contains(t, stdout, "scott")
}

func TestRootCommand_Quiet(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "results.csv", testutil.ScenarioRows()...)
	output := filepath.Join(dir, "figure.png")

	stdout, _, err := execute(t, "-q", "-i", input, "-o", output)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.FileExists(t, output)
}

func TestRootCommand_ConfigFileAndFlagOverride(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "results.csv", testutil.ScenarioRows()...)
	fromConfig := filepath.Join(dir, "config.png")
	fromFlag := filepath.Join(dir, "flag.png")

	cfgPath := filepath.Join(dir, "report.toml")
	cfg := "input = " + quote(input) + "\noutput = " + quote(fromConfig) + "\nbandwidth_rule = \"silverman\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, _, err := execute(t, "-q", "--config", cfgPath)
	require.NoError(t, err)
	assert.FileExists(t, fromConfig)

	_, _, err = execute(t, "-q", "--config", cfgPath, "-o", fromFlag)
	require.NoError(t, err)
	assert.FileExists(t, fromFlag)
}

func TestRootCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "results.csv", testutil.ScenarioRows()...)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input", []string{"-i", filepath.Join(dir, "absent.csv")}, "absent.csv"},
		{"bad bandwidth", []string{"-i", input, "--bandwidth", "wide"}, "wide"},
		{"bad grid points", []string{"-i", input, "--grid-points", "1"}, "grid_points"},
		{"missing config", []string{"--config", filepath.Join(dir, "none.json")}, "none.json"},
		{"positional args", []string{"extra"}, "unknown command"},
		{"missing database", []string{"runs", "--db", filepath.Join(dir, "none.db")}, "open database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRootCommand_Version(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "landuse-report "+version.String()+"\n", stdout)
}

func TestRootCommand_VerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "results.csv", testutil.ScenarioRows()...)

	stdout, stderr, err := execute(t, "-v", "-q", "-i", input, "-o", filepath.Join(dir, "figure.png"))
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.NotEmpty(t, stderr)
}

func TestRunsCommand_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := db.NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	stdout, _, err := execute(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no runs recorded")
}

func TestSummaryTable(t *testing.T) {
	out := summaryTable(scenarioSummary(t))

	for _, want := range []string{"Sex", "Mean", "female", "vegan", "20-29", "6.00", "male", "meat100", "51.20"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "fish")
}

func TestRunsTable(t *testing.T) {
	created := time.Date(2026, 3, 21, 9, 30, 0, 0, time.UTC)
	out := runsTable([]db.Run{{
		ID:            "run-1",
		Created:       created,
		InputPath:     "results.csv",
		Observations:  10,
		BandwidthRule: "scott",
		ColorMin:      6,
		ColorMax:      51.2,
	}})

	for _, want := range []string{"run-1", "2026-03-21T09:30:00Z", "results.csv", "10", "scott", "6.00 – 51.20"} {
		assert.Contains(t, out, want)
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)

	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func quote(s string) string {
	return `'` + s + `'`
}
