// Package pipeline runs a full report: load the results file, summarise
// every group, lay out and render the figure, then write the optional
// HTML preview and SQLite export.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/landuse.report/internal/config"
	"github.com/banshee-data/landuse.report/internal/dataset"
	"github.com/banshee-data/landuse.report/internal/db"
	"github.com/banshee-data/landuse.report/internal/fsutil"
	"github.com/banshee-data/landuse.report/internal/layout"
	"github.com/banshee-data/landuse.report/internal/monitoring"
	"github.com/banshee-data/landuse.report/internal/preview"
	"github.com/banshee-data/landuse.report/internal/render"
	"github.com/banshee-data/landuse.report/internal/summary"
)

// Result describes a finished run.
type Result struct {
	Input   string
	Output  string
	Preview string // empty when no preview was written
	RunID   string // empty when no database was configured
	Summary *summary.Summary
	Figure  *render.Figure
	Elapsed time.Duration
}

// Runner executes reports against a filesystem. The SQLite export always
// uses the real filesystem.
type Runner struct {
	FS fsutil.FileSystem
}

// NewRunner returns a runner on the OS filesystem.
func NewRunner() *Runner {
	return &Runner{FS: fsutil.OSFileSystem{}}
}

// Run executes the report described by cfg. A nil cfg uses every default.
func (r *Runner) Run(ctx context.Context, cfg *config.ReportConfig) (*Result, error) {
	start := time.Now()
	if cfg == nil {
		cfg = config.EmptyReportConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	order, err := cfg.Ordering()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SummaryOptions()
	if err != nil {
		return nil, err
	}

	res := &Result{Input: cfg.GetInput(), Output: cfg.GetOutput()}

	loader := &dataset.Loader{FS: r.FS, Columns: cfg.Columns(), Comma: cfg.Comma()}
	obs, err := loader.Load(res.Input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := summary.Compute(obs, order.Groups(), opts)
	if err != nil {
		if de := asDataError(err); de != nil && de.Path == "" {
			de.Path = res.Input
		}
		return nil, err
	}
	res.Summary = s
	monitoring.Debugf("x range [%g, %g], y max %g, color range [%g, %g]",
		s.Ranges.X.Min, s.Ranges.X.Max, s.Ranges.Y.Max, s.Ranges.Color.Min, s.Ranges.Color.Max)

	engine, err := layout.New(order, cfg.GetSpacerRatio())
	if err != nil {
		return nil, err
	}
	fig, err := render.Build(s, engine, cfg.RenderOptions())
	if err != nil {
		return nil, err
	}
	res.Figure = fig
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := render.Export(r.FS, fig, res.Output); err != nil {
		return nil, err
	}

	if p := cfg.GetPreviewOutput(); p != "" {
		if err := preview.Write(r.FS, p, s, engine); err != nil {
			return nil, err
		}
		res.Preview = p
	}

	if path := cfg.GetDatabase(); path != "" {
		id, err := record(ctx, path, res.Input, cfg.GetBandwidthRule(), s, engine)
		if err != nil {
			return nil, err
		}
		res.RunID = id
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func record(ctx context.Context, path, input, rule string, s *summary.Summary, e *layout.Engine) (string, error) {
	store, err := db.NewDB(path)
	if err != nil {
		return "", ioError("open database", path, err)
	}
	defer store.Close()

	id, err := store.RecordSummary(ctx, input, rule, s, e)
	if err != nil {
		return "", ioError("record run", path, err)
	}
	return id, nil
}
