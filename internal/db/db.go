// Package db stores report runs and their per-group summaries in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/landuse.report/internal/layout"
	"github.com/banshee-data/landuse.report/internal/monitoring"
	"github.com/banshee-data/landuse.report/internal/summary"
)

type DB struct {
	*sql.DB
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA foreign_keys=ON",
}

// NewDB opens (or creates) the database at path and brings its schema up
// to date.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	sqlDB.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Run is one report invocation.
type Run struct {
	ID            string
	InputPath     string
	Created       time.Time
	Observations  int
	BandwidthRule string
	XMin, XMax    float64
	YMax          float64
	ColorMin      float64
	ColorMax      float64
}

// GroupSummary is one stored group row. Statistics that do not exist for
// the group (e.g. the mean of an empty group) are NULL.
type GroupSummary struct {
	RunID        string
	Sex          string
	Diet         string
	Age          string
	Row, Col     int
	Observations int
	Mean         sql.NullFloat64
	StdDev       sql.NullFloat64
	Min          sql.NullFloat64
	Max          sql.NullFloat64
	Bandwidth    sql.NullFloat64
}

func (g GroupSummary) String() string {
	return fmt.Sprintf("%s/%s/%s n=%d", g.Sex, g.Diet, g.Age, g.Observations)
}

// RecordSummary stores s under a fresh run id and returns it.
func (db *DB) RecordSummary(ctx context.Context, input, rule string, s *summary.Summary, e *layout.Engine) (string, error) {
	run := Run{
		ID:            uuid.NewString(),
		InputPath:     input,
		Created:       time.Now(),
		Observations:  s.Total,
		BandwidthRule: rule,
		XMin:          s.Ranges.X.Min,
		XMax:          s.Ranges.X.Max,
		YMax:          s.Ranges.Y.Max,
		ColorMin:      s.Ranges.Color.Min,
		ColorMax:      s.Ranges.Color.Max,
	}

	groups := make([]GroupSummary, 0, len(s.Groups))
	for _, g := range s.Groups {
		c, err := e.Cell(g.Key)
		if err != nil {
			return "", err
		}
		row := GroupSummary{
			RunID:        run.ID,
			Sex:          string(g.Key.Sex),
			Diet:         string(g.Key.Diet),
			Age:          string(g.Key.Age),
			Row:          c.Row,
			Col:          c.Col,
			Observations: g.Count,
			Mean:         nullable(g.Mean),
			StdDev:       nullable(g.StdDev),
			Min:          nullable(g.Min),
			Max:          nullable(g.Max),
		}
		if g.Curve != nil {
			row.Bandwidth = nullable(g.Curve.Bandwidth)
		}
		groups = append(groups, row)
	}

	if err := db.RecordRun(ctx, run, groups); err != nil {
		return "", err
	}
	monitoring.Logf("recorded run %s (%d groups)", run.ID, len(groups))
	return run.ID, nil
}

// RecordRun inserts a run and its groups in one transaction.
func (db *DB) RecordRun(ctx context.Context, run Run, groups []GroupSummary) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, input_path, created_unix_ns, observations, bandwidth_rule,
			x_min, x_max, y_max, color_min, color_max
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.Created.UnixNano(), run.Observations, run.BandwidthRule,
		run.XMin, run.XMax, run.YMax, run.ColorMin, run.ColorMax,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO group_summaries (
			run_id, sex, diet_group, age_group, grid_row, grid_col,
			observations, mean_land, stddev_land, min_land, max_land, bandwidth
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare group insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		if _, err := stmt.ExecContext(ctx,
			run.ID, g.Sex, g.Diet, g.Age, g.Row, g.Col,
			g.Observations, g.Mean, g.StdDev, g.Min, g.Max, g.Bandwidth,
		); err != nil {
			return fmt.Errorf("insert group %s: %w", g, err)
		}
	}

	return tx.Commit()
}

// Runs returns every stored run, newest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, input_path, created_unix_ns, observations, bandwidth_rule,
			x_min, x_max, y_max, color_min, color_max
		FROM runs
		ORDER BY created_unix_ns DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.InputPath, &created, &r.Observations, &r.BandwidthRule,
			&r.XMin, &r.XMax, &r.YMax, &r.ColorMin, &r.ColorMax); err != nil {
			return nil, err
		}
		r.Created = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GroupSummaries returns the groups of one run in grid order.
func (db *DB) GroupSummaries(ctx context.Context, runID string) ([]GroupSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, sex, diet_group, age_group, grid_row, grid_col,
			observations, mean_land, stddev_land, min_land, max_land, bandwidth
		FROM group_summaries
		WHERE run_id = ?
		ORDER BY grid_row, grid_col`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupSummary
	for rows.Next() {
		var g GroupSummary
		if err := rows.Scan(&g.RunID, &g.Sex, &g.Diet, &g.Age, &g.Row, &g.Col,
			&g.Observations, &g.Mean, &g.StdDev, &g.Min, &g.Max, &g.Bandwidth); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
