// Package cli implements the landuse-report command-line interface.
//
// The root command renders the density-grid figure. With no flags it reads
// Results_21Mar2022.csv and writes CW2_figure.png in the working directory.
// Flags and an optional .json/.toml config file override paths and
// estimation settings; flags win over the config file.
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/banshee-data/landuse.report/internal/config"
	"github.com/banshee-data/landuse.report/internal/db"
	"github.com/banshee-data/landuse.report/internal/pipeline"
	"github.com/banshee-data/landuse.report/internal/version"
)

// Execute runs the CLI with os.Args and the standard streams.
func Execute(ctx context.Context) error {
	root := NewRootCommand(os.Stdout, os.Stderr)
	return root.ExecuteContext(ctx)
}

type reportFlags struct {
	configPath      string
	input           string
	output          string
	preview         string
	database        string
	bandwidth       string
	gridPoints      int
	minObservations int
	dpi             int
	quiet           bool
}

// NewRootCommand builds the command tree. Report output goes to stdout and
// logs to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool
	var f reportFlags

	root := &cobra.Command{
		Use:          "landuse-report",
		Short:        "Render mean land-use density grids by sex, diet and age",
		Long:         `landuse-report reads a diet-survey results file, estimates the distribution of mean land use for every sex, diet and age group, and draws the groups as a colour-coded grid of density plots.`,
		Version:      version.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			installLogger(newLogger(stderr, level))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			res, err := pipeline.NewRunner().Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if !f.quiet {
				fmt.Fprint(stdout, resultReport(res))
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("landuse-report %s\n", version.String()))

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	flags := root.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "report config file (.json or .toml)")
	flags.StringVarP(&f.input, "input", "i", "", "results CSV (default Results_21Mar2022.csv)")
	flags.StringVarP(&f.output, "output", "o", "", "figure PNG path (default CW2_figure.png)")
	flags.StringVar(&f.preview, "preview", "", "also write an HTML heatmap preview to this path")
	flags.StringVar(&f.database, "db", "", "also record the run in this SQLite database")
	flags.StringVar(&f.bandwidth, "bandwidth", "", "KDE bandwidth rule: scott or silverman")
	flags.IntVar(&f.gridPoints, "grid-points", 0, "density evaluation points per panel")
	flags.IntVar(&f.minObservations, "min-observations", 0, "smallest group that gets a density curve")
	flags.IntVar(&f.dpi, "dpi", 0, "figure resolution")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "do not print the group summary")

	root.AddCommand(newRunsCmd(stdout))
	return root
}

// config loads the config file, if any, and applies explicitly set flags.
func (f *reportFlags) config(cmd *cobra.Command) (*config.ReportConfig, error) {
	cfg := config.EmptyReportConfig()
	if f.configPath != "" {
		loaded, err := config.LoadReportConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input = &f.input
	}
	if changed("output") {
		cfg.Output = &f.output
	}
	if changed("preview") {
		cfg.PreviewOutput = &f.preview
	}
	if changed("db") {
		cfg.Database = &f.database
	}
	if changed("bandwidth") {
		cfg.BandwidthRule = &f.bandwidth
	}
	if changed("grid-points") {
		cfg.GridPoints = &f.gridPoints
	}
	if changed("min-observations") {
		cfg.MinObservations = &f.minObservations
	}
	if changed("dpi") {
		cfg.DPI = &f.dpi
	}
	return cfg, nil
}

func newRunsCmd(stdout io.Writer) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List report runs recorded in a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			store, err := db.NewDB(path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(stdout, styleDim.Render("no runs recorded"))
				return nil
			}
			fmt.Fprintln(stdout, runsTable(runs))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "db", "landuse-report.db", "SQLite database")
	return cmd
}
