package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/landuse.report/internal/dataset"
	"github.com/banshee-data/landuse.report/internal/density"
	"github.com/banshee-data/landuse.report/internal/layout"
	"github.com/banshee-data/landuse.report/internal/render"
	"github.com/banshee-data/landuse.report/internal/summary"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// ReportConfig holds every tunable of a report run. Nil fields fall back to
// the defaults returned by the Get* methods, so partial configs are safe.
type ReportConfig struct {
	// Paths
	Input         *string `json:"input,omitempty" toml:"input"`
	Output        *string `json:"output,omitempty" toml:"output"`
	PreviewOutput *string `json:"preview_output,omitempty" toml:"preview_output"`
	Database      *string `json:"database,omitempty" toml:"database"`

	// Input columns
	MeasurementColumn *string `json:"measurement_column,omitempty" toml:"measurement_column"`
	SexColumn         *string `json:"sex_column,omitempty" toml:"sex_column"`
	DietColumn        *string `json:"diet_column,omitempty" toml:"diet_column"`
	AgeColumn         *string `json:"age_column,omitempty" toml:"age_column"`
	Delimiter         *string `json:"delimiter,omitempty" toml:"delimiter"`

	// Density estimation
	GridPoints      *int     `json:"grid_points,omitempty" toml:"grid_points"`
	MinObservations *int     `json:"min_observations,omitempty" toml:"min_observations"`
	BandwidthRule   *string  `json:"bandwidth_rule,omitempty" toml:"bandwidth_rule"` // "scott" or "silverman"
	SpikeFraction   *float64 `json:"spike_fraction,omitempty" toml:"spike_fraction"`

	// Figure
	WidthInches  *float64 `json:"width_inches,omitempty" toml:"width_inches"`
	HeightInches *float64 `json:"height_inches,omitempty" toml:"height_inches"`
	DPI          *int     `json:"dpi,omitempty" toml:"dpi"`
	Title        *string  `json:"title,omitempty" toml:"title"`
	SpacerRatio  *float64 `json:"spacer_ratio,omitempty" toml:"spacer_ratio"`

	// Category orderings. Each must be a permutation of its enumeration.
	SexOrder  []string `json:"sex_order,omitempty" toml:"sex_order"`
	DietOrder []string `json:"diet_order,omitempty" toml:"diet_order"`
	AgeOrder  []string `json:"age_order,omitempty" toml:"age_order"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyReportConfig returns a ReportConfig with all fields unset.
func EmptyReportConfig() *ReportConfig {
	return &ReportConfig{}
}

// DefaultReportConfig returns a config with every field populated.
func DefaultReportConfig() *ReportConfig {
	c := EmptyReportConfig()
	cols := dataset.DefaultColumns()
	return &ReportConfig{
		Input:             ptrString(c.GetInput()),
		Output:            ptrString(c.GetOutput()),
		MeasurementColumn: ptrString(cols.Measurement),
		SexColumn:         ptrString(cols.Sex),
		DietColumn:        ptrString(cols.Diet),
		AgeColumn:         ptrString(cols.Age),
		Delimiter:         ptrString(","),
		GridPoints:        ptrInt(c.GetGridPoints()),
		MinObservations:   ptrInt(c.GetMinObservations()),
		BandwidthRule:     ptrString(c.GetBandwidthRule()),
		SpikeFraction:     ptrFloat64(c.GetSpikeFraction()),
		WidthInches:       ptrFloat64(c.GetWidthInches()),
		HeightInches:      ptrFloat64(c.GetHeightInches()),
		DPI:               ptrInt(c.GetDPI()),
		Title:             ptrString(c.GetTitle()),
		SpacerRatio:       ptrFloat64(c.GetSpacerRatio()),
	}
}

// LoadReportConfig loads a ReportConfig from a .json or .toml file.
// The file must be under 1MB. Unknown keys are rejected.
func LoadReportConfig(path string) (*ReportConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".toml" {
		return nil, fmt.Errorf("config file must have .json or .toml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyReportConfig()
	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *ReportConfig) Validate() error {
	if c.GridPoints != nil && *c.GridPoints < 2 {
		return fmt.Errorf("grid_points must be at least 2, got %d", *c.GridPoints)
	}
	if c.MinObservations != nil && *c.MinObservations < 1 {
		return fmt.Errorf("min_observations must be at least 1, got %d", *c.MinObservations)
	}
	if c.BandwidthRule != nil {
		if _, err := density.ParseRule(*c.BandwidthRule); err != nil {
			return err
		}
	}
	if c.SpikeFraction != nil && (*c.SpikeFraction <= 0 || *c.SpikeFraction > 1) {
		return fmt.Errorf("spike_fraction must be in (0, 1], got %f", *c.SpikeFraction)
	}
	if c.WidthInches != nil && *c.WidthInches <= 0 {
		return fmt.Errorf("width_inches must be positive, got %f", *c.WidthInches)
	}
	if c.HeightInches != nil && *c.HeightInches <= 0 {
		return fmt.Errorf("height_inches must be positive, got %f", *c.HeightInches)
	}
	if c.DPI != nil && (*c.DPI < 10 || *c.DPI > 1200) {
		return fmt.Errorf("dpi must be between 10 and 1200, got %d", *c.DPI)
	}
	if c.SpacerRatio != nil && *c.SpacerRatio <= 0 {
		return fmt.Errorf("spacer_ratio must be positive, got %f", *c.SpacerRatio)
	}
	if c.Delimiter != nil && utf8.RuneCountInString(*c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", *c.Delimiter)
	}
	for name, col := range map[string]*string{
		"measurement_column": c.MeasurementColumn,
		"sex_column":         c.SexColumn,
		"diet_column":        c.DietColumn,
		"age_column":         c.AgeColumn,
	} {
		if col != nil && strings.TrimSpace(*col) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	if _, err := c.Ordering(); err != nil {
		return err
	}
	return nil
}

// GetInput returns the input path or the default.
func (c *ReportConfig) GetInput() string {
	if c.Input == nil || *c.Input == "" {
		return dataset.DefaultInputPath
	}
	return *c.Input
}

// GetOutput returns the PNG output path or the default.
func (c *ReportConfig) GetOutput() string {
	if c.Output == nil || *c.Output == "" {
		return render.DefaultOutputPath
	}
	return *c.Output
}

// GetPreviewOutput returns the HTML preview path. Empty disables the preview.
func (c *ReportConfig) GetPreviewOutput() string {
	if c.PreviewOutput == nil {
		return ""
	}
	return *c.PreviewOutput
}

// GetDatabase returns the SQLite path. Empty disables the export.
func (c *ReportConfig) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}

// GetGridPoints returns the grid_points value or the default.
func (c *ReportConfig) GetGridPoints() int {
	if c.GridPoints == nil {
		return density.DefaultGridPoints
	}
	return *c.GridPoints
}

// GetMinObservations returns the min_observations value or the default.
func (c *ReportConfig) GetMinObservations() int {
	if c.MinObservations == nil {
		return summary.DefaultMinObservations
	}
	return *c.MinObservations
}

// GetBandwidthRule returns the bandwidth_rule value or the default.
func (c *ReportConfig) GetBandwidthRule() string {
	if c.BandwidthRule == nil || *c.BandwidthRule == "" {
		return density.Scott.String()
	}
	return *c.BandwidthRule
}

// GetSpikeFraction returns the spike_fraction value or the default.
func (c *ReportConfig) GetSpikeFraction() float64 {
	if c.SpikeFraction == nil {
		return density.DefaultSpikeFraction
	}
	return *c.SpikeFraction
}

// GetWidthInches returns the width_inches value or the default.
func (c *ReportConfig) GetWidthInches() float64 {
	if c.WidthInches == nil {
		return float64(render.DefaultWidth / vg.Inch)
	}
	return *c.WidthInches
}

// GetHeightInches returns the height_inches value or the default.
func (c *ReportConfig) GetHeightInches() float64 {
	if c.HeightInches == nil {
		return float64(render.DefaultHeight / vg.Inch)
	}
	return *c.HeightInches
}

// GetDPI returns the dpi value or the default.
func (c *ReportConfig) GetDPI() int {
	if c.DPI == nil {
		return render.DefaultDPI
	}
	return *c.DPI
}

// GetTitle returns the title value or the default.
func (c *ReportConfig) GetTitle() string {
	if c.Title == nil || *c.Title == "" {
		return render.Title
	}
	return *c.Title
}

// GetSpacerRatio returns the spacer_ratio value or the default.
func (c *ReportConfig) GetSpacerRatio() float64 {
	if c.SpacerRatio == nil {
		return layout.DefaultSpacerRatio
	}
	return *c.SpacerRatio
}

// Columns returns the input column mapping.
func (c *ReportConfig) Columns() dataset.Columns {
	cols := dataset.DefaultColumns()
	if c.MeasurementColumn != nil {
		cols.Measurement = *c.MeasurementColumn
	}
	if c.SexColumn != nil {
		cols.Sex = *c.SexColumn
	}
	if c.DietColumn != nil {
		cols.Diet = *c.DietColumn
	}
	if c.AgeColumn != nil {
		cols.Age = *c.AgeColumn
	}
	return cols
}

// Comma returns the CSV delimiter rune.
func (c *ReportConfig) Comma() rune {
	if c.Delimiter == nil || *c.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(*c.Delimiter)
	return r
}

// Ordering returns the category ordering, parsing any overrides.
func (c *ReportConfig) Ordering() (dataset.Ordering, error) {
	o := dataset.DefaultOrdering()
	if len(c.SexOrder) > 0 {
		o.Sexes = nil
		for _, s := range c.SexOrder {
			v, err := dataset.ParseSex(s)
			if err != nil {
				return o, fmt.Errorf("sex_order: %w", err)
			}
			o.Sexes = append(o.Sexes, v)
		}
	}
	if len(c.DietOrder) > 0 {
		o.Diets = nil
		for _, s := range c.DietOrder {
			v, err := dataset.ParseDiet(s)
			if err != nil {
				return o, fmt.Errorf("diet_order: %w", err)
			}
			o.Diets = append(o.Diets, v)
		}
	}
	if len(c.AgeOrder) > 0 {
		o.Ages = nil
		for _, s := range c.AgeOrder {
			v, err := dataset.ParseAge(s)
			if err != nil {
				return o, fmt.Errorf("age_order: %w", err)
			}
			o.Ages = append(o.Ages, v)
		}
	}
	return o, o.Validate()
}

// SummaryOptions returns the summary options the config selects.
func (c *ReportConfig) SummaryOptions() (summary.Options, error) {
	rule, err := density.ParseRule(c.GetBandwidthRule())
	if err != nil {
		return summary.Options{}, err
	}
	return summary.Options{
		GridPoints:      c.GetGridPoints(),
		MinObservations: c.GetMinObservations(),
		Estimator:       density.Estimator{Rule: rule, SpikeFraction: c.GetSpikeFraction()},
	}, nil
}

// RenderOptions returns the figure options the config selects.
func (c *ReportConfig) RenderOptions() render.Options {
	o := render.DefaultOptions()
	o.Width = vg.Length(c.GetWidthInches()) * vg.Inch
	o.Height = vg.Length(c.GetHeightInches()) * vg.Inch
	o.DPI = c.GetDPI()
	o.Title = c.GetTitle()
	return o
}
