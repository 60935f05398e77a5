package cli

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/banshee-data/landuse.report/internal/monitoring"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// installLogger routes the pipeline's package-level loggers through l.
func installLogger(l *log.Logger) {
	monitoring.SetLogger(l.Infof)
	monitoring.SetDebugLogger(l.Debugf)
}
