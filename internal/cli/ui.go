package cli

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/banshee-data/landuse.report/internal/db"
	"github.com/banshee-data/landuse.report/internal/pipeline"
	"github.com/banshee-data/landuse.report/internal/summary"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
)

const iconSuccess = "✓"

// summaryTable renders one row per populated group.
func summaryTable(s *summary.Summary) string {
	var rows [][]string
	for _, g := range s.Populated() {
		rows = append(rows, []string{
			string(g.Key.Sex),
			string(g.Key.Diet),
			string(g.Key.Age),
			strconv.Itoa(g.Count),
			formatStat(g.Mean),
			formatStat(g.StdDev),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Sex", "Diet", "Age", "N", "Mean", "SD").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col >= 3 {
				return styleNumber
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// resultReport is the human-readable run report printed after the table.
func resultReport(res *pipeline.Result) string {
	s := res.Summary
	out := styleTitle.Render("Mean land use by group") + "\n"
	out += summaryTable(s) + "\n"
	out += styleDim.Render(fmt.Sprintf("%d observations, %d of %d groups populated, x [%s, %s], y max %s, color [%s, %s]",
		s.Total, len(s.Populated()), len(s.Groups),
		formatStat(s.Ranges.X.Min), formatStat(s.Ranges.X.Max), formatStat(s.Ranges.Y.Max),
		formatStat(s.Ranges.Color.Min), formatStat(s.Ranges.Color.Max))) + "\n"
	out += styleSuccess.Render(iconSuccess) + " wrote " + res.Output
	if res.Preview != "" {
		out += ", " + res.Preview
	}
	if res.RunID != "" {
		out += " (run " + res.RunID + ")"
	}
	out += styleDim.Render(fmt.Sprintf(" in %s", res.Elapsed.Round(time.Millisecond))) + "\n"
	return out
}

// runsTable lists stored runs newest first.
func runsTable(runs []db.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.Created.Format(time.RFC3339),
			r.InputPath,
			strconv.Itoa(r.Observations),
			r.BandwidthRule,
			formatStat(r.ColorMin) + " – " + formatStat(r.ColorMax),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Created", "Input", "N", "Bandwidth", "Mean range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
