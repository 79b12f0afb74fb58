package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-pitch-metrics/internal/model"
)

// RunSummary is the header line printed above the profile tables.
type RunSummary struct {
	RunID          string
	Events         int
	Duplicates     int
	IntensityWidth int
	SpreadWidth    int
	Horizon        int
}

// PrintRunSummary prints a one-line summary of the analysed input.
func PrintRunSummary(w io.Writer, s RunSummary) {
	fmt.Fprintf(w, "\nEvents: %d (%d duplicates dropped)  |  Intensity bins: %ds  |  Spread bins: %ds  |  Horizon: %ds  |  Run: %s\n\n",
		s.Events, s.Duplicates, s.IntensityWidth, s.SpreadWidth, s.Horizon, s.RunID)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintIntensityTable prints the intensity profile, highest count first.
// A bar column scales each count against the largest one.
func PrintIntensityTable(w io.Writer, rows []model.ProfileRow) {
	table := newTable(w)
	table.Header("MINUTES", "ACTIONS", "SHARE")
	top := topMetric(rows)
	for _, r := range rows {
		table.Append(r.Label, strconv.FormatInt(int64(r.Metric), 10), bar(r.Metric, top))
	}
	table.Render()
}

// PrintSpreadTable prints the spread profile, widest first.
func PrintSpreadTable(w io.Writer, rows []model.ProfileRow) {
	table := newTable(w)
	table.Header("MINUTES", "SPREAD", "SHARE")
	top := topMetric(rows)
	for _, r := range rows {
		table.Append(r.Label, fmt.Sprintf("%.2f", r.Metric), bar(r.Metric, top))
	}
	table.Render()
}

func topMetric(rows []model.ProfileRow) float64 {
	var top float64
	for _, r := range rows {
		if r.Metric > top {
			top = r.Metric
		}
	}
	return top
}

const barWidth = 20

func bar(v, top float64) string {
	if top <= 0 {
		return ""
	}
	n := int(v / top * barWidth)
	b := make([]rune, n)
	for i := range b {
		b[i] = '#'
	}
	return string(b)
}

// PrintRawTable prints arbitrary query results with the given column names.
func PrintRawTable(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)
	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
}

// PrintMatchTable lists stored matches.
func PrintMatchTable(w io.Writer, matches []model.MatchOverview) {
	table := newTable(w)
	table.Header("MATCH", "DATE", "HOME", "AWAY", "SCORE", "EVENTS", "OBJECTS", "LAST_TS")
	for _, m := range matches {
		table.Append(
			strconv.FormatInt(m.ID, 10),
			m.DatePlayed,
			m.HomeTeam,
			m.AwayTeam,
			fmt.Sprintf("%d-%d", m.HomeTeamScore, m.AwayTeamScore),
			strconv.Itoa(m.Events),
			strconv.Itoa(m.Objects),
			fmt.Sprintf("%.1f", m.MaxTimestamp),
		)
	}
	table.Render()
}
