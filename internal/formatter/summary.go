package formatter

import (
	"strconv"
	"strings"
	"time"

	"jobetl/internal/normalizer"
	"jobetl/internal/pipeline"
)

var summaryHeader = []string{
	"Entity", "Status", "Input", "Duplicates", "Dropped", "Output",
	"Unresolved geo", "Default classifications", "Violations", "Duration",
}

// Summary renders one row per entity of report.
func Summary(report *pipeline.Report) string {
	rows := make([][]string, 0, len(report.Results))

	for _, res := range report.Results {
		st := res.Stats

		rows = append(rows, []string{
			string(res.Kind),
			string(res.Status()),
			strconv.Itoa(st.Input),
			strconv.Itoa(st.Duplicates),
			strconv.Itoa(st.Dropped),
			strconv.Itoa(st.Output),
			strconv.Itoa(st.GeoUnresolved),
			strconv.Itoa(st.ClassificationDefaults),
			strconv.Itoa(st.Violations),
			res.Duration.Round(time.Millisecond).String(),
		})
	}

	return RenderTable(summaryHeader, rows)
}

// NullCounts renders the null count of every column that has nulls.
func NullCounts(stats []normalizer.Stats) string {
	var rows [][]string

	for _, st := range stats {
		for _, col := range st.NullColumns() {
			rows = append(rows, []string{string(st.Entity), col, strconv.Itoa(st.NullCounts[col])})
		}
	}

	if len(rows) == 0 {
		return ""
	}

	return RenderTable([]string{"Entity", "Column", "Nulls"}, rows)
}

// Failures lists the error of every failed entity, one per line.
func Failures(report *pipeline.Report) string {
	var sb strings.Builder

	for _, res := range report.Results {
		if res.Err == nil {
			continue
		}

		sb.WriteString("- ")
		sb.WriteString(string(res.Kind))
		sb.WriteString(": ")
		sb.WriteString(res.Err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}
