package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"jobetl/internal/models"
	"jobetl/internal/normalizer"
	"jobetl/internal/pipeline"
)

func TestRenderTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:   "Basic table",
			header: []string{"Header 1", "Header 2"},
			rows:   [][]string{{"val 1", "val 2"}},
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name:   "Minimum width",
			header: []string{"H1", "H2"},
			rows:   [][]string{{"v1", "v2"}},
			expected: `
| H1  | H2  |
| --- | --- |
| v1  | v2  |
`,
		},
		{
			name:   "Short row padded",
			header: []string{"Col A", "Col B"},
			rows:   [][]string{{"  A  "}},
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     |       |
`,
		},
		{
			name:   "Mixed CJK and ASCII",
			header: []string{"City", "Entity"},
			rows:   [][]string{{"東京", "jobs"}, {"Zürich", "companies"}},
			// 東京 is four display columns wide.
			expected: `
| City   | Entity    |
| ------ | --------- |
| 東京   | jobs      |
| Zürich | companies |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderTable(tt.header, tt.rows)
			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("RenderTable() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}

	if RenderTable(nil, nil) != "" {
		t.Error("RenderTable(nil, nil) should be empty")
	}
}

func TestSummary(t *testing.T) {
	report := &pipeline.Report{
		Results: []pipeline.EntityResult{
			{
				Kind:     models.KindSalaries,
				Duration: 1500 * time.Microsecond,
				Stats: normalizer.Stats{
					Entity: models.KindSalaries, Input: 10, Duplicates: 2, Dropped: 1, Output: 7,
					GeoUnresolved: 3, ClassificationDefaults: 4,
				},
			},
			{Kind: models.KindJobs, Err: errors.New("flatten: boom")},
		},
	}

	got := Summary(report)
	lines := strings.Split(strings.TrimSpace(got), "\n")

	if len(lines) != 4 {
		t.Fatalf("Summary has %d lines, want 4:\n%s", len(lines), got)
	}

	for _, want := range []string{"salaries", "completed", "| 10 ", "| 7 ", "2ms"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("salaries row %q missing %q", lines[2], want)
		}
	}

	if !strings.Contains(lines[3], "failed") {
		t.Errorf("jobs row %q should be failed", lines[3])
	}

	if f := Failures(report); f != "- jobs: flatten: boom\n" {
		t.Errorf("Failures = %q", f)
	}
}

func TestNullCounts(t *testing.T) {
	stats := []normalizer.Stats{
		{Entity: models.KindCompanies, NullCounts: map[string]int{"size": 2, "description": 1, "company_id": 0}},
		{Entity: models.KindJobs},
	}

	got := NullCounts(stats)
	if !strings.Contains(got, "| companies | description | 1     |") {
		t.Errorf("NullCounts =\n%s", got)
	}

	if strings.Contains(got, "company_id") {
		t.Error("zero counts must be omitted")
	}

	if NullCounts(nil) != "" {
		t.Error("NullCounts(nil) should be empty")
	}
}
