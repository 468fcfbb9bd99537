package normalizer

import (
	"sort"

	"jobetl/internal/models"
)

// Stats summarizes one cleaning pass.
type Stats struct {
	Entity                 models.EntityKind `json:"entity"`
	Input                  int               `json:"input"`
	Duplicates             int               `json:"duplicates"`
	Dropped                int               `json:"dropped"`
	Output                 int               `json:"output"`
	UnparsedDates          int               `json:"unparsed_dates"`
	GeoUnresolved          int               `json:"geo_unresolved"`
	ClassificationDefaults int               `json:"classification_defaults"`
	Violations             int               `json:"violations"`
	NullCounts             map[string]int    `json:"null_counts,omitempty"`
}

// TotalNulls sums the per-column null counts.
func (s Stats) TotalNulls() int {
	total := 0
	for _, n := range s.NullCounts {
		total += n
	}

	return total
}

// NullColumns returns the columns holding at least one null, sorted.
func (s Stats) NullColumns() []string {
	var cols []string

	for col, n := range s.NullCounts {
		if n > 0 {
			cols = append(cols, col)
		}
	}

	sort.Strings(cols)

	return cols
}
