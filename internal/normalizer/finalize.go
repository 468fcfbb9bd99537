package normalizer

import (
	"strings"

	"jobetl/internal/logger"
	"jobetl/internal/models"
)

// finalize nulls blank values, counts nulls per column and drops rows
// missing any required column.
func (c *Cleaner) finalize(table *models.Table, required []string, st *Stats, log *logger.Logger) {
	for _, row := range table.Rows {
		for _, col := range table.Columns {
			v := row[col]
			if isBlank(v) {
				row[col] = nil
				v = nil
			}

			if v == nil {
				st.NullCounts[col]++
			}
		}
	}

	if st.TotalNulls() == 0 {
		log.Info("No null values found")
	}

	for _, col := range st.NullColumns() {
		log.Info("Null values in column", "column", col, "count", st.NullCounts[col])
	}

	if len(required) == 0 {
		return
	}

	kept := table.Rows[:0]

	for _, row := range table.Rows {
		if hasRequired(row, required) {
			kept = append(kept, row)
		}
	}

	st.Dropped = len(table.Rows) - len(kept)
	table.Rows = kept

	log.Info("Removed records with missing required values", "count", st.Dropped, "required", required)
}

func hasRequired(row models.FlatRecord, required []string) bool {
	for _, col := range required {
		if row[col] == nil {
			return false
		}
	}

	return true
}

// isBlank reports whether v is a whitespace-only string or an empty list or mapping.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case []models.NormalizedLocation:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}
