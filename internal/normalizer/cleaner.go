// Package normalizer cleans flattened entity tables into their canonical form.
package normalizer

import (
	"errors"
	"fmt"

	"jobetl/internal/geo"
	"jobetl/internal/logger"
	"jobetl/internal/models"
)

// ErrUnknownEntity is returned for a table whose kind has no handler.
var ErrUnknownEntity = errors.New("no cleaner for entity kind")

const dateColumn = "publication_date"

// entityHandler holds the per-kind cleaning rules. One is selected per Clean call.
type entityHandler interface {
	naturalKey() string
	idColumns() []string
	required() []string
	appended() []string
	coerce(row models.FlatRecord)
	enrich(row models.FlatRecord, st *Stats)
}

// Cleaner coerces, deduplicates, enriches and finalizes entity tables.
type Cleaner struct {
	geo *geo.Normalizer
	log *logger.Logger
}

// NewCleaner creates a cleaner using the given location normalizer.
func NewCleaner(geoNormalizer *geo.Normalizer, log *logger.Logger) *Cleaner {
	return &Cleaner{
		geo: geoNormalizer,
		log: log,
	}
}

// Clean returns the cleaned version of table along with its statistics.
// Rows are mutated in place. An identifier that cannot be coerced aborts
// the whole batch with ErrTypeCoercion.
func (c *Cleaner) Clean(table *models.Table) (*models.Table, Stats, error) {
	st := Stats{Entity: table.Kind, Input: table.Len(), NullCounts: map[string]int{}}

	log := c.log.With("entity", string(table.Kind))

	h, err := c.handlerFor(table.Kind, log)
	if err != nil {
		return nil, st, err
	}

	log.Info("Starting data cleaning", "records", st.Input)

	for i, row := range table.Rows {
		if err := c.coerceRow(row, h, &st); err != nil {
			return nil, st, fmt.Errorf("%s row %d: %w", table.Kind, i, err)
		}
	}

	rows, dupes := dedupe(table.Rows, h.naturalKey())
	st.Duplicates = dupes
	log.Info("Removed duplicate records", "count", dupes, "key", h.naturalKey())

	for _, row := range rows {
		h.enrich(row, &st)
	}

	out := &models.Table{
		Kind:    table.Kind,
		Columns: append([]string(nil), table.Columns...),
		Rows:    rows,
	}

	for _, col := range h.appended() {
		out.AddColumn(col)
	}

	c.finalize(out, h.required(), &st, log)

	st.Output = out.Len()
	log.Info("Finished data cleaning",
		"output", st.Output,
		"duplicates", st.Duplicates,
		"dropped", st.Dropped,
		"geo_unresolved", st.GeoUnresolved,
		"classification_defaults", st.ClassificationDefaults,
	)

	return out, st, nil
}

func (c *Cleaner) handlerFor(kind models.EntityKind, log *logger.Logger) (entityHandler, error) {
	switch kind {
	case models.KindJobs:
		return &jobsHandler{c: c, log: log}, nil
	case models.KindCompanies:
		return &companiesHandler{c: c, log: log}, nil
	case models.KindSalaries:
		return &salariesHandler{c: c, log: log}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, kind)
	}
}

func (c *Cleaner) coerceRow(row models.FlatRecord, h entityHandler, st *Stats) error {
	if raw, ok := row[dateColumn]; ok {
		t, err := ParseTime(raw)
		if err != nil {
			if raw != nil && !isBlank(raw) {
				st.UnparsedDates++
				c.log.Debug("Unparseable date set to null", "value", raw, "error", err)
			}

			row[dateColumn] = nil
		} else {
			row[dateColumn] = t
		}
	}

	for _, col := range h.idColumns() {
		id, err := ParseID(row[col])
		if err != nil {
			return fmt.Errorf("%s: %w", col, err)
		}

		row[col] = id
	}

	h.coerce(row)

	return nil
}

// dedupe keeps the first row for every key value, preserving order.
func dedupe(rows []models.FlatRecord, key string) ([]models.FlatRecord, int) {
	seen := make(map[any]struct{}, len(rows))
	out := make([]models.FlatRecord, 0, len(rows))

	for _, row := range rows {
		k := row[key]
		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}
		out = append(out, row)
	}

	return out, len(rows) - len(out)
}
