package normalizer

import (
	"fmt"
	"strings"

	"jobetl/internal/classifier"
	"jobetl/internal/geo"
	"jobetl/internal/logger"
	"jobetl/internal/models"
	"jobetl/pkg/utils"
)

const fragmentLogWidth = 80

type jobsHandler struct {
	c   *Cleaner
	log *logger.Logger
}

func (h *jobsHandler) naturalKey() string  { return "job_id" }
func (h *jobsHandler) idColumns() []string { return []string{"job_id", "company_id"} }
func (h *jobsHandler) required() []string  { return []string{"locations"} }
func (h *jobsHandler) appended() []string  { return nil }

func (h *jobsHandler) coerce(models.FlatRecord) {}

func (h *jobsHandler) enrich(row models.FlatRecord, st *Stats) {
	if name, ok := row["job_name"].(string); ok {
		row["job_name"] = strings.TrimSpace(name)
	}

	row["categories"] = firstName(row["categories"])
	row["locations"] = h.c.locations(geo.SourceDescriptive, namedFragments(row["locations"]), st, h.log)
}

type companiesHandler struct {
	c   *Cleaner
	log *logger.Logger
}

func (h *companiesHandler) naturalKey() string  { return "company_id" }
func (h *companiesHandler) idColumns() []string { return []string{"company_id"} }
func (h *companiesHandler) required() []string  { return nil }
func (h *companiesHandler) appended() []string  { return nil }

func (h *companiesHandler) coerce(row models.FlatRecord) {
	if desc, ok := row["description"].(string); ok {
		row["description"] = utils.CollapseSpace(desc)
	}
}

func (h *companiesHandler) enrich(row models.FlatRecord, st *Stats) {
	row["locations"] = h.c.locations(geo.SourceDescriptive, namedFragments(row["locations"]), st, h.log)
}

type salariesHandler struct {
	c   *Cleaner
	log *logger.Logger
}

func (h *salariesHandler) naturalKey() string  { return "adz_job_id" }
func (h *salariesHandler) idColumns() []string { return []string{"adz_job_id"} }

func (h *salariesHandler) required() []string {
	return []string{"salary_min", "salary_max", "company_name"}
}

func (h *salariesHandler) appended() []string { return []string{"categories", "level"} }

func (h *salariesHandler) coerce(row models.FlatRecord) {
	for _, col := range []string{"salary_min", "salary_max"} {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}

		f, err := ParseNumber(v)
		if err != nil {
			h.log.Debug("Non-numeric salary set to null", "column", col, "value", v)
			row[col] = nil

			continue
		}

		row[col] = f
	}
}

func (h *salariesHandler) enrich(row models.FlatRecord, st *Stats) {
	title, _ := row["adz_job_name"].(string)

	res := classifier.Classify(classifier.CleanTitle(title))
	row["categories"] = res.Category
	row["level"] = res.Level

	if res.Defaulted() {
		st.ClassificationDefaults++
		h.log.Warn("Title classification fell back to default",
			"title", title,
			"category", res.Category,
			"category_source", res.CategorySource.String(),
			"level", res.Level,
		)
	}

	row["locations"] = h.c.locations(geo.SourceStructured, stringFragments(row["locations"]), st, h.log)
}

// locations normalizes fragments and counts results the catalog cannot resolve.
func (c *Cleaner) locations(kind geo.SourceKind, fragments []string, st *Stats, log *logger.Logger) []models.NormalizedLocation {
	locs := c.geo.Normalize(kind, fragments)

	for _, loc := range locs {
		if c.geo.Resolved(loc) {
			continue
		}

		st.GeoUnresolved++
		log.Warn("Unresolved location",
			"source", kind.String(),
			"fragments", utils.Ellipsis(utils.JoinNonEmpty(" | ", fragments...), fragmentLogWidth),
			"city", models.Deref(loc.City),
		)
	}

	return locs
}

// namedFragments extracts "name" from a list of {"name": ...} objects.
// Plain strings in the list are taken as-is.
func namedFragments(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))

	for _, item := range items {
		switch x := item.(type) {
		case map[string]any:
			if name, ok := x["name"].(string); ok {
				out = append(out, name)
			}
		case string:
			out = append(out, x)
		}
	}

	return out
}

// stringFragments converts a list of scalars to strings, skipping nested values.
func stringFragments(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))

	for _, item := range items {
		switch x := item.(type) {
		case string:
			out = append(out, x)
		case nil, map[string]any, []any:
		default:
			out = append(out, fmt.Sprint(x))
		}
	}

	return out
}

// firstName returns the "name" of the first object in a list, or nil.
func firstName(v any) any {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	first, ok := items[0].(map[string]any)
	if !ok {
		return nil
	}

	name, ok := first["name"]
	if !ok {
		return nil
	}

	return name
}
