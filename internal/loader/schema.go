package loader

import (
	"fmt"
	"strings"

	"jobetl/internal/models"
)

// Column is one staging table column.
type Column struct {
	Name string
	Type string
}

var locationColumns = []Column{
	{"location_city", typeText},
	{"location_state", typeText},
	{"location_country", typeText},
}

// tableColumns lists the staging columns per entity. Every location of a
// processed row becomes its own staging row.
var tableColumns = map[models.EntityKind][]Column{
	models.KindJobs: concat(
		[]Column{
			{"job_id", typeInt},
			{"company_id", typeInt},
			{"job_name", typeText},
			{"level", typeText},
			{"publication_date", typeTime},
		},
		locationColumns,
		[]Column{{"categories", typeText}},
	),
	models.KindCompanies: concat(
		[]Column{
			{"company_id", typeInt},
			{"company_name", typeText},
			{"description", typeText},
			{"publication_date", typeTime},
			{"size", typeText},
		},
		locationColumns,
		[]Column{{"industry_name", typeText}},
	),
	models.KindSalaries: concat(
		[]Column{
			{"adz_job_id", typeInt},
			{"company_name", typeText},
			{"adz_job_name", typeText},
			{"adz_category", typeText},
			{"publication_date", typeTime},
		},
		locationColumns,
		[]Column{
			{"salary_min", typeFloat},
			{"salary_max", typeFloat},
			{"salary_is_predicted", typeText},
			{"categories", typeText},
			{"level", typeText},
		},
	),
}

func concat(parts ...[]Column) []Column {
	var out []Column
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// Columns returns the staging columns of kind.
func Columns(kind models.EntityKind) ([]Column, error) {
	cols, ok := tableColumns[kind]
	if !ok {
		return nil, fmt.Errorf("no staging table for entity %q", kind)
	}

	return cols, nil
}

func createTableSQL(d Dialect, table string, cols []Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c.Name + " " + d.types[c.Type]
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(defs, ",\n\t"))
}

func insertSQL(d Dialect, table string, cols []Column) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))

	for i, c := range cols {
		names[i] = c.Name
		marks[i] = d.Placeholder(i + 1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(marks, ", "))
}
