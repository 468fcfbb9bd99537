package flattener

import (
	"fmt"

	"jobetl/internal/models"
)

// levelPath is the derived jobs column holding the first entry of "levels".
const levelPath = "levels.name"

// Column maps a dotted source path onto an output column name.
type Column struct {
	Path string
	Name string
}

// EntitySpec describes which fields are extracted for one entity kind.
type EntitySpec struct {
	Kind    models.EntityKind
	Columns []Column
	// DeriveLevel fills levels.name from levels[0].name before selection.
	DeriveLevel bool
}

// ColumnNames returns the output column names in order.
func (s EntitySpec) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}

	return names
}

// JobsSpec selects The Muse job fields.
var JobsSpec = EntitySpec{
	Kind: models.KindJobs,
	Columns: []Column{
		{"id", "job_id"},
		{"company.id", "company_id"},
		{"name", "job_name"},
		{levelPath, "level"},
		{"publication_date", "publication_date"},
		{"locations", "locations"},
		{"categories", "categories"},
	},
	DeriveLevel: true,
}

// CompaniesSpec selects The Muse company fields.
var CompaniesSpec = EntitySpec{
	Kind: models.KindCompanies,
	Columns: []Column{
		{"id", "company_id"},
		{"name", "company_name"},
		{"description", "description"},
		{"publication_date", "publication_date"},
		{"size.name", "size"},
		{"locations", "locations"},
		{"industries", "industries"},
	},
}

// SalariesSpec selects Adzuna salary fields.
var SalariesSpec = EntitySpec{
	Kind: models.KindSalaries,
	Columns: []Column{
		{"id", "adz_job_id"},
		{"company.display_name", "company_name"},
		{"title", "adz_job_name"},
		{"category.label", "adz_category"},
		{"created", "publication_date"},
		{"location.area", "locations"},
		{"salary_min", "salary_min"},
		{"salary_max", "salary_max"},
		{"salary_is_predicted", "salary_is_predicted"},
	},
}

// SpecFor returns the extraction spec for kind.
func SpecFor(kind models.EntityKind) (EntitySpec, error) {
	switch kind {
	case models.KindJobs:
		return JobsSpec, nil
	case models.KindCompanies:
		return CompaniesSpec, nil
	case models.KindSalaries:
		return SalariesSpec, nil
	default:
		return EntitySpec{}, fmt.Errorf("no flatten spec for entity %q", kind)
	}
}
