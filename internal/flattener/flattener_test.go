package flattener

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jobetl/internal/logger"
	"jobetl/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}

	return path
}

const jobsPage1 = `[
  {"id": 101, "name": " Senior Backend Developer ", "company": {"id": 7},
   "levels": [{"name": "Senior Level"}, {"name": "Mid Level"}],
   "publication_date": "2024-03-01T10:00:00Z",
   "locations": [{"name": "Austin, TX"}], "categories": [{"name": "Software Engineering"}]},
  {"id": 102, "name": "Data Analyst", "company": {"id": 8},
   "levels": [{"name": "Entry Level"}],
   "publication_date": "2024-03-02T10:00:00Z",
   "locations": [], "categories": []}
]`

const jobsPage2 = `[
  {"id": 103, "name": "Intern", "company": {"id": 9},
   "levels": [{"name": "Internship"}],
   "publication_date": "2024-03-03T10:00:00Z",
   "locations": [{"name": "Flexible / Remote"}], "categories": [{"name": "Data and Analytics"}]}
]`

func TestFlattenDir_Jobs(t *testing.T) {
	dir := t.TempDir()
	// Written out of order to check lexical file ordering.
	writeFile(t, dir, "page_2.json", jobsPage2)
	writeFile(t, dir, "page_1.json", jobsPage1)
	writeFile(t, dir, "notes.txt", "ignored")

	table, err := New(logger.Discard()).FlattenDir(dir, JobsSpec)
	if err != nil {
		t.Fatalf("FlattenDir failed: %v", err)
	}

	if table.Kind != models.KindJobs {
		t.Errorf("Kind = %s, want jobs", table.Kind)
	}

	wantCols := []string{"job_id", "company_id", "job_name", "level", "publication_date", "locations", "categories"}
	if len(table.Columns) != len(wantCols) {
		t.Fatalf("Columns = %v, want %v", table.Columns, wantCols)
	}

	for i, c := range wantCols {
		if table.Columns[i] != c {
			t.Errorf("Columns[%d] = %s, want %s", i, table.Columns[i], c)
		}
	}

	if table.Len() != 3 {
		t.Fatalf("Len = %d, want 3", table.Len())
	}

	first := table.Rows[0]
	if first["job_id"] != json.Number("101") {
		t.Errorf("job_id = %#v, want json.Number(101)", first["job_id"])
	}

	if first["company_id"] != json.Number("7") {
		t.Errorf("company_id = %#v, want 7", first["company_id"])
	}

	if first["level"] != "Senior Level" {
		t.Errorf("level = %#v, want first level name", first["level"])
	}

	if first["job_name"] != " Senior Backend Developer " {
		t.Errorf("job_name = %#v, flattening must not trim", first["job_name"])
	}

	if table.Rows[2]["job_id"] != json.Number("103") {
		t.Errorf("last row job_id = %#v, want 103 from page_2", table.Rows[2]["job_id"])
	}
}

func TestFlatten_MissingLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "jobs.json", `[{"id": 1, "name": "x", "company": {"id": 1}, "levels": [],
	  "publication_date": "", "locations": [], "categories": []}]`)

	_, err := New(logger.Discard()).Flatten([]string{path}, JobsSpec)
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
}

func TestFlatten_SchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	// No record carries "size".
	path := writeFile(t, dir, "companies.json", `[{"id": 1, "name": "Acme", "description": "d",
	  "publication_date": "2024-01-01", "locations": [], "industries": []}]`)

	_, err := New(logger.Discard()).Flatten([]string{path}, CompaniesSpec)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestFlatten_PartiallyMissingPathIsNull(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "salaries.json", `[
	  {"id": "5001", "company": {"display_name": "Acme"}, "title": "Dev", "category": {"label": "IT Jobs"},
	   "created": "2024-05-01T00:00:00Z", "location": {"area": ["US", "Texas", "Austin"]},
	   "salary_min": 100000, "salary_max": 120000, "salary_is_predicted": "0"},
	  {"id": "5002", "company": {}, "title": "Ops", "category": {"label": "IT Jobs"},
	   "created": "2024-05-02T00:00:00Z", "location": {"area": ["US"]},
	   "salary_min": 90000, "salary_max": 95000, "salary_is_predicted": "1"}
	]`)

	table, err := New(logger.Discard()).Flatten([]string{path}, SalariesSpec)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	if got := table.Rows[1]["company_name"]; got != nil {
		t.Errorf("company_name = %#v, want nil", got)
	}

	area, ok := table.Rows[0]["locations"].([]any)
	if !ok || len(area) != 3 {
		t.Errorf("locations = %#v, want 3-element list", table.Rows[0]["locations"])
	}
}

func TestFlattenDir_NoInputFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "nothing here")

	_, err := New(logger.Discard()).FlattenDir(dir, CompaniesSpec)
	if !errors.Is(err, ErrNoInputFiles) {
		t.Errorf("err = %v, want ErrNoInputFiles", err)
	}
}

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"array", `[{"id": 1}, {"id": 2}]`, 2, false},
		{"single object", `{"id": 1}`, 1, false},
		{"empty array", `[]`, 0, false},
		{"scalar", `42`, 0, true},
		{"array of scalars", `[1, 2]`, 0, true},
		{"broken", `[{"id": 1}`, 0, true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, filepath.Base(t.Name())+string(rune('a'+i))+".json", tt.content)

			got, err := ReadRecords(path)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("err = %v, want ErrInvalidInput", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ReadRecords failed: %v", err)
			}

			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	rec := map[string]any{
		"id":         json.Number("1"),
		"company":    map[string]any{"id": json.Number("7"), "meta": map[string]any{"tier": "gold"}},
		"size.name":  "flattened key",
		"levels":     []any{},
		"empty_nest": map[string]any{},
	}

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"id", json.Number("1"), true},
		{"company.id", json.Number("7"), true},
		{"company.meta.tier", "gold", true},
		{"size.name", "flattened key", true},
		{"company.missing", nil, false},
		{"levels.name", nil, false},
		{"empty_nest.x", nil, false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Lookup(rec, tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%q) = (%#v, %v), want (%#v, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSpecFor(t *testing.T) {
	for _, kind := range models.AllKinds {
		spec, err := SpecFor(kind)
		if err != nil {
			t.Fatalf("SpecFor(%s) failed: %v", kind, err)
		}

		if spec.Kind != kind {
			t.Errorf("SpecFor(%s).Kind = %s", kind, spec.Kind)
		}
	}

	if _, err := SpecFor("events"); err == nil {
		t.Error("SpecFor(events) expected error")
	}
}
