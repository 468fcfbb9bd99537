package validator

import (
	"errors"
	"strings"
	"testing"

	"jobetl/internal/models"
)

func strp(s string) *string { return &s }

func salariesTable(rows ...models.FlatRecord) *models.Table {
	return &models.Table{
		Kind:    models.KindSalaries,
		Columns: []string{"adz_job_id", "company_name", "salary_min", "salary_max", "locations", "categories", "level"},
		Rows:    rows,
	}
}

func salaryRow(id int64) models.FlatRecord {
	return models.FlatRecord{
		"adz_job_id":   id,
		"company_name": "Acme",
		"salary_min":   50000.0,
		"salary_max":   60000.0,
		"locations": []models.NormalizedLocation{
			{CountryCode: strp("US"), SubdivisionCode: strp("US-TX"), City: strp("Austin")},
		},
		"categories": models.CategoryDataAnalytics,
		"level":      models.LevelEntry,
	}
}

func TestValidate_ValidTable(t *testing.T) {
	v := NewTableValidator()

	result, err := v.Validate(salariesTable(salaryRow(1), salaryRow(2)))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !result.IsValid {
		t.Fatalf("expected valid, got errors: %v", result.Err())
	}

	if result.Stats.TotalRows != 2 || result.Stats.ValidRows != 2 || result.Stats.InvalidRows != 0 {
		t.Errorf("stats = %+v", result.Stats)
	}

	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	if result.Err() != nil {
		t.Errorf("Err() = %v, want nil", result.Err())
	}
}

func TestValidate_RowErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(models.FlatRecord)
		want   error
	}{
		{"missing key", func(r models.FlatRecord) { r["adz_job_id"] = nil }, ErrKeyRequired},
		{"missing required", func(r models.FlatRecord) { r["salary_max"] = nil }, ErrFieldRequired},
		{"unknown category", func(r models.FlatRecord) { r["categories"] = "Cooking" }, ErrUnknownValue},
		{"unknown level", func(r models.FlatRecord) { r["level"] = "Staff" }, ErrUnknownValue},
		{"raw locations", func(r models.FlatRecord) { r["locations"] = []any{"Austin"} }, ErrInvalidLocations},
		{
			"partial sentinel",
			func(r models.FlatRecord) {
				r["locations"] = []models.NormalizedLocation{{CountryCode: strp(models.RemoteMarker), City: strp("Austin")}}
			},
			ErrPartialSentinel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := salaryRow(2)
			tt.mutate(bad)

			result, err := NewTableValidator().Validate(salariesTable(salaryRow(1), bad))
			if err != nil {
				t.Fatalf("Validate failed: %v", err)
			}

			if result.IsValid {
				t.Fatal("expected invalid result")
			}

			if result.Stats.ValidRows != 1 || result.Stats.InvalidRows != 1 {
				t.Errorf("stats = %+v, want 1 valid and 1 invalid", result.Stats)
			}

			if !errors.Is(result.Err(), tt.want) {
				t.Errorf("Err() = %v, want %v", result.Err(), tt.want)
			}

			if result.Errors[0].Row != 2 {
				t.Errorf("error row = %d, want 2", result.Errors[0].Row)
			}
		})
	}
}

func TestValidate_DuplicateKey(t *testing.T) {
	result, err := NewTableValidator().Validate(salariesTable(salaryRow(7), salaryRow(8), salaryRow(7)))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(result.Errors))
	}

	e := result.Errors[0]
	if !errors.Is(e, ErrDuplicateKey) || e.Row != 3 || e.Value != "7" {
		t.Errorf("error = %v", e)
	}

	if !strings.Contains(e.Error(), "first seen in row 1") {
		t.Errorf("Error() = %q, want reference to first row", e.Error())
	}
}

func TestValidate_Warnings(t *testing.T) {
	row := salaryRow(1)
	row["salary_min"] = 90000.0
	row["locations"] = []models.NormalizedLocation{
		{CountryCode: strp("GB"), SubdivisionCode: strp("US-KS"), City: strp("Lenexa")},
		models.RemoteLocation(),
	}

	result, err := NewTableValidator().Validate(salariesTable(row))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !result.IsValid {
		t.Fatalf("warnings must not invalidate: %v", result.Err())
	}

	if len(result.Warnings) != 2 {
		t.Fatalf("got warnings %v, want 2", result.Warnings)
	}

	if !strings.Contains(result.Warnings[0], "US-KS") || !strings.Contains(result.Warnings[1], "salary_min") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestValidate_JobsAndCompanies(t *testing.T) {
	jobs := &models.Table{
		Kind:    models.KindJobs,
		Columns: []string{"job_id", "level", "locations"},
		Rows: []models.FlatRecord{
			{"job_id": int64(1), "level": "Management", "locations": []models.NormalizedLocation{models.RemoteLocation()}},
			{"job_id": int64(2), "level": nil, "locations": nil},
		},
	}

	result, err := NewTableValidator().Validate(jobs)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if result.Stats.ValidRows != 1 || !errors.Is(result.Err(), ErrFieldRequired) {
		t.Errorf("jobs result = %s, err = %v", result, result.Err())
	}

	companies := &models.Table{
		Kind:    models.KindCompanies,
		Columns: []string{"company_id", "locations"},
		Rows:    []models.FlatRecord{{"company_id": int64(1), "locations": nil}},
	}

	result, err = NewTableValidator().Validate(companies)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !result.IsValid {
		t.Errorf("companies without locations should be valid: %v", result.Err())
	}
}

func TestValidate_UnknownEntity(t *testing.T) {
	_, err := NewTableValidator().Validate(&models.Table{Kind: "people"})
	if !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("err = %v, want ErrUnknownEntity", err)
	}
}

func TestValidationResult_String(t *testing.T) {
	r := &ValidationResult{IsValid: false, Stats: ValidationStats{TotalRows: 3, ValidRows: 2, InvalidRows: 1}}

	want := "INVALID | Total: 3 | Valid: 2 | Invalid: 1 | Warnings: 0"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
