// Package validator checks cleaned entity tables before they are written.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"jobetl/internal/models"
)

// Validation errors.
var (
	ErrKeyRequired      = errors.New("natural key is required")
	ErrDuplicateKey     = errors.New("duplicate natural key")
	ErrFieldRequired    = errors.New("field is required")
	ErrUnknownValue     = errors.New("value outside vocabulary")
	ErrPartialSentinel  = errors.New("partial remote sentinel")
	ErrUnknownEntity    = errors.New("no validation rules for entity")
	ErrInvalidLocations = errors.New("locations must be normalized")
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("row %d [%s]: %v (found %q)", e.Row, e.Column, e.Err, e.Value)
	}

	return fmt.Sprintf("row %d [%s]: %v", e.Row, e.Column, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats contains validation statistics.
type ValidationStats struct {
	TotalRows   int
	ValidRows   int
	InvalidRows int
}

// Rules are the invariants a cleaned table of one kind must hold.
type Rules struct {
	Key      string
	Required []string
	Vocab    map[string][]string
	// SalaryRange warns when salary_min exceeds salary_max.
	SalaryRange bool
}

var categories = []string{
	models.CategorySoftwareEngineering,
	models.CategoryDataAnalytics,
	models.CategoryComputerIT,
}

var levels = []string{
	models.LevelInternship,
	models.LevelEntry,
	models.LevelSenior,
	models.LevelMid,
}

var rulesByKind = map[models.EntityKind]Rules{
	models.KindJobs: {
		Key:      "job_id",
		Required: []string{"locations"},
	},
	models.KindCompanies: {
		Key: "company_id",
	},
	models.KindSalaries: {
		Key:         "adz_job_id",
		Required:    []string{"salary_min", "salary_max", "company_name"},
		Vocab:       map[string][]string{"categories": categories, "level": levels},
		SalaryRange: true,
	},
}

// RulesFor returns the rules for kind.
func RulesFor(kind models.EntityKind) (Rules, error) {
	r, ok := rulesByKind[kind]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %q", ErrUnknownEntity, kind)
	}

	return r, nil
}

// TableValidator validates cleaned tables.
type TableValidator struct{}

// NewTableValidator creates a new validator.
func NewTableValidator() *TableValidator {
	return &TableValidator{}
}

// Validate checks every row of table against the rules of its kind.
func (v *TableValidator) Validate(table *models.Table) (*ValidationResult, error) {
	rules, err := RulesFor(table.Kind)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
		Stats:    ValidationStats{TotalRows: table.Len()},
	}

	seen := make(map[string]int, table.Len())

	for i, row := range table.Rows {
		rowErrors := v.validateRow(i+1, row, rules, seen)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.Stats.InvalidRows++

			continue
		}

		result.Stats.ValidRows++

		result.Warnings = append(result.Warnings, rowWarnings(i+1, row, rules)...)
	}

	result.IsValid = len(result.Errors) == 0

	return result, nil
}

func (v *TableValidator) validateRow(n int, row models.FlatRecord, rules Rules, seen map[string]int) []ValidationError {
	var errs []ValidationError

	key := row[rules.Key]
	if key == nil {
		errs = append(errs, ValidationError{Row: n, Column: rules.Key, Err: ErrKeyRequired})
	} else {
		k := fmt.Sprint(key)
		if first, dup := seen[k]; dup {
			errs = append(errs, ValidationError{
				Row: n, Column: rules.Key, Value: k,
				Err: fmt.Errorf("%w (first seen in row %d)", ErrDuplicateKey, first),
			})
		} else {
			seen[k] = n
		}
	}

	for _, col := range rules.Required {
		if row[col] == nil {
			errs = append(errs, ValidationError{Row: n, Column: col, Err: ErrFieldRequired})
		}
	}

	for col, allowed := range rules.Vocab {
		s, _ := row[col].(string)
		if !contains(allowed, s) {
			errs = append(errs, ValidationError{Row: n, Column: col, Value: s, Err: ErrUnknownValue})
		}
	}

	if raw, ok := row["locations"]; ok && raw != nil {
		locs, ok := raw.([]models.NormalizedLocation)
		if !ok {
			errs = append(errs, ValidationError{Row: n, Column: "locations", Value: fmt.Sprintf("%T", raw), Err: ErrInvalidLocations})
		}

		for _, loc := range locs {
			if partialSentinel(loc) {
				errs = append(errs, ValidationError{Row: n, Column: "locations", Err: ErrPartialSentinel})
			}
		}
	}

	return errs
}

func rowWarnings(n int, row models.FlatRecord, rules Rules) []string {
	var warnings []string

	locs, _ := row["locations"].([]models.NormalizedLocation)
	for _, loc := range locs {
		country, sub := models.Deref(loc.CountryCode), models.Deref(loc.SubdivisionCode)
		if loc.IsRemote() || country == "" || sub == "" {
			continue
		}

		if !strings.HasPrefix(sub, country+"-") {
			warnings = append(warnings, fmt.Sprintf("Row %d: subdivision %s does not belong to country %s", n, sub, country))
		}
	}

	if rules.SalaryRange {
		lo, okLo := row["salary_min"].(float64)
		hi, okHi := row["salary_max"].(float64)

		if okLo && okHi && lo > hi {
			warnings = append(warnings, fmt.Sprintf("Row %d: salary_min %.2f exceeds salary_max %.2f", n, lo, hi))
		}
	}

	return warnings
}

// partialSentinel reports a location where some but not all fields carry the remote marker.
func partialSentinel(loc models.NormalizedLocation) bool {
	marked := 0

	for _, f := range []*string{loc.CountryCode, loc.SubdivisionCode, loc.City} {
		if models.Deref(f) == models.RemoteMarker {
			marked++
		}
	}

	return marked > 0 && marked < 3
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}

	return false
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}

	return fmt.Sprintf(
		"%s | Total: %d | Valid: %d | Invalid: %d | Warnings: %d",
		status,
		r.Stats.TotalRows,
		r.Stats.ValidRows,
		r.Stats.InvalidRows,
		len(r.Warnings),
	)
}

// Err joins the validation errors, or returns nil for a valid result.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}

	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}

	return errors.Join(errs...)
}
