// Package models defines data structures shared by the flattener, cleaner and writers.
package models

import "fmt"

// EntityKind identifies one of the three record categories processed per run.
type EntityKind string

// Entity kinds.
const (
	KindJobs      EntityKind = "jobs"
	KindCompanies EntityKind = "companies"
	KindSalaries  EntityKind = "salaries"
)

// AllKinds lists entity kinds in the order a run processes them.
var AllKinds = []EntityKind{KindJobs, KindCompanies, KindSalaries}

// ParseEntityKind converts a string into an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindJobs, KindCompanies, KindSalaries:
		return EntityKind(s), nil
	default:
		return "", fmt.Errorf("unknown entity kind: %q", s)
	}
}

// RawRecord is one decoded source-API object. Numbers are json.Number.
type RawRecord map[string]any

// FlatRecord is a single row keyed by output column name. A nil value is null.
type FlatRecord map[string]any

// Table is an ordered set of flat rows sharing one column layout.
type Table struct {
	Kind    EntityKind
	Columns []string
	Rows    []FlatRecord
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// HasColumn reports whether name is part of the column layout.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}

	return false
}

// AddColumn appends name to the column layout if it is not there yet.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}
