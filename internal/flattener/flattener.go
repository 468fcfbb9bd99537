// Package flattener turns directories of raw JSON array files into flat tables.
package flattener

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jobetl/internal/logger"
	"jobetl/internal/models"
)

// Flattening errors.
var (
	ErrNoInputFiles   = errors.New("no JSON input files")
	ErrSchemaMismatch = errors.New("source path missing from file")
	ErrMissingField   = errors.New("required field missing")
	ErrInvalidInput   = errors.New("input is not a JSON array of objects")
)

// Flattener reads raw files and projects them onto an EntitySpec.
type Flattener struct {
	log *logger.Logger
}

// New creates a flattener.
func New(log *logger.Logger) *Flattener {
	return &Flattener{log: log}
}

// ListFiles returns the JSON files of dir in lexical order.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir %s: %w", dir, err)
	}

	var files []string

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}

		files = append(files, filepath.Join(dir, e.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputFiles, dir)
	}

	sort.Strings(files)

	return files, nil
}

// FlattenDir flattens every JSON file found in dir.
func (f *Flattener) FlattenDir(dir string, spec EntitySpec) (*models.Table, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	return f.Flatten(files, spec)
}

// Flatten concatenates the selected fields of every record in files.
func (f *Flattener) Flatten(files []string, spec EntitySpec) (*models.Table, error) {
	if len(files) == 0 {
		return nil, ErrNoInputFiles
	}

	table := &models.Table{
		Kind:    spec.Kind,
		Columns: spec.ColumnNames(),
	}

	for _, path := range files {
		rows, err := f.flattenFile(path, spec)
		if err != nil {
			return nil, err
		}

		table.Rows = append(table.Rows, rows...)
	}

	f.log.Debug("Flattened entity", "entity", spec.Kind, "files", len(files), "rows", table.Len())

	return table, nil
}

func (f *Flattener) flattenFile(path string, spec EntitySpec) ([]models.FlatRecord, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}

	if spec.DeriveLevel {
		for i, rec := range records {
			name, err := firstLevelName(rec)
			if err != nil {
				return nil, fmt.Errorf("%s record %d: %w", filepath.Base(path), i, err)
			}

			rec[levelPath] = name
		}
	}

	if len(records) > 0 {
		if err := checkPaths(records, spec); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	rows := make([]models.FlatRecord, 0, len(records))

	for _, rec := range records {
		row := make(models.FlatRecord, len(spec.Columns))

		for _, col := range spec.Columns {
			v, _ := Lookup(rec, col.Path)
			row[col.Name] = v
		}

		rows = append(rows, row)
	}

	f.log.Debug("Flattened file", "file", filepath.Base(path), "records", len(rows))

	return rows, nil
}

// ReadRecords decodes a JSON file holding an array of objects. A single
// top-level object is treated as a one-element array.
func ReadRecords(path string) ([]models.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, filepath.Base(path), err)
	}

	switch v := doc.(type) {
	case []any:
		records := make([]models.RawRecord, 0, len(v))

		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s element %d", ErrInvalidInput, filepath.Base(path), i)
			}

			records = append(records, obj)
		}

		return records, nil
	case map[string]any:
		return []models.RawRecord{v}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, filepath.Base(path))
	}
}

// Lookup resolves a dotted path through nested objects. A key holding the
// full dotted path wins over traversal.
func Lookup(rec map[string]any, path string) (any, bool) {
	if v, ok := rec[path]; ok {
		return v, true
	}

	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}

	child, ok := rec[head].(map[string]any)
	if !ok {
		return nil, false
	}

	return Lookup(child, rest)
}

// checkPaths fails when a source path is absent from every record.
func checkPaths(records []models.RawRecord, spec EntitySpec) error {
	for _, col := range spec.Columns {
		seen := false

		for _, rec := range records {
			if _, ok := Lookup(rec, col.Path); ok {
				seen = true
				break
			}
		}

		if !seen {
			return fmt.Errorf("%w: %s", ErrSchemaMismatch, col.Path)
		}
	}

	return nil
}

func firstLevelName(rec models.RawRecord) (any, error) {
	levels, ok := rec["levels"].([]any)
	if !ok || len(levels) == 0 {
		return nil, fmt.Errorf("%w: levels", ErrMissingField)
	}

	first, ok := levels[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: levels[0]", ErrMissingField)
	}

	name, ok := first["name"]
	if !ok {
		return nil, fmt.Errorf("%w: levels[0].name", ErrMissingField)
	}

	return name, nil
}
