// Package output serializes cleaned tables to CSV files with checksum sidecars.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"jobetl/internal/logger"
	"jobetl/internal/models"
	"jobetl/pkg/metadata"
)

// ErrEmptyHeader is returned when a CSV file has no header row.
var ErrEmptyHeader = errors.New("csv file has no header row")

// Result describes one written file.
type Result struct {
	Path     string
	Rows     int
	Metadata *metadata.Metadata
}

// Writer writes tables into a single output directory.
type Writer struct {
	dir           string
	writeMetadata bool
	log           *logger.Logger
}

// NewWriter creates a writer for dir.
func NewWriter(dir string, writeMetadata bool, log *logger.Logger) *Writer {
	return &Writer{dir: dir, writeMetadata: writeMetadata, log: log}
}

// Write encodes table as CSV into filename. The file is replaced atomically.
// validated is recorded in the sidecar.
func (w *Writer) Write(table *models.Table, filename string, validated bool) (Result, error) {
	data, err := Encode(table)
	if err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(w.dir, filename)
	if err := writeAtomic(path, data); err != nil {
		return Result{}, err
	}

	res := Result{Path: path, Rows: table.Len()}

	if w.writeMetadata {
		res.Metadata = metadata.New(data, string(table.Kind), table.Len(), validated)
		if err := metadata.WriteSidecar(path, res.Metadata); err != nil {
			return Result{}, err
		}
	}

	w.log.Info("Wrote output file", "entity", string(table.Kind), "path", path, "rows", res.Rows, "validated", validated)

	return res, nil
}

// Encode renders table as CSV with a header row.
func Encode(table *models.Table) ([]byte, error) {
	var buf bytes.Buffer

	cw := csv.NewWriter(&buf)

	if err := cw.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(table.Columns))

	for i, row := range table.Rows {
		for j, col := range table.Columns {
			cell, err := FormatValue(row[col])
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, col, err)
			}

			record[j] = cell
		}

		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// FormatValue renders one cell. Null is empty, timestamps are RFC 3339 UTC
// and lists or mappings are JSON.
func FormatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case time.Time:
		return x.UTC().Format(time.RFC3339), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case json.Number:
		return x.String(), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", fmt.Errorf("failed to encode %T: %w", v, err)
		}

		return string(b), nil
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	return nil
}

// File is a decoded CSV file.
type File struct {
	Header  []string
	Records [][]string
}

// Index returns the position of column name, or -1.
func (f *File) Index(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}

	return -1
}

// Decode parses CSV data produced by Encode.
func Decode(data []byte) (*File, error) {
	cr := csv.NewReader(bytes.NewReader(data))

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyHeader
	}

	return &File{Header: rows[0], Records: rows[1:]}, nil
}
