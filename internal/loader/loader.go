// Package loader bulk-loads processed CSV files into raw staging tables.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"

	"jobetl/internal/config"
	"jobetl/internal/logger"
	"jobetl/internal/models"
	"jobetl/internal/output"
	"jobetl/pkg/metadata"
)

// ErrInvalidTableName is returned when the table prefix yields an unsafe identifier.
var ErrInvalidTableName = errors.New("invalid staging table name")

// ErrNotValidated is returned for a processed file whose sidecar records a failed validation.
var ErrNotValidated = errors.New("processed file did not pass validation")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Result describes one loaded file.
type Result struct {
	Kind     models.EntityKind
	Table    string
	Path     string
	Records  int
	Inserted int
}

// Loader writes processed entity files into staging tables.
type Loader struct {
	db      *sql.DB
	dialect Dialect
	cfg     config.LoaderConfig
	log     *logger.Logger
}

// New creates a loader on an open database.
func New(db *sql.DB, dialect Dialect, cfg config.LoaderConfig, log *logger.Logger) *Loader {
	return &Loader{db: db, dialect: dialect, cfg: cfg, log: log}
}

// TableName returns the staging table of kind.
func (l *Loader) TableName(kind models.EntityKind) (string, error) {
	name := l.cfg.TablePrefix + string(kind)
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}

	return name, nil
}

// EnsureSchema creates missing staging tables.
func (l *Loader) EnsureSchema(ctx context.Context, kinds []models.EntityKind) error {
	for _, kind := range kinds {
		table, cols, err := l.tableFor(kind)
		if err != nil {
			return err
		}

		if _, err := l.db.ExecContext(ctx, createTableSQL(l.dialect, table, cols)); err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
	}

	return nil
}

// Truncate empties the staging tables of kinds in a single transaction.
func (l *Loader) Truncate(ctx context.Context, kinds []models.EntityKind) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin truncate tx: %w", err)
	}

	for _, kind := range kinds {
		table, err := l.TableName(kind)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		if _, err := tx.ExecContext(ctx, fmt.Sprintf(l.dialect.truncate, table)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit truncate: %w", err)
	}

	l.log.Info("Truncated staging tables", "entities", kinds)

	return nil
}

// LoadFile verifies path against its sidecar (when enabled) and appends
// its rows to the staging table of kind.
func (l *Loader) LoadFile(ctx context.Context, kind models.EntityKind, path string) (Result, error) {
	res := Result{Kind: kind, Path: path}

	table, cols, err := l.tableFor(kind)
	if err != nil {
		return res, err
	}

	res.Table = table

	data, meta, err := l.read(path)
	if err != nil {
		return res, err
	}

	file, err := output.Decode(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	res.Records = len(file.Records)

	if meta != nil {
		if err := meta.CheckRows(res.Records); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}

		if !meta.Validation {
			return res, fmt.Errorf("%s: %w", path, ErrNotValidated)
		}
	}

	rows, err := expand(kind, file, cols, l.dialect)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	inserted, err := l.insert(ctx, table, cols, rows)
	res.Inserted = inserted

	if err != nil {
		return res, err
	}

	l.log.Info("Loaded staging table", "table", table, "records", res.Records, "rows", inserted)

	return res, nil
}

func (l *Loader) read(path string) ([]byte, *metadata.Metadata, error) {
	if !l.cfg.VerifyMetadata {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		return data, nil, nil
	}

	meta, data, err := metadata.VerifyFile(path)
	if err != nil {
		return nil, nil, err
	}

	return data, meta, nil
}

// insert writes rows in batches of cfg.BatchSize, one transaction per batch.
// Batches committed before a failure stay committed.
func (l *Loader) insert(ctx context.Context, table string, cols []Column, rows [][]any) (int, error) {
	batchSize := l.cfg.BatchSize
	if batchSize < 1 {
		batchSize = len(rows)
	}

	query := insertSQL(l.dialect, table, cols)
	inserted := 0

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))

		if err := l.executeBatch(ctx, query, rows[start:end]); err != nil {
			return inserted, fmt.Errorf("failed to insert into %s: %w", table, err)
		}

		inserted += end - start
		l.log.Debug("Committed batch", "table", table, "rows", end-start, "total", inserted)
	}

	return inserted, nil
}

func (l *Loader) executeBatch(ctx context.Context, query string, batch [][]any) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}

	defer stmt.Close()

	for _, row := range batch {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

func (l *Loader) tableFor(kind models.EntityKind) (string, []Column, error) {
	table, err := l.TableName(kind)
	if err != nil {
		return "", nil, err
	}

	cols, err := Columns(kind)
	if err != nil {
		return "", nil, err
	}

	return table, cols, nil
}

// Count returns the number of rows in the staging table of kind.
func (l *Loader) Count(ctx context.Context, kind models.EntityKind) (int, error) {
	table, err := l.TableName(kind)
	if err != nil {
		return 0, err
	}

	var n int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return n, nil
}

// Run prepares the schema, truncates when configured and loads the file of
// every kind. A failed file does not stop the others; errors are joined.
func (l *Loader) Run(ctx context.Context, kinds []models.EntityKind, pathFor func(models.EntityKind) string) ([]Result, error) {
	if err := l.EnsureSchema(ctx, kinds); err != nil {
		return nil, err
	}

	if l.cfg.Truncate {
		if err := l.Truncate(ctx, kinds); err != nil {
			return nil, err
		}
	}

	var (
		results []Result
		errs    []error
	)

	for _, kind := range kinds {
		res, err := l.LoadFile(ctx, kind, pathFor(kind))
		results = append(results, res)

		if err != nil {
			l.log.Error("Failed to load entity", "entity", string(kind), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}

	return results, errors.Join(errs...)
}
