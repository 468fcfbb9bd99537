package loader

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"jobetl/internal/config"
)

// ErrUnsupportedDriver is returned for a driver other than sqlite or postgres.
var ErrUnsupportedDriver = errors.New("unsupported loader driver")

// Column types used by the staging schema.
const (
	typeInt   = "int"
	typeFloat = "float"
	typeText  = "text"
	typeTime  = "time"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name     string
	driver   string
	numbered bool
	textTime bool
	types    map[string]string
	truncate string
}

var sqliteDialect = Dialect{
	Name:     config.DriverSQLite,
	driver:   "sqlite",
	textTime: true,
	types: map[string]string{
		typeInt:   "INTEGER",
		typeFloat: "REAL",
		typeText:  "TEXT",
		typeTime:  "TEXT",
	},
	truncate: "DELETE FROM %s",
}

var postgresDialect = Dialect{
	Name:     config.DriverPostgres,
	driver:   "pgx",
	numbered: true,
	types: map[string]string{
		typeInt:   "BIGINT",
		typeFloat: "DOUBLE PRECISION",
		typeText:  "TEXT",
		typeTime:  "TIMESTAMPTZ",
	},
	truncate: "TRUNCATE TABLE %s",
}

// DialectFor returns the dialect of a configured driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return sqliteDialect, nil
	case config.DriverPostgres:
		return postgresDialect, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}

	return "?"
}

// timeValue converts a timestamp into the bind value the driver stores.
func (d Dialect) timeValue(t time.Time) any {
	if d.textTime {
		return t.UTC().Format(time.RFC3339)
	}

	return t.UTC()
}

// Open connects to the staging database.
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	if d.Name == config.DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("failed to open database: %w", err)
	}

	if d.Name == config.DriverSQLite {
		// Writes are serialized by SQLite anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, Dialect{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, d, nil
}

// sqliteDSN turns a plain path into a file URI with a busy timeout.
func sqliteDSN(dsn string) string {
	if strings.HasPrefix(dsn, "file:") || dsn == ":memory:" {
		return dsn
	}

	return fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", dsn)
}
