// Package config provides configuration management for the transform and loader commands.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobetl/internal/models"
)

// Configuration validation errors.
var (
	ErrMissingDataDir      = errors.New("paths.data_dir is required")
	ErrNoEntities          = errors.New("pipeline.entities must list at least one entity")
	ErrInvalidEntity       = errors.New("pipeline.entities contains an unknown entity")
	ErrMissingOutputFile   = errors.New("output file name is required for every entity")
	ErrDuplicateOutputFile = errors.New("output file names must be unique")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidDriver       = errors.New("loader.driver must be 'sqlite' or 'postgres'")
	ErrMissingDSN          = errors.New("loader.dsn is required")
	ErrInvalidBatchSize    = errors.New("loader.batch_size must be at least 1")
)

// Loader drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the complete ETL configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Output   OutputConfig   `yaml:"output"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
	Loader   LoaderConfig   `yaml:"loader"`
}

// PathsConfig locates raw input, processed output and run records.
// Empty directories are derived from DataDir.
type PathsConfig struct {
	DataDir      string            `yaml:"data_dir"`
	RawDir       string            `yaml:"raw_dir"`
	ProcessedDir string            `yaml:"processed_dir"`
	RunsDir      string            `yaml:"runs_dir"`
	Inputs       map[string]string `yaml:"inputs"`
}

// OutputConfig names the processed files.
type OutputConfig struct {
	JobsFile      string `yaml:"jobs_file"`
	CompaniesFile string `yaml:"companies_file"`
	SalariesFile  string `yaml:"salaries_file"`
	WriteMetadata bool   `yaml:"write_metadata"`
}

// PipelineConfig controls which entities run and how failures propagate.
type PipelineConfig struct {
	Entities        []string `yaml:"entities"`
	Parallel        bool     `yaml:"parallel"`
	ContinueOnError bool     `yaml:"continue_on_error"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// LoaderConfig configures the staging loader.
type LoaderConfig struct {
	Driver         string `yaml:"driver"`
	DSN            string `yaml:"dsn"`
	TablePrefix    string `yaml:"table_prefix"`
	BatchSize      int    `yaml:"batch_size"`
	Truncate       bool   `yaml:"truncate"`
	VerifyMetadata bool   `yaml:"verify_metadata"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{DataDir: "data"},
		Output: OutputConfig{
			JobsFile:      "jobs.csv",
			CompaniesFile: "companies.csv",
			SalariesFile:  "salaries.csv",
			WriteMetadata: true,
		},
		Pipeline: PipelineConfig{
			Entities:        []string{"jobs", "companies", "salaries"},
			ContinueOnError: true,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Loader: LoaderConfig{
			Driver:         DriverSQLite,
			DSN:            filepath.Join("data", "staging.db"),
			TablePrefix:    "raw_",
			BatchSize:      500,
			Truncate:       true,
			VerifyMetadata: true,
		},
	}
}

// DefaultPath is read when no -config flag is given.
const DefaultPath = "configs/etl.yaml"

// ResolvePath returns path, or DefaultPath when path is empty and that file
// exists. An empty result means built-in defaults.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}

	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}

	return ""
}

// LoadEnvFile loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}

	return nil
}

// LoadConfig loads configuration from a YAML file on top of the defaults,
// applies environment overrides and validates the result. An empty path
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. When no DSN is
// set for postgres, one is assembled from the SUPABASE_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DATA_DIR"); ok && v != "" {
		c.Paths.DataDir = v
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}

	if v, ok := lookup("LOADER_DRIVER"); ok && v != "" {
		c.Loader.Driver = v
	}

	if v, ok := lookup("LOADER_DSN"); ok && v != "" {
		c.Loader.DSN = v
	} else if c.Loader.Driver == DriverPostgres {
		if host, ok := lookup("SUPABASE_HOST"); ok && host != "" {
			c.Loader.DSN = postgresDSN(lookup, host)
		}
	}

	if v, ok := lookup("LOADER_BATCH_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: LOADER_BATCH_SIZE=%q", ErrInvalidBatchSize, v)
		}

		c.Loader.BatchSize = n
	}

	return nil
}

func postgresDSN(lookup func(string) (string, bool), host string) string {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}

		return def
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(get("SUPABASE_USER", "postgres"), get("SUPABASE_PASSWORD", "")),
		Host:     host + ":" + get("SUPABASE_PORT", "5432"),
		Path:     "/" + get("SUPABASE_DATABASE", "postgres"),
		RawQuery: "sslmode=" + url.QueryEscape(get("SUPABASE_SSL_MODE", "require")),
	}

	return u.String()
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return ErrMissingDataDir
	}

	if _, err := c.Entities(); err != nil {
		return err
	}

	seen := map[string]bool{}

	for _, kind := range models.AllKinds {
		name := c.OutputFile(kind)
		if name == "" {
			return fmt.Errorf("%w: %s", ErrMissingOutputFile, kind)
		}

		if seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateOutputFile, name)
		}

		seen[name] = true
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Loader.Driver != DriverSQLite && c.Loader.Driver != DriverPostgres {
		return ErrInvalidDriver
	}

	if c.Loader.DSN == "" {
		return ErrMissingDSN
	}

	if c.Loader.BatchSize < 1 {
		return ErrInvalidBatchSize
	}

	return nil
}

// Entities returns the configured entity kinds in run order.
func (c *Config) Entities() ([]models.EntityKind, error) {
	if len(c.Pipeline.Entities) == 0 {
		return nil, ErrNoEntities
	}

	kinds := make([]models.EntityKind, 0, len(c.Pipeline.Entities))
	seen := map[models.EntityKind]bool{}

	for _, name := range c.Pipeline.Entities {
		kind, err := models.ParseEntityKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEntity, name)
		}

		if seen[kind] {
			continue
		}

		seen[kind] = true
		kinds = append(kinds, kind)
	}

	return kinds, nil
}

// RawDir returns the raw input root.
func (c *Config) RawDir() string {
	if c.Paths.RawDir != "" {
		return c.Paths.RawDir
	}

	return filepath.Join(c.Paths.DataDir, "raw")
}

// ProcessedDir returns the directory processed files are written to.
func (c *Config) ProcessedDir() string {
	if c.Paths.ProcessedDir != "" {
		return c.Paths.ProcessedDir
	}

	return filepath.Join(c.Paths.DataDir, "processed")
}

// RunsDir returns the directory run records are written to.
func (c *Config) RunsDir() string {
	if c.Paths.RunsDir != "" {
		return c.Paths.RunsDir
	}

	return filepath.Join(c.Paths.DataDir, "runs")
}

// InputDir follows structure: {raw_dir}/{entity} unless overridden in paths.inputs.
func (c *Config) InputDir(kind models.EntityKind) string {
	if dir, ok := c.Paths.Inputs[string(kind)]; ok && dir != "" {
		return dir
	}

	return filepath.Join(c.RawDir(), string(kind))
}

// OutputFile returns the processed file name for kind.
func (c *Config) OutputFile(kind models.EntityKind) string {
	switch kind {
	case models.KindJobs:
		return c.Output.JobsFile
	case models.KindCompanies:
		return c.Output.CompaniesFile
	case models.KindSalaries:
		return c.Output.SalariesFile
	default:
		return ""
	}
}

// OutputPath returns the full processed file path for kind.
func (c *Config) OutputPath(kind models.EntityKind) string {
	return filepath.Join(c.ProcessedDir(), c.OutputFile(kind))
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DataDir: %s, Entities: %v, Parallel: %t, Loader: %s}",
		c.Paths.DataDir,
		c.Pipeline.Entities,
		c.Pipeline.Parallel,
		c.Loader.Driver,
	)
}
