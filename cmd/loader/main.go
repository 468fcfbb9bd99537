// Package main provides the loader command that copies processed CSV files into raw staging tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"jobetl/internal/config"
	"jobetl/internal/formatter"
	"jobetl/internal/loader"
	"jobetl/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (reads configs/etl.yaml if present)")
	envFile := flag.String("env", ".env", "Path to .env file (ignored when RUNNING_IN_DOCKER=1)")
	only := flag.String("only", "", "Comma-separated entity subset: jobs,companies,salaries")
	driver := flag.String("driver", "", "Override loader.driver (sqlite or postgres)")
	dsn := flag.String("dsn", "", "Override loader.dsn")
	noTruncate := flag.Bool("no-truncate", false, "Append instead of truncating staging tables first")
	skipVerify := flag.Bool("skip-verify", false, "Do not verify checksum sidecars")

	flag.Parse()

	if os.Getenv("RUNNING_IN_DOCKER") != "1" {
		if err := config.LoadEnvFile(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadConfig(config.ResolvePath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *driver != "" {
		cfg.Loader.Driver = *driver
	}

	if *dsn != "" {
		cfg.Loader.DSN = *dsn
	}

	if *noTruncate {
		cfg.Loader.Truncate = false
	}

	if *skipVerify {
		cfg.Loader.VerifyMetadata = false
	}

	if *only != "" {
		var kinds []string

		for _, part := range strings.Split(*only, ",") {
			if part = strings.TrimSpace(part); part != "" {
				kinds = append(kinds, part)
			}
		}

		cfg.Pipeline.Entities = kinds
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, cfg, log)

	stop()
	_ = log.Close()

	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) int {
	kinds, err := cfg.Entities()
	if err != nil {
		log.Error("Invalid entity selection", "error", err)
		return 1
	}

	db, dialect, err := loader.Open(cfg.Loader.Driver, cfg.Loader.DSN)
	if err != nil {
		log.Error("Failed to open staging database", "driver", cfg.Loader.Driver, "error", err)
		return 1
	}
	defer db.Close()

	l := loader.New(db, dialect, cfg.Loader, log)

	log.Info("Starting load", "driver", dialect.Name, "entities", kinds, "truncate", cfg.Loader.Truncate)

	results, loadErr := l.Run(ctx, kinds, cfg.OutputPath)

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{string(r.Kind), r.Table, strconv.Itoa(r.Records), strconv.Itoa(r.Inserted)})
	}

	fmt.Println()
	fmt.Print(formatter.RenderTable([]string{"Entity", "Table", "Records", "Rows inserted"}, rows))

	if loadErr != nil {
		log.Error("Load finished with errors", "error", loadErr)
		return 1
	}

	log.Info("Load complete")

	return 0
}
