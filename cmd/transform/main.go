// Package main provides the transform command that flattens, cleans and writes the raw job market data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jobetl/internal/config"
	"jobetl/internal/formatter"
	"jobetl/internal/logger"
	"jobetl/internal/models"
	"jobetl/internal/pipeline"
	"jobetl/internal/runlog"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (reads configs/etl.yaml if present)")
	envFile := flag.String("env", ".env", "Path to .env file (ignored when RUNNING_IN_DOCKER=1)")
	only := flag.String("only", "", "Comma-separated entity subset: jobs,companies,salaries")
	parallel := flag.Bool("parallel", false, "Run entity pipelines in parallel")
	logLevel := flag.String("log-level", "", "Override logging.level (debug, info, warn, error)")
	noRecord := flag.Bool("no-record", false, "Do not write a run record")

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

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "parallel" {
			cfg.Pipeline.Parallel = *parallel
		}
	})

	if *only != "" {
		cfg.Pipeline.Entities = splitList(*only)
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

	code := run(ctx, cfg, log, !*noRecord)

	stop()
	_ = log.Close()

	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, record bool) int {
	kinds, err := cfg.Entities()
	if err != nil {
		log.Error("Invalid entity selection", "error", err)
		return 1
	}

	p, err := pipeline.New(cfg, pipeline.Options{
		Parallel:        cfg.Pipeline.Parallel,
		ContinueOnError: cfg.Pipeline.ContinueOnError,
	}, log)
	if err != nil {
		log.Error("Failed to initialize pipeline", "error", err)
		return 1
	}

	if record {
		p.WithRecorder(runlog.NewRecorder(cfg.RunsDir()))
	}

	log.Info("Starting transform", "config", cfg.String())

	report, runErr := p.Run(ctx, kinds)
	if report == nil {
		log.Error("Transform did not run", "error", runErr)
		return 1
	}

	printReport(report, kinds)

	if runErr != nil {
		return 1
	}

	return 0
}

func printReport(report *pipeline.Report, kinds []models.EntityKind) {
	fmt.Println()
	fmt.Printf("Transform summary (run %s, %d entities, %v)\n\n", orDash(report.RunID), len(kinds), report.Duration)
	fmt.Print(formatter.Summary(report))

	if nulls := formatter.NullCounts(report.Stats()); nulls != "" {
		fmt.Println()
		fmt.Print(nulls)
	}

	if failures := formatter.Failures(report); failures != "" {
		fmt.Println()
		fmt.Println("Failures:")
		fmt.Print(failures)
	}
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
