// Package pipeline runs the flatten, clean and write stages for each entity kind.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"jobetl/internal/config"
	"jobetl/internal/flattener"
	"jobetl/internal/geo"
	"jobetl/internal/logger"
	"jobetl/internal/models"
	"jobetl/internal/normalizer"
	"jobetl/internal/output"
	"jobetl/internal/runlog"
	"jobetl/internal/validator"
)

// ErrSkipped marks an entity that never ran because an earlier one failed.
var ErrSkipped = errors.New("skipped after earlier failure")

// Options controls scheduling and failure propagation.
type Options struct {
	Parallel        bool
	ContinueOnError bool
}

// EntityResult is the outcome of one entity pipeline.
type EntityResult struct {
	Kind     models.EntityKind
	Stats    normalizer.Stats
	Output   output.Result
	Duration time.Duration
	Err      error
}

// Status maps the result onto a run log status.
func (r EntityResult) Status() runlog.Status {
	switch {
	case r.Err == nil:
		return runlog.StatusCompleted
	case errors.Is(r.Err, ErrSkipped):
		return runlog.StatusSkipped
	default:
		return runlog.StatusFailed
	}
}

// Report collects the results of a run in entity order.
type Report struct {
	RunID    string
	Results  []EntityResult
	Duration time.Duration
}

// Err joins the errors of every failed entity.
func (r *Report) Err() error {
	var errs []error

	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Kind, res.Err))
		}
	}

	return errors.Join(errs...)
}

// Stats returns the cleaning statistics of entities that completed.
func (r *Report) Stats() []normalizer.Stats {
	var out []normalizer.Stats

	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Stats)
		}
	}

	return out
}

// Pipeline wires the stages together for one configuration.
type Pipeline struct {
	cfg       *config.Config
	opts      Options
	flattener *flattener.Flattener
	cleaner   *normalizer.Cleaner
	validator *validator.TableValidator
	writer    *output.Writer
	recorder  *runlog.Recorder
	log       *logger.Logger
}

// New builds a pipeline from cfg using the embedded geo catalog.
func New(cfg *config.Config, opts Options, log *logger.Logger) (*Pipeline, error) {
	catalog, err := geo.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load geo catalog: %w", err)
	}

	return &Pipeline{
		cfg:       cfg,
		opts:      opts,
		flattener: flattener.New(log),
		cleaner:   normalizer.NewCleaner(geo.NewNormalizer(catalog), log),
		validator: validator.NewTableValidator(),
		writer:    output.NewWriter(cfg.ProcessedDir(), cfg.Output.WriteMetadata, log),
		log:       log,
	}, nil
}

// WithRecorder makes Run persist a run record.
func (p *Pipeline) WithRecorder(r *runlog.Recorder) *Pipeline {
	p.recorder = r

	return p
}

// Run executes the pipelines for kinds. Each entity is isolated: a failure is
// recorded in the report and, unless ContinueOnError is off, the remaining
// entities still run. The returned error joins all entity failures.
func (p *Pipeline) Run(ctx context.Context, kinds []models.EntityKind) (*Report, error) {
	start := time.Now()
	report := &Report{Results: make([]EntityResult, len(kinds))}

	var record *runlog.Record

	if p.recorder != nil {
		rec, err := p.recorder.Start()
		if err != nil {
			return nil, fmt.Errorf("failed to start run record: %w", err)
		}

		record = rec
		report.RunID = rec.ID
	}

	p.log.Info("Starting transform pipeline", "run_id", report.RunID, "entities", kinds, "parallel", p.opts.Parallel)

	if p.opts.Parallel {
		p.runParallel(ctx, kinds, report)
	} else {
		p.runSequential(ctx, kinds, report)
	}

	report.Duration = time.Since(start)
	runErr := report.Err()

	if record != nil {
		if err := p.recorder.Finish(record, entityRecords(report), runErr); err != nil {
			p.log.Error("Failed to write run record", "error", err)
		}
	}

	if runErr != nil {
		p.log.Error("Transform pipeline finished with errors", "duration", report.Duration, "error", runErr)
	} else {
		p.log.Info("Transform pipeline finished", "duration", report.Duration)
	}

	return report, runErr
}

func (p *Pipeline) runSequential(ctx context.Context, kinds []models.EntityKind, report *Report) {
	failed := false

	for i, kind := range kinds {
		if failed {
			report.Results[i] = EntityResult{Kind: kind, Err: ErrSkipped}
			continue
		}

		report.Results[i] = p.RunEntity(ctx, kind)

		if report.Results[i].Err != nil && !p.opts.ContinueOnError {
			failed = true
		}
	}
}

func (p *Pipeline) runParallel(ctx context.Context, kinds []models.EntityKind, report *Report) {
	g, gctx := errgroup.WithContext(ctx)

	for i, kind := range kinds {
		g.Go(func() error {
			if !p.opts.ContinueOnError && gctx.Err() != nil && ctx.Err() == nil {
				report.Results[i] = EntityResult{Kind: kind, Err: ErrSkipped}
				return nil
			}

			res := p.RunEntity(gctx, kind)

			if !p.opts.ContinueOnError {
				res = canceledBySibling(ctx, gctx, res)
			}

			report.Results[i] = res

			if res.Err != nil && !errors.Is(res.Err, ErrSkipped) && !p.opts.ContinueOnError {
				return res.Err
			}

			return nil
		})
	}

	_ = g.Wait()
}

// canceledBySibling reports an entity interrupted by a failed sibling as
// skipped, matching the sequential fail-fast statuses. Cancellation of the
// parent context is left as a failure.
func canceledBySibling(ctx, gctx context.Context, res EntityResult) EntityResult {
	if res.Err == nil || !errors.Is(res.Err, context.Canceled) {
		return res
	}

	if ctx.Err() != nil || gctx.Err() == nil {
		return res
	}

	return EntityResult{Kind: res.Kind, Duration: res.Duration, Err: ErrSkipped}
}

// RunEntity flattens, cleans and writes one entity kind.
func (p *Pipeline) RunEntity(ctx context.Context, kind models.EntityKind) EntityResult {
	start := time.Now()
	res := EntityResult{Kind: kind}
	log := p.log.With("entity", string(kind))

	fail := func(stage string, err error) EntityResult {
		res.Err = fmt.Errorf("%s: %w", stage, err)
		res.Duration = time.Since(start)
		log.Error("Entity pipeline failed", "stage", stage, "error", err)

		return res
	}

	if err := ctx.Err(); err != nil {
		return fail("start", err)
	}

	spec, err := flattener.SpecFor(kind)
	if err != nil {
		return fail("flatten", err)
	}

	table, err := p.flattener.FlattenDir(p.cfg.InputDir(kind), spec)
	if err != nil {
		return fail("flatten", err)
	}

	cleaned, stats, err := p.cleaner.Clean(table)
	res.Stats = stats

	if err != nil {
		return fail("clean", err)
	}

	validation, err := p.validator.Validate(cleaned)
	if err != nil {
		return fail("validate", err)
	}

	res.Stats.Violations = len(validation.Errors)
	p.logValidation(log, validation)

	if err := ctx.Err(); err != nil {
		return fail("write", err)
	}

	out, err := p.writer.Write(cleaned, p.cfg.OutputFile(kind), validation.IsValid)
	if err != nil {
		return fail("write", err)
	}

	res.Output = out
	res.Duration = time.Since(start)

	return res
}

// maxLoggedViolations caps how many validation errors are logged individually.
const maxLoggedViolations = 10

func (p *Pipeline) logValidation(log *logger.Logger, result *validator.ValidationResult) {
	for _, w := range result.Warnings {
		log.Warn("Validation warning", "detail", w)
	}

	if result.IsValid {
		log.Debug("Validation passed", "result", result.String())

		return
	}

	for i, e := range result.Errors {
		if i == maxLoggedViolations {
			log.Error("Further validation errors omitted", "count", len(result.Errors)-i)

			break
		}

		log.Error("Validation error", "row", e.Row, "column", e.Column, "error", e.Err)
	}

	log.Error("Validation failed; output is marked unvalidated", "result", result.String())
}

func entityRecords(report *Report) []runlog.EntityRecord {
	records := make([]runlog.EntityRecord, 0, len(report.Results))

	for _, res := range report.Results {
		rec := runlog.EntityRecord{
			Entity:     string(res.Kind),
			Status:     res.Status(),
			Output:     res.Output.Path,
			DurationMS: res.Duration.Milliseconds(),
			Stats:      res.Stats,
		}

		if res.Err != nil {
			rec.Error = res.Err.Error()
		}

		records = append(records, rec)
	}

	return records
}
