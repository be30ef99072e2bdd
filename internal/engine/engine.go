// Package engine executes selected domains under the configured concurrency
// strategy and owns the per-domain failure handling.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/internal/metrics"
	"github.com/millrace/flume/pkg/config"
	"github.com/millrace/flume/pkg/pipeline"
)

// Engine runs batches of domains against a runner registry.
type Engine struct {
	registry *pipeline.Registry
	logger   *slog.Logger
	metrics  *metrics.Set
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics attaches the metric set.
func WithMetrics(set *metrics.Set) Option {
	return func(e *Engine) {
		e.metrics = set
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine resolving runners from the given registry.
func New(registry *pipeline.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the selected domains as one batch.
//
// In strict mode (isolate=false) domains run serially in selection order and
// the first failure aborts the batch: taxonomy errors propagate unwrapped,
// anything else comes back as a *pipeline.ExecutionError.
//
// In isolated mode every domain reports into the batch report independently
// and Execute never returns a per-domain failure. The concurrency strategy
// is picked from the execution config, in priority order: chunked two-level
// fan-out when the process tier is enabled, a shared bounded pool when only
// the thread tier is enabled, serial otherwise. The call returns once every
// domain has finished, failed or been skipped.
func (e *Engine) Execute(ctx context.Context, selected []Selected, execCfg config.Execution, isolate bool) (*pipeline.Report, error) {
	started := e.now()
	report := pipeline.NewReport(started)
	if len(selected) == 0 {
		return report, nil
	}

	logger := e.logger.With("batch", report.Batch)

	if !isolate {
		results, err := e.runStrict(ctx, logger, selected)
		report.Results = results
		e.finish(logger, report, started)
		return report, err
	}

	results := make([]pipeline.Result, len(selected))
	switch {
	case execCfg.Processes.Enabled && len(selected) > 1:
		e.runChunked(ctx, logger, selected, execCfg, results)
	case execCfg.Threads.Enabled && len(selected) > 1:
		e.runPooled(ctx, logger, selected, execCfg.Threads.Workers(), results)
	default:
		e.runSerial(ctx, logger, selected, results)
	}
	report.Results = results
	e.finish(logger, report, started)
	return report, nil
}

// runStrict executes serially and stops at the first failure.
func (e *Engine) runStrict(ctx context.Context, logger *slog.Logger, selected []Selected) ([]pipeline.Result, error) {
	var results []pipeline.Result
	for _, sel := range selected {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := e.runOne(ctx, logger, sel)
		results = append(results, res)
		if res.Status != pipeline.StatusFailed {
			continue
		}

		err := res.Err
		if !pipeline.IsSetup(err) && !pipeline.IsData(err) {
			var execErr *pipeline.ExecutionError
			if !errors.As(err, &execErr) {
				err = &pipeline.ExecutionError{Domain: sel.ID, Err: err}
			}
		}
		return results, err
	}
	return results, nil
}

func (e *Engine) runSerial(ctx context.Context, logger *slog.Logger, selected []Selected, results []pipeline.Result) {
	for i, sel := range selected {
		results[i] = e.runOne(ctx, logger, sel)
	}
}

// runPooled submits every domain to a bounded pool. Workers write into their
// own slot of results, so no further synchronization is needed. A blocked
// slot acquisition still honors cancellation; domains that never start are
// reported as skipped.
func (e *Engine) runPooled(ctx context.Context, logger *slog.Logger, selected []Selected, workers int, results []pipeline.Result) {
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, sel := range selected {
		if ctx.Err() != nil {
			results[i] = skippedResult(sel.ID, "canceled")
			continue
		}

		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			results[i] = skippedResult(sel.ID, "canceled")
			continue
		}

		wg.Add(1)
		go func(i int, sel Selected) {
			defer func() {
				<-semaphore
				wg.Done()
			}()
			results[i] = e.runOne(ctx, logger, sel)
		}(i, sel)
	}

	wg.Wait()
}

// runChunked is the two-level fan-out: the selection is split into
// contiguous chunks, each chunk gets its own worker, and inside a chunk
// domains go through the bounded pool when the thread tier is enabled.
// Chunk count follows processes.max_workers (CPU count when unset);
// assignment is deterministic in selection order.
func (e *Engine) runChunked(ctx context.Context, logger *slog.Logger, selected []Selected, execCfg config.Execution, results []pipeline.Result) {
	chunks := chunkify(selected, execCfg.Processes.Workers())

	var wg sync.WaitGroup
	offset := 0
	for i, chunk := range chunks {
		out := results[offset : offset+len(chunk)]
		offset += len(chunk)

		wg.Add(1)
		go func(worker int, chunk []Selected, out []pipeline.Result) {
			defer wg.Done()
			chunkLogger := logger.With("chunk", worker)
			if execCfg.Threads.Enabled && len(chunk) > 1 {
				e.runPooled(ctx, chunkLogger, chunk, execCfg.Threads.Workers(), out)
				return
			}
			e.runSerial(ctx, chunkLogger, chunk, out)
		}(i, chunk, out)
	}
	wg.Wait()
}

// runOne is the per-domain step shared by every strategy: skip disabled
// domains without touching the resolver, resolve late, run, classify.
func (e *Engine) runOne(ctx context.Context, logger *slog.Logger, sel Selected) pipeline.Result {
	log := logging.WithDomain(logger, sel.ID)

	if !sel.Domain.Enabled {
		log.Info("skipping domain (disabled)")
		return skippedResult(sel.ID, "disabled")
	}
	if ctx.Err() != nil {
		log.Info("skipping domain (canceled)")
		return skippedResult(sel.ID, "canceled")
	}

	log.Info("starting domain")
	started := e.now()

	runner, err := e.registry.Resolve(sel.ID)
	if err != nil {
		log.Error("domain setup error", "err", err)
		return pipeline.Result{
			Domain: sel.ID,
			Status: pipeline.StatusFailed,
			Kind:   pipeline.KindSetup,
			Err:    err,
		}
	}

	err = e.invoke(ctx, runner, sel.Domain)
	duration := e.now().Sub(started)
	if err == nil {
		log.Info("completed domain", "duration", duration)
		return pipeline.Result{Domain: sel.ID, Status: pipeline.StatusSucceeded, Duration: duration}
	}

	kind := pipeline.Classify(err)
	switch kind {
	case pipeline.KindSetup:
		log.Error("domain setup error", "err", err)
	case pipeline.KindData:
		log.Error("data handling error", "err", err)
	default:
		log.Error("unexpected error during domain execution", "err", err)
	}
	return pipeline.Result{
		Domain:   sel.ID,
		Status:   pipeline.StatusFailed,
		Kind:     kind,
		Err:      err,
		Duration: duration,
	}
}

// invoke runs a domain runner, converting a panic into an error so one
// misbehaving domain cannot take down the whole batch.
func (e *Engine) invoke(ctx context.Context, runner pipeline.Runner, cfg config.Domain) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return runner.Run(ctx, cfg)
}

func (e *Engine) finish(logger *slog.Logger, report *pipeline.Report, started time.Time) {
	for _, res := range report.Results {
		e.metrics.DomainRun(res.Domain, string(res.Status))
	}
	e.metrics.BatchDone(e.now().Sub(started))
	logger.Info("batch complete",
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"skipped", report.Skipped(),
	)
}

func skippedResult(id, reason string) pipeline.Result {
	return pipeline.Result{Domain: id, Status: pipeline.StatusSkipped, Reason: reason}
}
