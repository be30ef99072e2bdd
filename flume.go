package flume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/millrace/flume/internal/engine"
	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/internal/metrics"
	"github.com/millrace/flume/internal/schedule"
	"github.com/millrace/flume/pkg/config"
	"github.com/millrace/flume/pkg/pipeline"
	"github.com/millrace/flume/pkg/tabular"
	"github.com/millrace/flume/pkg/tabular/redisfmt"
	"github.com/millrace/flume/pkg/tabular/sqlfmt"
)

// Version is the library version, overridable at build time.
var Version = "0.1.0"

// ErrNothingScheduled is returned by Schedule when no domain has an
// enabled, buildable schedule.
var ErrNothingScheduled = schedule.ErrNothingScheduled

// Orchestrator is the high-level entry point. It ties the domain config,
// the runner registry, the dataset registry and the execution engine
// together behind a small API.
type Orchestrator struct {
	cfg      *config.Global
	registry *pipeline.Registry
	io       *tabular.Registry
	logger   *slog.Logger
	metrics  *metrics.Set
	clock    func() time.Time
	engine   *engine.Engine
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger shared by the engine and the
// scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithRegistry injects a pre-filled runner registry.
func WithRegistry(reg *pipeline.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = reg
	}
}

// WithIO injects a dataset registry, replacing the default one.
func WithIO(reg *tabular.Registry) Option {
	return func(o *Orchestrator) {
		o.io = reg
	}
}

// WithMetrics registers run metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics.NewSet(reg)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.clock = now
	}
}

// New wires an orchestrator for the given config and validates it. The
// default dataset registry carries the csv, json, sql and redis formats;
// the runner registry starts empty and is filled through Register. Domain
// runners are registered explicitly, there is no name-based discovery.
func New(cfg *config.Global, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	o := &Orchestrator{
		cfg:    cfg,
		logger: logging.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if o.io == nil {
		o.io = tabular.NewRegistry()
		sqlfmt.Register(o.io)
		redisfmt.Register(o.io)
	}
	if o.registry == nil {
		o.registry = pipeline.NewRegistry()
	}
	o.engine = engine.New(o.registry,
		engine.WithLogger(o.logger),
		engine.WithMetrics(o.metrics),
		engine.WithClock(o.clock),
	)
	return o, nil
}

// Load creates an orchestrator from a single config file.
func Load(path string, opts ...Option) (*Orchestrator, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// LoadDir creates an orchestrator from a config directory (config.yaml
// plus domains/*.yaml). Domain files that fail to load are reported and
// skipped; the valid remainder still runs.
func LoadDir(dir string, opts ...Option) (*Orchestrator, []*config.DomainLoadError, error) {
	cfg, failed, err := config.LoadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	o, err := New(cfg, opts...)
	if err != nil {
		return nil, failed, err
	}
	for _, f := range failed {
		o.logger.Warn("skipping domain config", "domain", f.Domain, "err", f.Err)
	}
	return o, failed, nil
}

// Config returns the orchestrator's configuration.
func (o *Orchestrator) Config() *config.Global { return o.cfg }

// Registry returns the runner registry.
func (o *Orchestrator) Registry() *pipeline.Registry { return o.registry }

// IO returns the dataset registry.
func (o *Orchestrator) IO() *tabular.Registry { return o.io }

// Register binds a runner to a domain id.
func (o *Orchestrator) Register(id string, r pipeline.Runner) {
	o.registry.Register(id, r)
}

// Domains returns every configured domain id, sorted.
func (o *Orchestrator) Domains() []string {
	ids := make([]string, 0, len(o.cfg.Domains))
	for id := range o.cfg.Domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Selected returns the domain ids that pass the active_domains and
// active_tags filters, in run order. Disabled domains stay in; they are
// skipped at execution time.
func (o *Orchestrator) Selected() []string {
	selected := engine.Select(o.cfg, nil)
	ids := make([]string, len(selected))
	for i, sel := range selected {
		ids[i] = sel.ID
	}
	return ids
}

// Run executes the selected domains with per-domain isolation: every
// domain reports into the batch report and no domain failure fails the
// call.
func (o *Orchestrator) Run(ctx context.Context) (*pipeline.Report, error) {
	return o.run(ctx, nil, true)
}

// RunDomains narrows the selection to the given ids before running
// isolated. Ids not present in the config are ignored by selection.
func (o *Orchestrator) RunDomains(ctx context.Context, ids ...string) (*pipeline.Report, error) {
	return o.run(ctx, ids, true)
}

// RunStrict executes the selected domains serially and aborts at the
// first failure, returning it. An optional id list narrows the selection
// the same way RunDomains does.
func (o *Orchestrator) RunStrict(ctx context.Context, ids ...string) (*pipeline.Report, error) {
	return o.run(ctx, ids, false)
}

func (o *Orchestrator) run(ctx context.Context, allowed []string, isolate bool) (*pipeline.Report, error) {
	selected := engine.Select(o.cfg, allowed)
	return o.engine.Execute(ctx, selected, o.cfg.Execution, isolate)
}

// Schedule builds the background scheduler: one job per schedulable
// domain, each firing an isolated run scoped to that domain.
func (o *Orchestrator) Schedule(opts ...schedule.Option) (*schedule.Scheduler, error) {
	run := func(ctx context.Context, domainID string) {
		report, err := o.RunDomains(ctx, domainID)
		if err != nil {
			o.logger.Error("scheduled run failed", "domain", domainID, "err", err)
			return
		}
		o.logger.Info("scheduled run finished", "domain", domainID, "summary", report.Summary())
	}
	opts = append([]schedule.Option{
		schedule.WithLogger(o.logger),
		schedule.WithMetrics(o.metrics),
		schedule.WithClock(o.clock),
	}, opts...)
	return schedule.New(o.cfg, run, opts...)
}

// Validate re-checks the configuration and the runner registry together:
// beyond the structural config rules, every enabled selected domain must
// resolve to a registered runner.
func (o *Orchestrator) Validate() error {
	if err := config.Validate(o.cfg); err != nil {
		return err
	}
	if err := o.registry.Validate(); err != nil {
		return err
	}
	var missing []string
	for _, sel := range engine.Select(o.cfg, nil) {
		if !sel.Domain.Enabled {
			continue
		}
		if _, err := o.registry.Resolve(sel.ID); err != nil {
			missing = append(missing, sel.ID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no runner registered for: %s", strings.Join(missing, ", "))
	}
	return nil
}
