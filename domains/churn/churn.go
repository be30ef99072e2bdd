// Package churn is the reference domain: it scores customers by how quiet
// their transaction activity is and flags the riskiest against a
// configurable threshold.
//
// Inputs: "customers" (customer_id, ...), "transactions" (customer_id,
// amount). Outputs: "scores" and "metrics". Params: score_threshold
// (default 0.7).
package churn

import (
	"context"
	"io"
	"log/slog"

	"github.com/millrace/flume/pkg/config"
	"github.com/millrace/flume/pkg/tabular"
)

// ID is the domain id the runner is conventionally registered under.
const ID = "churn"

// Params configure the scoring run.
type Params struct {
	ScoreThreshold float64 `mapstructure:"score_threshold"`
}

// Runner executes the churn pipeline over a dataset registry.
type Runner struct {
	io     *tabular.Registry
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a churn runner reading and writing through reg.
func New(reg *tabular.Registry, opts ...Option) *Runner {
	r := &Runner{
		io:     reg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads the inputs, scores every customer and writes the scores plus a
// summary metrics table.
func (r *Runner) Run(ctx context.Context, cfg config.Domain) error {
	customersSpec, err := cfg.Input("customers")
	if err != nil {
		return err
	}
	transactionsSpec, err := cfg.Input("transactions")
	if err != nil {
		return err
	}
	scoresSpec, err := cfg.Output("scores")
	if err != nil {
		return err
	}
	metricsSpec, err := cfg.Output("metrics")
	if err != nil {
		return err
	}

	params := Params{ScoreThreshold: 0.7}
	if err := config.DecodeParams(cfg.Params, &params); err != nil {
		return err
	}

	customers, err := r.io.Read(ctx, customersSpec)
	if err != nil {
		return err
	}
	transactions, err := r.io.Read(ctx, transactionsSpec)
	if err != nil {
		return err
	}

	scores := ComputeScores(customers, transactions, params.ScoreThreshold)
	metrics := ComputeMetrics(scores)

	if err := r.io.Write(ctx, scores, scoresSpec); err != nil {
		return err
	}
	if err := r.io.Write(ctx, metrics, metricsSpec); err != nil {
		return err
	}

	r.logger.Info("wrote scores and metrics", "scores", scores.Len(), "metrics", metrics.Len())
	return nil
}
