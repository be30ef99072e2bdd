package pipeline

import (
	"context"

	"github.com/millrace/flume/pkg/config"
)

// Runner executes one domain's pipeline. Implementations read inputs and
// write outputs through the I/O layer using the keyed descriptors in the
// domain config; a returned error is classified by this package's taxonomy,
// a nil return counts as success.
type Runner interface {
	Run(ctx context.Context, cfg config.Domain) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, cfg config.Domain) error

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, cfg config.Domain) error {
	return f(ctx, cfg)
}
