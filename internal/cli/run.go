package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/millrace/flume"
	"github.com/millrace/flume/internal/engine"
	"github.com/millrace/flume/pkg/pipeline"
)

// RunOptions contains the configuration for the run command.
type RunOptions struct {
	ConfigPath string
	Domains    []string // explicit subset; empty runs everything selection allows
	Strict     bool     // abort at the first failure instead of isolating
	DryRun     bool     // show the selection without executing anything
	JSON       bool     // emit the report as JSON instead of the colored summary
}

// Run executes one batch and renders its report. The returned error is
// non-nil when the batch could not run at all or when any domain failed,
// so callers can exit nonzero.
func Run(opts RunOptions) error {
	orch, logger, closeLogs, err := openOrchestrator(opts.ConfigPath)
	if err != nil {
		return err
	}
	defer closeLogs()

	if opts.DryRun {
		return dryRun(orch, opts.Domains)
	}

	ctx := NewSignalContext(context.Background())
	defer ctx.Cancel()

	var report *pipeline.Report
	if opts.Strict {
		report, err = orch.RunStrict(ctx, opts.Domains...)
	} else {
		report, err = orch.RunDomains(ctx, opts.Domains...)
	}
	if sig := ctx.Signal(); sig != nil {
		logger.Warn("batch interrupted", "signal", sig.String())
	}

	// Strict mode hands back the partial report along with the failure;
	// show what ran before surfacing the error.
	if report != nil {
		if renderErr := render(report, opts.JSON); renderErr != nil {
			return renderErr
		}
	}
	if err != nil {
		return err
	}
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d domains failed", failed, len(report.Results))
	}
	return nil
}

func render(report *pipeline.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	RenderReport(os.Stdout, report)
	return nil
}

// dryRun previews the selection a run would act on without resolving
// runners or touching any dataset.
func dryRun(orch *flume.Orchestrator, allowed []string) error {
	selected := engine.Select(orch.Config(), allowed)
	if len(selected) == 0 {
		fmt.Println("Nothing to run.")
		return nil
	}
	for _, sel := range selected {
		if sel.Domain.Enabled {
			fmt.Printf("  %-20s would run\n", sel.ID)
		} else {
			fmt.Printf("  %-20s would skip (disabled)\n", sel.ID)
		}
	}
	return nil
}
