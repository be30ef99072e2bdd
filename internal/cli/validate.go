package cli

import (
	"fmt"
	"os"

	"github.com/millrace/flume"
	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/pkg/config"
)

// ValidateOptions contains the configuration for the validate command.
type ValidateOptions struct {
	ConfigPath string
}

// Validate checks the configuration and the runner coverage of the bundled
// domains. Every structural problem is printed on its own line before the
// summarizing error is returned.
func Validate(opts ValidateOptions) error {
	cfg, skipped, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	for _, sk := range skipped {
		fmt.Fprintf(os.Stderr, "warning: %v\n", sk)
	}

	logger := logging.NewNop()
	orch, err := flume.New(cfg, flume.WithLogger(logger))
	if err != nil {
		return reportIssues(err)
	}
	registerBuiltins(orch, logger)

	if err := orch.Validate(); err != nil {
		return reportIssues(err)
	}
	return nil
}

// reportIssues unpacks an aggregated validation error into one line per
// problem; anything else passes through unchanged.
func reportIssues(err error) error {
	issues := config.ValidationErrors(err)
	if len(issues) == 0 {
		return err
	}
	for _, issue := range issues {
		fmt.Println(" -", issue)
	}
	return fmt.Errorf("%d problem(s) found", len(issues))
}
