package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/millrace/flume"
	"github.com/millrace/flume/domains/churn"
	"github.com/millrace/flume/internal/env"
	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/pkg/config"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// openOrchestrator loads the configuration at path (a YAML file, or a
// directory composed from config.yaml plus domains/*.yaml), builds the
// logger it describes and returns a ready orchestrator with the bundled
// domains registered. The returned close function releases the log file
// sink, if any.
func openOrchestrator(path string, extra ...flume.Option) (*flume.Orchestrator, *slog.Logger, func() error, error) {
	cfg, skipped, err := loadConfig(path)
	if err != nil {
		return nil, nil, nil, err
	}

	cfg.Logging.Level = env.String("FLUME_LOG_LEVEL", cfg.Logging.Level)
	logger, closeLogs, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, sk := range skipped {
		logger.Warn("skipping domain config", "domain", sk.Domain, "err", sk.Err)
	}

	opts := append([]flume.Option{flume.WithLogger(logger)}, extra...)
	orch, err := flume.New(cfg, opts...)
	if err != nil {
		closeLogs()
		return nil, nil, nil, err
	}
	registerBuiltins(orch, logger)
	return orch, logger, closeLogs, nil
}

func loadConfig(path string) (*config.Global, []*config.DomainLoadError, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	if info.IsDir() {
		return config.LoadDir(path)
	}
	cfg, err := config.Load(path)
	return cfg, nil, err
}

// registerBuiltins wires the domains shipped with the binary. Library
// embedders register their own runners instead.
func registerBuiltins(orch *flume.Orchestrator, logger *slog.Logger) {
	orch.Register(churn.ID, churn.New(orch.IO(), churn.WithLogger(logger)))
}
