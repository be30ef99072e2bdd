package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/millrace/flume"
	"github.com/millrace/flume/internal/env"
	"github.com/millrace/flume/internal/httpapi"
	"github.com/millrace/flume/internal/schedule"
)

// ScheduleOptions contains the configuration for the schedule command.
type ScheduleOptions struct {
	ConfigPath string
	HTTPAddr   string // empty disables the HTTP API
}

// Schedule runs the scheduler daemon until SIGINT or SIGTERM. With an HTTP
// address it also serves the management API (health, domains, jobs, manual
// runs, metrics) on that address.
func Schedule(opts ScheduleOptions) error {
	grace, err := env.Duration("FLUME_MISFIRE_GRACE", schedule.DefaultMisfireGrace)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	orch, logger, closeLogs, err := openOrchestrator(opts.ConfigPath, flume.WithMetrics(registry))
	if err != nil {
		return err
	}
	defer closeLogs()

	sched, err := orch.Schedule(schedule.WithMisfireGrace(grace))
	if err != nil {
		if errors.Is(err, flume.ErrNothingScheduled) {
			logger.Warn("nothing to schedule", "err", err)
		}
		return err
	}

	ctx := NewSignalContext(context.Background())
	defer ctx.Cancel()

	sched.Start(ctx)
	logger.Info("scheduler running", "jobs", len(sched.Jobs()), "misfire_grace", grace)

	serverErrors := make(chan error, 1)
	var srv *http.Server
	if opts.HTTPAddr != "" {
		handler := httpapi.NewHandler(orch,
			httpapi.WithLogger(logger),
			httpapi.WithJobs(sched),
			httpapi.WithGatherer(registry),
			httpapi.WithVersion(flume.Version),
		)
		srv = &http.Server{Addr: opts.HTTPAddr, Handler: handler}
		go func() {
			logger.Info("http api listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()
	}

	select {
	case err := <-serverErrors:
		sched.Stop()
		return err
	case <-ctx.Done():
		if sig := ctx.Signal(); sig != nil {
			logger.Info("shutting down", "signal", sig.String())
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown incomplete", "err", err)
			if err := srv.Close(); err != nil {
				logger.Error("closing http server", "err", err)
			}
		}
	}

	sched.Stop()
	logger.Info("scheduler stopped")
	return nil
}
