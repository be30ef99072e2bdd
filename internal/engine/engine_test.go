package engine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/millrace/flume/pkg/config"
	"github.com/millrace/flume/pkg/pipeline"
)

type rowsError struct{ msg string }

func (e rowsError) Error() string { return e.msg }
func (e rowsError) DataError()    {}

func enabled(id string) Selected {
	return Selected{ID: id, Domain: config.Domain{Name: id, Enabled: true}}
}

func selection(ids ...string) []Selected {
	out := make([]Selected, 0, len(ids))
	for _, id := range ids {
		out = append(out, enabled(id))
	}
	return out
}

func registerOK(reg *pipeline.Registry, ids ...string) {
	for _, id := range ids {
		reg.RegisterFunc(id, func(ctx context.Context, cfg config.Domain) error {
			return nil
		})
	}
}

func threads(workers int) config.Execution {
	return config.Execution{Threads: config.WorkerPool{Enabled: true, MaxWorkers: workers}}
}

func TestExecute_IsolatedKeepsGoingAfterFailure(t *testing.T) {
	reg := pipeline.NewRegistry()
	reg.RegisterFunc("bad", func(ctx context.Context, cfg config.Domain) error {
		return errors.New("boom")
	})
	registerOK(reg, "ok")

	report, err := New(reg).Execute(context.Background(), selection("bad", "ok"), config.Execution{}, true)
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil in isolated mode", err)
	}
	if got := report.Summary(); got != "1 succeeded, 1 failed, 0 skipped" {
		t.Errorf("Summary() = %q", got)
	}
	if report.Results[0].Status != pipeline.StatusFailed || report.Results[0].Kind != pipeline.KindExecution {
		t.Errorf("bad result = %+v", report.Results[0])
	}
	if report.Results[1].Status != pipeline.StatusSucceeded {
		t.Errorf("ok result = %+v", report.Results[1])
	}
}

func TestExecute_StrictStopsAtFirstFailure(t *testing.T) {
	cause := errors.New("boom")
	var after atomic.Int32

	reg := pipeline.NewRegistry()
	reg.RegisterFunc("bad", func(ctx context.Context, cfg config.Domain) error {
		return cause
	})
	reg.RegisterFunc("after", func(ctx context.Context, cfg config.Domain) error {
		after.Add(1)
		return nil
	})

	report, err := New(reg).Execute(context.Background(), selection("bad", "after"), config.Execution{}, false)
	var execErr *pipeline.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Execute() error = %v, want *pipeline.ExecutionError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap the cause: %v", err)
	}
	if after.Load() != 0 {
		t.Errorf("domain after the failure ran %d times", after.Load())
	}
	if len(report.Results) != 1 {
		t.Errorf("Results = %+v, want only the failed domain", report.Results)
	}
}

func TestExecute_StrictSetupErrorPropagatesBare(t *testing.T) {
	_, err := New(pipeline.NewRegistry()).Execute(context.Background(), selection("ghost"), config.Execution{}, false)

	var notFound *pipeline.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Execute() error = %v, want *pipeline.NotFoundError", err)
	}
	var execErr *pipeline.ExecutionError
	if errors.As(err, &execErr) {
		t.Errorf("setup error must not be wrapped: %v", err)
	}
}

func TestExecute_StrictDataErrorPropagatesBare(t *testing.T) {
	reg := pipeline.NewRegistry()
	reg.RegisterFunc("churn", func(ctx context.Context, cfg config.Domain) error {
		return rowsError{msg: "short row"}
	})

	_, err := New(reg).Execute(context.Background(), selection("churn"), config.Execution{}, false)

	var data rowsError
	if !errors.As(err, &data) {
		t.Fatalf("Execute() error = %v, want the data error itself", err)
	}
	var execErr *pipeline.ExecutionError
	if errors.As(err, &execErr) {
		t.Errorf("data error must not be wrapped: %v", err)
	}
}

func TestExecute_DisabledDomainSkippedWithoutResolve(t *testing.T) {
	sel := []Selected{{ID: "dormant", Domain: config.Domain{Name: "dormant", Enabled: false}}}

	report, err := New(pipeline.NewRegistry()).Execute(context.Background(), sel, config.Execution{}, true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	res := report.Results[0]
	if res.Status != pipeline.StatusSkipped || res.Reason != "disabled" {
		t.Errorf("result = %+v, want skipped (disabled)", res)
	}
}

func TestExecute_PanicBecomesFailedResult(t *testing.T) {
	reg := pipeline.NewRegistry()
	reg.RegisterFunc("wild", func(ctx context.Context, cfg config.Domain) error {
		panic("kaboom")
	})

	report, err := New(reg).Execute(context.Background(), selection("wild"), config.Execution{}, true)
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	res := report.Results[0]
	if res.Status != pipeline.StatusFailed || res.Kind != pipeline.KindExecution {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Err.Error(), "panic") {
		t.Errorf("Err = %v, want panic message", res.Err)
	}
}

func TestExecute_RunnerReceivesDomainConfig(t *testing.T) {
	var got atomic.Value
	reg := pipeline.NewRegistry()
	reg.RegisterFunc("churn", func(ctx context.Context, cfg config.Domain) error {
		got.Store(cfg.Name)
		return nil
	})

	sel := []Selected{{ID: "churn", Domain: config.Domain{Name: "Churn Scores", Enabled: true}}}
	if _, err := New(reg).Execute(context.Background(), sel, config.Execution{}, true); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got.Load() != "Churn Scores" {
		t.Errorf("runner saw name %v", got.Load())
	}
}

func TestExecute_PooledBoundsWorkersAndKeepsOrder(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	var current, peak atomic.Int32

	reg := pipeline.NewRegistry()
	for _, id := range ids {
		reg.RegisterFunc(id, func(ctx context.Context, cfg config.Domain) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
			return nil
		})
	}

	report, err := New(reg).Execute(context.Background(), selection(ids...), threads(2), true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("observed %d concurrent domains, want at most 2", p)
	}
	if report.Succeeded() != len(ids) {
		t.Errorf("Succeeded() = %d, want %d", report.Succeeded(), len(ids))
	}
	for i, id := range ids {
		if report.Results[i].Domain != id {
			t.Errorf("Results[%d].Domain = %q, want %q", i, report.Results[i].Domain, id)
		}
	}
}

func TestExecute_ChunkedKeepsResultAlignment(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	reg := pipeline.NewRegistry()
	registerOK(reg, "a", "b", "d", "e")
	reg.RegisterFunc("c", func(ctx context.Context, cfg config.Domain) error {
		return errors.New("boom")
	})

	execCfg := config.Execution{
		Threads:   config.WorkerPool{Enabled: true, MaxWorkers: 2},
		Processes: config.WorkerPool{Enabled: true, MaxWorkers: 2},
	}
	report, err := New(reg).Execute(context.Background(), selection(ids...), execCfg, true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if report.Succeeded() != 4 || report.Failed() != 1 {
		t.Fatalf("Summary() = %q", report.Summary())
	}
	for i, id := range ids {
		res := report.Results[i]
		if res.Domain != id {
			t.Errorf("Results[%d].Domain = %q, want %q", i, res.Domain, id)
		}
		wantStatus := pipeline.StatusSucceeded
		if id == "c" {
			wantStatus = pipeline.StatusFailed
		}
		if res.Status != wantStatus {
			t.Errorf("Results[%d].Status = %q, want %q", i, res.Status, wantStatus)
		}
	}
}

func TestExecute_CanceledContextSkipsDomains(t *testing.T) {
	var ran atomic.Int32
	reg := pipeline.NewRegistry()
	reg.RegisterFunc("a", func(ctx context.Context, cfg config.Domain) error {
		ran.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(reg).Execute(ctx, selection("a"), config.Execution{}, true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	res := report.Results[0]
	if res.Status != pipeline.StatusSkipped || res.Reason != "canceled" {
		t.Errorf("result = %+v, want skipped (canceled)", res)
	}
	if ran.Load() != 0 {
		t.Errorf("runner ran despite canceled context")
	}
}

func TestExecute_StrictCanceledReturnsContextError(t *testing.T) {
	reg := pipeline.NewRegistry()
	registerOK(reg, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(reg).Execute(ctx, selection("a"), config.Execution{}, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("Results = %+v, want none", report.Results)
	}
}

func TestExecute_EmptySelection(t *testing.T) {
	report, err := New(pipeline.NewRegistry()).Execute(context.Background(), nil, config.Execution{}, true)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := report.Summary(); got != "0 succeeded, 0 failed, 0 skipped" {
		t.Errorf("Summary() = %q", got)
	}
}
