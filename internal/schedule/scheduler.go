package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/internal/metrics"
	"github.com/millrace/flume/pkg/config"
)

// ErrNothingScheduled is returned by New when no domain has an enabled,
// buildable schedule. Starting an empty scheduler would idle forever.
var ErrNothingScheduled = errors.New("no domains with schedules enabled found in config")

// DefaultMisfireGrace is how late a fire may run before it is dropped as a
// misfire.
const DefaultMisfireGrace = 60 * time.Second

// RunFunc executes one scheduled domain. The scheduler invokes it in its own
// goroutine per fire.
type RunFunc func(ctx context.Context, domainID string)

// JobStatus is a point-in-time snapshot of one scheduled job.
type JobStatus struct {
	ID     string    `json:"id"`
	Domain string    `json:"domain"`
	Name   string    `json:"name"`
	Cron   string    `json:"cron"`
	Next   time.Time `json:"next"`
}

type job struct {
	id      string
	domain  string
	name    string
	trigger *Trigger
	next    time.Time
}

// Scheduler fires domain runs on their cron triggers from a background
// loop. Missed fires within the grace period coalesce into a single
// catch-up run; older ones are dropped as misfires.
type Scheduler struct {
	run     RunFunc
	logger  *slog.Logger
	metrics *metrics.Set
	grace   time.Duration
	tick    time.Duration
	clock   func() time.Time

	mu      sync.Mutex
	jobs    []*job
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	inflight sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics attaches the metric set.
func WithMetrics(set *metrics.Set) Option {
	return func(s *Scheduler) {
		s.metrics = set
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = now
	}
}

// WithMisfireGrace overrides how late a fire may run before it is dropped.
func WithMisfireGrace(grace time.Duration) Option {
	return func(s *Scheduler) {
		s.grace = grace
	}
}

// WithTick overrides how often the loop checks for due jobs.
func WithTick(tick time.Duration) Option {
	return func(s *Scheduler) {
		s.tick = tick
	}
}

// New builds a scheduler with one job per schedulable domain. Domains
// without a buildable trigger are left out; if that leaves no jobs at all,
// New fails with ErrNothingScheduled before anything starts. A schedule
// that cannot be parsed fails construction outright.
func New(cfg *config.Global, run RunFunc, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		run:    run,
		logger: logging.NewNop(),
		grace:  DefaultMisfireGrace,
		tick:   time.Second,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	ids := make([]string, 0, len(cfg.Domains))
	for id := range cfg.Domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := s.clock()
	for _, id := range ids {
		trigger, err := BuildTrigger(cfg, id, s.logger)
		if err != nil {
			return nil, fmt.Errorf("domain %s: %w", id, err)
		}
		if trigger == nil {
			continue
		}
		j := &job{
			id:      "domain_" + id,
			domain:  id,
			name:    "Domain: " + cfg.Domains[id].Name,
			trigger: trigger,
			next:    trigger.Next(now),
		}
		s.jobs = append(s.jobs, j)
		s.logger.Info("scheduled domain", "domain", id, "cron", trigger.Expr, "next", j.next)
	}
	if len(s.jobs) == 0 {
		return nil, ErrNothingScheduled
	}
	s.logger.Info("scheduler configured", "jobs", len(s.jobs))
	return s, nil
}

// Start launches the background loop. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)
}

// Stop cancels the loop context and waits for it and any in-flight runs to
// wind down. Runners observe the cancellation through their context.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.inflight.Wait()
}

// Wait blocks until the loop exits and all in-flight runs have finished.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return
	}
	<-done
	s.inflight.Wait()
}

// Jobs returns a snapshot of the scheduled jobs, ordered by domain id.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStatus, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = JobStatus{
			ID:     j.id,
			Domain: j.domain,
			Name:   j.name,
			Cron:   j.trigger.Expr,
			Next:   j.next,
		}
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx, s.clock())
		}
	}
}

// check fires every job whose next run time has passed. All due times of a
// job coalesce into one run at the most recent of them; if even that one is
// older than the grace period, the whole batch of misses is dropped as a
// misfire. Either way the job is advanced past now.
func (s *Scheduler) check(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		var due []time.Time
		for !j.next.After(now) {
			due = append(due, j.next)
			j.next = j.trigger.Next(j.next)
		}
		if len(due) == 0 {
			continue
		}
		runAt := due[len(due)-1]
		if len(due) > 1 {
			s.logger.Info("coalescing missed runs", "job", j.id, "missed", len(due)-1)
		}
		if now.Sub(runAt) > s.grace {
			s.metrics.Misfire()
			s.logger.Warn("misfire, run is past the grace period",
				"job", j.id, "scheduled", runAt, "grace", s.grace)
			continue
		}
		s.fire(ctx, j, runAt)
	}
}

func (s *Scheduler) fire(ctx context.Context, j *job, runAt time.Time) {
	s.metrics.SchedulerFire()
	s.logger.Info("firing scheduled domain", "job", j.id, "domain", j.domain, "scheduled", runAt)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.run(ctx, j.domain)
	}()
}
