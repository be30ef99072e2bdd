// Package metrics defines the orchestrator's Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Set bundles the instruments shared by the engine and the scheduler. A nil
// *Set is valid and records nothing, so wiring metrics stays optional.
type Set struct {
	domainRuns     *prometheus.CounterVec
	batchDuration  prometheus.Histogram
	schedulerFires prometheus.Counter
	misfires       prometheus.Counter
}

// NewSet creates the instrument set and registers it with reg.
func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		domainRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flume_domain_runs_total",
				Help: "Domain executions by outcome",
			},
			[]string{"domain", "status"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "flume_batch_duration_seconds",
				Help: "Wall time of whole batches",
			},
		),
		schedulerFires: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flume_scheduler_fires_total",
				Help: "Scheduled jobs fired",
			},
		),
		misfires: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flume_scheduler_misfires_total",
				Help: "Scheduled fires dropped after the misfire grace period",
			},
		),
	}
	reg.MustRegister(s.domainRuns, s.batchDuration, s.schedulerFires, s.misfires)
	return s
}

// DomainRun records one domain outcome.
func (s *Set) DomainRun(domain, status string) {
	if s == nil {
		return
	}
	s.domainRuns.WithLabelValues(domain, status).Inc()
}

// BatchDone records the wall time of a completed batch.
func (s *Set) BatchDone(d time.Duration) {
	if s == nil {
		return
	}
	s.batchDuration.Observe(d.Seconds())
}

// SchedulerFire records a job firing.
func (s *Set) SchedulerFire() {
	if s == nil {
		return
	}
	s.schedulerFires.Inc()
}

// Misfire records a fire dropped for exceeding the grace period.
func (s *Set) Misfire() {
	if s == nil {
		return
	}
	s.misfires.Inc()
}
