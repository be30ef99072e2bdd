// Package httpapi serves the scheduler daemon's status surface: health,
// configured domains, scheduled jobs, manual run triggers and Prometheus
// metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/millrace/flume/internal/logging"
	"github.com/millrace/flume/internal/schedule"
	"github.com/millrace/flume/pkg/pipeline"
)

// Runner is the slice of the orchestrator the API needs.
type Runner interface {
	Domains() []string
	Selected() []string
	RunDomains(ctx context.Context, ids ...string) (*pipeline.Report, error)
}

// JobSource provides the scheduled jobs snapshot. Nil means no scheduler
// is attached and /jobs serves an empty list.
type JobSource interface {
	Jobs() []schedule.JobStatus
}

// Server holds the handler dependencies.
type Server struct {
	runner   Runner
	jobs     JobSource
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	version  string
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithJobs attaches the scheduler snapshot behind GET /jobs.
func WithJobs(jobs JobSource) Option {
	return func(s *Server) {
		s.jobs = jobs
	}
}

// WithGatherer sets the metrics gatherer behind GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithVersion sets the version reported by GET /health.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewHandler builds the routed HTTP handler.
func NewHandler(runner Runner, opts ...Option) http.Handler {
	s := &Server{
		runner:   runner,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Get("/domains", s.domains)
	r.Get("/jobs", s.listJobs)
	r.Post("/domains/{id}/run", s.runDomain)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

type domainInfo struct {
	ID       string `json:"id"`
	Selected bool   `json:"selected"`
}

func (s *Server) domains(w http.ResponseWriter, _ *http.Request) {
	selected := make(map[string]bool)
	for _, id := range s.runner.Selected() {
		selected[id] = true
	}
	out := make([]domainInfo, 0)
	for _, id := range s.runner.Domains() {
		out = append(out, domainInfo{ID: id, Selected: selected[id]})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) listJobs(w http.ResponseWriter, _ *http.Request) {
	jobs := []schedule.JobStatus{}
	if s.jobs != nil {
		jobs = s.jobs.Jobs()
	}
	s.writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) runDomain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	known := false
	for _, d := range s.runner.Domains() {
		if d == id {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, "unknown domain", http.StatusNotFound)
		return
	}

	report, err := s.runner.RunDomains(r.Context(), id)
	if err != nil {
		s.logger.Error("manual run failed", "domain", id, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("manual run finished", "domain", id, "summary", report.Summary())
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
