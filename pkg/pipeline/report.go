package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one domain within a batch.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Result is one domain's outcome in a batch.
type Result struct {
	Domain   string        `json:"domain"`
	Status   Status        `json:"status"`
	Kind     Kind          `json:"kind,omitempty"`   // set when failed
	Err      error         `json:"-"`                // set when failed
	Reason   string        `json:"reason,omitempty"` // set when skipped
	Duration time.Duration `json:"duration"`
}

// MarshalJSON flattens Err into a plain string so failed results carry
// their message in serialized reports.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		Err string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Err != nil {
		out.Err = r.Err.Error()
	}
	return json.Marshal(out)
}

// Report aggregates the per-domain results of one batch. In isolated mode
// failures live here instead of propagating out of the engine.
type Report struct {
	Batch   string    `json:"batch"`
	Started time.Time `json:"started"`
	Results []Result  `json:"results"`
}

// NewReport creates an empty report with a fresh batch id.
func NewReport(started time.Time) *Report {
	return &Report{Batch: uuid.NewString(), Started: started}
}

// Succeeded counts domains that completed cleanly.
func (r *Report) Succeeded() int { return r.count(StatusSucceeded) }

// Failed counts domains that reported any failure kind.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// Skipped counts domains that were selected but not run.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

func (r *Report) count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failures returns only the failed results.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Summary renders the one-line batch outcome.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped",
		r.Succeeded(), r.Failed(), r.Skipped())
}
