package pipeline

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReport_CountsAndSummary(t *testing.T) {
	r := NewReport(time.Now())
	r.Results = []Result{
		{Domain: "a", Status: StatusSucceeded},
		{Domain: "b", Status: StatusSucceeded},
		{Domain: "c", Status: StatusFailed, Kind: KindExecution, Err: errors.New("boom")},
		{Domain: "d", Status: StatusSkipped, Reason: "disabled"},
	}

	if r.Succeeded() != 2 || r.Failed() != 1 || r.Skipped() != 1 {
		t.Errorf("counts = %d/%d/%d", r.Succeeded(), r.Failed(), r.Skipped())
	}
	if got := r.Summary(); got != "2 succeeded, 1 failed, 1 skipped" {
		t.Errorf("Summary() = %q", got)
	}

	failures := r.Failures()
	if len(failures) != 1 || failures[0].Domain != "c" {
		t.Errorf("Failures() = %v", failures)
	}
}

func TestResult_MarshalJSONCarriesError(t *testing.T) {
	data, err := json.Marshal(Result{
		Domain: "churn",
		Status: StatusFailed,
		Kind:   KindExecution,
		Err:    errors.New("boom"),
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"error":"boom"`) {
		t.Errorf("Marshal() = %s, want the error string", data)
	}

	data, err = json.Marshal(Result{Domain: "ok", Status: StatusSucceeded})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "error") {
		t.Errorf("Marshal() = %s, clean results should omit the error key", data)
	}
}

func TestNewReport_AssignsBatchID(t *testing.T) {
	a := NewReport(time.Now())
	b := NewReport(time.Now())
	if a.Batch == "" || a.Batch == b.Batch {
		t.Errorf("batch ids should be unique and non-empty: %q vs %q", a.Batch, b.Batch)
	}
}
