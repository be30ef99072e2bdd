package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/millrace/flume/pkg/config"
)

type fakeDataError struct{ msg string }

func (e *fakeDataError) Error() string { return e.msg }
func (e *fakeDataError) DataError()    {}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", &NotFoundError{Domain: "churn"}, KindSetup},
		{"interface", &InterfaceError{Domain: "churn", Reason: "nil"}, KindSetup},
		{"data marker", &fakeDataError{msg: "read failed"}, KindData},
		{"unknown io key", &config.UnknownKeyError{Domain: "churn", Key: "x"}, KindData},
		{"config validation", &config.ValidationError{Key: "env", Reason: "bad"}, KindData},
		{"plain error", errors.New("boom"), KindExecution},
		{"wrapped data error", fmt.Errorf("reading input: %w", &fakeDataError{msg: "io"}), KindData},
		{"wrapped setup error", fmt.Errorf("step: %w", &NotFoundError{Domain: "churn"}), KindSetup},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("divide by zero")
	err := &ExecutionError{Domain: "churn", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ExecutionError should unwrap to its cause")
	}
	want := "churn: domain execution failed: divide by zero"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestClassify_ExecutionErrorStaysExecution(t *testing.T) {
	err := &ExecutionError{Domain: "churn", Err: errors.New("boom")}
	if got := Classify(err); got != KindExecution {
		t.Errorf("Classify() = %q, want %q", got, KindExecution)
	}
}
