package config

import (
	"fmt"
	"strings"
)

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Key    string // Field path, e.g. "domains.churn.schedule.hour"
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err is an
// AggregateError. Otherwise returns nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}

// UnknownKeyError reports a lookup of an input or output key the domain does
// not declare. It lists the valid keys so the message stands on its own.
type UnknownKeyError struct {
	Domain  string
	Key     string
	Inputs  []string
	Outputs []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("%s: unknown IO key %q. Inputs: %s. Outputs: %s.",
		e.Domain, e.Key, keyList(e.Inputs), keyList(e.Outputs))
}

func keyList(keys []string) string {
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}

// DomainLoadError records a domain file that failed to load during directory
// composition; the rest of the directory still composes.
type DomainLoadError struct {
	Domain string
	Err    error
}

func (e *DomainLoadError) Error() string {
	return fmt.Sprintf("domain %q: %v", e.Domain, e.Err)
}

func (e *DomainLoadError) Unwrap() error { return e.Err }
