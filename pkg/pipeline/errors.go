package pipeline

import (
	"errors"
	"fmt"

	"github.com/millrace/flume/pkg/config"
)

// NotFoundError reports a domain id with no registered runner.
type NotFoundError struct {
	Domain string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no runner registered for domain", e.Domain)
}

// InterfaceError reports a registration that cannot be used as a runner.
type InterfaceError struct {
	Domain string
	Reason string
}

func (e *InterfaceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Domain, e.Reason)
}

// ExecutionError wraps a failure from a domain's own logic, keeping the
// domain id attached and the cause available for unwrapping. Taxonomy
// errors are never wrapped in it; they already carry their context.
type ExecutionError struct {
	Domain string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: domain execution failed: %v", e.Domain, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// DataError marks the data-handling category: configuration, I/O and schema
// failures that carry enough context (domain, key, path, format) to diagnose
// without a stack trace. Error types opt in by implementing the marker
// method.
type DataError interface {
	error
	DataError()
}

// Kind labels a classified failure for reporting.
type Kind string

const (
	// KindSetup marks resolution failures: no runner, or an unusable one.
	KindSetup Kind = "setup"
	// KindData marks data-handling failures (see DataError).
	KindData Kind = "data"
	// KindExecution marks every other failure from a domain's own logic.
	KindExecution Kind = "execution"
)

// IsSetup reports whether err is a domain setup failure.
func IsSetup(err error) bool {
	var notFound *NotFoundError
	var iface *InterfaceError
	return errors.As(err, &notFound) || errors.As(err, &iface)
}

// IsData reports whether err belongs to the data-handling category. Config
// lookup and validation errors count: an unknown I/O key is a wiring
// mistake, not a logic failure.
func IsData(err error) bool {
	var data DataError
	if errors.As(err, &data) {
		return true
	}
	var unknownKey *config.UnknownKeyError
	var validation *config.ValidationError
	return errors.As(err, &unknownKey) || errors.As(err, &validation)
}

// Classify maps an error to its reporting kind.
func Classify(err error) Kind {
	switch {
	case IsSetup(err):
		return KindSetup
	case IsData(err):
		return KindData
	default:
		return KindExecution
	}
}
