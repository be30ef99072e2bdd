package tabular

import (
	"errors"
	"fmt"

	"github.com/millrace/flume/pkg/config"
)

// UnsupportedFormatError reports a format with no registered handler.
type UnsupportedFormatError struct {
	Op     string // "read" or "write"
	Path   string
	Format config.Format
}

func (e *UnsupportedFormatError) Error() string {
	role := "reader"
	if e.Op == "write" {
		role = "writer"
	}
	return ioDetail("no "+role+" registered for format", e.Path, e.Format)
}

func (e *UnsupportedFormatError) DataError() {}

// ReadError wraps a handler failure while loading a dataset.
type ReadError struct {
	Path   string
	Format config.Format
	Err    error
}

func (e *ReadError) Error() string {
	return ioDetail("failed to read dataset", e.Path, e.Format) + ": " + e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }
func (e *ReadError) DataError()    {}

// WriteError wraps a handler failure while storing a dataset.
type WriteError struct {
	Path   string
	Format config.Format
	Err    error
}

func (e *WriteError) Error() string {
	return ioDetail("failed to write dataset", e.Path, e.Format) + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }
func (e *WriteError) DataError()    {}

// SpecError reports an I/O spec a handler cannot act on, such as a sql
// spec without a table.
type SpecError struct {
	Reason string
	Path   string
	Format config.Format
}

func (e *SpecError) Error() string { return ioDetail(e.Reason, e.Path, e.Format) }

func (e *SpecError) DataError() {}

// ioDetail appends path and format context in a stable shape for logs.
func ioDetail(msg, path string, format config.Format) string {
	if path != "" {
		msg += fmt.Sprintf(" | path=%s", path)
	}
	if format != "" {
		msg += fmt.Sprintf(" | format=%s", format)
	}
	return msg
}

// isDataFailure reports whether err already belongs to the data-handling
// category; such errors pass through dispatch unwrapped.
func isDataFailure(err error) bool {
	var marker interface{ DataError() }
	return errors.As(err, &marker)
}
