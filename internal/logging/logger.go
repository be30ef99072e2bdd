package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/millrace/flume/pkg/config"
)

// New creates a configured application logger.
// It writes to Stderr (keeping Stdout free for command output).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttrs,
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Setup builds the logger described by a logging config: console output
// and/or a timestamped run file under cfg.Dir. The returned close function
// releases the file sink; it is a no-op for console-only setups.
func Setup(cfg config.Logging) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var sinks []io.Writer
	if cfg.ToConsole {
		sinks = append(sinks, os.Stderr)
	}

	closeFn := func() error { return nil }
	var logFile string
	if cfg.ToFile {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		logFile = filepath.Join(cfg.Dir, "run_"+time.Now().Format("2006-01-02_15.04.05")+".log")
		file, err := os.Create(logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("create log file: %w", err)
		}
		sinks = append(sinks, file)
		closeFn = file.Close
	}

	if len(sinks) == 0 {
		return NewNop(), closeFn, nil
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(sinks...), &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttrs,
	}))
	if logFile != "" {
		logger.Info("logging to file", "path", logFile)
	}
	return logger, closeFn, nil
}

// ParseLevel maps a config level string to a slog.Level. The empty string
// means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// WithDomain returns a logger that attaches the domain id to every record.
func WithDomain(logger *slog.Logger, id string) *slog.Logger {
	return logger.With("domain", id)
}

func replaceAttrs(groups []string, a slog.Attr) slog.Attr {
	// Standardize 'error' key to 'err'
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}
