package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/millrace/flume/pkg/config"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetup_WritesRunFile(t *testing.T) {
	dir := t.TempDir()
	logger, closeFn, err := Setup(config.Logging{
		Level:  "info",
		Dir:    dir,
		ToFile: true,
	})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("starting domain", "domain", "churn")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "run_*.log"))
	if err != nil || len(files) != 1 {
		t.Fatalf("run files = %v (err %v), want one", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "starting domain") {
		t.Errorf("log file should carry the record, got %q", data)
	}
}

func TestSetup_NoSinksIsNop(t *testing.T) {
	logger, closeFn, err := Setup(config.Logging{Level: "info"})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closeFn()
	logger.Info("dropped")
}

func TestWithDomain(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithDomain(logger, "churn").Info("starting domain")
	if !strings.Contains(buf.String(), "domain=churn") {
		t.Errorf("record should carry the domain attr, got %q", buf.String())
	}
}
