package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// quietLogging keeps command tests from writing run logs into the package
// directory.
const quietLogging = "logging:\n  to_console: false\n  to_file: false\n"

func TestLoadConfig(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flume.yaml")
		writeFile(t, path, quietLogging+`
domains:
  churn:
    name: Churn
`)
		cfg, skipped, err := loadConfig(path)
		require.NoError(t, err)
		assert.Empty(t, skipped)
		assert.Contains(t, cfg.Domains, "churn")
	})

	t.Run("directory composition", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "config.yaml"), quietLogging+"env: test\n")
		writeFile(t, filepath.Join(dir, "domains", "churn.yaml"), "name: Churn\n")
		writeFile(t, filepath.Join(dir, "domains", "broken.yaml"), ":\t:::bad\n")

		cfg, skipped, err := loadConfig(dir)
		require.NoError(t, err)
		require.Len(t, skipped, 1)
		assert.Equal(t, "broken", skipped[0].Domain)
		assert.Contains(t, cfg.Domains, "churn")
		assert.True(t, cfg.Domains["churn"].Enabled)
	})

	t.Run("missing path", func(t *testing.T) {
		_, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestValidateCommand(t *testing.T) {
	t.Run("reports structural problems", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flume.yaml")
		writeFile(t, path, quietLogging+`
active_domains: [ghost]
domains:
  churn:
    name: Churn
`)
		err := Validate(ValidateOptions{ConfigPath: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "problem(s) found")
	})

	t.Run("reports missing runners", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flume.yaml")
		writeFile(t, path, quietLogging+`
domains:
  audience:
    name: Audience
`)
		err := Validate(ValidateOptions{ConfigPath: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no runner registered for: audience")
	})

	t.Run("bundled churn domain passes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flume.yaml")
		writeFile(t, path, quietLogging+`
domains:
  churn:
    name: Churn
    inputs:
      customers: {format: csv, path: data/customers.csv}
      transactions: {format: csv, path: data/transactions.csv}
    outputs:
      scores: {format: csv, path: out/scores.csv}
      metrics: {format: json, path: out/metrics.json}
`)
		assert.NoError(t, Validate(ValidateOptions{ConfigPath: path}))
	})
}

func TestRunCommand(t *testing.T) {
	t.Run("churn end to end", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "customers.csv"), "customer_id,name\nc1,Ada\nc2,Grace\n")
		writeFile(t, filepath.Join(dir, "transactions.csv"), "customer_id,amount\nc1,100\nc2,25\n")

		cfgPath := filepath.Join(dir, "flume.yaml")
		writeFile(t, cfgPath, quietLogging+fmt.Sprintf(`
domains:
  churn:
    name: Churn Scoring
    params:
      score_threshold: 0.5
    inputs:
      customers: {format: csv, path: %[1]s/customers.csv}
      transactions: {format: csv, path: %[1]s/transactions.csv}
    outputs:
      scores: {format: csv, path: %[1]s/out/scores.csv}
      metrics: {format: json, path: %[1]s/out/metrics.json}
`, dir))

		require.NoError(t, Run(RunOptions{ConfigPath: cfgPath}))

		scores, err := os.ReadFile(filepath.Join(dir, "out", "scores.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(scores), "c2,0.75,true")

		metrics, err := os.ReadFile(filepath.Join(dir, "out", "metrics.json"))
		require.NoError(t, err)
		assert.Contains(t, string(metrics), "high_risk")
	})

	t.Run("unregistered domain fails the batch", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flume.yaml")
		writeFile(t, path, quietLogging+`
domains:
  ghost:
    name: Ghost
`)
		err := Run(RunOptions{ConfigPath: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 1 domains failed")
	})

	t.Run("strict surfaces the first failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flume.yaml")
		writeFile(t, path, quietLogging+`
domains:
  ghost:
    name: Ghost
`)
		err := Run(RunOptions{ConfigPath: path, Strict: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no runner registered for domain")
	})

	t.Run("dry run previews without executing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "flume.yaml")
		writeFile(t, path, quietLogging+`
domains:
  ghost:
    name: Ghost
`)
		// ghost has no runner; a real run would fail, a dry run must not.
		assert.NoError(t, Run(RunOptions{ConfigPath: path, DryRun: true}))
	})
}

func TestListCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flume.yaml")
	writeFile(t, path, quietLogging+`
active_tags: [gold]
domains:
  churn:
    name: Churn
    tags: [gold]
    schedule:
      enabled: true
      interval: daily
      hour: 2
  audience:
    name: Audience
    tags: [silver]
`)
	assert.NoError(t, List(ListOptions{ConfigPath: path}))
}

func TestGraphCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flume.yaml")
	writeFile(t, path, quietLogging+`
domains:
  churn:
    name: Churn
    inputs:
      customers: {format: csv, path: data/customers.csv}
    outputs:
      scores: {format: csv, path: out/scores.csv}
`)
	assert.NoError(t, Graph(GraphOptions{ConfigPath: path}))
}
