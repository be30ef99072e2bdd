package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
env: dev
active_tags: [gold]
domains:
  churn:
    name: Churn Scores
    tags: [gold]
    params:
      score_threshold: 0.7
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	d, ok := cfg.Domains["churn"]
	if !ok {
		t.Fatalf("Domains = %v, want churn", cfg.Domains)
	}
	if !d.Enabled {
		t.Error("domain should default to enabled")
	}
	if cfg.Logging != DefaultLogging() {
		t.Errorf("Logging = %+v, want defaults when the block is absent", cfg.Logging)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}

func TestParse_ResolvesGlobalInputRefs(t *testing.T) {
	cfg, err := Parse([]byte(`
inputs:
  customers:
    path: data/customers.csv
    format: csv
domains:
  churn:
    name: Churn Scores
    inputs: [customers]
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	spec, ok := cfg.Domains["churn"].Inputs["customers"]
	if !ok {
		t.Fatalf("inputs = %v, want customers resolved", cfg.Domains["churn"].Inputs)
	}
	if spec.Path != "data/customers.csv" {
		t.Errorf("resolved path = %q", spec.Path)
	}
}

func TestParse_UnknownInputRef(t *testing.T) {
	_, err := Parse([]byte(`
domains:
  churn:
    name: Churn Scores
    inputs: [customers]
`))
	if err == nil {
		t.Fatal("Parse() should fail for an unresolvable input reference")
	}
	errs := ValidationErrors(err)
	if len(errs) != 1 {
		t.Fatalf("ValidationErrors() = %v, want exactly one", errs)
	}
	vErr, ok := errs[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", errs[0])
	}
	if vErr.Key != "domains.churn.inputs" {
		t.Errorf("Key = %q", vErr.Key)
	}
}

func TestLoadDir_ComposesDomainFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
env: dev
inputs:
  customers:
    path: data/customers.csv
    format: csv
`)
	writeFile(t, filepath.Join(dir, "domains", "churn.yaml"), `
name: Churn Scores
tags: [gold]
inputs: [customers]
outputs:
  scores:
    path: out/scores.csv
    format: csv
`)
	writeFile(t, filepath.Join(dir, "domains", "broken.yaml"), "name: [\n")

	cfg, failed, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	if len(failed) != 1 {
		t.Fatalf("failed = %v, want exactly the broken file", failed)
	}
	if failed[0].Domain != "broken" {
		t.Errorf("failed domain = %q, want broken", failed[0].Domain)
	}

	d, ok := cfg.Domains["churn"]
	if !ok {
		t.Fatalf("Domains = %v, want churn from file", cfg.Domains)
	}
	if _, ok := d.Inputs["customers"]; !ok {
		t.Errorf("churn inputs = %v, want resolved customers ref", d.Inputs)
	}
	if _, ok := cfg.Domains["broken"]; ok {
		t.Error("broken domain should not be composed")
	}
}

func TestLoadDir_FileOverridesBaseEntry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
domains:
  churn:
    name: Old Name
`)
	writeFile(t, filepath.Join(dir, "domains", "churn.yaml"), "name: New Name\n")

	cfg, failed, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("failed = %v, want none", failed)
	}
	if got := cfg.Domains["churn"].Name; got != "New Name" {
		t.Errorf("Name = %q, want the file to win", got)
	}
}

func TestLoadDir_UnknownRefIsolatesDomain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), "env: dev\n")
	writeFile(t, filepath.Join(dir, "domains", "churn.yaml"), `
name: Churn Scores
inputs: [missing]
`)

	cfg, failed, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(failed) != 1 || failed[0].Domain != "churn" {
		t.Fatalf("failed = %v, want churn isolated", failed)
	}
	if len(cfg.Domains) != 0 {
		t.Errorf("Domains = %v, want none composed", cfg.Domains)
	}
}
