package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a single YAML configuration file, applies defaults
// and resolves global input references.
func Load(path string) (*Global, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Parse decodes raw YAML into a Global. Input references of all embedded
// domains are resolved; unresolvable references are collected into one
// *AggregateError.
func Parse(data []byte) (*Global, error) {
	var cfg Global
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDir composes a configuration directory: dir/config.yaml plus one
// domain per file under dir/domains/, the domain id being the file name
// without extension (a file wins over a same-id entry in config.yaml).
//
// Domain files are loaded with per-file isolation: a broken file is reported
// in the returned slice and skipped, so one team's mistake does not block
// every other domain from loading.
func LoadDir(dir string) (*Global, []*DomainLoadError, error) {
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return nil, nil, err
	}
	if cfg.Domains == nil {
		cfg.Domains = make(map[string]Domain)
	}

	files, err := filepath.Glob(filepath.Join(dir, "domains", "*.yaml"))
	if err != nil {
		return nil, nil, fmt.Errorf("list domain configs: %w", err)
	}
	sort.Strings(files)

	var failed []*DomainLoadError
	for _, file := range files {
		id := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		domain, err := loadDomainFile(file)
		if err == nil {
			err = resolveRefs(&domain, cfg.Inputs, "domains."+id+".inputs")
		}
		if err != nil {
			failed = append(failed, &DomainLoadError{Domain: id, Err: err})
			continue
		}
		cfg.Domains[id] = domain
	}
	return cfg, failed, nil
}

func loadDomainFile(path string) (Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Domain{}, fmt.Errorf("read domain config: %w", err)
	}
	var d Domain
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Domain{}, fmt.Errorf("parse domain config: %w", err)
	}
	return d, nil
}

func finalize(cfg *Global) error {
	if cfg.Logging == (Logging{}) {
		cfg.Logging = DefaultLogging()
	}

	var errs []error
	for _, id := range sortedDomainIDs(cfg.Domains) {
		d := cfg.Domains[id]
		if err := resolveRefs(&d, cfg.Inputs, "domains."+id+".inputs"); err != nil {
			errs = append(errs, err)
			continue
		}
		cfg.Domains[id] = d
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// resolveRefs replaces a list-form inputs declaration with the referenced
// global descriptors. Already-resolved domains pass through untouched.
func resolveRefs(d *Domain, global map[string]IOSpec, key string) error {
	if len(d.InputRefs) == 0 {
		return nil
	}

	resolved := make(map[string]IOSpec, len(d.InputRefs))
	var missing []string
	for _, name := range d.InputRefs {
		spec, ok := global[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		resolved[name] = spec
	}
	if len(missing) > 0 {
		return &ValidationError{
			Key:    key,
			Reason: "references unknown global inputs: " + strings.Join(missing, ", "),
		}
	}

	if d.Inputs == nil {
		d.Inputs = resolved
	} else {
		for name, spec := range resolved {
			d.Inputs[name] = spec
		}
	}
	d.InputRefs = nil
	return nil
}

func sortedDomainIDs(domains map[string]Domain) []string {
	ids := make([]string, 0, len(domains))
	for id := range domains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
