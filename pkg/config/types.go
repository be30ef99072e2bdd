package config

import (
	"runtime"
	"sort"

	"gopkg.in/yaml.v3"
)

// Format identifies a tabular encoding understood by the I/O registry.
type Format string

// Formats with built-in handlers. Hosts may register additional formats on
// their own registry instance.
const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatSQL   Format = "sql"
	FormatRedis Format = "redis"
)

// Interval values accepted by Schedule.Interval.
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
)

// Global is the top-level configuration for one invocation. It is built once
// by Load (or assembled by hand in tests) and read-only afterwards, which is
// what allows sharing it across concurrent workers without locking.
type Global struct {
	Env       string    `json:"env,omitempty" yaml:"env,omitempty"`
	Logging   Logging   `json:"logging,omitempty" yaml:"logging,omitempty"`
	Execution Execution `json:"execution,omitempty" yaml:"execution,omitempty"`

	// Inputs are shared I/O descriptors that domains may reference by name
	// instead of repeating the full spec.
	Inputs map[string]IOSpec `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// ActiveDomains, when non-empty, restricts execution to these ids.
	ActiveDomains []string `json:"active_domains,omitempty" yaml:"active_domains,omitempty"`

	// ActiveTags, when non-empty, restricts execution to domains whose tag
	// set intersects it.
	ActiveTags []string `json:"active_tags,omitempty" yaml:"active_tags,omitempty"`

	// Domains maps a stable domain id to its configuration. The id is what
	// selection, scheduling and the registry key on; Domain.Name is the
	// human-readable label.
	Domains map[string]Domain `json:"domains,omitempty" yaml:"domains,omitempty"`
}

// Domain describes one independently schedulable pipeline.
type Domain struct {
	Name    string   `json:"name" yaml:"name"`
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Inputs and Outputs map logical keys to I/O descriptors. The keys are
	// the domain's contract with its pipeline code; the descriptors are
	// opaque to the orchestration core.
	Inputs  map[string]IOSpec `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs map[string]IOSpec `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	// InputRefs holds global input names when the YAML declares inputs as a
	// list instead of a mapping. Load resolves them into Inputs.
	InputRefs []string `json:"-" yaml:"-"`

	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Schedule Schedule       `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// UnmarshalYAML decodes a domain, defaulting Enabled to true and accepting
// inputs either as a mapping of descriptors or as a list of global input
// names (resolved later by Load).
func (d *Domain) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name     string            `yaml:"name"`
		Enabled  *bool             `yaml:"enabled"`
		Tags     []string          `yaml:"tags"`
		Inputs   yaml.Node         `yaml:"inputs"`
		Outputs  map[string]IOSpec `yaml:"outputs"`
		Params   map[string]any    `yaml:"params"`
		Schedule Schedule          `yaml:"schedule"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	d.Name = raw.Name
	d.Enabled = raw.Enabled == nil || *raw.Enabled
	d.Tags = raw.Tags
	d.Outputs = raw.Outputs
	d.Params = raw.Params
	d.Schedule = raw.Schedule

	switch raw.Inputs.Kind {
	case 0: // no inputs key
	case yaml.SequenceNode:
		return raw.Inputs.Decode(&d.InputRefs)
	default:
		return raw.Inputs.Decode(&d.Inputs)
	}
	return nil
}

// Input returns the descriptor for a logical input key. Unknown keys return
// an *UnknownKeyError carrying the keys the domain actually declares; a
// mistyped key is the most common wiring mistake, so the error must be
// actionable without a stack trace.
func (d Domain) Input(key string) (IOSpec, error) {
	spec, ok := d.Inputs[key]
	if !ok {
		return IOSpec{}, d.unknownKey(key)
	}
	return spec, nil
}

// Output returns the descriptor for a logical output key, with the same
// unknown-key behavior as Input.
func (d Domain) Output(key string) (IOSpec, error) {
	spec, ok := d.Outputs[key]
	if !ok {
		return IOSpec{}, d.unknownKey(key)
	}
	return spec, nil
}

func (d Domain) unknownKey(key string) *UnknownKeyError {
	return &UnknownKeyError{
		Domain:  d.Name,
		Key:     key,
		Inputs:  sortedKeys(d.Inputs),
		Outputs: sortedKeys(d.Outputs),
	}
}

// IOSpec describes one tabular dataset: where it lives, how it is encoded,
// and handler-specific options. Storage carries backend settings, such as
// object store endpoints and credentials, separate from format options.
type IOSpec struct {
	Path    string         `json:"path,omitempty" yaml:"path,omitempty"`
	Format  Format         `json:"format" yaml:"format"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
	Storage map[string]any `json:"storage_options,omitempty" yaml:"storage_options,omitempty"`
}

// Schedule describes when a domain's batch should fire. Exactly one of Cron
// or Interval may be set when Enabled is true; Validate enforces this.
type Schedule struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Cron is a five-field cron expression (minute hour day-of-month month
	// day-of-week). When set, it takes precedence over Interval.
	Cron string `json:"cron,omitempty" yaml:"cron,omitempty"`

	// Interval is one of "daily", "weekly" or "monthly", refined by the
	// fields below.
	Interval   string `json:"interval,omitempty" yaml:"interval,omitempty"`
	DayOfWeek  string `json:"day_of_week,omitempty" yaml:"day_of_week,omitempty"`
	DayOfMonth int    `json:"day_of_month,omitempty" yaml:"day_of_month,omitempty"`
	Hour       int    `json:"hour" yaml:"hour"`
	Minute     int    `json:"minute" yaml:"minute"`
}

// UnmarshalYAML decodes a schedule with the documented defaults (Monday,
// first of the month).
func (s *Schedule) UnmarshalYAML(node *yaml.Node) error {
	type plain Schedule
	out := plain{DayOfWeek: "monday", DayOfMonth: 1}
	if err := node.Decode(&out); err != nil {
		return err
	}
	*s = Schedule(out)
	return nil
}

// Logging configures the ambient logger: console and/or a timestamped file
// under Dir.
type Logging struct {
	Level     string `json:"level,omitempty" yaml:"level,omitempty"`
	Dir       string `json:"dir,omitempty" yaml:"dir,omitempty"`
	ToConsole bool   `json:"to_console" yaml:"to_console"`
	ToFile    bool   `json:"to_file" yaml:"to_file"`
}

// DefaultLogging returns the logging settings used when the config omits the
// logging block entirely.
func DefaultLogging() Logging {
	return Logging{Level: "info", Dir: "logs", ToConsole: true, ToFile: true}
}

// UnmarshalYAML decodes logging settings on top of the defaults, so a
// partial block only overrides what it names.
func (l *Logging) UnmarshalYAML(node *yaml.Node) error {
	type plain Logging
	out := plain(DefaultLogging())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*l = Logging(out)
	return nil
}

// Execution selects the batch concurrency strategy. Processes is the outer
// fan-out tier (chunked), Threads the inner pool; both disabled means
// serial execution.
type Execution struct {
	Threads   WorkerPool `json:"threads,omitempty" yaml:"threads,omitempty"`
	Processes WorkerPool `json:"processes,omitempty" yaml:"processes,omitempty"`
}

// WorkerPool configures one fan-out tier.
type WorkerPool struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxWorkers caps the tier's parallelism. Zero derives the cap from the
	// available CPUs.
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// Workers resolves the effective worker count: MaxWorkers when set,
// otherwise the CPU count, never less than one.
func (w WorkerPool) Workers() int {
	n := w.MaxWorkers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}

func sortedKeys(m map[string]IOSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
