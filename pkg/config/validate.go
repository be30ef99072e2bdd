package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

var weekdayNames = map[string]struct{}{
	"monday":    {},
	"tuesday":   {},
	"wednesday": {},
	"thursday":  {},
	"friday":    {},
	"saturday":  {},
	"sunday":    {},
}

// Validate checks the semantic constraints that YAML shape alone cannot
// express: filter references, I/O descriptor completeness, schedule
// consistency and worker counts. All violations are collected so one pass
// reports every problem; the result is a single *AggregateError.
func Validate(cfg *Global) error {
	var errs []error
	check := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	for _, id := range cfg.ActiveDomains {
		if _, ok := cfg.Domains[id]; !ok {
			check("active_domains", fmt.Sprintf("references unknown domain %q", id), nil)
		}
	}

	if cfg.Execution.Threads.MaxWorkers < 0 {
		check("execution.threads.max_workers", "must not be negative", cfg.Execution.Threads.MaxWorkers)
	}
	if cfg.Execution.Processes.MaxWorkers < 0 {
		check("execution.processes.max_workers", "must not be negative", cfg.Execution.Processes.MaxWorkers)
	}

	for _, id := range sortedDomainIDs(cfg.Domains) {
		d := cfg.Domains[id]
		prefix := "domains." + id
		if d.Name == "" {
			check(prefix+".name", "name is required", nil)
		}
		validateSpecs(prefix+".inputs", d.Inputs, check)
		validateSpecs(prefix+".outputs", d.Outputs, check)
		validateSchedule(prefix+".schedule", d.Schedule, check)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateSpecs(prefix string, specs map[string]IOSpec, check func(string, string, any)) {
	for _, key := range sortedKeys(specs) {
		spec := specs[key]
		if spec.Format == "" {
			check(prefix+"."+key+".format", "format is required", nil)
		}
		if spec.Path == "" {
			check(prefix+"."+key+".path", "path is required", nil)
		}
	}
}

// validateSchedule enforces the cron-or-interval rule and field ranges. The
// trigger builder itself is deliberately lenient (it skips what it cannot
// build); this is where misconfigured schedules are supposed to be caught.
func validateSchedule(prefix string, s Schedule, check func(string, string, any)) {
	if !s.Enabled {
		return
	}

	hasCron := s.Cron != ""
	hasInterval := s.Interval != ""
	switch {
	case hasCron && hasInterval:
		check(prefix, "provide either cron or interval, not both", nil)
		return
	case !hasCron && !hasInterval:
		check(prefix, "an enabled schedule requires cron or interval", nil)
		return
	}

	if hasCron {
		if _, err := cron.ParseStandard(s.Cron); err != nil {
			check(prefix+".cron", "invalid cron expression", s.Cron)
		}
		return
	}

	switch s.Interval {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
	default:
		check(prefix+".interval", "must be one of: daily, monthly, weekly", s.Interval)
		return
	}

	if s.Hour < 0 || s.Hour > 23 {
		check(prefix+".hour", "must be between 0 and 23", s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		check(prefix+".minute", "must be between 0 and 59", s.Minute)
	}
	if s.Interval == IntervalWeekly {
		if _, ok := weekdayNames[strings.ToLower(s.DayOfWeek)]; !ok {
			check(prefix+".day_of_week", "must be a weekday name", s.DayOfWeek)
		}
	}
	if s.Interval == IntervalMonthly && (s.DayOfMonth < 1 || s.DayOfMonth > 31) {
		check(prefix+".day_of_month", "must be between 1 and 31", s.DayOfMonth)
	}
}
