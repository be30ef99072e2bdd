/*
Package config defines the typed configuration consumed by the flume
orchestrator: per-domain pipeline descriptions with their inputs, outputs,
params and schedules, plus the global execution strategy and filters.

A configuration is loaded from YAML (a single file, or a directory composed
of config.yaml plus one file per domain under domains/), validated once, and
treated as immutable for the lifetime of an invocation. Concurrent workers
share it read-only; nothing in the orchestration core mutates it.
*/
package config
