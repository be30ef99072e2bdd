/*
Package flume orchestrates configuration-driven batch pipelines. Domains
are declared in YAML with their inputs, outputs, params and schedules; Go
runners registered against those domain ids do the actual work, reading
and writing datasets through a pluggable format registry.

# Concept

A run selects domains from the config (active_domains, active_tags),
resolves each one's runner from an explicit registry and executes the
batch under the configured strategy: serial, a bounded worker pool, or a
two-level chunked fan-out. Failures are isolated per domain and classified
(setup, data handling, execution) into a batch report; a strict mode stops
at the first failure instead. Schedules on domains turn into cron triggers
fired by a background scheduler with misfire and coalescing handling.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/millrace/flume"
		"github.com/millrace/flume/domains/churn"
	)

	func main() {
		orch, err := flume.Load("configs/config.yaml")
		if err != nil {
			log.Fatal(err)
		}
		orch.Register(churn.ID, churn.New(orch.IO()))

		report, err := orch.Run(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(report.Summary())
	}

Embedding applications bring their own domains by implementing
pipeline.Runner, and their own dataset formats by implementing
tabular.Codec or tabular.Handler.
*/
package flume
