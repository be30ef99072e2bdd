/*
Package pipeline defines the contract between the orchestrator and domain
implementations: the Runner interface, the registry mapping domain ids to
runners, the error taxonomy used to classify failures, and the batch report
aggregated during isolated execution.

Runners are registered explicitly at startup. There is no dynamic lookup;
a missing implementation is detectable when the registry is built rather
than at first invocation.
*/
package pipeline
