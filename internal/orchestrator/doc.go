// Package orchestrator fans out one deployment pipeline per requested
// service and aggregates their progress into a single operator report.
//
// Each service gets its own task runner goroutine (capped by the worker
// limit); runners are fully independent and may finish in any order.
// The only shared mutable structure is the status store, where each
// record has one writer (its runner) and one reader (the orchestrator's
// polling loop). The join is event-driven, while a ticker reprints the
// consolidated table so an operator can audit progress in real time.
//
// Failures never propagate between services: a runner converts every
// stage error into a terminal record, and the run's only automatable
// failure signal is the process exit code derived from the final tally.
package orchestrator
