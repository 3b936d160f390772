// Package status holds the per-service task records for a deployment run
// and the store the orchestrator reads them from.
package status

import (
	"time"
)

// TaskStatus is the lifecycle state of one service's pipeline.
// Transitions are monotonic: no state is revisited, except that
// HealthChecking loops on itself while polling.
type TaskStatus string

const (
	StatusPending        TaskStatus = "Pending"
	StatusResolving      TaskStatus = "Resolving"
	StatusBuilding       TaskStatus = "Building"
	StatusDeploying      TaskStatus = "Deploying"
	StatusHealthChecking TaskStatus = "HealthChecking"
	StatusSuccess        TaskStatus = "Success"
	StatusFailed         TaskStatus = "Failed"
	StatusUnhealthy      TaskStatus = "Unhealthy"
)

// Terminal reports whether no further transition occurs for this status.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusUnhealthy:
		return true
	}
	return false
}

// TaskRecord is the full state of one service's pipeline. Records are
// written only by the owning task runner and read concurrently by the
// orchestrator; every update replaces the whole record atomically so a
// reader never observes a partial update.
type TaskRecord struct {
	Service    string     `json:"service"`
	Status     TaskStatus `json:"status"`
	Origin     string     `json:"origin,omitempty"` // source origin tag, set after resolve
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	LogTail    []string   `json:"logTail,omitempty"`
}

// appendBounded appends lines to tail keeping only the most recent limit
// entries. The returned slice is freshly allocated so record copies never
// share backing arrays with their predecessors.
func appendBounded(tail, lines []string, limit int) []string {
	merged := make([]string, 0, len(tail)+len(lines))
	merged = append(merged, tail...)
	merged = append(merged, lines...)
	if limit > 0 && len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}
	return merged
}
