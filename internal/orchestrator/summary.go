package orchestrator

import (
	"fmt"
	"io"

	"depctl/internal/status"
)

// Exit codes for the deploy command. Failed and Unhealthy are both
// non-zero but distinguishable, since a deploy failure means the service
// never ran while unhealthy means it ran and never answered.
const (
	ExitSuccess   = 0
	ExitFailed    = 1
	ExitUnhealthy = 2
)

// Summary is the final tally of a run.
type Summary struct {
	Success   int
	Failed    int
	Unhealthy int
	Records   []status.TaskRecord
}

// summarize counts terminal statuses from the store's final snapshot.
func (o *Orchestrator) summarize() Summary {
	s := Summary{Records: o.store.Snapshot()}
	for _, rec := range s.Records {
		switch rec.Status {
		case status.StatusSuccess:
			s.Success++
		case status.StatusFailed:
			s.Failed++
		case status.StatusUnhealthy:
			s.Unhealthy++
		}
	}
	return s
}

// ExitCode encodes the exit policy: zero only when every task succeeded,
// with failures taking precedence over unhealthy services.
func (s Summary) ExitCode() int {
	if s.Failed > 0 {
		return ExitFailed
	}
	if s.Unhealthy > 0 {
		return ExitUnhealthy
	}
	return ExitSuccess
}

// Print writes the final report: the tally line, then the captured log
// tail of every non-Success record, ordered by service name.
func (s Summary) Print(out io.Writer) {
	fmt.Fprintf(out, "\n%d Success / %d Failed / %d Unhealthy\n", s.Success, s.Failed, s.Unhealthy)

	for _, rec := range s.Records {
		if rec.Status == status.StatusSuccess {
			continue
		}
		fmt.Fprintf(out, "\n--- %s (%s) ---\n", rec.Service, rec.Status)
		if rec.Error != "" {
			fmt.Fprintf(out, "error: %s\n", rec.Error)
		}
		for _, line := range rec.LogTail {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
}
