package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"depctl/internal/status"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	unhealthyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // grey
	workingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
)

func statusStyle(st status.TaskStatus) lipgloss.Style {
	switch st {
	case status.StatusSuccess:
		return successStyle
	case status.StatusFailed:
		return failedStyle
	case status.StatusUnhealthy:
		return unhealthyStyle
	case status.StatusPending:
		return pendingStyle
	default:
		return workingStyle
	}
}

// renderTable renders the consolidated progress table, one row per
// service, sorted by name (the snapshot is already sorted).
func renderTable(records []status.TaskRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("%-16s %-16s %-16s %s", "SERVICE", "STATUS", "ORIGIN", "ELAPSED")))
	for _, rec := range records {
		style := statusStyle(rec.Status)
		fmt.Fprintf(&b, "%-16s %s %-16s %s\n",
			rec.Service,
			style.Render(fmt.Sprintf("%-16s", rec.Status)),
			rec.Origin,
			elapsed(rec))
	}
	return b.String()
}

func elapsed(rec status.TaskRecord) string {
	if rec.StartedAt.IsZero() {
		return "-"
	}
	end := time.Now()
	if rec.FinishedAt != nil {
		end = *rec.FinishedAt
	}
	return end.Sub(rec.StartedAt).Round(time.Second).String()
}
