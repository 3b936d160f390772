// Package execx runs external tools with captured output.
//
// depctl drives git and the container runtime through their CLIs rather
// than client libraries; every invocation goes through a Runner so tests
// can substitute a double without touching the host.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Combined returns stdout and stderr joined in capture order, trimmed.
func (r Result) Combined() string {
	return strings.TrimSpace(r.Stdout + r.Stderr)
}

// Runner executes an external command and captures its output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// CommandRunner is the Runner backed by os/exec.
type CommandRunner struct{}

// NewRunner returns a Runner that executes commands on the host.
func NewRunner() *CommandRunner {
	return &CommandRunner{}
}

// Run executes the command and returns its captured stdout and stderr.
// On failure the stderr text is folded into the returned error so callers
// get a diagnosable message without inspecting the Result.
func (c *CommandRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	result := Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if runErr != nil {
		return result, fmt.Errorf("failed to execute '%s %s': %w. Stderr: %s",
			name, strings.Join(args, " "), runErr, strings.TrimSpace(result.Stderr))
	}
	return result, nil
}
