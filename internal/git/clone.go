// Package git wraps the one git operation the orchestrator needs: clone.
package git

import (
	"context"
	"fmt"

	"depctl/internal/execx"
	"depctl/pkg/logging"
)

// Cloner obtains a source tree from a remote. The only contract is
// success or failure; branch fallback policy lives in the resolver.
type Cloner interface {
	Clone(ctx context.Context, url, ref, dest string) error
}

// CLICloner clones via the git CLI through an execx.Runner.
type CLICloner struct {
	runner execx.Runner
}

// NewCloner returns a Cloner backed by the git CLI.
func NewCloner(runner execx.Runner) *CLICloner {
	return &CLICloner{runner: runner}
}

// Clone performs a shallow single-branch clone of ref into dest.
// Shallow is enough: the build only needs the tree, not the history.
func (c *CLICloner) Clone(ctx context.Context, url, ref, dest string) error {
	logging.Debug("Git", "Cloning %s (ref %s) into %s", url, ref, dest)

	_, err := c.runner.Run(ctx, "git", "clone", "--depth", "1", "--branch", ref, "--single-branch", url, dest)
	if err != nil {
		return fmt.Errorf("clone of %s (ref %s) failed: %w", url, ref, err)
	}
	return nil
}
