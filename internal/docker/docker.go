// Package docker is the container runtime collaborator.
//
// The orchestrator depends only on the success/failure signal and the
// captured text output of the runtime's build, run, stop, remove, logs
// and inspect operations, so the runtime is driven through its CLI via
// execx rather than a client SDK.
package docker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"depctl/internal/execx"
	"depctl/pkg/logging"
)

// Client is the surface of the container runtime the orchestrator uses.
type Client interface {
	// Build builds an image from dir and tags it. Returns the full build
	// output (stdout and stderr) regardless of outcome.
	Build(ctx context.Context, dir, tag string, noCache bool) (string, error)

	// Run starts a detached container and returns its ID.
	Run(ctx context.Context, opts RunOptions) (string, error)

	// Stop stops a named container. Stopping an absent container is an error.
	Stop(ctx context.Context, name string) error

	// Remove removes a named container. Removing an absent container is an error.
	Remove(ctx context.Context, name string) error

	// Logs returns the most recent tail lines of a container's output.
	Logs(ctx context.Context, name string, tail int) (string, error)

	// Running reports whether a named container exists and is running.
	Running(ctx context.Context, name string) (bool, error)
}

// RunOptions describes one detached container launch.
type RunOptions struct {
	Name  string
	Image string
	// Port is published host:container on the same number.
	Port uint16
	Env  map[string]string
}

// CLIClient drives the docker CLI through an execx.Runner.
type CLIClient struct {
	runner execx.Runner
}

// NewClient returns a Client backed by the docker CLI.
func NewClient(runner execx.Runner) *CLIClient {
	return &CLIClient{runner: runner}
}

func (c *CLIClient) Build(ctx context.Context, dir, tag string, noCache bool) (string, error) {
	args := []string{"build", "-t", tag}
	if noCache {
		args = append(args, "--no-cache")
	}
	args = append(args, dir)

	logging.Debug("Docker", "Building image %s from %s (noCache=%v)", tag, dir, noCache)
	result, err := c.runner.Run(ctx, "docker", args...)
	output := result.Combined()
	if err != nil {
		return output, fmt.Errorf("docker build of %s failed: %w", tag, err)
	}
	return output, nil
}

func (c *CLIClient) Run(ctx context.Context, opts RunOptions) (string, error) {
	args := []string{"run", "-d", "--name", opts.Name, "--restart", "unless-stopped"}
	args = append(args, "-p", fmt.Sprintf("%d:%d", opts.Port, opts.Port))

	// Sorted env keys keep the command line deterministic.
	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+opts.Env[k])
	}

	args = append(args, opts.Image)

	logging.Debug("Docker", "Starting container %s from image %s", opts.Name, opts.Image)
	result, err := c.runner.Run(ctx, "docker", args...)
	if err != nil {
		return "", fmt.Errorf("docker run of %s failed: %w", opts.Name, err)
	}
	return strings.TrimSpace(result.Stdout), nil
}

func (c *CLIClient) Stop(ctx context.Context, name string) error {
	if _, err := c.runner.Run(ctx, "docker", "stop", name); err != nil {
		return fmt.Errorf("docker stop of %s failed: %w", name, err)
	}
	return nil
}

func (c *CLIClient) Remove(ctx context.Context, name string) error {
	if _, err := c.runner.Run(ctx, "docker", "rm", "-f", name); err != nil {
		return fmt.Errorf("docker rm of %s failed: %w", name, err)
	}
	return nil
}

func (c *CLIClient) Logs(ctx context.Context, name string, tail int) (string, error) {
	result, err := c.runner.Run(ctx, "docker", "logs", "--tail", strconv.Itoa(tail), name)
	if err != nil {
		return "", fmt.Errorf("docker logs of %s failed: %w", name, err)
	}
	// docker writes container stderr to the CLI's stderr stream.
	return result.Combined(), nil
}

func (c *CLIClient) Running(ctx context.Context, name string) (bool, error) {
	result, err := c.runner.Run(ctx, "docker", "inspect", "-f", "{{.State.Running}}", name)
	if err != nil {
		// An absent container is simply not running, not an inspection failure.
		if strings.Contains(err.Error(), "No such object") || strings.Contains(err.Error(), "No such container") {
			return false, nil
		}
		return false, fmt.Errorf("docker inspect of %s failed: %w", name, err)
	}
	return strings.TrimSpace(result.Stdout) == "true", nil
}
