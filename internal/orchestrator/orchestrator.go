package orchestrator

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"depctl/internal/registry"
	"depctl/internal/status"
	"depctl/internal/task"
	"depctl/pkg/logging"
)

// DeploymentRequest is one invocation's worth of caller input. It is
// created once and never mutated after creation.
type DeploymentRequest struct {
	// Services is a comma-separated subset of registry names, or "all".
	Services     string
	Branch       string
	ForceRebuild bool
	Strict       bool
}

// TaskRunner runs one service's pipeline to a terminal record.
type TaskRunner interface {
	Run(ctx context.Context, svc registry.ServiceDescriptor, req task.Request) status.TaskRecord
}

// Orchestrator fans out one task runner per requested service, aggregates
// their records from the status store, and reports progress to the
// operator until every task is terminal.
type Orchestrator struct {
	registry *registry.Registry
	store    *status.Store
	runner   TaskRunner

	maxWorkers   int
	pollInterval time.Duration
	out          io.Writer
}

// Config holds construction parameters for the orchestrator.
type Config struct {
	Registry     *registry.Registry
	Store        *status.Store
	Runner       TaskRunner
	MaxWorkers   int
	PollInterval time.Duration
	Out          io.Writer
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &Orchestrator{
		registry:     cfg.Registry,
		store:        cfg.Store,
		runner:       cfg.Runner,
		maxWorkers:   maxWorkers,
		pollInterval: pollInterval,
		out:          cfg.Out,
	}
}

// RunAll executes the deployment request to completion and returns the
// final summary. Unknown service names become immediate Failed records;
// the valid services in the same request still run. Task failures are
// isolated: every runner reaches its own terminal status regardless of
// the others.
func (o *Orchestrator) RunAll(ctx context.Context, req DeploymentRequest) Summary {
	selected, unknown := o.registry.Select(req.Services)

	// Record unknown names before any worker starts so they appear in
	// the same consolidated report, then exclude them from the fan-out.
	for _, name := range unknown {
		logging.Error("Orchestrator", nil, "Requested service %q is not in the registry", name)
		o.store.Start(name)
		o.store.Fail(name, fmt.Errorf("unknown service %q: not in the registry", name))
	}

	if len(selected) == 0 && len(unknown) == 0 {
		logging.Warn("Orchestrator", "Nothing to deploy for selector %q", req.Services)
		return o.summarize()
	}

	logging.Info("Orchestrator", "Deploying %d service(s) from branch %q (force=%v, strict=%v)",
		len(selected), req.Branch, req.ForceRebuild, req.Strict)

	taskReq := task.Request{
		Branch:       req.Branch,
		ForceRebuild: req.ForceRebuild,
		Strict:       req.Strict,
	}

	// Fan out one goroutine per service, capped by the worker limit.
	// The join is event-driven (WaitGroup behind a channel); the ticker
	// below only drives the human-readable progress table.
	var wg sync.WaitGroup
	sem := make(chan struct{}, o.maxWorkers)
	for _, svc := range selected {
		wg.Add(1)
		go func(svc registry.ServiceDescriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			o.runner.Run(ctx, svc, taskReq)
		}(svc)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	o.reportProgress(done)

	return o.summarize()
}

// reportProgress reprints the consolidated status table on a fixed
// interval until all runners have finished, then prints it one last time
// so the final states are always visible.
func (o *Orchestrator) reportProgress(done <-chan struct{}) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			o.printTable()
			return
		case <-ticker.C:
			o.printTable()
		}
	}
}

func (o *Orchestrator) printTable() {
	fmt.Fprintln(o.out)
	fmt.Fprint(o.out, renderTable(o.store.Snapshot()))
}
