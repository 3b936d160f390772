// Package task drives the four-stage pipeline for one service: resolve,
// build, deploy, await health. Each runner owns exactly one task record
// and converts every failure into a terminal status instead of
// propagating it; nothing a runner does can crash the orchestrator or
// another service's pipeline.
package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"depctl/internal/builder"
	"depctl/internal/health"
	"depctl/internal/registry"
	"depctl/internal/resolver"
	"depctl/internal/status"
	"depctl/pkg/logging"
)

// Request carries the per-invocation deployment parameters.
type Request struct {
	Branch       string
	ForceRebuild bool
	// Strict fails tasks whose source came from a fallback origin
	// instead of deploying the wrong code silently.
	Strict bool
}

// SourceResolver obtains a source tree for a service.
type SourceResolver interface {
	Resolve(ctx context.Context, svc registry.ServiceDescriptor, branch string) (resolver.ResolvedSource, error)
}

// ImageBuilder builds an image and returns its reference plus the build output.
type ImageBuilder interface {
	Build(ctx context.Context, src resolver.ResolvedSource, forceRebuild bool) (builder.ImageRef, string, error)
}

// ContainerDeployer replaces the service's container and returns the new ID.
type ContainerDeployer interface {
	Deploy(ctx context.Context, svc registry.ServiceDescriptor, image builder.ImageRef) (string, error)
}

// HealthMonitor waits for a deployed service to report healthy.
type HealthMonitor interface {
	AwaitHealthy(ctx context.Context, svc registry.ServiceDescriptor, timeout, interval time.Duration) error
	Diagnostics(ctx context.Context, svc registry.ServiceDescriptor) []string
}

// Runner executes one service's pipeline end to end.
type Runner struct {
	Resolver SourceResolver
	Builder  ImageBuilder
	Deployer ContainerDeployer
	Monitor  HealthMonitor
	Store    *status.Store

	HealthTimeout  time.Duration
	HealthInterval time.Duration
}

// Run drives the pipeline for svc and always leaves a terminal record in
// the store. It never returns an error and never panics outward.
func (r *Runner) Run(ctx context.Context, svc registry.ServiceDescriptor, req Request) status.TaskRecord {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("TaskRunner", fmt.Errorf("%v", rec), "Panic in pipeline for %s", svc.Name)
			r.Store.Fail(svc.Name, fmt.Errorf("internal error: %v", rec))
		}
	}()

	r.Store.Start(svc.Name)

	// Stage 1: resolve source.
	r.Store.SetStatus(svc.Name, status.StatusResolving)
	src, err := r.Resolver.Resolve(ctx, svc, req.Branch)
	if err != nil {
		r.Store.AppendLog(svc.Name, err.Error())
		r.Store.Fail(svc.Name, fmt.Errorf("resolve failed: %w", err))
		return r.record(svc.Name)
	}
	r.Store.SetOrigin(svc.Name, string(src.Origin))

	switch src.Origin {
	case resolver.OriginMainFallback:
		r.Store.AppendLog(svc.Name,
			fmt.Sprintf("WARNING: branch %q was unavailable; deployed %q from the default branch instead", req.Branch, src.ActualBranch))
	case resolver.OriginSynthesizedStub:
		r.Store.AppendLog(svc.Name,
			"WARNING: repository unreachable on every transport; deployed a synthesized stub placeholder")
	}

	if req.Strict && src.Origin.Fallback() {
		r.Store.Fail(svc.Name, fmt.Errorf("strict mode: refusing to deploy %s source for %s", src.Origin, svc.Name))
		return r.record(svc.Name)
	}

	// Stage 2: build image.
	r.Store.SetStatus(svc.Name, status.StatusBuilding)
	image, output, err := r.Builder.Build(ctx, src, req.ForceRebuild)
	if output != "" {
		r.Store.AppendLog(svc.Name, output)
	}
	if err != nil {
		r.Store.Fail(svc.Name, fmt.Errorf("build failed: %w", err))
		return r.record(svc.Name)
	}

	// Stage 3: replace container.
	r.Store.SetStatus(svc.Name, status.StatusDeploying)
	if _, err := r.Deployer.Deploy(ctx, svc, image); err != nil {
		r.Store.AppendLog(svc.Name, err.Error())
		r.Store.Fail(svc.Name, fmt.Errorf("deploy failed: %w", err))
		return r.record(svc.Name)
	}

	// Stage 4: wait for health.
	r.Store.SetStatus(svc.Name, status.StatusHealthChecking)
	if err := r.Monitor.AwaitHealthy(ctx, svc, r.HealthTimeout, r.HealthInterval); err != nil {
		if errors.Is(err, health.ErrUnhealthy) {
			r.Store.AppendLog(svc.Name, r.Monitor.Diagnostics(ctx, svc)...)
			r.Store.Unhealthy(svc.Name, err)
		} else {
			r.Store.AppendLog(svc.Name, err.Error())
			r.Store.Fail(svc.Name, fmt.Errorf("health wait failed: %w", err))
		}
		return r.record(svc.Name)
	}

	r.Store.SetStatus(svc.Name, status.StatusSuccess)
	return r.record(svc.Name)
}

func (r *Runner) record(service string) status.TaskRecord {
	rec, _ := r.Store.Get(service)
	return rec
}
