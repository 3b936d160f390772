// Package resolver obtains a buildable source tree for a service.
//
// Resolution is an ordered fallback chain: authenticated clone of the
// requested branch, unauthenticated clone of the same branch, clone of
// the service's default branch, and finally a synthesized stub tree.
// The first success short-circuits; the chosen strategy is surfaced in
// the result's Origin tag so callers can flag policy deviations instead
// of swallowing them.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"depctl/internal/git"
	"depctl/internal/registry"
	"depctl/pkg/logging"
)

// Origin tags which strategy produced a source tree.
type Origin string

const (
	OriginSSH             Origin = "SSH"
	OriginHTTPS           Origin = "HTTPS"
	OriginMainFallback    Origin = "MainFallback"
	OriginSynthesizedStub Origin = "SynthesizedStub"
)

// Fallback reports whether the origin deviates from what the caller
// requested (wrong branch, or no real source at all).
func (o Origin) Fallback() bool {
	return o == OriginMainFallback || o == OriginSynthesizedStub
}

// ResolvedSource is a working source tree ready for the builder.
type ResolvedSource struct {
	Service      string
	SourcePath   string
	ActualBranch string
	Origin       Origin
}

// Resolver resolves service sources into per-service workspace
// directories, replacing any tree left by a previous run.
type Resolver struct {
	cloner  git.Cloner
	workDir string
}

// New creates a Resolver cloning through cloner into workDir.
func New(cloner git.Cloner, workDir string) *Resolver {
	return &Resolver{cloner: cloner, workDir: workDir}
}

// strategy is one rung of the fallback chain.
type strategy struct {
	origin Origin
	url    func(repo string) string
	branch func(requested, defaultBranch string) string
}

func sshURL(repo string) string   { return "git@github.com:" + repo + ".git" }
func httpsURL(repo string) string { return "https://github.com/" + repo + ".git" }

func requestedBranch(requested, _ string) string { return requested }
func defaultBranch(_, def string) string         { return def }

// chain is the ordered list of clone strategies. Order matters: each is
// attempted only after the previous one fails.
var chain = []strategy{
	{origin: OriginSSH, url: sshURL, branch: requestedBranch},
	{origin: OriginHTTPS, url: httpsURL, branch: requestedBranch},
	{origin: OriginMainFallback, url: httpsURL, branch: defaultBranch},
}

// Resolve walks the fallback chain for one service. It only returns an
// error when even the stub of last resort cannot be written to local
// storage; every other source problem is absorbed into the chain and
// reported through the Origin tag.
func (r *Resolver) Resolve(ctx context.Context, svc registry.ServiceDescriptor, branch string) (ResolvedSource, error) {
	dest := filepath.Join(r.workDir, svc.Name)

	for _, strat := range chain {
		targetBranch := strat.branch(branch, svc.DefaultBranch)
		url := strat.url(svc.Repo)

		// A fresh destination per attempt keeps every retry (and every
		// re-run after a kill) starting from scratch.
		if err := os.RemoveAll(dest); err != nil {
			return ResolvedSource{}, fmt.Errorf("cannot clear workspace %s: %w", dest, err)
		}

		if err := r.cloner.Clone(ctx, url, targetBranch, dest); err != nil {
			logging.Debug("Resolver", "Clone attempt (%s) for %s failed: %v", strat.origin, svc.Name, err)
			continue
		}

		if strat.origin == OriginMainFallback {
			logging.Warn("Resolver", "Service %s: branch %q unavailable, deploying default branch %q instead",
				svc.Name, branch, targetBranch)
		}

		return ResolvedSource{
			Service:      svc.Name,
			SourcePath:   dest,
			ActualBranch: targetBranch,
			Origin:       strat.origin,
		}, nil
	}

	// Every clone attempt failed. Synthesize a placeholder so one missing
	// repository does not abort the entire run.
	logging.Warn("Resolver", "Service %s: repository %s unreachable on every transport, synthesizing stub source",
		svc.Name, svc.Repo)

	if err := os.RemoveAll(dest); err != nil {
		return ResolvedSource{}, fmt.Errorf("cannot clear workspace %s: %w", dest, err)
	}
	if err := writeStub(dest, svc); err != nil {
		return ResolvedSource{}, fmt.Errorf("cannot synthesize stub for %s: %w", svc.Name, err)
	}

	return ResolvedSource{
		Service:      svc.Name,
		SourcePath:   dest,
		ActualBranch: branch,
		Origin:       OriginSynthesizedStub,
	}, nil
}
