// Package builder turns a resolved source tree into a runnable image.
package builder

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"depctl/internal/docker"
	"depctl/internal/resolver"
	"depctl/pkg/logging"
)

// ImageRef identifies a built image by its tag.
type ImageRef string

var tagUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// Builder builds service images through the container runtime.
type Builder struct {
	client docker.Client
}

// New creates a Builder on top of a docker client.
func New(client docker.Client) *Builder {
	return &Builder{client: client}
}

// Build builds an image for src and returns its reference together with
// the full build output, which the caller records win or lose. The tag is
// derived deterministically from service and branch, so rebuilding the
// same source yields the same reference; forceRebuild bypasses the layer
// cache without changing the tag.
func (b *Builder) Build(ctx context.Context, src resolver.ResolvedSource, forceRebuild bool) (ImageRef, string, error) {
	tag := ImageTag(src.Service, src.ActualBranch)

	output, err := b.client.Build(ctx, src.SourcePath, string(tag), forceRebuild)
	if err != nil {
		return "", output, fmt.Errorf("build of %s failed: %w", src.Service, err)
	}

	logging.Info("Builder", "Built image %s for %s (origin %s)", tag, src.Service, src.Origin)
	return ImageRef(tag), output, nil
}

// ImageTag derives the deterministic image tag for a service and branch.
// Branch names are sanitized because git allows characters docker tags do not.
func ImageTag(service, branch string) ImageRef {
	safe := tagUnsafe.ReplaceAllString(branch, "-")
	safe = strings.Trim(safe, "-.")
	if safe == "" {
		safe = "latest"
	}
	return ImageRef("depctl/" + service + ":" + safe)
}
