// Package deployer replaces a service's running container with a new one.
package deployer

import (
	"context"
	"fmt"
	"strconv"

	"depctl/internal/builder"
	"depctl/internal/config"
	"depctl/internal/docker"
	"depctl/internal/registry"
	"depctl/pkg/logging"
)

// Deployer performs replace deployments: the previous container instance
// is stopped and removed before the new one starts. There is no dual
// running window, so health checks downstream must tolerate a short gap
// where the service is completely absent.
type Deployer struct {
	client   docker.Client
	registry *registry.Registry
	cfg      config.Config
}

// New creates a Deployer. The configuration is captured once here and
// never re-read from disk during the run.
func New(client docker.Client, reg *registry.Registry, cfg config.Config) *Deployer {
	return &Deployer{client: client, registry: reg, cfg: cfg}
}

// Deploy replaces the service's container with one running image and
// returns the new container ID. A runtime refusal (port conflict, bad
// image) is a deploy failure, distinct from the service later failing
// its health checks: a deploy error means the service never ran at all.
func (d *Deployer) Deploy(ctx context.Context, svc registry.ServiceDescriptor, image builder.ImageRef) (string, error) {
	name := svc.ContainerName()

	// Stop and remove any instance left from a previous run. Both calls
	// tolerate absence: a missing container just means nothing to replace.
	if err := d.client.Stop(ctx, name); err != nil {
		logging.Debug("Deployer", "No container %s to stop: %v", name, err)
	}
	if err := d.client.Remove(ctx, name); err != nil {
		logging.Debug("Deployer", "No container %s to remove: %v", name, err)
	}

	containerID, err := d.client.Run(ctx, docker.RunOptions{
		Name:  name,
		Image: string(image),
		Port:  svc.Port,
		Env:   d.Environment(svc),
	})
	if err != nil {
		return "", fmt.Errorf("deploy of %s failed: %w", svc.Name, err)
	}

	logging.Info("Deployer", "Replaced container %s (image %s, id %.12s)", name, image, containerID)
	return containerID, nil
}

// Environment builds the env contract every container receives: its own
// port and bind address, every key from the shared environment file, and
// the address of every registered service. Everything is configured
// unconditionally so the deployer stays generic across services.
func (d *Deployer) Environment(svc registry.ServiceDescriptor) map[string]string {
	env := make(map[string]string, len(d.cfg.Env)+len(d.registry.All())+2)
	for k, v := range d.cfg.Env {
		env[k] = v
	}
	for k, v := range d.registry.ServiceURLs() {
		env[k] = v
	}
	env["PORT"] = strconv.Itoa(int(svc.Port))
	env["HOST"] = "0.0.0.0"
	return env
}
