// Package health polls a deployed service until it reports healthy or a
// deadline passes.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"depctl/internal/docker"
	"depctl/internal/registry"
	"depctl/pkg/logging"
)

// ErrUnhealthy is returned when a service never answered healthy within
// the configured window. It is terminal for the task but non-fatal to
// the run.
var ErrUnhealthy = errors.New("service did not become healthy before the deadline")

const diagnosticLogLines = 30

// Monitor polls service health endpoints over HTTP.
type Monitor struct {
	client docker.Client
	httpc  *http.Client
}

// New creates a Monitor. probeTimeout bounds each individual probe so a
// hung endpoint cannot stall the poll loop past its deadline.
func New(client docker.Client, probeTimeout time.Duration) *Monitor {
	return &Monitor{
		client: client,
		httpc:  &http.Client{Timeout: probeTimeout},
	}
}

// AwaitHealthy probes the service's health endpoint every interval until
// it answers 2xx or timeout elapses. Connection refusals are expected
// early on: replace deployments have a window where nothing is listening
// on the port at all.
func (m *Monitor) AwaitHealthy(ctx context.Context, svc registry.ServiceDescriptor, timeout, interval time.Duration) error {
	url := fmt.Sprintf("http://127.0.0.1:%d/health", svc.Port)
	deadline := time.Now().Add(timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.probe(ctx, url); err == nil {
			logging.Info("HealthMonitor", "Service %s is healthy", svc.Name)
			return nil
		} else {
			logging.Debug("HealthMonitor", "Service %s not healthy yet: %v", svc.Name, err)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%s: %w after %s", svc.Name, ErrUnhealthy, timeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: health wait interrupted: %w", svc.Name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (m *Monitor) probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Diagnostics gathers best-effort container state for an unhealthy
// service: whether the container is still running and its most recent
// log lines. Unhealthy is the most common failure mode, so diagnosability
// matters more than speed here; failures to collect are reported inline
// rather than propagated.
func (m *Monitor) Diagnostics(ctx context.Context, svc registry.ServiceDescriptor) []string {
	name := svc.ContainerName()
	var out []string

	running, err := m.client.Running(ctx, name)
	if err != nil {
		out = append(out, fmt.Sprintf("could not inspect container %s: %v", name, err))
	} else {
		out = append(out, fmt.Sprintf("container %s running: %v", name, running))
	}

	logs, err := m.client.Logs(ctx, name, diagnosticLogLines)
	if err != nil {
		out = append(out, fmt.Sprintf("could not fetch logs for %s: %v", name, err))
	} else if logs != "" {
		out = append(out, "---- recent container logs ----")
		out = append(out, logs)
	}
	return out
}
