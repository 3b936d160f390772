package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"depctl/internal/registry"
	"depctl/internal/status"
	"depctl/internal/task"
)

// mockTaskRunner drives each service straight to a configured terminal
// status, recording the transitions through the real store so the
// orchestrator's aggregation sees realistic records.
type mockTaskRunner struct {
	mu    sync.Mutex
	store *status.Store

	// outcomes maps service name to its terminal status; unnamed
	// services succeed.
	outcomes map[string]status.TaskStatus
	// delays optionally slows a service down to exercise interleaving.
	delays map[string]time.Duration

	requests []task.Request
	ran      []string
}

func newMockTaskRunner(store *status.Store) *mockTaskRunner {
	return &mockTaskRunner{
		store:    store,
		outcomes: make(map[string]status.TaskStatus),
		delays:   make(map[string]time.Duration),
	}
}

func (m *mockTaskRunner) Run(ctx context.Context, svc registry.ServiceDescriptor, req task.Request) status.TaskRecord {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.ran = append(m.ran, svc.Name)
	delay := m.delays[svc.Name]
	outcome, ok := m.outcomes[svc.Name]
	m.mu.Unlock()

	if !ok {
		outcome = status.StatusSuccess
	}

	m.store.Start(svc.Name)
	m.store.SetStatus(svc.Name, status.StatusResolving)
	if delay > 0 {
		time.Sleep(delay)
	}

	switch outcome {
	case status.StatusFailed:
		m.store.AppendLog(svc.Name, "build output before the failure")
		m.store.Fail(svc.Name, errors.New("build failed: exit status 1"))
	case status.StatusUnhealthy:
		m.store.AppendLog(svc.Name, "container depctl-"+svc.Name+" running: true")
		m.store.Unhealthy(svc.Name, errors.New("service did not become healthy before the deadline"))
	default:
		m.store.SetStatus(svc.Name, status.StatusSuccess)
	}

	rec, _ := m.store.Get(svc.Name)
	return rec
}

func (m *mockTaskRunner) services() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ran...)
}
