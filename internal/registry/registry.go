// Package registry holds the static table of deployable services.
//
// Each entry maps a service name to its listen port, repository locator
// and default branch. The table is loaded once at startup from the
// built-in defaults plus any settings-file overrides, and is immutable
// for the lifetime of the run.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"depctl/internal/config"
)

// ServiceDescriptor describes one deployable service. Immutable after load.
type ServiceDescriptor struct {
	Name          string
	Port          uint16
	Repo          string // repository locator, "owner/name"
	DefaultBranch string
}

// ContainerName returns the name under which the service's container runs.
func (s ServiceDescriptor) ContainerName() string {
	return "depctl-" + s.Name
}

// Registry is the immutable name -> descriptor table.
type Registry struct {
	services map[string]ServiceDescriptor
}

// defaultServices is the built-in service table for the platform.
func defaultServices() []ServiceDescriptor {
	return []ServiceDescriptor{
		{Name: "gateway", Port: 8080, Repo: "depot-platform/gateway", DefaultBranch: "main"},
		{Name: "auth", Port: 8081, Repo: "depot-platform/auth-service", DefaultBranch: "main"},
		{Name: "user", Port: 8082, Repo: "depot-platform/user-service", DefaultBranch: "main"},
		{Name: "chat", Port: 8083, Repo: "depot-platform/chat-service", DefaultBranch: "main"},
		{Name: "notification", Port: 8084, Repo: "depot-platform/notification-service", DefaultBranch: "main"},
	}
}

// New builds the registry from the built-in defaults plus the overrides
// from the settings file. An override with a known name replaces the
// default entry; a new name extends the table.
func New(overrides []config.ServiceDefinition) *Registry {
	services := make(map[string]ServiceDescriptor)
	for _, svc := range defaultServices() {
		services[svc.Name] = svc
	}
	for _, def := range overrides {
		services[def.Name] = ServiceDescriptor{
			Name:          def.Name,
			Port:          def.Port,
			Repo:          def.Repo,
			DefaultBranch: def.DefaultBranch,
		}
	}
	return &Registry{services: services}
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (ServiceDescriptor, bool) {
	svc, ok := r.services[name]
	return svc, ok
}

// All returns every registered service, sorted by name.
func (r *Registry) All() []ServiceDescriptor {
	all := make([]ServiceDescriptor, 0, len(r.services))
	for _, svc := range r.services {
		all = append(all, svc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Select resolves a comma-separated service list (or the literal "all")
// against the registry. Known services are returned sorted by name;
// unknown names are returned separately so the caller can record them as
// failures without dropping the valid selections.
func (r *Registry) Select(selector string) (known []ServiceDescriptor, unknown []string) {
	if selector == "all" {
		return r.All(), nil
	}

	seen := make(map[string]bool)
	for _, raw := range strings.Split(selector, ",") {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if svc, ok := r.services[name]; ok {
			known = append(known, svc)
		} else {
			unknown = append(unknown, name)
		}
	}

	sort.Slice(known, func(i, j int) bool { return known[i].Name < known[j].Name })
	sort.Strings(unknown)
	return known, unknown
}

// ServiceURLs returns the intra-host URL for every registered service,
// keyed as <NAME>_SERVICE_URL. The Deployer hands the full set to every
// container so any service can reach any other without per-service wiring.
func (r *Registry) ServiceURLs() map[string]string {
	urls := make(map[string]string, len(r.services))
	for _, svc := range r.services {
		key := strings.ToUpper(strings.ReplaceAll(svc.Name, "-", "_")) + "_SERVICE_URL"
		urls[key] = fmt.Sprintf("http://127.0.0.1:%d", svc.Port)
	}
	return urls
}
