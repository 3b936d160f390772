package resolver

import (
	"fmt"
	"os"
	"path/filepath"

	"depctl/internal/registry"
)

// writeStub materializes the placeholder source tree of last resort:
// a manifest naming the service, an entrypoint that only idles, and a
// container build file. The artifact builds and runs but never answers
// the health endpoint, so the task ends Unhealthy rather than aborting
// the rest of the run.
func writeStub(dest string, svc registry.ServiceDescriptor) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating stub directory: %w", err)
	}

	manifest := fmt.Sprintf("name: %s\nport: %d\nstub: true\n", svc.Name, svc.Port)
	entrypoint := "#!/bin/sh\n" +
		fmt.Sprintf("echo \"stub placeholder for %s: real source was unavailable at deploy time\"\n", svc.Name) +
		"while true; do sleep 3600; done\n"
	dockerfile := "FROM alpine:3.20\n" +
		"WORKDIR /app\n" +
		"COPY run.sh service.yaml ./\n" +
		"RUN chmod +x run.sh\n" +
		"CMD [\"./run.sh\"]\n"

	files := map[string]string{
		"service.yaml": manifest,
		"run.sh":       entrypoint,
		"Dockerfile":   dockerfile,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dest, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing stub %s: %w", name, err)
		}
	}
	return nil
}
