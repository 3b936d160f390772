package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depctl/internal/registry"
)

// fakeCloner decides per attempt whether a clone succeeds, and records
// every attempt so the chain's ordering can be asserted.
type fakeCloner struct {
	attempts []string // "url ref"
	decide   func(url, ref string) error
}

func (f *fakeCloner) Clone(ctx context.Context, url, ref, dest string) error {
	f.attempts = append(f.attempts, url+" "+ref)
	if err := f.decide(url, ref); err != nil {
		return err
	}
	// A successful clone leaves a tree behind.
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "Dockerfile"), []byte("FROM scratch\n"), 0o644)
}

var testSvc = registry.ServiceDescriptor{
	Name:          "auth",
	Port:          8081,
	Repo:          "depot-platform/auth-service",
	DefaultBranch: "main",
}

func TestResolve_SSHFirst(t *testing.T) {
	cloner := &fakeCloner{decide: func(url, ref string) error { return nil }}
	r := New(cloner, t.TempDir())

	src, err := r.Resolve(context.Background(), testSvc, "develop")
	require.NoError(t, err)
	assert.Equal(t, OriginSSH, src.Origin)
	assert.Equal(t, "develop", src.ActualBranch)
	assert.Equal(t, []string{"git@github.com:depot-platform/auth-service.git develop"}, cloner.attempts)
}

func TestResolve_HTTPSWhenSSHFails(t *testing.T) {
	cloner := &fakeCloner{decide: func(url, ref string) error {
		if strings.HasPrefix(url, "git@") {
			return errors.New("permission denied (publickey)")
		}
		return nil
	}}
	r := New(cloner, t.TempDir())

	src, err := r.Resolve(context.Background(), testSvc, "develop")
	require.NoError(t, err)
	assert.Equal(t, OriginHTTPS, src.Origin)
	assert.Equal(t, "develop", src.ActualBranch)
	require.Len(t, cloner.attempts, 2)
	assert.Equal(t, "https://github.com/depot-platform/auth-service.git develop", cloner.attempts[1])
}

func TestResolve_MainFallback(t *testing.T) {
	// Both transports fail for the requested branch; the default branch
	// succeeds. The deviation must be tagged, never reported as SSH/HTTPS.
	cloner := &fakeCloner{decide: func(url, ref string) error {
		if ref != "main" {
			return errors.New("remote branch develop not found")
		}
		return nil
	}}
	r := New(cloner, t.TempDir())

	src, err := r.Resolve(context.Background(), testSvc, "develop")
	require.NoError(t, err)
	assert.Equal(t, OriginMainFallback, src.Origin)
	assert.Equal(t, "main", src.ActualBranch)
	assert.True(t, src.Origin.Fallback())
	assert.Len(t, cloner.attempts, 3)
}

func TestResolve_SynthesizedStubOfLastResort(t *testing.T) {
	cloner := &fakeCloner{decide: func(url, ref string) error {
		return errors.New("could not resolve host github.com")
	}}
	workDir := t.TempDir()
	r := New(cloner, workDir)

	src, err := r.Resolve(context.Background(), testSvc, "develop")
	require.NoError(t, err)
	assert.Equal(t, OriginSynthesizedStub, src.Origin)
	assert.True(t, src.Origin.Fallback())
	assert.Len(t, cloner.attempts, 3)

	// The stub is a complete buildable tree.
	for _, name := range []string{"Dockerfile", "run.sh", "service.yaml"} {
		_, statErr := os.Stat(filepath.Join(src.SourcePath, name))
		assert.NoError(t, statErr, name)
	}
	manifest, readErr := os.ReadFile(filepath.Join(src.SourcePath, "service.yaml"))
	require.NoError(t, readErr)
	assert.Contains(t, string(manifest), "name: auth")
	assert.Contains(t, string(manifest), "stub: true")
}

func TestResolve_StubWriteFailureIsTheOnlyError(t *testing.T) {
	cloner := &fakeCloner{decide: func(url, ref string) error {
		return errors.New("unreachable")
	}}
	// A file where the workspace directory should be makes every write fail.
	blocker := filepath.Join(t.TempDir(), "workspaces")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	r := New(cloner, blocker)

	_, err := r.Resolve(context.Background(), testSvc, "develop")
	assert.Error(t, err)
}

func TestResolve_ReplacesStaleWorkspace(t *testing.T) {
	workDir := t.TempDir()
	stale := filepath.Join(workDir, "auth", "leftover.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old run"), 0o644))

	cloner := &fakeCloner{decide: func(url, ref string) error { return nil }}
	r := New(cloner, workDir)

	src, err := r.Resolve(context.Background(), testSvc, "main")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(src.SourcePath, "leftover.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
