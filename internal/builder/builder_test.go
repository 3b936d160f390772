package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depctl/internal/docker"
	"depctl/internal/resolver"
)

type mockDocker struct {
	docker.Client // panic on anything the builder should not touch

	builds    []string
	noCache   bool
	buildFunc func(dir, tag string) (string, error)
}

func (m *mockDocker) Build(ctx context.Context, dir, tag string, noCache bool) (string, error) {
	m.builds = append(m.builds, tag)
	m.noCache = noCache
	if m.buildFunc != nil {
		return m.buildFunc(dir, tag)
	}
	return "ok", nil
}

func src(branch string) resolver.ResolvedSource {
	return resolver.ResolvedSource{
		Service:      "auth",
		SourcePath:   "/work/auth",
		ActualBranch: branch,
		Origin:       resolver.OriginSSH,
	}
}

func TestBuild_TagIsDeterministic(t *testing.T) {
	mock := &mockDocker{}
	b := New(mock)

	ref, _, err := b.Build(context.Background(), src("develop"), false)
	require.NoError(t, err)
	assert.Equal(t, ImageRef("depctl/auth:develop"), ref)

	// Same source, same tag — rebuilds replace, never duplicate.
	ref2, _, err := b.Build(context.Background(), src("develop"), false)
	require.NoError(t, err)
	assert.Equal(t, ref, ref2)
	assert.False(t, mock.noCache)
}

func TestBuild_ForceRebuildSkipsCache(t *testing.T) {
	mock := &mockDocker{}
	b := New(mock)

	_, _, err := b.Build(context.Background(), src("main"), true)
	require.NoError(t, err)
	assert.True(t, mock.noCache)
}

func TestBuild_FailureReturnsOutput(t *testing.T) {
	mock := &mockDocker{buildFunc: func(dir, tag string) (string, error) {
		return "step 3 failed: missing dependency", errors.New("exit status 1")
	}}
	b := New(mock)

	_, output, err := b.Build(context.Background(), src("main"), false)
	require.Error(t, err)
	assert.Contains(t, output, "missing dependency")
}

func TestImageTag_SanitizesBranchNames(t *testing.T) {
	assert.Equal(t, ImageRef("depctl/auth:feature-login-v2"), ImageTag("auth", "feature/login@v2"))
	assert.Equal(t, ImageRef("depctl/auth:main"), ImageTag("auth", "main"))
	assert.Equal(t, ImageRef("depctl/auth:latest"), ImageTag("auth", "///"))
}
