package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace lays out:
//
//	kcl.mod
//	web/project.yaml
//	web/dev/stack.yaml
//	web/prod/stack.yaml
//	web/prod/main.k
func workspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{
		"kcl.mod",
		"web/project.yaml",
		"web/dev/stack.yaml",
		"web/prod/stack.yaml",
		"web/prod/main.k",
	} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	return root
}

func TestResolve(t *testing.T) {
	root := workspace(t)

	s, err := Resolve(filepath.Join(root, "web", "prod"))
	require.NoError(t, err)
	assert.Equal(t, "prod", s.Name)
	assert.Equal(t, filepath.Join("web", "prod"), s.FullName)
	assert.Equal(t, root, s.Root)
	assert.Equal(t, root, s.WorkDir())
	assert.Equal(t, "web", s.Project.Name)
	assert.Equal(t, "web", s.Project.FullName)
	assert.Equal(t, filepath.Join(root, "web"), s.Project.Dir)
}

func TestResolve_FromFile(t *testing.T) {
	root := workspace(t)

	s, err := Resolve(filepath.Join(root, "web", "prod", "main.k"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "web", "prod"), s.Dir)
}

func TestResolve_NotAStack(t *testing.T) {
	root := workspace(t)

	_, err := Resolve(filepath.Join(root, "web"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotStack)

	_, err = Resolve(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestResolve_OutsideWorkspace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "loose")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, StackMarker), nil, 0o644))

	s, err := Resolve(dir)
	require.NoError(t, err)
	if s.Root != "" {
		t.Skipf("temp dir has a %s ancestor at %s", WorkspaceMarker, s.Root)
	}
	assert.Equal(t, dir, s.FullName)
	assert.Equal(t, dir, s.WorkDir())
}

func TestDiscover(t *testing.T) {
	root := workspace(t)

	stacks, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, stacks, 2)
	assert.Equal(t, filepath.Join("web", "dev"), stacks[0].FullName)
	assert.Equal(t, filepath.Join("web", "prod"), stacks[1].FullName)
}
