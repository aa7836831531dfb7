package registry

import (
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveBarePathWalksTemplatesAndFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "model.rs.j2"), "{# type=model, filename=model.rs #}\ncontent")
	writeFile(t, filepath.Join(dir, "README.md"), "hello")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/main")

	d := NewDiscovery()
	result, err := d.Resolve([]string{dir})
	assert.NoError(t, err)

	assert.Contains(t, result.Templates, "model.rs.j2")
	assert.Contains(t, result.Files, "README.md")
	for path := range result.Files {
		assert.NotContains(t, path, ".git/")
	}
	for path := range result.Templates {
		assert.NotContains(t, path, ".git/")
	}
}

func TestResolveNamedRegistrySpecifier(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sub", "thing.j2"), "{# type=partial #}\nbody")

	d := NewDiscovery()
	d.Register("myregistry", Local{Dir: dir})

	result, err := d.Resolve([]string{"myregistry::sub"})
	assert.NoError(t, err)
	assert.Contains(t, result.Templates, "thing.j2")
}

func TestResolveUnknownRegistryErrors(t *testing.T) {
	d := NewDiscovery()
	_, err := d.Resolve([]string{"nope::sub"})
	assert.Error(t, err)
}

func TestResolveLaterSpecOverwritesEarlier(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFile(t, filepath.Join(dirA, "model.rs.j2"), "A")
	writeFile(t, filepath.Join(dirB, "model.rs.j2"), "B")

	d := NewDiscovery()
	result, err := d.Resolve([]string{dirA, dirB})
	assert.NoError(t, err)
	assert.Equal(t, "B", result.Templates["model.rs.j2"])
}

func TestLocalPathNotDirectoryErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir")
	writeFile(t, file, "x")

	_, err := Local{Dir: file}.Path()
	assert.Error(t, err)
}
