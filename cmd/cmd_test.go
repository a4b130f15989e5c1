package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mipbuild/pkg/manifest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"README.md":   "# readme\n",
		"index.html":  "<title>__TITLE__</title>\n",
		"src/main.js": "main();\n",
	}
	for rel, data := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(data), 0o644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	site := writeSite(t)
	dist := filepath.Join(t.TempDir(), "dist")
	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")

	out, err := run(t, "build", site, "--output", dist, "--files", "!README.md", "--manifest", manifestPath, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Built!")

	data, err := os.ReadFile(filepath.Join(dist, "src", "main.js"))
	require.NoError(t, err)
	assert.Equal(t, "main();\n", string(data))
	_, err = os.Stat(filepath.Join(dist, "README.md"))
	assert.True(t, os.IsNotExist(err))

	m, err := manifest.Read(afero.NewOsFs(), manifestPath)
	require.NoError(t, err)
	assert.Len(t, m.Entries, 2)
}

func TestBuildCommandReportsChangesSinceLastManifest(t *testing.T) {
	site := writeSite(t)
	dist := filepath.Join(t.TempDir(), "dist")
	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")
	args := []string{"build", site, "--output", dist, "--manifest", manifestPath, "--quiet"}

	out, err := run(t, args...)
	require.NoError(t, err)
	assert.NotContains(t, out, "Since build", "first build has nothing to compare")

	first, err := manifest.Read(afero.NewOsFs(), manifestPath)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(site, "src", "main.js"), []byte("changed();\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(site, "README.md")))
	require.NoError(t, os.WriteFile(filepath.Join(site, "about.html"), []byte("<p>about</p>\n"), 0o644))

	out, err = run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Since build "+first.BuildID+": 1 added, 1 changed, 1 removed")
}

func TestBuildCommandWithConfig(t *testing.T) {
	site := writeSite(t)
	configPath := filepath.Join(site, "mipbuild.yaml")
	config := `output: out
files: ["!mipbuild.yaml"]
processors:
  - type: replace
    files: ["*.html"]
    options:
      from: __TITLE__
      to: Home
`
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	_, err := run(t, "build", "--config", configPath, "--quiet")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(site, "out", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<title>Home</title>\n", string(data))
	_, err = os.Stat(filepath.Join(site, "out", "mipbuild.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildCommandList(t *testing.T) {
	site := writeSite(t)
	dist := filepath.Join(t.TempDir(), "dist")

	out, err := run(t, "build", site, "--output", dist, "--list", "--files", "!*.md")
	require.NoError(t, err)
	assert.Contains(t, out, "main.js")
	assert.NotContains(t, out, "README.md")
	assert.True(t, strings.HasSuffix(out, "2 files selected\n"))

	_, err = os.Stat(dist)
	assert.True(t, os.IsNotExist(err), "--list must not write output")
}

func TestBuildCommandInvalidPolicy(t *testing.T) {
	site := writeSite(t)
	_, err := run(t, "build", site, "--policy", "union")
	assert.Error(t, err)
}

func TestBuildCommandUnknownProcessor(t *testing.T) {
	site := writeSite(t)
	configPath := filepath.Join(site, "mipbuild.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("processors:\n  - type: minify\n"), 0o644))

	_, err := run(t, "build", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minify")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mipbuild version dev")
}
