package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, "dist", cfg.Output)
	assert.Equal(t, "override", cfg.Policy)
	assert.Equal(t, 4, cfg.Workers)
	assert.Empty(t, cfg.Files)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mipbuild.yaml")
	content := `dir: src
output: /tmp/out
files:
  - "!README.md"
  - "!demo/**/*"
policy: intersection
workers: 2
manifest: meta/manifest.yaml
processors:
  - type: banner
    files: ["*.js"]
    options:
      text: "/* built */\n"
  - type: copy
    name: duplicate
    files: ["index.html"]
    options:
      to: ["404.html"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "src"), cfg.Dir)
	assert.Equal(t, "/tmp/out", cfg.Output)
	assert.Equal(t, []string{"!README.md", "!demo/**/*"}, cfg.Files)
	assert.Equal(t, "intersection", cfg.Policy)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, filepath.Join(tmpDir, "meta", "manifest.yaml"), cfg.Manifest)

	require.Len(t, cfg.Processors, 2)
	assert.Equal(t, "banner", cfg.Processors[0].Type)
	assert.Equal(t, []string{"*.js"}, cfg.Processors[0].Files)
	assert.Equal(t, "/* built */\n", cfg.Processors[0].Options["text"])
	assert.Equal(t, "duplicate", cfg.Processors[1].Name)
	require.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mipbuild.toml")
	content := `dir = "site"
output = "public"
files = ["!*.md"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "site"), cfg.Dir)
	assert.Equal(t, filepath.Join(tmpDir, "public"), cfg.Output)
	assert.Equal(t, []string{"!*.md"}, cfg.Files)
	assert.Equal(t, 4, cfg.Workers, "unset keys keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MIPBUILD_OUTPUT", "/env/out")
	t.Setenv("MIPBUILD_WORKERS", "8")
	t.Setenv("MIPBUILD_FILES", "!a.txt,!b.txt")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err, "an explicit missing file is an error")
	assert.Nil(t, cfg)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mipbuild.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("output: fromfile\nworkers: 1\n"), 0o644))

	cfg, err = Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/env/out", cfg.Output)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"!a.txt", "!b.txt"}, cfg.Files)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load("config.json")
	assert.Error(t, err)
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Files = []string{"!README.md"}

	out := "build"
	workers := 0
	debug := true
	cfg.MergeWithFlags(nil, &out, []string{"!demo/**"}, nil, &workers, nil, &debug)

	assert.Equal(t, ".", cfg.Dir)
	assert.Equal(t, "build", cfg.Output)
	assert.Equal(t, []string{"!README.md", "!demo/**"}, cfg.Files)
	assert.Equal(t, 0, cfg.Workers)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "override", cfg.Policy)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dir", func(c *Config) { c.Dir = "" }},
		{"empty output", func(c *Config) { c.Output = "" }},
		{"bad policy", func(c *Config) { c.Policy = "union" }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"untyped processor", func(c *Config) { c.Processors = []ProcessorConfig{{Name: "x"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
