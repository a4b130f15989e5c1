package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mipbuild/pkg/selector"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. MIPBUILD_OUTPUT sets "output".
const EnvPrefix = "MIPBUILD_"

// DefaultFiles are the config file names looked up in the working directory.
var DefaultFiles = []string{"mipbuild.yaml", "mipbuild.yml", "mipbuild.toml"}

// ProcessorConfig declares one built-in processor.
type ProcessorConfig struct {
	Type    string                 `koanf:"type"`    // Registered processor type.
	Name    string                 `koanf:"name"`    // Display name; defaults to Type.
	Files   []string               `koanf:"files"`   // Patterns the processor applies to.
	Options map[string]interface{} `koanf:"options"` // Type-specific settings.
}

// Config holds the settings for a build.
type Config struct {
	Dir        string            `koanf:"dir"`        // Build root.
	Output     string            `koanf:"output"`     // Output directory.
	Files      []string          `koanf:"files"`      // Selector patterns.
	Policy     string            `koanf:"policy"`     // "override" or "intersection".
	Workers    int               `koanf:"workers"`    // Output writers; 0 means one per CPU.
	Encoding   string            `koanf:"encoding"`   // Forced text encoding; empty detects.
	Manifest   string            `koanf:"manifest"`   // Manifest path; empty disables it.
	Debug      bool              `koanf:"debug"`      // Development logging.
	Processors []ProcessorConfig `koanf:"processors"` // Run in order.
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dir:     ".",
		Output:  "dist",
		Files:   []string{},
		Policy:  string(selector.PolicyOverride),
		Workers: 4,
	}
}

func defaultsMap() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"dir":      d.Dir,
		"output":   d.Output,
		"files":    d.Files,
		"policy":   d.Policy,
		"workers":  d.Workers,
		"encoding": d.Encoding,
		"manifest": d.Manifest,
		"debug":    d.Debug,
	}
}

// Load builds a Config from defaults, the file at path (if any) and the
// environment, in that order of precedence. An empty path loads the first
// of DefaultFiles found in the working directory.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findDefaultFile()
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Relative dirs in a config file are relative to the file itself.
	if path != "" {
		base := filepath.Dir(path)
		cfg.Dir = resolveFrom(base, cfg.Dir)
		cfg.Output = resolveFrom(base, cfg.Output)
		if cfg.Manifest != "" {
			cfg.Manifest = resolveFrom(base, cfg.Manifest)
		}
	}

	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}

func findDefaultFile() string {
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func resolveFrom(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// MergeWithFlags overrides config values with flags the user set explicitly.
// Nil pointers leave the config value unchanged.
func (c *Config) MergeWithFlags(dir, output *string, files []string, policy *string, workers *int, manifest *string, debug *bool) {
	if dir != nil {
		c.Dir = *dir
	}
	if output != nil {
		c.Output = *output
	}
	if len(files) > 0 {
		c.Files = append(c.Files, files...)
	}
	if policy != nil {
		c.Policy = *policy
	}
	if workers != nil {
		c.Workers = *workers
	}
	if manifest != nil {
		c.Manifest = *manifest
	}
	if debug != nil {
		c.Debug = *debug
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if _, err := selector.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	for i, p := range c.Processors {
		if p.Type == "" {
			return fmt.Errorf("processor %d has no type", i)
		}
	}
	return nil
}
