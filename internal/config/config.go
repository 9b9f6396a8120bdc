// Package config loads jinspect configuration from system defaults, a
// machine file and a project file, merged in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/jinspect/internal/diag"
)

// Config holds the full jinspect configuration.
type Config struct {
	Engine      EngineConfig                `yaml:"engine" toml:"engine"`
	Inspections map[string]InspectionConfig `yaml:"inspections" toml:"inspections"`
	Telemetry   TelemetryConfig             `yaml:"telemetry" toml:"telemetry"`
}

// EngineConfig controls how analyses run.
type EngineConfig struct {
	// Jobs bounds concurrent inspection runs; 0 means one per CPU.
	Jobs int `yaml:"jobs" toml:"jobs"`
	// LibraryPaths are directories of Java sources indexed for type
	// resolution only.
	LibraryPaths []string `yaml:"library_paths,omitempty" toml:"library_paths"`
	// CacheDir enables the on-disk result cache when set.
	CacheDir string `yaml:"cache_dir,omitempty" toml:"cache_dir"`
	// RemoteCache is a shared cache server consulted after the local tiers.
	RemoteCache RemoteCacheConfig `yaml:"remote_cache,omitempty" toml:"remote_cache"`
}

// RemoteCacheConfig locates a remote cache server.
type RemoteCacheConfig struct {
	URL   string `yaml:"url" toml:"url"`
	Token string `yaml:"token,omitempty" toml:"token"`
}

// InspectionConfig enables and tunes one inspection. A nil Enabled leaves
// the lower tier's choice in place.
type InspectionConfig struct {
	Enabled  *bool                  `yaml:"enabled,omitempty" toml:"enabled"`
	Severity string                 `yaml:"severity,omitempty" toml:"severity"`
	Options  map[string]interface{} `yaml:"options,omitempty" toml:"options"`
}

// IsEnabled reports whether the inspection is switched on.
func (c InspectionConfig) IsEnabled() bool { return c.Enabled != nil && *c.Enabled }

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled        bool              `yaml:"enabled" toml:"enabled"`
	Endpoint       string            `yaml:"endpoint" toml:"endpoint"`
	Protocol       string            `yaml:"protocol" toml:"protocol"`
	Insecure       bool              `yaml:"insecure" toml:"insecure"`
	Headers        map[string]string `yaml:"headers,omitempty" toml:"headers"`
	SampleRate     float64           `yaml:"sample_rate" toml:"sample_rate"`
	ServiceName    string            `yaml:"service_name" toml:"service_name"`
	ServiceVersion string            `yaml:"service_version" toml:"service_version"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.Jobs < 0 {
		errs = append(errs, fmt.Errorf("engine.jobs must not be negative, got %d", c.Engine.Jobs))
	}
	for name, ic := range c.Inspections {
		if ic.Severity == "" {
			continue
		}
		if _, ok := diag.ParseSeverity(ic.Severity); !ok {
			errs = append(errs, fmt.Errorf("inspections.%s.severity must be note, warning or error, got %q", name, ic.Severity))
		}
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		errs = append(errs, fmt.Errorf("telemetry.protocol must be 'grpc' or 'http', got %q", c.Telemetry.Protocol))
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_rate must be within [0, 1], got %v", c.Telemetry.SampleRate))
	}
	return errors.Join(errs...)
}

// Enabled returns the names of enabled inspections.
func (c *Config) Enabled() []string {
	var out []string
	for name, ic := range c.Inspections {
		if ic.IsEnabled() {
			out = append(out, name)
		}
	}
	return out
}

// MergeConfigs merges configs in order of increasing precedence. Non-zero
// fields of a later config override; inspection options merge key by key.
func MergeConfigs(configs ...*Config) *Config {
	result := &Config{Inspections: make(map[string]InspectionConfig)}

	for _, cfg := range configs {
		if cfg == nil {
			continue
		}

		if cfg.Engine.Jobs != 0 {
			result.Engine.Jobs = cfg.Engine.Jobs
		}
		if len(cfg.Engine.LibraryPaths) > 0 {
			result.Engine.LibraryPaths = cfg.Engine.LibraryPaths
		}
		if cfg.Engine.CacheDir != "" {
			result.Engine.CacheDir = cfg.Engine.CacheDir
		}
		if cfg.Engine.RemoteCache.URL != "" {
			result.Engine.RemoteCache = cfg.Engine.RemoteCache
		}

		for name, ic := range cfg.Inspections {
			existing, ok := result.Inspections[name]
			if !ok {
				result.Inspections[name] = ic
				continue
			}
			if ic.Enabled != nil {
				existing.Enabled = ic.Enabled
			}
			if ic.Severity != "" {
				existing.Severity = ic.Severity
			}
			if len(ic.Options) > 0 {
				merged := make(map[string]interface{}, len(existing.Options)+len(ic.Options))
				for k, v := range existing.Options {
					merged[k] = v
				}
				for k, v := range ic.Options {
					merged[k] = v
				}
				existing.Options = merged
			}
			result.Inspections[name] = existing
		}

		mergeTelemetry(&result.Telemetry, cfg.Telemetry)
	}

	return result
}

func mergeTelemetry(dst *TelemetryConfig, src TelemetryConfig) {
	if src.Enabled {
		dst.Enabled = true
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.Protocol != "" {
		dst.Protocol = src.Protocol
	}
	if src.Insecure {
		dst.Insecure = true
	}
	if len(src.Headers) > 0 {
		dst.Headers = src.Headers
	}
	if src.SampleRate != 0 {
		dst.SampleRate = src.SampleRate
	}
	if src.ServiceName != "" {
		dst.ServiceName = src.ServiceName
	}
	if src.ServiceVersion != "" {
		dst.ServiceVersion = src.ServiceVersion
	}
}

// LoadFromFile reads a YAML or TOML config file, chosen by extension.
// Returns nil, nil if the file doesn't exist.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	return &cfg, nil
}

// LoadTiered loads system defaults, then machine config, then project config,
// and merges them in order of increasing precedence.
func LoadTiered(machinePath, projectPath string) (*Config, error) {
	system := SystemDefaults()

	machine, err := LoadFromFile(machinePath)
	if err != nil {
		return nil, fmt.Errorf("loading machine config: %w", err)
	}

	project, err := LoadFromFile(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return MergeConfigs(system, machine, project), nil
}

// MachinePath returns the per-user config location.
func MachinePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "jinspect", "jinspect.yaml")
}

// ProjectPath returns the project config under dir, preferring YAML over
// TOML when both exist. It returns the YAML path when neither exists.
func ProjectPath(dir string) string {
	yml := filepath.Join(dir, ".jinspect", "jinspect.yaml")
	if _, err := os.Stat(yml); err == nil {
		return yml
	}
	tml := filepath.Join(dir, ".jinspect", "jinspect.toml")
	if _, err := os.Stat(tml); err == nil {
		return tml
	}
	return yml
}
