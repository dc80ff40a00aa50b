// Package config provides hierarchical configuration management for kacl using koanf.
// Configuration is loaded with priority: environment variables > project config (.kacl.yml)
// > user config (~/.config/kacl/config.yml) > defaults. Command line flags are applied
// on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "KACL_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
	SourceFlag    ConfigSource = "flag"
)

// Configuration represents the kacl CLI tool configuration
type Configuration struct {
	// Changelog is the path (or http(s) URL) of the changelog to read.
	// Can be set via KACL_CHANGELOG env var.
	Changelog string `koanf:"changelog" validate:"required"`

	// Revision reads the changelog as committed at a Git revision instead of
	// from the working tree. Empty reads the file on disk.
	Revision string `koanf:"revision"`

	// Duplicates selects how repeated category labels in one release are
	// mapped: "overwrite" keeps the last, "merge" concatenates.
	Duplicates string `koanf:"duplicates" validate:"oneof=overwrite merge"`

	// RequireRelease makes a changelog without any valid release an error.
	RequireRelease bool `koanf:"require_release"`

	// Format is the default output format: text, json, yaml or toml.
	Format string `koanf:"format" validate:"oneof=text json yaml toml"`

	// MaxParallel bounds how many changelogs are evaluated concurrently.
	MaxParallel int `koanf:"max_parallel" validate:"min=1,max=64"`

	// RemoteTimeout bounds fetching a changelog over HTTP.
	RemoteTimeout time.Duration `koanf:"remote_timeout" validate:"min=0s,max=10m"`

	// Sources records which layer supplied each key.
	Sources map[string]ConfigSource `koanf:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .kacl.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: see UserConfigPath)
	UserConfigPath string
	// SkipUser ignores the user config file
	SkipUser bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	sources := make(map[string]ConfigSource)

	loadDefaults(k, sources)

	if !opts.SkipUser {
		if err := loadUserConfig(k, opts.UserConfigPath, sources); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, sources); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k, sources); err != nil {
		return nil, err
	}

	return finalizeConfig(k, sources)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf, sources map[string]ConfigSource) {
	for key, value := range GetDefaults() {
		_ = k.Set(key, value)
		sources[key] = SourceDefault
	}
}

// loadUserConfig loads the user-level YAML config if it exists.
func loadUserConfig(k *koanf.Koanf, customPath string, sources map[string]ConfigSource) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, SourceUser, sources); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads project-level config. Supports custom path override (for testing).
func loadProjectConfig(k *koanf.Koanf, customPath string, sources map[string]ConfigSource) error {
	path := ProjectConfigPath()
	if customPath != "" {
		path = customPath
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, SourceProject, sources); err != nil {
		return fmt.Errorf("loading project YAML config: %w", err)
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file, recording the keys it sets.
func loadYAMLConfig(k *koanf.Koanf, path string, source ConfigSource, sources map[string]ConfigSource) error {
	if err := checkFile(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}

	layer := koanf.New(".")
	if err := layer.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
	}
	for _, key := range layer.Keys() {
		sources[key] = source
	}
	return k.Merge(layer)
}

// loadEnvironmentConfig validates and loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf, sources map[string]ConfigSource) error {
	for _, kv := range os.Environ() {
		name, value, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key := envTransform(name)
		if _, err := GetKeySchema(key); err != nil {
			continue
		}
		if _, err := ValidateValue(key, value); err != nil {
			return &ValidationError{Source: "environment", Key: name, Message: err.Error()}
		}
		sources[key] = SourceEnv
	}

	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		key := envTransform(s)
		if _, err := GetKeySchema(key); err != nil {
			return ""
		}
		return key
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf, sources map[string]ConfigSource) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Duplicates = strings.ToLower(cfg.Duplicates)
	cfg.Format = strings.ToLower(cfg.Format)
	cfg.Changelog = expandHomePath(cfg.Changelog)

	if err := validateValues(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Sources = sources
	return &cfg, nil
}

// SetFlag overrides key with a command line value and marks it as flag sourced.
func (c *Configuration) SetFlag(key string, apply func(*Configuration)) {
	apply(c)
	if c.Sources == nil {
		c.Sources = make(map[string]ConfigSource)
	}
	c.Sources[key] = SourceFlag
}

// Source returns the layer that supplied key.
func (c *Configuration) Source(key string) ConfigSource {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Values returns the effective configuration as key/value pairs sorted by key.
func (c *Configuration) Values() []KeyValue {
	values := []KeyValue{
		{Key: "changelog", Value: c.Changelog},
		{Key: "revision", Value: c.Revision},
		{Key: "duplicates", Value: c.Duplicates},
		{Key: "require_release", Value: fmt.Sprint(c.RequireRelease)},
		{Key: "format", Value: c.Format},
		{Key: "max_parallel", Value: fmt.Sprint(c.MaxParallel)},
		{Key: "remote_timeout", Value: c.RemoteTimeout.String()},
	}
	for i := range values {
		values[i].Source = c.Source(values[i].Key)
	}
	sort.Slice(values, func(i, j int) bool { return values[i].Key < values[j].Key })
	return values
}

// KeyValue is one entry of the effective configuration.
type KeyValue struct {
	Key    string       `json:"key" yaml:"key" toml:"key"`
	Value  string       `json:"value" yaml:"value" toml:"value"`
	Source ConfigSource `json:"source" yaml:"source" toml:"source"`
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: KACL_MAX_PARALLEL -> max_parallel
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
