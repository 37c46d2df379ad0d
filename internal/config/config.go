// Package config implements the librovore configuration layering from
// spec.md §6: hardcoded defaults, an optional user config file, an
// optional project config file, then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete, immutable-after-Load librovore configuration.
// It mirrors the options table in spec.md §6.
type Config struct {
	Detection   DetectionConfig   `yaml:"detection" json:"detection"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	URLPatterns URLPatternsConfig `yaml:"url_patterns" json:"url_patterns"`
	Robots      RobotsConfig      `yaml:"robots" json:"robots"`
	LogLevel    string            `yaml:"log_level" json:"log_level"`
}

// DetectionConfig configures the detection orchestrator's per-genus
// cache.
type DetectionConfig struct {
	// TTLSeconds is the detection cache entry lifetime.
	TTLSeconds int `yaml:"ttl_s" json:"ttl_s"`
}

// HTTPConfig configures the fetch proxy.
type HTTPConfig struct {
	TimeoutSeconds     int   `yaml:"timeout_s" json:"timeout_s"`
	MaxConcurrency     int64 `yaml:"max_concurrency" json:"max_concurrency"`
	PerHostConcurrency int64 `yaml:"per_host_concurrency" json:"per_host_concurrency"`
}

// SearchConfig configures the universal search engine.
type SearchConfig struct {
	// FuzzyThreshold is the minimum partial-ratio similarity, in
	// [0,100], a fuzzy match must clear.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold"`
}

// URLPatternsConfig holds the url_patterns options. They are loaded,
// merged and overridden here, but the detection orchestrator does not
// read them: it always probes urlutil's fixed candidate list, and
// setting Enabled to false does not turn that probing off.
type URLPatternsConfig struct {
	Enabled    bool     `yaml:"enabled" json:"enabled"`
	Candidates []string `yaml:"candidates" json:"candidates"`
}

// RobotsConfig configures robots.txt enforcement strictness.
type RobotsConfig struct {
	// Strict, when true, turns an unreachable robots.txt into a fatal
	// error rather than a fail-open warning. An explicit disallow rule
	// always blocks the fetch regardless of this setting.
	Strict bool `yaml:"strict" json:"strict"`
}

// defaultURLPatternCandidates mirrors urlutil's fixed candidate suffix
// list (spec.md §6's default for `url_patterns.candidates`).
var defaultURLPatternCandidates = []string{
	"",
	"/en/latest/",
	"/latest/",
	"/main/",
	"/stable/",
}

// NewConfig returns a Config populated with the spec.md §6 defaults.
func NewConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			TTLSeconds: 3600,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds:     30,
			MaxConcurrency:     16,
			PerHostConcurrency: 4,
		},
		Search: SearchConfig{
			FuzzyThreshold: 50,
		},
		URLPatterns: URLPatternsConfig{
			Enabled:    true,
			Candidates: append([]string(nil), defaultURLPatternCandidates...),
		},
		Robots: RobotsConfig{
			Strict: false,
		},
		LogLevel: "info",
	}
}

// GetUserConfigPath returns the path to the user/global configuration
// file, following the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/librovore/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/librovore/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "librovore", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "librovore", "config.yaml")
	}
	return filepath.Join(home, ".config", "librovore", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user
// configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if present.
// Returns a nil config and nil error when the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load builds a Config from, in order of increasing precedence:
//  1. hardcoded defaults
//  2. the user/global config (~/.config/librovore/config.yaml)
//  3. a project config (.librovore.yaml in dir)
//  4. LIBROVORE_* environment variables
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .librovore.yaml or
// .librovore.yml in dir.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".librovore.yaml")
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".librovore.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Detection.TTLSeconds != 0 {
		c.Detection.TTLSeconds = other.Detection.TTLSeconds
	}

	if other.HTTP.TimeoutSeconds != 0 {
		c.HTTP.TimeoutSeconds = other.HTTP.TimeoutSeconds
	}
	if other.HTTP.MaxConcurrency != 0 {
		c.HTTP.MaxConcurrency = other.HTTP.MaxConcurrency
	}
	if other.HTTP.PerHostConcurrency != 0 {
		c.HTTP.PerHostConcurrency = other.HTTP.PerHostConcurrency
	}

	if other.Search.FuzzyThreshold != 0 {
		c.Search.FuzzyThreshold = other.Search.FuzzyThreshold
	}

	if len(other.URLPatterns.Candidates) > 0 {
		c.URLPatterns.Candidates = other.URLPatterns.Candidates
	}
	// Enabled only merges when a project/user file actually sets
	// url_patterns at all, signalled by a non-empty candidates list;
	// since yaml zero value for bool is false, a
	// caller wanting to disable it must provide `candidates` too, or
	// we'd never be able to tell "omitted" from "explicitly false".
	if len(other.URLPatterns.Candidates) > 0 {
		c.URLPatterns.Enabled = other.URLPatterns.Enabled
	}

	if other.Robots.Strict {
		c.Robots.Strict = other.Robots.Strict
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies LIBROVORE_* environment variable overrides,
// the highest-precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LIBROVORE_DETECTION_TTL_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Detection.TTLSeconds = n
		}
	}
	if v := os.Getenv("LIBROVORE_HTTP_TIMEOUT_S"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.HTTP.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("LIBROVORE_HTTP_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.HTTP.MaxConcurrency = n
		}
	}
	if v := os.Getenv("LIBROVORE_HTTP_PER_HOST_CONCURRENCY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.HTTP.PerHostConcurrency = n
		}
	}
	if v := os.Getenv("LIBROVORE_SEARCH_FUZZY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			c.Search.FuzzyThreshold = f
		}
	}
	if v := os.Getenv("LIBROVORE_URL_PATTERNS_ENABLED"); v != "" {
		c.URLPatterns.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("LIBROVORE_ROBOTS_STRICT"); v != "" {
		c.Robots.Strict = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("LIBROVORE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for internally-consistent values.
func (c *Config) Validate() error {
	if c.Detection.TTLSeconds <= 0 {
		return fmt.Errorf("detection.ttl_s must be positive, got %d", c.Detection.TTLSeconds)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_s must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	if c.HTTP.MaxConcurrency <= 0 {
		return fmt.Errorf("http.max_concurrency must be positive, got %d", c.HTTP.MaxConcurrency)
	}
	if c.HTTP.PerHostConcurrency <= 0 {
		return fmt.Errorf("http.per_host_concurrency must be positive, got %d", c.HTTP.PerHostConcurrency)
	}
	if c.Search.FuzzyThreshold < 0 || c.Search.FuzzyThreshold > 100 {
		return fmt.Errorf("search.fuzzy_threshold must be between 0 and 100, got %f", c.Search.FuzzyThreshold)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
