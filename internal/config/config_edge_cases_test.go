package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MalformedYAMLReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := t.TempDir()
	orig := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", xdgDir)
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".librovore.yaml"),
		[]byte("detection: [this is not a mapping"), 0644))

	_, err := Load(tmpDir)
	assert.Error(t, err)
}

func TestLoad_EmptyYAMLFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := t.TempDir()
	orig := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", xdgDir)
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".librovore.yaml"), []byte(""), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, NewConfig().HTTP.MaxConcurrency, cfg.HTTP.MaxConcurrency)
}

func TestLoad_YMLExtensionFallbackWhenYAMLAbsent(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := t.TempDir()
	orig := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", xdgDir)
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".librovore.yml"),
		[]byte("log_level: error\n"), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_YAMLExtensionTakesPrecedenceOverYML(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := t.TempDir()
	orig := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", xdgDir)
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".librovore.yaml"),
		[]byte("log_level: debug\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".librovore.yml"),
		[]byte("log_level: error\n"), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnvOverrides_IgnoresUnparseableNumbers(t *testing.T) {
	cfg := NewConfig()
	orig := os.Getenv("LIBROVORE_HTTP_TIMEOUT_S")
	os.Setenv("LIBROVORE_HTTP_TIMEOUT_S", "not-a-number")
	defer os.Setenv("LIBROVORE_HTTP_TIMEOUT_S", orig)

	cfg.applyEnvOverrides()
	assert.Equal(t, 30, cfg.HTTP.TimeoutSeconds)
}

func TestApplyEnvOverrides_IgnoresOutOfRangeFuzzyThreshold(t *testing.T) {
	cfg := NewConfig()
	orig := os.Getenv("LIBROVORE_SEARCH_FUZZY_THRESHOLD")
	os.Setenv("LIBROVORE_SEARCH_FUZZY_THRESHOLD", "150")
	defer os.Setenv("LIBROVORE_SEARCH_FUZZY_THRESHOLD", orig)

	cfg.applyEnvOverrides()
	assert.Equal(t, 50.0, cfg.Search.FuzzyThreshold)
}

func TestApplyEnvOverrides_BooleanAcceptsOneAndTrue(t *testing.T) {
	cfg := NewConfig()
	orig := os.Getenv("LIBROVORE_ROBOTS_STRICT")
	defer os.Setenv("LIBROVORE_ROBOTS_STRICT", orig)

	os.Setenv("LIBROVORE_ROBOTS_STRICT", "1")
	cfg.applyEnvOverrides()
	assert.True(t, cfg.Robots.Strict)

	cfg2 := NewConfig()
	os.Setenv("LIBROVORE_ROBOTS_STRICT", "true")
	cfg2.applyEnvOverrides()
	assert.True(t, cfg2.Robots.Strict)
}

func TestMergeWith_EmptyOtherLeavesDefaultsUntouched(t *testing.T) {
	cfg := NewConfig()
	cfg.mergeWith(&Config{})
	assert.Equal(t, NewConfig(), cfg)
}

func TestConfig_IsJSONSerializable(t *testing.T) {
	cfg := NewConfig()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Contains(t, parsed, "detection")
	assert.Contains(t, parsed, "http")
	assert.Contains(t, parsed, "search")
	assert.Contains(t, parsed, "url_patterns")
	assert.Contains(t, parsed, "robots")
	assert.Contains(t, parsed, "log_level")
}

func TestLoad_MissingUserConfigFileIsNotAnError(t *testing.T) {
	xdgDir := t.TempDir()
	orig := os.Getenv("XDG_CONFIG_HOME")
	os.Setenv("XDG_CONFIG_HOME", xdgDir)
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, cfg)
}
