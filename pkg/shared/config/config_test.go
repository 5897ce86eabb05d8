package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
http_client:
  timeout: 5s
  retry_count: 3
detect:
  headers:
    Authorization: Bearer abc
  patterns:
    - pattern: "^dist/"
      replacement: "static/"
`)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 5*time.Second, cfg.HttpClient.Timeout)
	assert.Equal(t, 3, cfg.HttpClient.RetryCount)
	assert.Equal(t, "Bearer abc", cfg.Detect.Headers["Authorization"])
	require.Len(t, cfg.Detect.Patterns, 1)
	assert.Equal(t, "^dist/", cfg.Detect.Patterns[0].Pattern)
	assert.Equal(t, "static/", cfg.Detect.Patterns[0].Replacement)
}

func TestLoadConfigMissingOptional(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"), false)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"), true)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty config", cfg: Config{}},
		{name: "known level", cfg: Config{Logger: Logger{Level: "warn"}}},
		{name: "unknown level", cfg: Config{Logger: Logger{Level: "loud"}}, wantErr: true},
		{
			name: "valid pattern",
			cfg:  Config{Detect: Detect{Patterns: []PatternRule{{Pattern: `\.js$`, Replacement: ".min.js"}}}},
		},
		{
			name:    "invalid pattern",
			cfg:     Config{Detect: Detect{Patterns: []PatternRule{{Pattern: "([", Replacement: "x"}}}},
			wantErr: true,
		},
		{
			name:    "empty pattern",
			cfg:     Config{Detect: Detect{Patterns: []PatternRule{{Replacement: "x"}}}},
			wantErr: true,
		},
		{
			name:    "proxy host without port",
			cfg:     Config{HttpClient: HttpClient{Proxy: Proxy{Host: "proxy.local"}}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(&tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetThen(t *testing.T) {
	assert.Equal(t, 5, SetThen(0, 5))
	assert.Equal(t, 3, SetThen(3, 5))
	assert.Equal(t, time.Minute, SetThen(time.Duration(0), time.Minute))
	assert.Equal(t, "a", SetThen("", "a"))
}

func TestGetBoolValue(t *testing.T) {
	yes := true
	cfg := &Config{HttpClient: HttpClient{TlsClientConfig: TlsClientConfig{Verify: &yes}}}

	assert.True(t, GetBoolValue(cfg, "HttpClient.TlsClientConfig.Verify", false))
	assert.True(t, GetBoolValue(cfg, "Logger.JSONFormat", true))
	assert.False(t, GetBoolValue(cfg, "No.Such.Field", false))
	assert.True(t, GetBoolValue(nil, "Anything", true))
}
