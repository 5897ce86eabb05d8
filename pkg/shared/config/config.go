package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the application configuration loaded from a YAML file.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HttpClient HttpClient `yaml:"http_client"`
	GitClient  GitClient  `yaml:"git_client"`
	Detect     Detect     `yaml:"detect"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HttpClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TlsClientConfig  TlsClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TlsClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type GitClient struct {
	Timeout     time.Duration `yaml:"timeout"`
	InsecureTLS *bool         `yaml:"insecure_tls"`
}

// Detect holds per-target detection settings: extra request headers and
// path rewrite rules applied before retrieval. Rules are ordered; the
// first matching pattern wins.
type Detect struct {
	Headers  map[string]string `yaml:"headers"`
	Patterns []PatternRule     `yaml:"patterns"`
}

type PatternRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// RestyHttpClientConfig is the resolved HTTP client configuration handed
// to the resty initializer.
type RestyHttpClientConfig struct {
	Debug            bool
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	InsecureTLS      bool
	Proxy            string
}

// DefaultRestyConfig returns the HTTP client defaults used when the
// config file leaves them unset.
func DefaultRestyConfig() RestyHttpClientConfig {
	return RestyHttpClientConfig{
		RetryCount:       1,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          10 * time.Second,
	}
}

// LoadConfig reads the configuration file at path. A missing file is not
// an error when required is false; the zero config is returned instead.
func LoadConfig(path string, required bool) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !required {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config file %q does not exist", path)
	}

	cfg := &Config{}
	if err := LoadYAML(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadYAML decodes a YAML document from path into data.
func LoadYAML(path string, data interface{}) error {
	if err := ValidateConfigPath(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("failed to decode %q: %w", path, err)
	}
	return nil
}

// ValidateConfigPath checks that path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}
