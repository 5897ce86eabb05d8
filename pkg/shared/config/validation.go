package config

import (
	"fmt"
	"regexp"
	"strings"
)

var knownLogLevels = map[string]struct{}{
	"": {}, "TRACE": {}, "DEBUG": {}, "INFO": {}, "WARN": {}, "ERROR": {},
}

// ValidateConfig checks the loaded configuration for values that would
// only fail later at an inconvenient point: unknown log levels and
// rewrite patterns that do not compile.
func ValidateConfig(cfg *Config) error {
	if _, ok := knownLogLevels[strings.ToUpper(cfg.Logger.Level)]; !ok {
		return fmt.Errorf("unknown log level %q", cfg.Logger.Level)
	}

	for i, rule := range cfg.Detect.Patterns {
		if rule.Pattern == "" {
			return fmt.Errorf("detect pattern %d has an empty pattern", i)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("detect pattern %q does not compile: %w", rule.Pattern, err)
		}
	}

	if (cfg.HttpClient.Proxy.Host == "") != (cfg.HttpClient.Proxy.Port == "") {
		return fmt.Errorf("http_client.proxy requires both host and port")
	}
	return nil
}
