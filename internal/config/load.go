package config

import (
	"fmt"
	"os"
	"strings"

	"catalog-report/internal/util"

	"gopkg.in/yaml.v3"
)

// Default endpoints and settings applied when the file leaves them unset.
const (
	DefaultCatalogURL     = "https://gateway.marvel.com/v1/public/characters"
	DefaultPublishURL     = "https://pastebin.com/api/api_post.php"
	DefaultCachePath      = "catalog-cache.db"
	DefaultTimeoutSeconds = 30
)

// LoadConfig reads, parses, and validates the YAML configuration file.
func LoadConfig(filename string) (*Config, error) {
	fileBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}
	return Parse(fileBytes, filename)
}

// Parse decodes YAML bytes, expands environment references in credential
// values, applies defaults and validates the result. source names the input in errors.
func Parse(data []byte, source string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in '%s': %w", source, err)
	}

	// Keys stay present even when the variable is unset, so an unset
	// variable surfaces as an empty (invalid) credential, not a missing one.
	for k, v := range config.Credentials {
		config.Credentials[k] = util.ExpandEnvUniversal(v)
	}

	ApplyDefaults(&config)
	if err := ValidateConfigManually(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns a configuration with every default applied and no credentials.
// It is what offline runs without a config file use.
func Default() *Config {
	var config Config
	ApplyDefaults(&config)
	return &config
}

// ApplyDefaults fills zero-valued settings.
func ApplyDefaults(config *Config) {
	config.Mode = strings.ToLower(strings.TrimSpace(config.Mode))
	config.Cache.Driver = strings.ToLower(strings.TrimSpace(config.Cache.Driver))
	if config.Mode == "" {
		config.Mode = ModeOnline
	}
	if config.Retry.MaxAttempts <= 0 {
		config.Retry.MaxAttempts = 1
	}
	if config.Retry.Backoff <= 0 {
		config.Retry.Backoff = 1
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Catalog.BaseURL == "" {
		config.Catalog.BaseURL = DefaultCatalogURL
	}
	if config.Catalog.TimeoutSeconds == 0 {
		config.Catalog.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if config.Publish.URL == "" {
		config.Publish.URL = DefaultPublishURL
	}
	if config.Publish.TimeoutSeconds == 0 {
		config.Publish.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if config.Cache.Driver == "" {
		config.Cache.Driver = DriverSQLite
	}
	if config.Cache.Path == "" && config.Cache.Driver != DriverMemory {
		config.Cache.Path = DefaultCachePath
	}
	if config.Credentials == nil {
		config.Credentials = map[string]string{}
	}
}
