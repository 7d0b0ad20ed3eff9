package config

import (
	"fmt"
	"net/url"
	"strings"
)

var (
	knownModes        = []string{ModeOnline, ModeOffline}
	knownLogLevels    = []string{"none", "error", "warn", "warning", "info", "debug"}
	knownCacheDrivers = []string{DriverSQLite, DriverBolt, DriverMemory}
)

// isValidEnumValue checks case-insensitively if value is one of allowedValues.
func isValidEnumValue(value string, allowedValues []string) bool {
	for _, allowed := range allowedValues {
		if strings.EqualFold(value, allowed) {
			return true
		}
	}
	return false
}

// ValidateConfigManually performs comprehensive validation of the loaded configuration.
// Every problem is collected so the user sees all of them at once.
// Credentials are not checked here; the clients that consume them raise the
// missing/invalid value errors at construction.
func ValidateConfigManually(cfg *Config) error {
	var allErrors []string
	if !isValidEnumValue(cfg.Mode, knownModes) {
		allErrors = append(allErrors, fmt.Sprintf("- Config.Mode: invalid mode '%s', must be one of %v", cfg.Mode, knownModes))
	}
	allErrors = append(allErrors, validateRetryConfig("Config.Retry", &cfg.Retry)...)
	allErrors = append(allErrors, validateLoggingConfig("Config.Logging", &cfg.Logging)...)
	allErrors = append(allErrors, validateCatalogConfig("Config.Catalog", &cfg.Catalog)...)
	allErrors = append(allErrors, validatePublishConfig("Config.Publish", &cfg.Publish)...)
	allErrors = append(allErrors, validateCacheConfig("Config.Cache", &cfg.Cache)...)
	if len(allErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(allErrors, "\n"))
	}
	return nil
}

func validateRetryConfig(prefix string, cfg *RetryConfig) []string {
	var errs []string
	if cfg.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("- %s.MaxAttempts: must be at least 1", prefix))
	}
	if cfg.Backoff < 1 {
		errs = append(errs, fmt.Sprintf("- %s.Backoff: must be at least 1 second", prefix))
	}
	for _, code := range cfg.ExcludeErrors {
		if code < 500 || code > 599 {
			errs = append(errs, fmt.Sprintf("- %s.ExcludeErrors: %d is not a 5xx status code", prefix, code))
		}
	}
	return errs
}

func validateLoggingConfig(prefix string, cfg *LoggingConfig) []string {
	var errs []string
	if !isValidEnumValue(cfg.Level, knownLogLevels) {
		errs = append(errs, fmt.Sprintf("- %s.Level: invalid log level '%s', must be one of %v", prefix, cfg.Level, knownLogLevels))
	}
	return errs
}

func validateCatalogConfig(prefix string, cfg *CatalogConfig) []string {
	errs := validateHTTPURL(prefix+".BaseURL", cfg.BaseURL)
	if cfg.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("- %s.RequestsPerSecond: cannot be negative", prefix))
	}
	if cfg.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("- %s.TimeoutSeconds: cannot be negative", prefix))
	}
	return errs
}

func validatePublishConfig(prefix string, cfg *PublishConfig) []string {
	errs := validateHTTPURL(prefix+".URL", cfg.URL)
	if cfg.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("- %s.TimeoutSeconds: cannot be negative", prefix))
	}
	return errs
}

func validateCacheConfig(prefix string, cfg *CacheConfig) []string {
	var errs []string
	if !isValidEnumValue(cfg.Driver, knownCacheDrivers) {
		errs = append(errs, fmt.Sprintf("- %s.Driver: invalid driver '%s', must be one of %v", prefix, cfg.Driver, knownCacheDrivers))
		return errs
	}
	if !strings.EqualFold(cfg.Driver, DriverMemory) && cfg.Path == "" {
		errs = append(errs, fmt.Sprintf("- %s.Path: is required for driver '%s'", prefix, cfg.Driver))
	}
	return errs
}

func validateHTTPURL(field, raw string) []string {
	if raw == "" {
		return []string{fmt.Sprintf("- %s: is required", field)}
	}
	parsedURL, err := url.ParseRequestURI(raw)
	if err != nil {
		return []string{fmt.Sprintf("- %s: invalid URL format: %v", field, err)}
	}
	if scheme := strings.ToLower(parsedURL.Scheme); scheme != "http" && scheme != "https" {
		return []string{fmt.Sprintf("- %s: invalid URL scheme '%s', must be http or https", field, parsedURL.Scheme)}
	}
	return nil
}
