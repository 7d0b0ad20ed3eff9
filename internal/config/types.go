package config

// Modes select the lookup and publish variants at startup.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Cache drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Config holds the overall configuration of the lookup and publish clients.
type Config struct {
	Mode        string            `yaml:"mode"`
	Logging     LoggingConfig     `yaml:"logging"`
	Retry       RetryConfig       `yaml:"retry"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Publish     PublishConfig     `yaml:"publish"`
	Cache       CacheConfig       `yaml:"cache"`
	Credentials map[string]string `yaml:"credentials"`
}

// RetryConfig holds settings for retry logic. MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts   int   `yaml:"max_attempts"`
	Backoff       int   `yaml:"backoff_seconds"`
	ExcludeErrors []int `yaml:"exclude_errors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CatalogConfig describes the lookup API.
type CatalogConfig struct {
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds,omitempty"`
	TlsSkipVerify     bool    `yaml:"tls_skip_verify,omitempty"`
}

// PublishConfig describes the paste API.
type PublishConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	TlsSkipVerify  bool   `yaml:"tls_skip_verify,omitempty"`
}

// CacheConfig selects the cache store backend.
type CacheConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path,omitempty"`
}
