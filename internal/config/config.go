// Package config loads spendscan's runtime configuration.
package config

import "time"

// Config is the top-level application configuration.
// It is loaded from ~/.config/spendscan/config.yaml and must never be
// committed with real secrets.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Redis    RedisConfig    `yaml:"redis"    json:"redis"`
	Log      LogConfig      `yaml:"log"      json:"log"`
	Scan     ScanConfig     `yaml:"scan"     json:"scan"`
	AWS      AWSConfig      `yaml:"aws"      json:"aws"`
	SaaS     SaaSConfig     `yaml:"saas"     json:"saas"`
	Pricing  PricingConfig  `yaml:"pricing"  json:"pricing"`
	LLM      LLMConfig      `yaml:"llm"      json:"llm"`

	// PolicyPath optionally points at a policy file overriding rule thresholds.
	PolicyPath string `yaml:"policy_path" json:"policy_path" validate:"omitempty,file"`
}

// DatabaseConfig selects the sqlite database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" json:"dsn" validate:"required"`
}

// RedisConfig enables the distributed scan lock. An empty Addr uses an
// in-process lock.
type RedisConfig struct {
	Addr string `yaml:"addr" json:"addr" validate:"omitempty,hostname_port"`
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"  json:"json"`
}

// ScanConfig tunes the scan orchestrator.
type ScanConfig struct {
	// StalenessWindow is the age after which a connection is rescanned.
	StalenessWindow          time.Duration `yaml:"staleness_window"           json:"staleness_window"           validate:"gt=0"`
	MaxConcurrentConnections int           `yaml:"max_concurrent_connections" json:"max_concurrent_connections" validate:"gte=1,lte=32"`
	CollectorTimeout         time.Duration `yaml:"collector_timeout"          json:"collector_timeout"          validate:"gt=0"`
	LockTTL                  time.Duration `yaml:"lock_ttl"                   json:"lock_ttl"                   validate:"gt=0"`

	// Tier is the subscription tier applied to every local user.
	Tier string `yaml:"tier" json:"tier" validate:"oneof=free pro"`
}

// AWSConfig tunes the AWS collector.
type AWSConfig struct {
	// Regions are the candidates scanned on the pro tier, after the home region.
	Regions              []string `yaml:"regions"                json:"regions"                validate:"dive,required"`
	MaxConcurrentRegions int      `yaml:"max_concurrent_regions" json:"max_concurrent_regions" validate:"gte=1,lte=16"`
	CostHistoryMonths    int      `yaml:"cost_history_months"    json:"cost_history_months"    validate:"gte=1,lte=12"`
}

// SaaSConfig tunes the SaaS HTTP clients. Empty base URLs use the public APIs.
type SaaSConfig struct {
	RateLimit float64       `yaml:"rate_limit" json:"rate_limit" validate:"gt=0"`
	Burst     int           `yaml:"burst"      json:"burst"      validate:"gte=1"`
	Timeout   time.Duration `yaml:"timeout"    json:"timeout"    validate:"gt=0"`
	GitHubURL string        `yaml:"github_url" json:"github_url" validate:"omitempty,url"`
	VercelURL string        `yaml:"vercel_url" json:"vercel_url" validate:"omitempty,url"`
	SentryURL string        `yaml:"sentry_url" json:"sentry_url" validate:"omitempty,url"`
}

// PricingConfig sets the currency findings are reported in.
type PricingConfig struct {
	ConversionRate float64 `yaml:"conversion_rate" json:"conversion_rate" validate:"gt=0"`
	Currency       string  `yaml:"currency"        json:"currency"        validate:"len=3"`
}

// LLMConfig is reserved for a recommendation backend supplied through
// llm.LLMClient. The CLI ships none and only warns when Provider is set.
type LLMConfig struct {
	// Provider selects the AI backend: "anthropic", "openai", or "none".
	Provider string `yaml:"provider" json:"provider" validate:"oneof=none anthropic openai"`

	// APIKey is the secret key for the selected provider.
	// Never committed to version control.
	APIKey string `yaml:"api_key" json:"-"`

	Model     string `yaml:"model"      json:"model"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens" validate:"gte=0"`
}

// Loader is the interface for reading Config.
type Loader interface {
	// Load reads, parses, and validates the configuration.
	Load() (*Config, error)

	// ConfigPath returns the absolute path to the configuration file.
	ConfigPath() string
}
