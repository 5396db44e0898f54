package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/aws/inventory"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers/saas"
	"github.com/pankaj-dahiya-devops/spendscan/internal/store"
)

// Environment variables that override file values.
const (
	EnvDatabaseDSN     = "SPENDSCAN_DB_DSN"
	EnvRedisAddr       = "SPENDSCAN_REDIS_ADDR"
	EnvLogLevel        = "SPENDSCAN_LOG_LEVEL"
	EnvStalenessWindow = "SPENDSCAN_STALENESS_WINDOW"
	EnvTier            = "SPENDSCAN_TIER"
	EnvLLMAPIKey       = "SPENDSCAN_LLM_API_KEY"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{DSN: store.DefaultDSN},
		Log:      LogConfig{Level: "info"},
		Scan: ScanConfig{
			StalenessWindow:          time.Hour,
			MaxConcurrentConnections: 3,
			CollectorTimeout:         45 * time.Second,
			LockTTL:                  5 * time.Minute,
			Tier:                     "free",
		},
		AWS: AWSConfig{
			Regions:              append([]string(nil), inventory.DefaultRegions...),
			MaxConcurrentRegions: inventory.DefaultMaxConcurrentRegions,
			CostHistoryMonths:    inventory.DefaultCostHistoryMonths,
		},
		SaaS: SaaSConfig{
			RateLimit: saas.DefaultRateLimit,
			Burst:     saas.DefaultBurst,
			Timeout:   saas.DefaultTimeout,
		},
		Pricing: PricingConfig{
			ConversionRate: pricing.DefaultConversionRate,
			Currency:       pricing.DefaultCurrency,
		},
		LLM: LLMConfig{Provider: "none"},
	}
}

// DefaultPath returns ~/.config/spendscan/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "spendscan", "config.yaml")
	}
	return filepath.Join(home, ".config", "spendscan", "config.yaml")
}

// FileLoader reads a YAML file, then a .env file, then the process
// environment. Later sources win. A missing file at the default path is
// not an error; a missing explicit path is.
type FileLoader struct {
	Path    string
	EnvFile string

	lookupEnv func(string) (string, bool)
}

// NewFileLoader returns a loader for path (DefaultPath when empty) and
// the .env file in the working directory.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path, EnvFile: ".env", lookupEnv: os.LookupEnv}
}

func (l *FileLoader) ConfigPath() string {
	if l.Path != "" {
		if abs, err := filepath.Abs(l.Path); err == nil {
			return abs
		}
		return l.Path
	}
	return DefaultPath()
}

func (l *FileLoader) Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(l.ConfigPath())
	switch {
	case errors.Is(err, fs.ErrNotExist) && l.Path == "":
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", l.ConfigPath(), err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", l.ConfigPath(), err)
		}
	}

	dotenv := map[string]string{}
	if l.EnvFile != "" {
		dotenv, err = godotenv.Read(l.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", l.EnvFile, err)
		}
		if dotenv == nil {
			dotenv = map[string]string{}
		}
	}
	lookup := l.lookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, env func(string) (string, bool)) error {
	if v, ok := env(EnvDatabaseDSN); ok && v != "" {
		cfg.Database.DSN = v
	}
	if v, ok := env(EnvRedisAddr); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := env(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := env(EnvStalenessWindow); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStalenessWindow, err)
		}
		cfg.Scan.StalenessWindow = d
	}
	if v, ok := env(EnvTier); ok && v != "" {
		cfg.Scan.Tier = strings.ToLower(v)
	}
	if v, ok := env(EnvLLMAPIKey); ok {
		cfg.LLM.APIKey = v
	}
	return nil
}

var validate = validator.New()

// Validate checks cfg and reports every invalid field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		field := strings.TrimPrefix(ve.Namespace(), "Config.")
		if ve.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, ve.Tag(), ve.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, ve.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
