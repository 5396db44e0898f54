package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func noEnv(string) (string, bool) { return "", false }

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
database:
  dsn: /tmp/test.db
scan:
  staleness_window: 30m
  tier: pro
aws:
  regions: [eu-west-1]
pricing:
  conversion_rate: 1
  currency: USD
`)

	t.Run("file values over defaults", func(t *testing.T) {
		l := &FileLoader{Path: path, lookupEnv: noEnv}
		cfg, err := l.Load()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Database.DSN != "/tmp/test.db" || cfg.Scan.StalenessWindow != 30*time.Minute || cfg.Scan.Tier != "pro" {
			t.Errorf("file values not applied: %+v", cfg)
		}
		if len(cfg.AWS.Regions) != 1 || cfg.Pricing.Currency != "USD" {
			t.Errorf("unexpected aws/pricing: %+v %+v", cfg.AWS, cfg.Pricing)
		}
		if cfg.Scan.MaxConcurrentConnections != 3 || cfg.Log.Level != "info" {
			t.Errorf("defaults lost: %+v", cfg)
		}
	})

	t.Run("env over dotenv over file", func(t *testing.T) {
		envFile := writeFile(t, dir, ".env", "SPENDSCAN_DB_DSN=from-dotenv.db\nSPENDSCAN_LOG_LEVEL=debug\n")
		l := &FileLoader{Path: path, EnvFile: envFile, lookupEnv: func(k string) (string, bool) {
			if k == EnvLogLevel {
				return "WARN", true
			}
			return "", false
		}}
		cfg, err := l.Load()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Database.DSN != "from-dotenv.db" {
			t.Errorf("DSN = %q; want dotenv value", cfg.Database.DSN)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("Level = %q; want env value", cfg.Log.Level)
		}
	})

	t.Run("bad staleness window", func(t *testing.T) {
		l := &FileLoader{Path: path, lookupEnv: func(k string) (string, bool) {
			return "soon", k == EnvStalenessWindow
		}}
		if _, err := l.Load(); err == nil || !strings.Contains(err.Error(), EnvStalenessWindow) {
			t.Fatalf("want staleness window error, got %v", err)
		}
	})
}

func TestFileLoader_MissingFile(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		l := &FileLoader{Path: filepath.Join(t.TempDir(), "nope.yaml"), lookupEnv: noEnv}
		if _, err := l.Load(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Scan.Tier = "gold"
	cfg.Pricing.ConversionRate = 0
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"Scan.Tier", "Pricing.ConversionRate", "Log.Level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
