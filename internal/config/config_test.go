package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(body), 0o644); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != DefaultDatabaseDSN {
		t.Fatalf("dsn = %q, want %q", cfg.Database.DSN, DefaultDatabaseDSN)
	}
	if cfg.Ledger.ValidityDays != DefaultValidityDays {
		t.Fatalf("validity days = %d", cfg.Ledger.ValidityDays)
	}
	if cfg.Ledger.Contact.CountryCode != "27" || cfg.Ledger.Contact.NationalDigits != 9 {
		t.Fatalf("unexpected contact defaults: %+v", cfg.Ledger.Contact)
	}
	if cfg.Sessions.Store != "db" || cfg.Notify.Driver != "log" {
		t.Fatalf("unexpected drivers: store=%q notify=%q", cfg.Sessions.Store, cfg.Notify.Driver)
	}
	if cfg.Bootstrap.AdminID != "CC-ADMIN" {
		t.Fatalf("admin id = %q", cfg.Bootstrap.AdminID)
	}
}

func TestLoadParsesYAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  dsn: file:ledger.db
jwt:
  secret: from-file
  expiry: 2h
ledger:
  code-prefix: CC
  code-style: random
  validity-days: 7
sessions:
  store: redis
  redis:
    addr: localhost:6379
`)
	t.Setenv(EnvJWTSecret, "from-env")
	t.Setenv(EnvKafkaBrokerList, "k1:9092, ,k2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Fatalf("jwt secret = %q, want env override", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiry != 2*time.Hour || cfg.Sessions.TTL != 2*time.Hour {
		t.Fatalf("expiry = %s ttl = %s", cfg.JWT.Expiry, cfg.Sessions.TTL)
	}
	if cfg.Ledger.CodePrefix != "CC" || cfg.Ledger.CodeStyle != "random" || cfg.Ledger.ValidityDays != 7 {
		t.Fatalf("unexpected ledger config: %+v", cfg.Ledger)
	}
	if len(cfg.Events.Kafka.Brokers) != 2 || cfg.Events.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("brokers = %v", cfg.Events.Kafka.Brokers)
	}
	if errValidate := cfg.Validate(); errValidate != nil {
		t.Fatalf("validate: %v", errValidate)
	}
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }},
		{"twilio without credentials", func(c *Config) { c.Notify.Driver = "twilio" }},
		{"redis without addr", func(c *Config) { c.Sessions.Store = "redis" }},
		{"unknown code style", func(c *Config) { c.Ledger.CodeStyle = "emoji" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			cfg.JWT.Secret = "secret"
			tc.mutate(cfg)
			if cfg.Validate() == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := ResolveConfigPath(""); got != DefaultConfigPath {
		t.Fatalf("default path = %q", got)
	}
	t.Setenv(EnvConfigPath, "/etc/cashclear/config.yaml")
	if got := ResolveConfigPath(""); got != "/etc/cashclear/config.yaml" {
		t.Fatalf("env path = %q", got)
	}
	if got := ResolveConfigPath(" ./local.yaml "); got != "local.yaml" {
		t.Fatalf("flag path = %q", got)
	}
}
