package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default locations and values.
const (
	// DefaultConfigPath is used when neither a flag nor CASHCLEAR_CONFIG is set.
	DefaultConfigPath = "config.yaml"
	// DefaultDatabaseDSN stores data in a local SQLite file.
	DefaultDatabaseDSN = "data/cashclear.db"
	// DefaultPort is the HTTP listen port.
	DefaultPort = 8317
	// DefaultValidityDays is the voucher validity window.
	DefaultValidityDays = 30
	// DefaultCodePrefix prefixes generated P-Codes.
	DefaultCodePrefix = "PIP"
	// DefaultSessionTTL bounds operator sessions.
	DefaultSessionTTL = 12 * time.Hour
	// DefaultBreakGlassTTL bounds break-glass sessions.
	DefaultBreakGlassTTL = 15 * time.Minute
)

// Environment variable names recognised as overrides.
const (
	EnvConfigPath      = "CASHCLEAR_CONFIG"
	EnvDatabaseDSN     = "CASHCLEAR_DATABASE_DSN"
	EnvJWTSecret       = "CASHCLEAR_JWT_SECRET"
	EnvAdminPassword   = "CASHCLEAR_ADMIN_PASSWORD"
	EnvTwilioSID       = "TWILIO_ACCOUNT_SID"
	EnvTwilioToken     = "TWILIO_AUTH_TOKEN"
	EnvLegacyHashSalt  = "CASHCLEAR_LEGACY_HASH_SALT"
	EnvRedisPassword   = "CASHCLEAR_REDIS_PASSWORD"
	EnvKafkaBrokerList = "CASHCLEAR_KAFKA_BROKERS"
)

// ErrMissingJWTSecret indicates the session signing secret is not configured.
var ErrMissingJWTSecret = errors.New("config: jwt secret is required")

// AppConfig holds process-level options supplied on the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the YAML configuration file layout.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Logging    LoggingConfig    `yaml:"logging"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Notify     NotifyConfig     `yaml:"notify"`
	Events     EventsConfig     `yaml:"events"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap"`
	BreakGlass BreakGlassConfig `yaml:"break-glass"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig selects the database. The dialect is inferred from the DSN.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JWTConfig configures session token signing.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LoggingConfig configures logrus output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
	JSON       bool   `yaml:"json"`
}

// LedgerConfig configures voucher issuance.
type LedgerConfig struct {
	CodePrefix     string        `yaml:"code-prefix"`
	CodeStyle      string        `yaml:"code-style"` // "phone" or "random".
	ValidityDays   int           `yaml:"validity-days"`
	CurrencySymbol string        `yaml:"currency-symbol"`
	Contact        ContactConfig `yaml:"contact"`
	LegacyHashSalt string        `yaml:"legacy-hash-salt"`
}

// ContactConfig describes the accepted recipient number format.
type ContactConfig struct {
	CountryCode    string `yaml:"country-code"`
	NationalDigits int    `yaml:"national-digits"`
}

// NotifyConfig selects the notification sender.
type NotifyConfig struct {
	Driver string       `yaml:"driver"` // "log" or "twilio".
	Twilio TwilioConfig `yaml:"twilio"`
}

// TwilioConfig holds WhatsApp delivery credentials.
type TwilioConfig struct {
	AccountSID string `yaml:"account-sid"`
	AuthToken  string `yaml:"auth-token"`
	From       string        `yaml:"from"`
	Timeout    time.Duration `yaml:"timeout"` // Per-message API timeout.
}

// EventsConfig configures voucher lifecycle event publishing.
type EventsConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig configures the Kafka publisher. Publishing is disabled without brokers.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SessionsConfig selects the session store.
type SessionsConfig struct {
	Store         string        `yaml:"store"` // "db" or "redis".
	TTL           time.Duration `yaml:"ttl"`
	BreakGlassTTL time.Duration `yaml:"break-glass-ttl"`
	Redis         RedisConfig   `yaml:"redis"`
}

// RedisConfig configures the redis session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// BootstrapConfig describes the administrator provisioned on first deployment.
type BootstrapConfig struct {
	AdminID       string  `yaml:"admin-id"`
	AdminPassword string  `yaml:"admin-password"`
	AdminBalance  float64 `yaml:"admin-balance"`
	AdminLocation string  `yaml:"admin-location"`
}

// BreakGlassConfig toggles the break-glass login.
type BreakGlassConfig struct {
	Enabled bool   `yaml:"enabled"`
	Issuer  string `yaml:"issuer"`
}

// ResolveConfigPath picks the config path from the flag value, the environment or the default.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return filepath.Clean(trimmed)
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return filepath.Clean(env)
	}
	return DefaultConfigPath
}

// ConfigExists reports whether a config file is present at path.
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the YAML file at path (missing files yield defaults), loads .env and applies
// environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDatabaseDSN loads only the database DSN from the config at path.
func LoadDatabaseDSN(path string) (string, error) {
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	return cfg.Database.DSN, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}
	switch c.Notify.Driver {
	case "log":
	case "twilio":
		if c.Notify.Twilio.AccountSID == "" || c.Notify.Twilio.AuthToken == "" || c.Notify.Twilio.From == "" {
			return errors.New("config: twilio driver requires account-sid, auth-token and from")
		}
	default:
		return fmt.Errorf("config: unknown notify driver %q", c.Notify.Driver)
	}
	switch c.Sessions.Store {
	case "db":
	case "redis":
		if strings.TrimSpace(c.Sessions.Redis.Addr) == "" {
			return errors.New("config: redis session store requires sessions.redis.addr")
		}
	default:
		return fmt.Errorf("config: unknown session store %q", c.Sessions.Store)
	}
	switch c.Ledger.CodeStyle {
	case "phone", "random":
	default:
		return fmt.Errorf("config: unknown code style %q", c.Ledger.CodeStyle)
	}
	return nil
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnv overlays secrets and deployment specific values from the environment.
func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Database.DSN, EnvDatabaseDSN)
	setString(&cfg.JWT.Secret, EnvJWTSecret)
	setString(&cfg.Bootstrap.AdminPassword, EnvAdminPassword)
	setString(&cfg.Notify.Twilio.AccountSID, EnvTwilioSID)
	setString(&cfg.Notify.Twilio.AuthToken, EnvTwilioToken)
	setString(&cfg.Ledger.LegacyHashSalt, EnvLegacyHashSalt)
	setString(&cfg.Sessions.Redis.Password, EnvRedisPassword)
	if brokers := strings.TrimSpace(os.Getenv(EnvKafkaBrokerList)); brokers != "" {
		cfg.Events.Kafka.Brokers = splitList(brokers)
	}
}

// applyDefaults fills zero values.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		cfg.Database.DSN = DefaultDatabaseDSN
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = DefaultSessionTTL
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = 50
	}
	if cfg.Logging.MaxBackups <= 0 {
		cfg.Logging.MaxBackups = 5
	}
	if cfg.Logging.MaxAgeDays <= 0 {
		cfg.Logging.MaxAgeDays = 30
	}
	if cfg.Ledger.CodePrefix == "" {
		cfg.Ledger.CodePrefix = DefaultCodePrefix
	}
	if cfg.Ledger.CodeStyle == "" {
		cfg.Ledger.CodeStyle = "phone"
	}
	if cfg.Ledger.ValidityDays <= 0 {
		cfg.Ledger.ValidityDays = DefaultValidityDays
	}
	if cfg.Ledger.CurrencySymbol == "" {
		cfg.Ledger.CurrencySymbol = "R"
	}
	if cfg.Ledger.Contact.CountryCode == "" {
		cfg.Ledger.Contact.CountryCode = "27"
	}
	if cfg.Ledger.Contact.NationalDigits <= 0 {
		cfg.Ledger.Contact.NationalDigits = 9
	}
	if cfg.Notify.Driver == "" {
		cfg.Notify.Driver = "log"
	}
	if cfg.Notify.Twilio.From == "" {
		cfg.Notify.Twilio.From = "whatsapp:+14155238886"
	}
	if cfg.Events.Kafka.Topic == "" {
		cfg.Events.Kafka.Topic = "cashclear.vouchers"
	}
	if cfg.Sessions.Store == "" {
		cfg.Sessions.Store = "db"
	}
	if cfg.Sessions.TTL <= 0 {
		cfg.Sessions.TTL = cfg.JWT.Expiry
	}
	if cfg.Sessions.BreakGlassTTL <= 0 {
		cfg.Sessions.BreakGlassTTL = DefaultBreakGlassTTL
	}
	if cfg.Sessions.Redis.Prefix == "" {
		cfg.Sessions.Redis.Prefix = "cashclear:session:"
	}
	if cfg.Bootstrap.AdminID == "" {
		cfg.Bootstrap.AdminID = "CC-ADMIN"
	}
	if cfg.Bootstrap.AdminLocation == "" {
		cfg.Bootstrap.AdminLocation = "Benoni HQ"
	}
	if cfg.BreakGlass.Issuer == "" {
		cfg.BreakGlass.Issuer = "CASHCLEAR"
	}
}

// splitList splits a comma separated list, dropping blanks.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
