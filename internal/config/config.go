package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gambitsports/gambit-admin/internal/mail"
	"github.com/gambitsports/gambit-admin/internal/ratelimit"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvPort         = "PORT"
	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPFrom     = "SMTP_FROM"
	EnvOTPDevMode   = "OTP_DEV_MODE"
)

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// ErrMissingJWTSecret indicates no signing secret is configured.
var ErrMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` in config file or JWT_SECRET)")

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = time.Hour

const defaultPort = 8000

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// AuthConfig holds authentication transport settings.
type AuthConfig struct {
	// AllowLegacyTokenTransport accepts tokens from cookies and query
	// parameters in addition to the Authorization header.
	AllowLegacyTokenTransport bool `yaml:"allow-legacy-token-transport"`
}

// OTPConfig selects the one-time code store backend and delivery mode.
type OTPConfig struct {
	// DevMode logs codes instead of sending email.
	DevMode       bool   `yaml:"dev-mode"`
	RedisEnabled  bool   `yaml:"redis-enabled"`
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// Config holds the resolved application configuration.
type Config struct {
	Port        int    `yaml:"port"`
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT       JWTConfig        `yaml:"jwt"`
	Auth      AuthConfig       `yaml:"auth"`
	SMTP      mail.SMTPConfig  `yaml:"smtp"`
	OTP       OTPConfig        `yaml:"otp"`
	RateLimit ratelimit.Config `yaml:"rate-limit"`
}

// DSN returns the configured database DSN, preferring the top-level field.
func (c *Config) DSN() string {
	if dsn := strings.TrimSpace(c.DatabaseDSN); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(c.Database.DSN)
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides. A missing
// file is not an error; env vars alone can carry a full configuration.
func Load(configPath string) (*Config, error) {
	cfg := &Config{Port: defaultPort, JWT: JWTConfig{Expiry: defaultJWTExpiry}}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return nil, fmt.Errorf("read config file: %w", errRead)
	}

	applyEnvOverrides(cfg)

	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultJWTExpiry
	}
	if cfg.DSN() == "" {
		return nil, ErrMissingDatabaseDSN
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil && port > 0 {
			cfg.Port = port
		}
	}
	if host := strings.TrimSpace(os.Getenv(EnvSMTPHost)); host != "" {
		cfg.SMTP.Host = host
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvSMTPPort)); portRaw != "" {
		if port, errParse := strconv.Atoi(portRaw); errParse == nil && port > 0 {
			cfg.SMTP.Port = port
		}
	}
	if username := strings.TrimSpace(os.Getenv(EnvSMTPUsername)); username != "" {
		cfg.SMTP.Username = username
	}
	if password := strings.TrimSpace(os.Getenv(EnvSMTPPassword)); password != "" {
		cfg.SMTP.Password = password
	}
	if from := strings.TrimSpace(os.Getenv(EnvSMTPFrom)); from != "" {
		cfg.SMTP.From = from
	}
	if devRaw := strings.TrimSpace(os.Getenv(EnvOTPDevMode)); devRaw != "" {
		if dev, errParse := strconv.ParseBool(devRaw); errParse == nil {
			cfg.OTP.DevMode = dev
		}
	}
}
