package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"LOLAPI_HTTP_ADDR"        env-default:":8080"`
	SyncAddr        string        `yaml:"sync_addr"        env:"LOLAPI_SYNC_ADDR"        env-default:":7070"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"LOLAPI_SHUTDOWN_TIMEOUT" env-default:"10s"`
	TrustedProxies  []string      `yaml:"trusted_proxies"  env:"LOLAPI_TRUSTED_PROXIES"  env-default:"127.0.0.1"`
}

type DatabaseConfig struct {
	// Path of the sqlite file. Empty means ~/.lolapi/data.db.
	Path string `yaml:"path" env:"LOLAPI_DB_PATH"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" env:"LOLAPI_JWT_SECRET" env-default:"dev-secret-change-me"`
	JWTIssuer   string        `yaml:"jwt_issuer" env:"LOLAPI_JWT_ISSUER" env-default:"lolapi"`
	JWTDuration time.Duration `yaml:"jwt_ttl"    env:"LOLAPI_JWT_TTL"    env-default:"24h"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOLAPI_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOLAPI_LOG_FORMAT" env-default:"text"`
}

const (
	StatusCodesLegacy     = "legacy"
	StatusCodesNormalized = "normalized"
)

// APIConfig selects the review endpoints' status codes. "legacy" answers exactly
// like the first public client expects (204/200 on create, 400 for a missing
// view, 500 on ownership violations), "normalized" uses 201, 404 and 403.
type APIConfig struct {
	StatusCodes string `yaml:"status_codes" env:"LOLAPI_STATUS_CODES" env-default:"legacy"`
}

func (a APIConfig) LegacyStatusCodes() bool {
	return a.StatusCodes != StatusCodesNormalized
}

// LoadConfig reads LOLAPI_CONFIG (yaml) when it is set, otherwise env + defaults.
// Env always wins over the file.
func LoadConfig() (*Config, error) {
	var cfg Config

	if path := os.Getenv("LOLAPI_CONFIG"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDBPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// MustLoadConfig is the command-line variant of LoadConfig.
func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.JWTDuration <= 0 {
		return fmt.Errorf("auth.jwt_ttl must be > 0 (got %s)", c.Auth.JWTDuration)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.API.StatusCodes {
	case StatusCodesLegacy, StatusCodesNormalized:
	default:
		return fmt.Errorf("api.status_codes must be %q or %q (got %q)", StatusCodesLegacy, StatusCodesNormalized, c.API.StatusCodes)
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".lolapi", "data.db")
}
