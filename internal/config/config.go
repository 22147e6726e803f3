package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/expfit/pkg"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// storage
	StorePath      string `toml:"store_path"`
	PasswordDigest string `toml:"password_digest"`
	// sessions
	RedisHost            string   `toml:"redis_host"`
	RedisPort            string   `toml:"redis_port"`
	SessionTTLHours      int      `toml:"session_ttl_hours"`
	LoginRateLimitPerMin int      `toml:"login_rate_limit_per_min"`
	CorsAllowedOrigins   []string `toml:"cors_allowed_origins"`
	// peers allowed to set X-Real-Ip / X-Forwarded-For, ips or cidrs
	TrustedProxies       []string `toml:"trusted_proxies"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	SentryEnabled         bool   `toml:"sentry_enabled"`
}

// Secrets are read from the environment, never from the config file.
type Secrets struct {
	RedisPassword    string `env:"EXP_REDIS_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED" envDefault:"false"`
	OtelServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"exp-fitness"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the config for env from the toml file at path.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] section in config file [%s]", env, path)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config [%s]: %w", env, err)
	}

	return cfg, nil
}

// LoadSecrets loads .env files, if any, then parses the environment.
func LoadSecrets(envFiles ...string) (*Secrets, error) {
	// missing .env files are fine, the variables may be set already
	_ = godotenv.Load(envFiles...)

	secrets := &Secrets{}
	if err := env.Parse(secrets); err != nil {
		return nil, fmt.Errorf("parse secrets from env: %w", err)
	}
	return secrets, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.StorePath == "" {
		c.StorePath = "user_data.json"
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.LoginRateLimitPerMin <= 0 {
		c.LoginRateLimitPerMin = 10
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RedisHost == "" || c.RedisPort == "" {
		errs = append(errs, errors.New("redis host and port must be set"))
	}
	switch strings.ToLower(c.PasswordDigest) {
	case "", "sha256", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("unknown password digest [%s]", c.PasswordDigest))
	}
	if _, err := c.ParsedTrustedProxies(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) ParsedTrustedProxies() (pkg.TrustedProxies, error) {
	return pkg.ParseTrustedProxies(c.TrustedProxies)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
