package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/claude/liftlog/internal/retry"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	Photos    PhotosConfig    `yaml:"photos"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// StoreConfig tunes how store calls are retried. Durations use
// time.ParseDuration syntax ("5s", "100ms").
type StoreConfig struct {
	Timeout         string `yaml:"timeout"`
	MaxAttempts     int    `yaml:"max_attempts"`
	InitialInterval string `yaml:"initial_interval"`
}

type PhotosConfig struct {
	Dir string `yaml:"dir"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns the connection string for the configured driver: a file path
// for SQLite, a postgres:// URL otherwise.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + sslmode,
	}
	return u.String()
}

// MigrationURL returns the golang-migrate database URL.
func (d DatabaseConfig) MigrationURL() string {
	if d.Driver == DriverSQLite {
		return "sqlite://" + d.Path
	}
	return d.DSN()
}

// Policy converts the store settings into a retry policy. Unset fields keep
// the defaults.
func (s StoreConfig) Policy() (retry.Policy, error) {
	p := retry.DefaultPolicy
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return p, fmt.Errorf("store.timeout: %w", err)
		}
		p.Timeout = d
	}
	if s.InitialInterval != "" {
		d, err := time.ParseDuration(s.InitialInterval)
		if err != nil {
			return p, fmt.Errorf("store.initial_interval: %w", err)
		}
		p.InitialInterval = d
	}
	if s.MaxAttempts != 0 {
		p.MaxAttempts = s.MaxAttempts
	}
	return p, nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT,
//	LIFTLOG_DB_DRIVER, LIFTLOG_DB_PATH,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_STORE_TIMEOUT, LIFTLOG_STORE_MAX_ATTEMPTS,
//	LIFTLOG_PHOTOS_DIR, LIFTLOG_AUTH_API_KEY,
//	LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: DriverSQLite},
		Tailscale: TailscaleConfig{
			Hostname: "liftlog",
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LIFTLOG_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LIFTLOG_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTLOG_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTLOG_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTLOG_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTLOG_STORE_TIMEOUT"); v != "" {
		cfg.Store.Timeout = v
	}
	if v := os.Getenv("LIFTLOG_STORE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Store.MaxAttempts = n
		}
	}
	if v := os.Getenv("LIFTLOG_PHOTOS_DIR"); v != "" {
		cfg.Photos.Dir = v
	}
	if v := os.Getenv("LIFTLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTLOG_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("LIFTLOG_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if _, err := c.Store.Policy(); err != nil {
		return err
	}
	if c.Store.MaxAttempts < 0 {
		return fmt.Errorf("store.max_attempts must not be negative")
	}
	if c.Photos.Dir == "" {
		return fmt.Errorf("photos.dir is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
