package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "fieldbook/libs/config"
	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/session"
	"fieldbook/services/portal/internal/storage"
)

// DefaultBaseURL is used when FIELDBOOK_API_URL is not set.
const DefaultBaseURL = "http://localhost"

// Config defines the portal client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig locates the backend services.
type APIConfig struct {
	BaseURL         string `yaml:"baseUrl" env:"FIELDBOOK_API_URL"`
	AuthURL         string `yaml:"authUrl" env:"FIELDBOOK_AUTH_URL"`
	FieldsURL       string `yaml:"fieldsUrl" env:"FIELDBOOK_FIELDS_URL"`
	ReservationsURL string `yaml:"reservationsUrl" env:"FIELDBOOK_RESERVATIONS_URL"`
	RolesURL        string `yaml:"rolesUrl" env:"FIELDBOOK_ROLES_URL"`
	DashboardURL    string `yaml:"dashboardUrl" env:"FIELDBOOK_DASHBOARD_URL"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds" env:"FIELDBOOK_HTTP_TIMEOUT"`
}

// SessionConfig selects where the session is persisted.
type SessionConfig struct {
	Driver        string      `yaml:"driver" env:"FIELDBOOK_SESSION_DRIVER"`
	Profile       string      `yaml:"profile" env:"FIELDBOOK_PROFILE"`
	Path          string      `yaml:"path" env:"FIELDBOOK_SESSION_FILE"`
	DSN           string      `yaml:"dsn" env:"FIELDBOOK_SESSION_DSN"`
	RestorePolicy string      `yaml:"restorePolicy" env:"FIELDBOOK_RESTORE_POLICY"`
	Redis         RedisConfig `yaml:"redis"`
}

// RedisConfig for the redis session driver.
type RedisConfig struct {
	Addr       string `yaml:"addr" env:"FIELDBOOK_REDIS_ADDR"`
	Password   string `yaml:"password" env:"FIELDBOOK_REDIS_PASSWORD"`
	DB         int    `yaml:"db" env:"FIELDBOOK_REDIS_DB"`
	TTLSeconds int    `yaml:"ttlSeconds" env:"FIELDBOOK_REDIS_TTL"`
}

// LogConfig controls the CLI logger; logs go to stderr.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"FIELDBOOK_LOG_FORMAT"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Session: SessionConfig{
			Driver:        storage.DriverFile,
			Profile:       storage.DefaultProfile,
			RestorePolicy: string(session.RestoreOptimistic),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api base url required")
	}
	if _, err := session.ParseRestorePolicy(c.Session.RestorePolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Session.Driver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverSQLite:
	case storage.DriverRedis:
		if strings.TrimSpace(c.Session.Redis.Addr) == "" {
			return fmt.Errorf("config: redis session driver requires FIELDBOOK_REDIS_ADDR")
		}
	case storage.DriverPostgres:
		if strings.TrimSpace(c.Session.DSN) == "" {
			return fmt.Errorf("config: postgres session driver requires FIELDBOOK_SESSION_DSN")
		}
	default:
		return fmt.Errorf("config: unknown session driver %q", c.Session.Driver)
	}
	return nil
}

// Endpoints converts API settings to client endpoints.
func (c *Config) Endpoints() clients.Endpoints {
	return clients.Endpoints{
		BaseURL:         c.API.BaseURL,
		AuthURL:         c.API.AuthURL,
		FieldsURL:       c.API.FieldsURL,
		ReservationsURL: c.API.ReservationsURL,
		RolesURL:        c.API.RolesURL,
		DashboardURL:    c.API.DashboardURL,
	}
}

// HTTPTimeout returns http client timeout; zero disables it.
func (c *Config) HTTPTimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Storage converts session settings to a storage config.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Driver:  c.Session.Driver,
		Profile: c.Session.Profile,
		Path:    c.Session.Path,
		DSN:     c.Session.DSN,
		Redis: storage.RedisConfig{
			Addr:     c.Session.Redis.Addr,
			Password: c.Session.Redis.Password,
			DB:       c.Session.Redis.DB,
			TTL:      time.Duration(c.Session.Redis.TTLSeconds) * time.Second,
		},
	}
}

// RestorePolicy returns the parsed policy; Validate guarantees it parses.
func (c *Config) RestorePolicy() session.RestorePolicy {
	policy, _ := session.ParseRestorePolicy(c.Session.RestorePolicy)
	return policy
}
