package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "fieldbook/libs/config"
)

// Config defines mock gateway configuration.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	JWT    JWTConfig    `yaml:"jwt"`
	Seed   SeedConfig   `yaml:"seed"`
	Bcrypt BcryptConfig `yaml:"bcrypt"`
}

// HTTPConfig for the listener.
type HTTPConfig struct {
	Port           string `yaml:"port" env:"MOCK_GATEWAY_HTTP_PORT"`
	AllowedOrigins string `yaml:"allowedOrigins" env:"MOCK_GATEWAY_CORS_ORIGINS"`
}

// JWTConfig for issued bearer tokens.
type JWTConfig struct {
	Secret string        `yaml:"secret" env:"MOCK_GATEWAY_JWT_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"MOCK_GATEWAY_JWT_TTL"`
}

// SeedConfig controls initial data.
type SeedConfig struct {
	AdminEmail    string `yaml:"adminEmail" env:"MOCK_GATEWAY_ADMIN_EMAIL"`
	AdminPassword string `yaml:"adminPassword" env:"MOCK_GATEWAY_ADMIN_PASSWORD"`
	Fields        bool   `yaml:"fields" env:"MOCK_GATEWAY_SEED_FIELDS"`
}

// BcryptConfig tunes password hashing.
type BcryptConfig struct {
	Cost int `yaml:"cost" env:"MOCK_GATEWAY_BCRYPT_COST"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{Port: "8000"},
		JWT:  JWTConfig{TTL: 30 * time.Minute},
		Seed: SeedConfig{Fields: true},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if cfg.Seed.AdminEmail != "" && cfg.Seed.AdminPassword == "" {
		return nil, errors.New("config: admin password required when admin email is set")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8000"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// Origins splits the comma separated CORS origin list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.HTTP.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
