package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	libdb "fieldbook/libs/db"
	libredis "fieldbook/libs/redis"
)

// Storage is a string key/value store scoped to one profile, the persisted half of a session.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Supported backend drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultProfile namespaces keys when no profile is configured.
const DefaultProfile = "default"

// Config selects and parameterizes a backend.
type Config struct {
	Driver  string
	Profile string
	Path    string
	DSN     string
	Redis   RedisConfig
}

// RedisConfig parameters of the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Open returns the configured backend and a function releasing its resources.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Storage, func() error, error) {
	profile := strings.TrimSpace(cfg.Profile)
	if profile == "" {
		profile = DefaultProfile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverMemory:
		return NewMemoryStore(), noop, nil
	case "", DriverFile:
		path := cfg.Path
		if path == "" {
			var err error
			if path, err = DefaultFilePath(); err != nil {
				return nil, nil, err
			}
		}
		logger.Debug("using file session storage", zap.String("path", path), zap.String("profile", profile))
		return NewFileStore(path, profile), noop, nil
	case DriverRedis:
		client, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: connect redis: %w", err)
		}
		logger.Debug("using redis session storage", zap.String("addr", cfg.Redis.Addr), zap.String("profile", profile))
		return NewRedisStore(client, profile, cfg.Redis.TTL), client.Close, nil
	case DriverPostgres:
		sqlDB, err := libdb.NewPostgresDB(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		return openSQL(ctx, sqlDB, libdb.DriverPostgres, profile, logger)
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Path
		}
		sqlDB, err := libdb.NewSQLiteDB(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		return openSQL(ctx, sqlDB, libdb.DriverSQLite, profile, logger)
	default:
		return nil, nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

func openSQL(ctx context.Context, sqlDB *sql.DB, driver, profile string, logger *zap.Logger) (Storage, func() error, error) {
	store, err := NewSQLStore(ctx, sqlDB, driver, profile)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	logger.Debug("using sql session storage", zap.String("driver", driver), zap.String("profile", profile))
	return store, sqlDB.Close, nil
}

// DefaultFilePath is $XDG_CONFIG_HOME/fieldbook/session.yaml (or the OS equivalent).
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.New("storage: cannot resolve config dir, set a session file path")
	}
	return filepath.Join(dir, "fieldbook", "session.yaml"), nil
}
