package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/listatree/hypothesis/internal/backend"
)

// DatabaseFileEnv names a sqlite file to keep examples in when no backend
// is configured explicitly
const DatabaseFileEnv = "EXAMPLEDB_DATABASE_FILE"

// Config represents the exampledb configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
}

// BackendConfig represents example store configuration
type BackendConfig struct {
	Type   string `mapstructure:"type"`
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url"`
	Table  string `mapstructure:"table"`
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load loads the configuration from exampledb.yaml in the working directory
// and EXAMPLEDB_* environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty file searches
// the working directory.
func LoadFile(file string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("backend.type", "")
	v.SetDefault("backend.driver", "")
	v.SetDefault("backend.path", "")
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.table", backend.DefaultTable)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "exampledb:")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", "localhost:8420")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("exampledb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("EXAMPLEDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDatabaseFile(&config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDatabaseFile picks the backend when none was configured: a sqlite
// file named by EXAMPLEDB_DATABASE_FILE, otherwise memory
func applyDatabaseFile(cfg *Config) {
	if cfg.Backend.Type != "" {
		return
	}
	if file := os.Getenv(DatabaseFileEnv); file != "" {
		cfg.Backend.Type = backend.TypeSQLite
		if cfg.Backend.Path == "" {
			cfg.Backend.Path = file
		}
		return
	}
	cfg.Backend.Type = backend.TypeMemory
}

// BackendConfig converts the configuration into backend.Open arguments
func (c *Config) BackendConfig() backend.Config {
	return backend.Config{
		Type:   c.Backend.Type,
		Driver: c.Backend.Driver,
		Path:   c.Backend.Path,
		URL:    c.Backend.URL,
		Table:  c.Backend.Table,
		Redis: backend.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// NewLogger builds a development logger at the configured level
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel())
	return zc.Build()
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Backend.Type {
	case backend.TypeMemory, backend.TypeRedis:
	case backend.TypeSQLite:
		if cfg.Backend.Path == "" {
			return fmt.Errorf("backend.path is required for the sqlite backend")
		}
	case backend.TypePostgres:
		if cfg.Backend.URL == "" {
			return fmt.Errorf("backend.url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("backend.type must be one of memory, sqlite, postgres, redis, got: %s", cfg.Backend.Type)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level is invalid: %s", cfg.Log.Level)
	}
	return nil
}
