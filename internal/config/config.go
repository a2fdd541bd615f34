// Package config loads service configuration from an optional config.yaml
// and CUSTOMFIELDS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"customfields/internal/domain/value"
)

const envPrefix = "CUSTOMFIELDS"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config keys. Each maps to CUSTOMFIELDS_<KEY> in the environment.
const (
	keyPort            = "app_port"
	keyEnv             = "app_env"
	keyLogLevel        = "log_level"
	keyDriver          = "storage_driver"
	keyDatabaseURL     = "database_url"
	keyMaxConns        = "db_max_conns"
	keyMinConns        = "db_min_conns"
	keyConnLifetime    = "db_conn_lifetime"
	keyStmtTimeout     = "db_statement_timeout"
	keySerializable    = "db_serializable"
	keyUniqueScope     = "unique_scope"
	keyMaxBatchSize    = "max_batch_size"
	keyShutdownTimeout = "shutdown_timeout"
)

// Config is the resolved service configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	StorageDriver string
	DatabaseURL   string
	MaxConns      int32
	MinConns      int32
	ConnLifetime  time.Duration

	// StatementTimeout bounds every statement of a transaction; zero disables it.
	StatementTimeout time.Duration

	// Serializable runs write transactions at SERIALIZABLE so concurrent
	// submissions of the same unique value cannot both commit.
	Serializable bool

	UniqueScope     value.UniqueScope
	MaxBatchSize    int
	ShutdownTimeout time.Duration
}

// Development reports whether the service runs in development mode.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration. configFile may be empty, in which case
// config.yaml is looked up in the working directory; a missing file is
// not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, "8080")
	v.SetDefault(keyEnv, "development")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyDriver, DriverPostgres)
	v.SetDefault(keyMaxConns, 20)
	v.SetDefault(keyMinConns, 2)
	v.SetDefault(keyConnLifetime, time.Hour)
	v.SetDefault(keyStmtTimeout, 30*time.Second)
	v.SetDefault(keySerializable, false)
	v.SetDefault(keyUniqueScope, string(value.ScopeField))
	v.SetDefault(keyMaxBatchSize, 200)
	v.SetDefault(keyShutdownTimeout, 30*time.Second)
}

func fromViper(v *viper.Viper) (*Config, error) {
	scope, err := value.ParseUniqueScope(v.GetString(keyUniqueScope))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:             v.GetString(keyPort),
		Env:              v.GetString(keyEnv),
		LogLevel:         v.GetString(keyLogLevel),
		StorageDriver:    strings.ToLower(v.GetString(keyDriver)),
		DatabaseURL:      v.GetString(keyDatabaseURL),
		MaxConns:         v.GetInt32(keyMaxConns),
		MinConns:         v.GetInt32(keyMinConns),
		ConnLifetime:     v.GetDuration(keyConnLifetime),
		StatementTimeout: v.GetDuration(keyStmtTimeout),
		Serializable:     v.GetBool(keySerializable),
		UniqueScope:      scope,
		MaxBatchSize:     v.GetInt(keyMaxBatchSize),
		ShutdownTimeout:  v.GetDuration(keyShutdownTimeout),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%s_DATABASE_URL is required for the postgres driver", envPrefix)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("max batch size must not be negative")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("db_min_conns %d exceeds db_max_conns %d", c.MinConns, c.MaxConns)
	}
	return nil
}
