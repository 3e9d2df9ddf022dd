// Package config loads the service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override. Keys are upper-cased
// with dots replaced by underscores, so SIMULADOR_EVENTHUB_CONNECTIONSTRING
// overrides eventHub.connectionString.
const EnvPrefix = "SIMULADOR"

// DefaultConfigFile is used when no -config flag is given.
const DefaultConfigFile = "config.yaml"

// DriverMemory selects the built-in product table instead of a database.
const DriverMemory = "memory"

// Configuration holds all configuration for the simulator.
type Configuration struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	EventHub  EventHubConfig  `mapstructure:"eventHub"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP listener parameters.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabaseConfig describes the product database connection.
type DatabaseConfig struct {
	Driver           string `mapstructure:"driver"`
	Host             string `mapstructure:"host"`
	Database         string `mapstructure:"database"`
	User             string `mapstructure:"user"`
	Password         string `mapstructure:"password"`
	ConnectionString string `mapstructure:"connectionString"`
	Seed             bool   `mapstructure:"seed"`
}

// EventHubConfig describes the stream simulation envelopes are published to.
type EventHubConfig struct {
	ConnectionString string `mapstructure:"connectionString"`
	Name             string `mapstructure:"name"`
	MaxLen           int64  `mapstructure:"maxLen"`
	MaxRetries       int    `mapstructure:"maxRetries"`
	ConsumerGroup    string `mapstructure:"consumerGroup"`
}

// CacheConfig selects the product catalog cache. An empty address selects
// the in-memory cache.
type CacheConfig struct {
	Address string        `mapstructure:"address"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// CatalogConfig controls the periodic product catalog refresh.
type CatalogConfig struct {
	RefreshCron string `mapstructure:"refreshCron"`
}

// RateLimitConfig is the per-client token bucket applied to /simulacao.
type RateLimitConfig struct {
	Capacity int           `mapstructure:"capacity"`
	Refill   time.Duration `mapstructure:"refill"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`      // debug, info, warn, error
	Format     string `mapstructure:"format"`     // json, console
	OutputFile string `mapstructure:"outputFile"` // optional file output
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 15*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "")
	v.SetDefault("database.database", "simulador.db")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.connectionString", "")
	v.SetDefault("database.seed", false)

	v.SetDefault("eventHub.connectionString", "")
	v.SetDefault("eventHub.name", "simulacoes")
	v.SetDefault("eventHub.maxLen", 10000)
	v.SetDefault("eventHub.maxRetries", 3)
	v.SetDefault("eventHub.consumerGroup", "$Default")

	v.SetDefault("cache.address", "")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("catalog.refreshCron", "@every 5m")

	v.SetDefault("rateLimit.capacity", 5)
	v.SetDefault("rateLimit.refill", time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
}

// LoadConfiguration reads the YAML file at configPath and applies environment
// overrides. A missing file is not an error: defaults and environment apply.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate reports configuration values that would prevent the service from
// starting.
func (c *Configuration) Validate() error {
	if c.Database.Driver == "" {
		return errors.New("database.driver must be set")
	}
	if c.Database.Driver != DriverMemory && c.Database.DSN() == "" {
		return errors.New("database.database or database.connectionString must be set")
	}
	if c.EventHub.Name == "" {
		return errors.New("eventHub.name must be set")
	}
	if c.RateLimit.Capacity <= 0 {
		return fmt.Errorf("rateLimit.capacity must be positive, got %d", c.RateLimit.Capacity)
	}
	if c.RateLimit.Refill <= 0 {
		return fmt.Errorf("rateLimit.refill must be positive, got %s", c.RateLimit.Refill)
	}
	return nil
}

// DSN returns the data source name handed to database/sql. An explicit
// connection string wins; otherwise one is composed from the discrete fields.
// SQLite only needs the database file.
func (d DatabaseConfig) DSN() string {
	if d.ConnectionString != "" {
		return d.ConnectionString
	}
	if d.Driver == "sqlite" || d.Host == "" {
		return d.Database
	}

	parts := []string{"server=" + d.Host}
	if d.Database != "" {
		parts = append(parts, "database="+d.Database)
	}
	if d.User != "" {
		parts = append(parts, "user id="+d.User)
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}
	return strings.Join(parts, ";")
}
