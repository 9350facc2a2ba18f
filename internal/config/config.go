// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is empty so variables are read by their literal names.
const envPrefix = ""

// Environment holds the deployment environment.
type Environment struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Development reports whether pretty, verbose output is wanted.
func (e Environment) Development() bool {
	return e.Env == "development"
}

// Postgres holds the PostgreSQL configuration.
type Postgres struct {
	DSN         string        `envconfig:"DATABASE_URL" required:"true"`
	MaxConns    int32         `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
	MinConns    int32         `envconfig:"POSTGRES_MIN_CONNS" default:"1"`
	MaxConnLife time.Duration `envconfig:"POSTGRES_MAX_CONN_LIFE" default:"1h"`
	MaxConnIdle time.Duration `envconfig:"POSTGRES_MAX_CONN_IDLE" default:"30m"`
}

// Redis holds the Redis configuration. An empty address disables dismissals.
type Redis struct {
	Addr         string        `envconfig:"REDIS_ADDR" default:""`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	DismissalTTL time.Duration `envconfig:"REDIS_DISMISSAL_TTL" default:"720h"`
}

// HTTP holds the HTTP server configuration.
type HTTP struct {
	Port            string        `envconfig:"APP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s"`
	Gzip            bool          `envconfig:"HTTP_GZIP" default:"true"`
}

// Auth holds token validation settings. An empty secret leaves every request
// anonymous.
type Auth struct {
	JWTSecret string `envconfig:"JWT_SECRET" default:""`
	Issuer    string `envconfig:"JWT_ISSUER" default:"dice"`
	Required  bool   `envconfig:"JWT_REQUIRED" default:"false"`
}

// Feed holds search behavior settings.
type Feed struct {
	SnapshotTTL     time.Duration `envconfig:"FEED_SNAPSHOT_TTL" default:"1m"`
	DefaultPageSize int           `envconfig:"FEED_DEFAULT_PAGE_SIZE" default:"50"`
	ListenNotify    bool          `envconfig:"FEED_LISTEN_NOTIFY" default:"true"`
}

// ServerConfig holds the API server configuration.
type ServerConfig struct {
	Environment

	HTTP
	Postgres
	Redis
	Auth
	Feed
}

// InitServerConfig reads the API server configuration.
func InitServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SeedConfig holds the seeding tool configuration.
type SeedConfig struct {
	Environment

	Postgres
}

// InitSeedConfig reads the seeding tool configuration.
func InitSeedConfig() (*SeedConfig, error) {
	var cfg SeedConfig
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
