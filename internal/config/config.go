// Package config holds the server settings. Every flag takes its default from
// the environment so the binary runs unchanged in a container.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

const defaultSQLiteDSN = "library.db"

type Config struct {
	HTTPAddr string
	GRPCAddr string

	Store         string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	LogFormat string
	LogLevel  string
}

// FromEnv builds the defaults, overridden by LIBRARY_* variables. PORT sets
// the HTTP port when LIBRARY_HTTP_ADDR is unset.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Config{
		HTTPAddr:        ":8080",
		GRPCAddr:        ":50051",
		Store:           StoreMemory,
		RedisAddr:       "localhost:6379",
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		LogFormat:       "text",
		LogLevel:        "info",
	}

	if port := getenv("PORT"); port != "" {
		c.HTTPAddr = ":" + port
	}
	setString(&c.HTTPAddr, getenv("LIBRARY_HTTP_ADDR"))
	setString(&c.GRPCAddr, getenv("LIBRARY_GRPC_ADDR"))
	setString(&c.Store, getenv("LIBRARY_STORE"))
	setString(&c.DSN, getenv("LIBRARY_DSN"))
	setString(&c.RedisAddr, getenv("LIBRARY_REDIS_ADDR"))
	setString(&c.RedisPassword, getenv("LIBRARY_REDIS_PASSWORD"))
	setString(&c.LogFormat, getenv("LIBRARY_LOG_FORMAT"))
	setString(&c.LogLevel, getenv("LIBRARY_LOG_LEVEL"))

	var errs []error
	if v := getenv("LIBRARY_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LIBRARY_REDIS_DB: %w", err))
		}
		c.RedisDB = n
	}
	if v := getenv("LIBRARY_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LIBRARY_REQUEST_TIMEOUT: %w", err))
		}
		c.RequestTimeout = d
	}
	if v := getenv("LIBRARY_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LIBRARY_SHUTDOWN_TIMEOUT: %w", err))
		}
		c.ShutdownTimeout = d
	}
	return c, errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// BindFlags registers one flag per field, defaulting to the current values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.HTTPAddr, "http-addr", c.HTTPAddr, "HTTP listen address")
	fs.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "gRPC listen address, empty to disable")
	fs.StringVar(&c.Store, "store", c.Store, "document store: memory, redis, mysql, postgres or sqlite")
	fs.StringVar(&c.DSN, "dsn", c.DSN, "data source name for the SQL stores")
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "Redis address")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "per-request timeout")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
}

func (c Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreMemory, StoreRedis, StoreSQLite:
	case StoreMySQL, StorePostgres:
		if c.DSN == "" {
			errs = append(errs, fmt.Errorf("store %s needs --dsn", c.Store))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("redis address is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// SQLiteDSN returns the configured DSN or a file in the working directory.
func (c Config) SQLiteDSN() string {
	if c.DSN == "" {
		return defaultSQLiteDSN
	}
	return c.DSN
}

// Logger builds the slog logger described by LogFormat and LogLevel.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
