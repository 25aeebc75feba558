package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-social/pkg/simplesocial"
	redissink "github.com/tendant/simple-social/pkg/simplesocial/eventsink/redis"
	"github.com/tendant/simple-social/pkg/simplesocial/repo/memory"
	repopg "github.com/tendant/simple-social/pkg/simplesocial/repo/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		DBSchema:           "simplesocial",
		EventChannelPrefix: redissink.DefaultPrefix,
		EnableEventLogging: true,
		EnableMetrics:      true,
		MaxBodyBytes:       1 << 20,
		RequestTimeout:     30 * time.Second,
	}
}

// ServerConfig represents server configuration for the simple-social service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"
	DBSchema     string // Postgres schema to use (default: simplesocial)

	// Event configuration
	RedisURL           string // empty disables publishing
	EventChannelPrefix string
	EnableEventLogging bool

	// Server options
	EnableMetrics      bool
	SeedPosts          int
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	RequestTimeout     time.Duration
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.RedisURL != "" {
		if _, err := redis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	}

	if c.SeedPosts < 0 {
		return errors.New("seed_posts cannot be negative")
	}
	if c.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes cannot be negative")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout cannot be negative")
	}

	return nil
}

// BuildService creates a Service instance from the server configuration. Extra
// sinks receive every event next to the configured ones. The returned cleanup
// releases database and Redis connections.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger, extra ...simplesocial.EventSink) (simplesocial.Service, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, closeStore, err := c.BuildStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build store: %w", err)
	}

	sink, closeSink, err := c.BuildEventSink(ctx, logger, extra...)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("failed to build event sink: %w", err)
	}

	cleanup := func() {
		closeSink()
		closeStore()
	}

	svc, err := simplesocial.New(
		simplesocial.WithStore(store),
		simplesocial.WithEventSink(sink),
		simplesocial.WithLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// BuildStore creates a Store based on the configuration. A postgres store starts
// from empty tables on every call.
func (c *ServerConfig) BuildStore(ctx context.Context) (simplesocial.Store, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil
	case "postgres":
		pool, err := c.newPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		if c.DBSchema != "" {
			if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{c.DBSchema}.Sanitize()); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to create schema %s: %w", c.DBSchema, err)
			}
		}
		store := repopg.NewWithPool(pool)
		if err := store.Reset(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) newPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DatabaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	// Optionally set search_path for the connection
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// BuildEventSink combines the logging sink, the Redis publisher and any extra
// sinks into one. Redis is pinged once so a bad address fails at startup.
func (c *ServerConfig) BuildEventSink(ctx context.Context, logger *slog.Logger, extra ...simplesocial.EventSink) (simplesocial.EventSink, func(), error) {
	sinks := append([]simplesocial.EventSink{}, extra...)
	cleanup := func() {}

	if c.EnableEventLogging {
		sinks = append(sinks, simplesocial.NewLoggingEventSink(logger))
	}

	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}

		sinks = append(sinks, redissink.NewPublisher(rdb, c.EventChannelPrefix).Sink())
		cleanup = func() { _ = rdb.Close() }
	}

	return simplesocial.NewMultiEventSink(sinks...), cleanup, nil
}
