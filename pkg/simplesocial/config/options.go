package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithRedis enables event publishing to Redis. An empty prefix keeps the current one.
func WithRedis(url, channelPrefix string) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			return fmt.Errorf("redis URL cannot be empty")
		}
		c.RedisURL = url
		if channelPrefix != "" {
			c.EventChannelPrefix = channelPrefix
		}
		return nil
	}
}

// WithEventLogging toggles the logging event sink
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithMetrics toggles the metrics middleware and endpoint
func WithMetrics(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableMetrics = enabled
		return nil
	}
}

// WithSeedPosts sets how many demo posts are created at startup
func WithSeedPosts(n int) Option {
	return func(c *ServerConfig) error {
		if n < 0 {
			return fmt.Errorf("seed posts cannot be negative, got: %d", n)
		}
		c.SeedPosts = n
		return nil
	}
}

// WithCORSOrigins sets the allowed CORS origins
func WithCORSOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.CORSAllowedOrigins = origins
		return nil
	}
}

// WithMaxBodyBytes limits request body size; 0 disables the limit
func WithMaxBodyBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n < 0 {
			return fmt.Errorf("max body bytes cannot be negative, got: %d", n)
		}
		c.MaxBodyBytes = n
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout; 0 disables it
func WithRequestTimeout(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d < 0 {
			return fmt.Errorf("request timeout cannot be negative, got: %s", d)
		}
		c.RequestTimeout = d
		return nil
	}
}
