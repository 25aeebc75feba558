package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig mirrors the supported environment variables. Values are read as
// strings so that an unset variable leaves the current setting untouched.
type envConfig struct {
	Port               string   `env:"PORT"`
	Environment        string   `env:"ENVIRONMENT"`
	DatabaseURL        string   `env:"DATABASE_URL"`
	DBSchema           string   `env:"DB_SCHEMA"`
	RedisURL           string   `env:"REDIS_URL"`
	EventChannelPrefix string   `env:"EVENT_CHANNEL_PREFIX"`
	EnableEventLogging string   `env:"ENABLE_EVENT_LOGGING"`
	EnableMetrics      string   `env:"ENABLE_METRICS"`
	SeedPosts          string   `env:"SEED_POSTS"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	MaxBodyBytes       string   `env:"MAX_BODY_BYTES"`
	RequestTimeout     string   `env:"REQUEST_TIMEOUT"`
}

// WithEnv applies environment variable overrides.
//
// Server:
//
//	PORT - Server port (default: "8080")
//	ENVIRONMENT - Runtime environment (default: "development")
//	ENABLE_METRICS - Serve GET /metrics (default: true)
//	SEED_POSTS - Number of demo posts created at startup (default: 0)
//	CORS_ALLOWED_ORIGINS - Comma separated origins (default: "*")
//	MAX_BODY_BYTES - Request body limit (default: 1048576)
//	REQUEST_TIMEOUT - Per-request timeout, e.g. "30s" (default: 30s)
//
// Database:
//
//	DATABASE_URL - "memory" for the in-memory store, or "postgres(ql)://..."
//	DB_SCHEMA - Postgres schema (default: "simplesocial")
//
// Events:
//
//	REDIS_URL - "redis://host:port/db"; publishing is disabled when unset
//	EVENT_CHANNEL_PREFIX - Channel prefix (default: "simplesocial:")
//	ENABLE_EVENT_LOGGING - Log every store event (default: true)
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}

		if err := applyDatabaseURL(env.DatabaseURL, c); err != nil {
			return err
		}
		if env.DBSchema != "" {
			c.DBSchema = env.DBSchema
		}

		if env.RedisURL != "" {
			c.RedisURL = env.RedisURL
		}
		if env.EventChannelPrefix != "" {
			c.EventChannelPrefix = env.EventChannelPrefix
		}

		if err := parseBool("ENABLE_EVENT_LOGGING", env.EnableEventLogging, &c.EnableEventLogging); err != nil {
			return err
		}
		if err := parseBool("ENABLE_METRICS", env.EnableMetrics, &c.EnableMetrics); err != nil {
			return err
		}

		if env.SeedPosts != "" {
			n, err := strconv.Atoi(env.SeedPosts)
			if err != nil {
				return fmt.Errorf("invalid integer for SEED_POSTS: %w", err)
			}
			c.SeedPosts = n
		}

		if origins := trimAll(env.CORSAllowedOrigins); len(origins) > 0 {
			c.CORSAllowedOrigins = origins
		}

		if env.MaxBodyBytes != "" {
			n, err := strconv.ParseInt(env.MaxBodyBytes, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer for MAX_BODY_BYTES: %w", err)
			}
			c.MaxBodyBytes = n
		}

		if env.RequestTimeout != "" {
			d, err := time.ParseDuration(env.RequestTimeout)
			if err != nil {
				return fmt.Errorf("invalid duration for REQUEST_TIMEOUT: %w", err)
			}
			c.RequestTimeout = d
		}

		return nil
	}
}

// applyDatabaseURL auto-detects the database type from the URL
func applyDatabaseURL(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "":
		return nil
	case dbURL == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
	}
	return nil
}

func parseBool(key, raw string, dst *bool) error {
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
