// Package config loads application configuration from command-line flags,
// environment variables, and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Server ServerConfig
	Auth   AuthConfig
	Store  StoreConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// DataDir holds the database file and the token key.
	DataDir string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	AllowedOrigins []string
	// RateLimitPerMinute caps requests per client IP across the whole API. Zero disables it.
	RateLimitPerMinute int
	// AuthRateLimitPerMinute caps register/login attempts per client IP.
	AuthRateLimitPerMinute int
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	// AccessTokenKey is the PASETO v4 symmetric key, set by auth.LoadOrGenerateKey.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
}

// StoreConfig holds relational store configuration.
type StoreConfig struct {
	Path string
	// OpTimeout bounds every store operation; expiry is reported as a transient failure.
	OpTimeout    time.Duration
	MaxOpenConns int
}

// LoadConfig loads configuration from the process arguments. Precedence:
// 1. command-line flags
// 2. environment variables
// 3. .env file
// 4. defaults
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig with explicit arguments.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("shelfsocial", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := fs.String("data-dir", "", "Directory for the database and auth key")
	dbPath := fs.String("db-path", "", "SQLite database file (default: <data-dir>/shelfsocial.db)")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	origins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")
	rateLimit := fs.String("rate-limit", "", "Requests per minute per IP (default: 600, 0 disables)")
	authRateLimit := fs.String("auth-rate-limit", "", "Auth attempts per minute per IP (default: 20)")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 168h)")
	storeTimeout := fs.String("store-timeout", "", "Per-operation store timeout (default: 5s)")
	maxConns := fs.String("db-max-conns", "", "Maximum open database connections (default: 4)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// godotenv.Load never overrides variables that are already set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %q: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataDir:     getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:                   getConfigValue(*port, "SERVER_PORT", "8080"),
			AllowedOrigins:         splitList(getConfigValue(*origins, "CORS_ALLOWED_ORIGINS", "*")),
			RateLimitPerMinute:     getIntConfigValue(*rateLimit, "RATE_LIMIT_PER_MINUTE", 600),
			AuthRateLimitPerMinute: getIntConfigValue(*authRateLimit, "AUTH_RATE_LIMIT_PER_MINUTE", 20),
		},
		Store: StoreConfig{
			Path:         getConfigValue(*dbPath, "DB_PATH", ""),
			MaxOpenConns: getIntConfigValue(*maxConns, "DB_MAX_CONNS", 4),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "168h", &cfg.Auth.AccessTokenDuration},
		{*storeTimeout, "STORE_OP_TIMEOUT", "5s", &cfg.Store.OpTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.App.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}
	if c.Store.OpTimeout <= 0 {
		return errors.New("store operation timeout must be positive")
	}
	if c.Store.MaxOpenConns < 1 {
		return errors.New("database connection limit must be at least 1")
	}
	if c.Server.RateLimitPerMinute < 0 || c.Server.AuthRateLimitPerMinute < 0 {
		return errors.New("rate limits cannot be negative")
	}

	return nil
}

// expandPaths resolves the data directory and the database path.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir, err := expandPath(c.App.DataDir, filepath.Join(homeDir, ".shelfsocial"))
	if err != nil {
		return err
	}
	c.App.DataDir = dataDir

	dbPath, err := expandPath(c.Store.Path, filepath.Join(dataDir, "shelfsocial.db"))
	if err != nil {
		return err
	}
	c.Store.Path = dbPath
	return nil
}

// expandPath expands ~ and makes the path absolute. Empty paths become defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
