package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development", DataDir: "/data"},
		Logger: LoggerConfig{Level: "info"},
		Auth:   AuthConfig{AccessTokenDuration: time.Hour},
		Store:  StoreConfig{Path: "/data/shelfsocial.db", OpTimeout: time.Second, MaxOpenConns: 4},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown environment", func(c *Config) { c.App.Environment = "test" }},
		{"uppercase environment", func(c *Config) { c.App.Environment = "PRODUCTION" }},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"empty data dir", func(c *Config) { c.App.DataDir = "" }},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }},
		{"zero store timeout", func(c *Config) { c.Store.OpTimeout = 0 }},
		{"no connections", func(c *Config) { c.Store.MaxOpenConns = 0 }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitPerMinute = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load([]string{"-data-dir", dir, "-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, dir, cfg.App.DataDir)
	assert.Equal(t, filepath.Join(dir, "shelfsocial.db"), cfg.Store.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 168*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 5*time.Second, cfg.Store.OpTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 20, cfg.Server.AuthRateLimitPerMinute)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=7000\nLOG_LEVEL=warn\nSTORE_OP_TIMEOUT=2s\n"), 0o600))

	// godotenv writes straight into the process environment.
	t.Cleanup(func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("STORE_OP_TIMEOUT")
	})

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load([]string{"-data-dir", dir, "-env-file", envFile, "-port", "9000"})
	require.NoError(t, err)

	// flag beats .env
	assert.Equal(t, "9000", cfg.Server.Port)
	// env beats .env
	assert.Equal(t, "debug", cfg.Logger.Level)
	// .env beats default
	assert.Equal(t, 2*time.Second, cfg.Store.OpTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	_, err := Load([]string{"-data-dir", dir, "-env-file", filepath.Join(dir, "none"), "-store-timeout", "soon"})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)
}
