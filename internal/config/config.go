// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Blocklist BlocklistConfig
	Redis     RedisConfig
	Mail      MailConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// DataPath holds the SQLite file, Badger blocklist, search index and URL token key.
	DataPath string
	// Domain is the public host used when building links in emails.
	Domain string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	CORSOrigins   []string
	AuthRateLimit int // requests per minute per client IP on auth endpoints
}

// DatabaseConfig holds relational database configuration.
type DatabaseConfig struct {
	// URL is either sqlite://<path> or postgres://...
	URL string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret            string
	JWTAlgorithm         string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	URLTokenDuration     time.Duration
	// URLTokenKey is the PASETO v4 symmetric key, set by auth.LoadOrGenerateKey at startup.
	URLTokenKey []byte
}

// BlocklistConfig selects where revoked token ids live.
type BlocklistConfig struct {
	Backend string // badger, redis or memory
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL  string
	Host string
	Port int
}

// Addr returns the host:port pair used when no URL is configured.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MailConfig holds outbound email configuration.
type MailConfig struct {
	Server   string // empty disables SMTP; messages are logged instead
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool
	SSLTLS   bool
	Queue    string // memory or redis
	Workers  int

	// RatePerMinute caps outbound sends; 0 disables throttling.
	RatePerMinute int
}

// Supported values for enumerated settings.
var (
	validEnvironments = map[string]bool{"development": true, "staging": true, "production": true}
	validLogLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validAlgorithms   = map[string]bool{"HS256": true, "HS384": true, "HS512": true}
	validBlocklists   = map[string]bool{"badger": true, "redis": true, "memory": true}
	validMailQueues   = map[string]bool{"memory": true, "redis": true}
)

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for local data (default: ~/Bookly)")
	domain := fs.String("domain", "", "Public domain used in email links")

	serverPort := fs.String("port", "", "Server port (default: 8000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	databaseURL := fs.String("database-url", "", "Database URL (sqlite://path or postgres://...)")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 1h)")
	refreshTokenDuration := fs.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 48h)")
	urlTokenDuration := fs.String("url-token-duration", "", "Email link token lifetime (e.g., 24h)")

	blocklistBackend := fs.String("blocklist", "", "Token blocklist backend (badger, redis, memory)")
	mailQueue := fs.String("mail-queue", "", "Mail queue backend (memory, redis)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv.Load never overrides variables that are already set.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
			Domain:      getConfigValue(*domain, "DOMAIN", "localhost:8000"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8000"),
			CORSOrigins:   splitList(getConfigValue("", "CORS_ORIGINS", "*")),
			AuthRateLimit: getIntConfigValue("", "AUTH_RATE_LIMIT", 20),
		},
		Database: DatabaseConfig{
			URL: getConfigValue(*databaseURL, "DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getConfigValue("", "JWT_SECRET", ""),
			JWTAlgorithm: strings.ToUpper(getConfigValue("", "JWT_ALGORITHM", "HS256")),
		},
		Blocklist: BlocklistConfig{
			Backend: strings.ToLower(getConfigValue(*blocklistBackend, "BLOCKLIST_BACKEND", "badger")),
		},
		Redis: RedisConfig{
			URL:  getConfigValue("", "REDIS_URL", ""),
			Host: getConfigValue("", "REDIS_HOST", "localhost"),
			Port: getIntConfigValue("", "REDIS_PORT", 6379),
		},
		Mail: MailConfig{
			Server:   getConfigValue("", "MAIL_SERVER", ""),
			Port:     getIntConfigValue("", "MAIL_PORT", 587),
			Username: getConfigValue("", "MAIL_USERNAME", ""),
			Password: getConfigValue("", "MAIL_PASSWORD", ""),
			From:     getConfigValue("", "MAIL_FROM", "noreply@bookly.local"),
			FromName: getConfigValue("", "MAIL_FROM_NAME", "Bookly"),
			StartTLS: getBoolConfigValue("", "MAIL_STARTTLS", true),
			SSLTLS:   getBoolConfigValue("", "MAIL_SSL_TLS", false),
			Queue:    strings.ToLower(getConfigValue(*mailQueue, "MAIL_QUEUE", "memory")),
			Workers:  getIntConfigValue("", "MAIL_WORKERS", 2),

			RatePerMinute: getIntConfigValue("", "MAIL_RATE_LIMIT", 60),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "1h", &cfg.Auth.AccessTokenDuration},
		{*refreshTokenDuration, "REFRESH_TOKEN_DURATION", "48h", &cfg.Auth.RefreshTokenDuration},
		{*urlTokenDuration, "URL_TOKEN_DURATION", "24h", &cfg.Auth.URLTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = "sqlite://" + filepath.Join(cfg.App.DataPath, "bookly.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if !validEnvironments[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	if !validLogLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.App.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if !validAlgorithms[c.Auth.JWTAlgorithm] {
		return fmt.Errorf("unsupported JWT_ALGORITHM: %s (must be HS256, HS384, or HS512)", c.Auth.JWTAlgorithm)
	}

	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 || c.Auth.URLTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}

	if !validBlocklists[c.Blocklist.Backend] {
		return fmt.Errorf("invalid blocklist backend: %s (must be badger, redis, or memory)", c.Blocklist.Backend)
	}

	if !validMailQueues[c.Mail.Queue] {
		return fmt.Errorf("invalid mail queue: %s (must be memory or redis)", c.Mail.Queue)
	}

	if c.Mail.Workers < 1 {
		return errors.New("MAIL_WORKERS must be at least 1")
	}

	if c.Mail.RatePerMinute < 0 {
		return errors.New("MAIL_RATE_LIMIT cannot be negative")
	}

	return nil
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Blocklist.Backend == "redis" || c.Mail.Queue == "redis"
}

// expandDataPath expands ~ and makes the path absolute, defaulting to ~/Bookly.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	path := c.App.DataPath
	if path == "" {
		c.App.DataPath = filepath.Join(homeDir, "Bookly")
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		path, err = filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	c.App.DataPath = filepath.Clean(path)
	return nil
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

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
