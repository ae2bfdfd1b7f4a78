// Package config loads application configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// Version is stamped at build time:
//
//	go build -ldflags "-X github.com/brainlyapp/brainly-server/internal/config.Version=1.2.0"
var Version = "dev"

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Store     StoreConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	Version     string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk locations.
type DataConfig struct {
	// BasePath holds the sqlite/badger database, the search index and auth.key.
	BasePath string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string // sqlite, badger or postgres
	DatabaseURL string // postgres DSN
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	AdvertiseMDNS bool
	CORSOrigins   []string
	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key, set by auth.LoadOrGenerateKey at startup.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
}

// RateLimitConfig holds the signin limiter settings.
type RateLimitConfig struct {
	SigninMax    int
	SigninWindow time.Duration
	MaxKeys      int
}

// SearchConfig toggles the content search index.
type SearchConfig struct {
	Enabled bool
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func LoadConfig() (*Config, error) {
	return loadFrom(flag.CommandLine, os.Args[1:])
}

func loadFrom(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for database, search index and keys")
	storeDriver := fs.String("store-driver", "", "Store backend (sqlite, badger, postgres)")
	databaseURL := fs.String("database-url", "", "Postgres connection string")
	serverPort := fs.String("port", "", "Server port (default: 3000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := fs.String("advertise-mdns", "", "Advertise via mDNS/Zeroconf (default: false)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins")
	trustProxy := fs.String("trust-proxy-headers", "", "Trust X-Forwarded-For/X-Real-IP for client IPs (default: false)")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 1h)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			Version:     Version,
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getConfigValue(*storeDriver, "STORE_DRIVER", DriverSQLite)),
			DatabaseURL: getConfigValue(*databaseURL, "DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Name:              getConfigValue("", "SERVER_NAME", "Brainly Server"),
			Port:              getConfigValue(*serverPort, "SERVER_PORT", "3000"),
			AdvertiseMDNS:     getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", false),
			CORSOrigins:       splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "http://localhost:5173")),
			TrustProxyHeaders: getBoolConfigValue(*trustProxy, "TRUST_PROXY_HEADERS", false),
		},
		RateLimit: RateLimitConfig{
			SigninMax: getIntConfigValue("", "SIGNIN_RATE_LIMIT_MAX", 5),
			MaxKeys:   getIntConfigValue("", "RATE_LIMIT_MAX_KEYS", 10000),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue("", "SEARCH_ENABLED", true),
		},
	}

	var err error
	if cfg.Auth.AccessTokenDuration, err = getDurationConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "1h"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.RateLimit.SigninWindow, err = getDurationConfigValue("", "SIGNIN_RATE_LIMIT_WINDOW", "1m"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
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
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverBadger:
		if c.Data.BasePath == "" {
			return errors.New("data path cannot be empty")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite, badger, or postgres)", c.Store.Driver)
	}

	if c.RateLimit.SigninMax <= 0 {
		return errors.New("SIGNIN_RATE_LIMIT_MAX must be positive")
	}
	if c.RateLimit.SigninWindow <= 0 {
		return errors.New("SIGNIN_RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimit.MaxKeys <= 0 {
		return errors.New("RATE_LIMIT_MAX_KEYS must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
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
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/Brainly/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, "Brainly", "data"))
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
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

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
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

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from a .env file. Lines starting with # are comments.
// Variables already present in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
