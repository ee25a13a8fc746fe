// Package config provides application configuration with support for
// environment variables, command-line flags, and .env files.
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

// Development fallbacks, used only outside production. Production refuses
// to start without the real values.
const (
	devSecretKey     = "dev-key-change-in-production"
	devAdminUsername = "admin"
	devAdminPassword = "admin123"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Storage StorageConfig
	Admin   AdminConfig
	Upload  UploadConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// IsProduction reports whether the app runs in production mode.
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
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
}

// StorageConfig holds filesystem layout configuration. The data path
// contains the SQLite database file and the uploads/ tree.
type StorageConfig struct {
	DataPath string
}

// DatabasePath returns the SQLite database file location.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, "mansion.db")
}

// UploadsPath returns the root of the uploads directory tree.
func (s StorageConfig) UploadsPath() string {
	return filepath.Join(s.DataPath, "uploads")
}

// AdminConfig holds the admin credential pair and session settings.
type AdminConfig struct {
	Username        string
	Password        string
	SecretKey       string // session cookie HMAC key
	SessionDuration time.Duration
	// UsingDevFallbacks is set when any insecure default was applied.
	UsingDevFallbacks bool
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxUploadSize int64 // bytes; applies to a whole multipart submission
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for database and uploads")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	secretKey := flag.String("secret-key", "", "Secret key for session cookie signing")
	adminUser := flag.String("admin-username", "", "Admin username")
	adminPassword := flag.String("admin-password", "", "Admin password")
	sessionDuration := flag.String("session-duration", "", "Admin session lifetime (default: 168h)")
	maxUploadSize := flag.String("max-upload-size", "", "Max upload size in bytes (default: 50 MiB)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", "./data"),
		},
		Admin: AdminConfig{
			Username:  getConfigValue(*adminUser, "ADMIN_USERNAME", ""),
			Password:  getConfigValue(*adminPassword, "ADMIN_PASSWORD", ""),
			SecretKey: getConfigValue(*secretKey, "SECRET_KEY", ""),
		},
		Upload: UploadConfig{
			MaxUploadSize: getInt64ConfigValue(*maxUploadSize, "MAX_UPLOAD_SIZE", 50<<20),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Admin.SessionDuration, err = parseDurationValue(*sessionDuration, "SESSION_DURATION", "168h"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.applyAdminDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyAdminDefaults enforces the production credential requirements and
// fills development fallbacks otherwise.
func (c *Config) applyAdminDefaults() error {
	if c.App.IsProduction() {
		var missing []string
		if c.Admin.SecretKey == "" {
			missing = append(missing, "SECRET_KEY")
		}
		if c.Admin.Username == "" {
			missing = append(missing, "ADMIN_USERNAME")
		}
		if c.Admin.Password == "" {
			missing = append(missing, "ADMIN_PASSWORD")
		}
		if len(missing) > 0 {
			return fmt.Errorf("production mode requires: %s", strings.Join(missing, ", "))
		}
		return nil
	}

	if c.Admin.SecretKey == "" {
		c.Admin.SecretKey = devSecretKey
		c.Admin.UsingDevFallbacks = true
	}
	if c.Admin.Username == "" {
		c.Admin.Username = devAdminUsername
		c.Admin.UsingDevFallbacks = true
	}
	if c.Admin.Password == "" {
		c.Admin.Password = devAdminPassword
		c.Admin.UsingDevFallbacks = true
	}
	return nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Upload.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	path := c.Storage.DataPath

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Storage.DataPath = filepath.Clean(path)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or
// default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int64
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration with the usual precedence.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, str, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path)
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

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Real env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
