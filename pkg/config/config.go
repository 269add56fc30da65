package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lodgekeep/concierge/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Backend is the auth/CRUD backend the session core talks to
	Backend BackendConfig

	// Store selects the credential store implementation
	Store StoreConfig

	// Session tunes the token lifecycle
	Session SessionConfig

	// Server configures the guarded local proxy (serve command)
	Server ServerConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// BackendConfig holds the backend endpoint settings
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig selects and configures the credential store
type StoreConfig struct {
	// Type is one of: memory, file, redis, noop
	Type string

	// File store
	FilePath string

	// Redis store
	RedisURL       string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string
}

// SessionConfig tunes token refresh behavior
type SessionConfig struct {
	RefreshInterval time.Duration
	ExpiryWindow    time.Duration

	// GrantTablePath optionally points at a YAML grant table; empty means
	// the built-in taxonomy.
	GrantTablePath string
}

// ServerConfig holds HTTP server configuration for the serve command
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	LoginPath       string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from the optional YAML file named by
// CONCIERGE_CONFIG_FILE, then applies environment variable overrides.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := getEnv("CONCIERGE_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Type:           "file",
			FilePath:       defaultCredentialPath(),
			RedisNamespace: "concierge",
		},
		Session: SessionConfig{
			RefreshInterval: time.Minute,
			ExpiryWindow:    5 * time.Minute,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			LoginPath:       "/login",
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.InfoLevel,
			MetricsEnabled: true,
		},
	}
}

func defaultCredentialPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".concierge/credentials.json"
	}
	return home + "/.concierge/credentials.json"
}

// fileConfig mirrors Config for YAML parsing; durations are strings so
// the file can say "5m" rather than nanosecond integers.
type fileConfig struct {
	Backend struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
	Store struct {
		Type           string `yaml:"type"`
		FilePath       string `yaml:"file_path"`
		RedisURL       string `yaml:"redis_url"`
		RedisPassword  string `yaml:"redis_password"`
		RedisDB        *int   `yaml:"redis_db"`
		RedisNamespace string `yaml:"redis_namespace"`
	} `yaml:"store"`
	Session struct {
		RefreshInterval string `yaml:"refresh_interval"`
		ExpiryWindow    string `yaml:"expiry_window"`
		GrantTablePath  string `yaml:"grant_table_path"`
	} `yaml:"session"`
	Server struct {
		Host      string `yaml:"host"`
		Port      string `yaml:"port"`
		LoginPath string `yaml:"login_path"`
	} `yaml:"server"`
	Observability struct {
		LogLevel       string `yaml:"log_level"`
		MetricsEnabled *bool  `yaml:"metrics_enabled"`
	} `yaml:"observability"`
}

// applyFile overlays values from a YAML config file. Absent fields leave
// the current values untouched.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.Backend.BaseURL, fc.Backend.BaseURL)
	setDuration(&c.Backend.Timeout, fc.Backend.Timeout)

	setString(&c.Store.Type, fc.Store.Type)
	setString(&c.Store.FilePath, fc.Store.FilePath)
	setString(&c.Store.RedisURL, fc.Store.RedisURL)
	setString(&c.Store.RedisPassword, fc.Store.RedisPassword)
	if fc.Store.RedisDB != nil {
		c.Store.RedisDB = *fc.Store.RedisDB
	}
	setString(&c.Store.RedisNamespace, fc.Store.RedisNamespace)

	setDuration(&c.Session.RefreshInterval, fc.Session.RefreshInterval)
	setDuration(&c.Session.ExpiryWindow, fc.Session.ExpiryWindow)
	setString(&c.Session.GrantTablePath, fc.Session.GrantTablePath)

	setString(&c.Server.Host, fc.Server.Host)
	setString(&c.Server.Port, fc.Server.Port)
	setString(&c.Server.LoginPath, fc.Server.LoginPath)

	if fc.Observability.LogLevel != "" {
		c.Observability.LogLevel = parseLogLevel(fc.Observability.LogLevel)
	}
	if fc.Observability.MetricsEnabled != nil {
		c.Observability.MetricsEnabled = *fc.Observability.MetricsEnabled
	}

	return nil
}

// applyEnv overlays CONCIERGE_* environment variables. Environment beats
// the config file.
func (c *Config) applyEnv() {
	c.Backend.BaseURL = getEnv("CONCIERGE_BACKEND_URL", c.Backend.BaseURL)
	c.Backend.Timeout = getEnvDuration("CONCIERGE_BACKEND_TIMEOUT", c.Backend.Timeout)

	c.Store.Type = getEnv("CONCIERGE_STORE_TYPE", c.Store.Type)
	c.Store.FilePath = getEnv("CONCIERGE_CREDENTIAL_FILE", c.Store.FilePath)
	c.Store.RedisURL = getEnv("CONCIERGE_REDIS_URL", c.Store.RedisURL)
	c.Store.RedisPassword = getEnv("CONCIERGE_REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvInt("CONCIERGE_REDIS_DB", c.Store.RedisDB)
	c.Store.RedisNamespace = getEnv("CONCIERGE_REDIS_NAMESPACE", c.Store.RedisNamespace)

	c.Session.RefreshInterval = getEnvDuration("CONCIERGE_REFRESH_INTERVAL", c.Session.RefreshInterval)
	c.Session.ExpiryWindow = getEnvDuration("CONCIERGE_EXPIRY_WINDOW", c.Session.ExpiryWindow)
	c.Session.GrantTablePath = getEnv("CONCIERGE_GRANT_TABLE", c.Session.GrantTablePath)

	c.Server.Host = getEnv("CONCIERGE_HOST", c.Server.Host)
	c.Server.Port = getEnv("CONCIERGE_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("CONCIERGE_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("CONCIERGE_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("CONCIERGE_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("CONCIERGE_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.LoginPath = getEnv("CONCIERGE_LOGIN_PATH", c.Server.LoginPath)

	if level := getEnv("CONCIERGE_LOG_LEVEL", ""); level != "" {
		c.Observability.LogLevel = parseLogLevel(level)
	}
	c.Observability.MetricsEnabled = getEnvBool("CONCIERGE_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend URL is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Session.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.Session.ExpiryWindow <= 0 {
		return fmt.Errorf("expiry window must be positive")
	}

	switch c.Store.Type {
	case "memory", "noop":
	case "file":
		if c.Store.FilePath == "" {
			return fmt.Errorf("credential file path is required for file store")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis store")
		}
	default:
		return fmt.Errorf("invalid store type: %s (must be memory, file, redis, or noop)", c.Store.Type)
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value string) {
	if value == "" {
		return
	}
	if d, err := time.ParseDuration(value); err == nil {
		*dst = d
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
