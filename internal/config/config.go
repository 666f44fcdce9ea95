package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	ModeHTTP  = "http"
	ModeStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SandboxConfig bounds guest demo sessions.
type SandboxConfig struct {
	SessionTTL   time.Duration `yaml:"session_ttl"`
	ReapInterval time.Duration `yaml:"reap_interval"`
	MaxSessions  int           `yaml:"max_sessions"`
	EditRate     float64       `yaml:"edit_rate"`
	EditBurst    int           `yaml:"edit_burst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "demobox.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: ModeHTTP,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		Sandbox: SandboxConfig{
			SessionTTL:   30 * time.Minute,
			ReapInterval: time.Minute,
			MaxSessions:  10000,
			EditRate:     5,
			EditBurst:    20,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// A non-empty path takes precedence over DEMOBOX_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("DEMOBOX_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at startup.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case ModeHTTP, ModeStdio:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Sandbox.SessionTTL < 0 || c.Sandbox.ReapInterval < 0 {
		return fmt.Errorf("sandbox durations must not be negative")
	}
	if c.Sandbox.MaxSessions < 0 || c.Sandbox.EditBurst < 0 || c.Sandbox.EditRate < 0 {
		return fmt.Errorf("sandbox limits must not be negative")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("DEMOBOX_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if err := envInt("DEMOBOX_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if dbPath := os.Getenv("DEMOBOX_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("DEMOBOX_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("DEMOBOX_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("DEMOBOX_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = strings.ToLower(mode)
	}
	if v := os.Getenv("DEMOBOX_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEMOBOX_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if err := envDuration("DEMOBOX_SESSION_TTL", &cfg.Sandbox.SessionTTL); err != nil {
		return err
	}
	if err := envDuration("DEMOBOX_REAP_INTERVAL", &cfg.Sandbox.ReapInterval); err != nil {
		return err
	}
	if err := envInt("DEMOBOX_MAX_SESSIONS", &cfg.Sandbox.MaxSessions); err != nil {
		return err
	}
	if v := os.Getenv("DEMOBOX_EDIT_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DEMOBOX_EDIT_RATE: %w", err)
		}
		cfg.Sandbox.EditRate = r
	}
	return envInt("DEMOBOX_EDIT_BURST", &cfg.Sandbox.EditBurst)
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
