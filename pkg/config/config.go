// Package config handles loading and managing unifai configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for unifai.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Gateway   GatewayConfig   `yaml:"gateway" mapstructure:"gateway"`
	Events    EventsConfig    `yaml:"events" mapstructure:"events"`
	RateLimit RateLimitConfig `yaml:"ratelimit" mapstructure:"ratelimit"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"` // empty disables auth
	CORSOrigin   string        `yaml:"cors_origin" mapstructure:"cors_origin"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	// TrustedProxies are the IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies"`
}

// DatabaseConfig points at the Postgres prediction log. An empty URL disables it.
type DatabaseConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	AutoMigrate bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// StorageConfig selects the blob backend that archives prediction records.
type StorageConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"` // "local", "s3", "gcs" or "" (disabled)
	LocalPath string `yaml:"local_path" mapstructure:"local_path"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"` // S3-compatible endpoint, e.g. MinIO
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
}

// GatewayConfig controls the explanation and chat model gateway.
type GatewayConfig struct {
	URL       string        `yaml:"url" mapstructure:"url"`
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKeyEnv string        `yaml:"api_key_env" mapstructure:"api_key_env"` // env var holding the key
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// APIKey resolves the gateway key from the configured environment variable.
func (g GatewayConfig) APIKey() string {
	if g.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(g.APIKeyEnv)
}

// EventsConfig controls prediction event publishing. No brokers disables it.
type EventsConfig struct {
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`
}

// RateLimitConfig limits explain and chat requests per client IP.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" mapstructure:"per_minute"`
	Burst     int `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig sizes the in-memory explanation cache.
type CacheConfig struct {
	Explanations int `yaml:"explanations" mapstructure:"explanations"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			CORSOrigin:   "*",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Database: DatabaseConfig{
			AutoMigrate: true,
		},
		Storage: StorageConfig{
			Backend:   "local",
			LocalPath: "./data/archive",
		},
		Gateway: GatewayConfig{
			URL:       "https://ai.gateway.lovable.dev/v1/chat/completions",
			Model:     "google/gemini-2.5-flash",
			APIKeyEnv: "LOVABLE_API_KEY",
			Timeout:   60 * time.Second,
		},
		Events: EventsConfig{
			Topic: "unifai.predictions",
		},
		RateLimit: RateLimitConfig{
			PerMinute: 30,
			Burst:     10,
		},
		Cache: CacheConfig{
			Explanations: 256,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate reports configuration that cannot work at startup.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "local", "s3", "gcs":
	default:
		return fmt.Errorf("unsupported storage backend %q (use local, s3 or gcs)", c.Storage.Backend)
	}
	if (c.Storage.Backend == "s3" || c.Storage.Backend == "gcs") && c.Storage.Bucket == "" {
		return fmt.Errorf("storage backend %s requires a bucket", c.Storage.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return fmt.Errorf("events.topic is required when brokers are set")
	}
	return nil
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .unifai/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".unifai", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the per-user cache directory, ~/.cache/unifai.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "unifai")
}

// ResultDir returns where the CLI keeps saved predictions.
func ResultDir() string {
	return filepath.Join(CacheDir(), "results")
}
