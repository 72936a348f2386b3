package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Slack      SlackConfig      `yaml:"slack"`
	Redis      RedisConfig      `yaml:"redis"`
	Processing ProcessingConfig `yaml:"processing"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the configured host, defaulting to localhost
func (c ServerConfig) GetHost() string {
	if c.Host == "" {
		return "localhost"
	}
	return c.Host
}

// StorageConfig selects and parameterizes the upload storage backend.
// Type is "s3" or "local"; local spools uploads on disk for direct
// processing without an object store.
type StorageConfig struct {
	Type       string `yaml:"type"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	AWSProfile string `yaml:"aws_profile"`
	LocalDir   string `yaml:"local_dir"`
}

// SlackConfig holds the outbound notification webhook settings
type SlackConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c SlackConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the optional progress-tracking Redis settings
type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// ProcessingConfig tunes the CSV pipeline
type ProcessingConfig struct {
	ProgressIntervalMs int   `yaml:"progress_interval_ms"`
	MaxFileSizeMB      int64 `yaml:"max_file_size_mb"`
}

func (c ProcessingConfig) ProgressInterval() time.Duration {
	return time.Duration(c.ProgressIntervalMs) * time.Millisecond
}

func (c ProcessingConfig) MaxFileSize() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Storage.S3Region == "" {
		cfg.Storage.S3Region = "us-east-1"
	}
	if cfg.Slack.TimeoutSeconds == 0 {
		cfg.Slack.TimeoutSeconds = 5
	}
	if cfg.Processing.ProgressIntervalMs == 0 {
		cfg.Processing.ProgressIntervalMs = 10000
	}
	if cfg.Processing.MaxFileSizeMB == 0 {
		cfg.Processing.MaxFileSizeMB = 100
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars, so secrets can live in .env locally and in real env vars in
// deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
		cfg.Storage.Type = "s3"
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Storage.S3Region = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Storage.LocalDir = v
	}
	// SKIP_S3 forces local spooling even when a bucket is configured.
	if os.Getenv("SKIP_S3") == "true" || cfg.Storage.S3Bucket == "" {
		cfg.Storage.Type = "local"
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.Addr = v
	} else if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PROGRESS_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Processing.ProgressIntervalMs = ms
		}
	}

	return cfg, nil
}
