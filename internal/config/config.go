// Package config loads server configuration from an optional YAML file
// with CONCIERGE_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	HistoryCap int    `yaml:"history_cap"`

	LockTTL  time.Duration `yaml:"lock_ttl"`
	TraceDir string        `yaml:"trace_dir"`

	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Database DatabaseConfig `yaml:"database"`
}

// RedisConfig configures the optional Redis session backend. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr   string        `yaml:"addr"`
	Prefix string        `yaml:"prefix"`
	TTL    time.Duration `yaml:"ttl"`
}

// LLMConfig configures the completion endpoint. The API key is only ever
// read from the environment, never from the file.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	APIKey      string  `yaml:"-"`
}

// DatabaseConfig configures the campus directory database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
	Seed bool   `yaml:"seed"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		LogFormat:  "text",
		HistoryCap: 20,
		LockTTL:    30 * time.Second,
		Redis: RedisConfig{
			Prefix: "concierge:",
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Database: DatabaseConfig{
			Path: "campus.db",
			Seed: true,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "CONCIERGE_LISTEN_ADDR")
	setString(&c.LogLevel, "CONCIERGE_LOG_LEVEL")
	setString(&c.LogFormat, "CONCIERGE_LOG_FORMAT")
	setString(&c.TraceDir, "CONCIERGE_TRACE_DIR")
	setString(&c.Redis.Addr, "CONCIERGE_REDIS_ADDR")
	setString(&c.Redis.Prefix, "CONCIERGE_REDIS_PREFIX")
	setString(&c.LLM.BaseURL, "CONCIERGE_LLM_BASE_URL")
	setString(&c.LLM.Model, "CONCIERGE_LLM_MODEL")
	setString(&c.Database.Path, "CONCIERGE_DB_PATH")

	// The key has no file-based source.
	c.LLM.APIKey = os.Getenv("CONCIERGE_LLM_API_KEY")
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// Level parses the configured log level, defaulting to info.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
