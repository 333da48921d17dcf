package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr            string   `json:"addr" yaml:"addr" toml:"addr"`
	FeedFile        string   `json:"feed_file" yaml:"feed_file" toml:"feed_file"`
	WatchFeed       bool     `json:"watch_feed" yaml:"watch_feed" toml:"watch_feed"`
	StartIndex      int      `json:"start_index" yaml:"start_index" toml:"start_index"`
	WindowSize      int      `json:"window_size" yaml:"window_size" toml:"window_size"`
	TickIntervalMS  int      `json:"tick_interval_ms" yaml:"tick_interval_ms" toml:"tick_interval_ms"`
	OpenTimeoutMS   int      `json:"open_timeout_ms" yaml:"open_timeout_ms" toml:"open_timeout_ms"`
	ActionTimeoutMS int      `json:"action_timeout_ms" yaml:"action_timeout_ms" toml:"action_timeout_ms"`
	PrefetchBytes   int64    `json:"prefetch_bytes" yaml:"prefetch_bytes" toml:"prefetch_bytes"`
	FFprobeBin      string   `json:"ffprobe_bin" yaml:"ffprobe_bin" toml:"ffprobe_bin"`
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFile         string   `json:"log_file" yaml:"log_file" toml:"log_file"`
	LogRequests     string   `json:"log_requests" yaml:"log_requests" toml:"log_requests"`
	MaxBodyBytes    int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Defaults applied by Defaults when corresponding fields are unset.
const (
	DefaultAddr          = ":8080"
	DefaultWindowSize    = 3
	DefaultTickInterval  = 500 * time.Millisecond
	DefaultOpenTimeout   = 30 * time.Second
	DefaultActionTimeout = 10 * time.Second
	DefaultPrefetchBytes = 512 << 10
	DefaultLogLevel      = "info"
	DefaultMaxBodyBytes  = 1 << 20
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Defaults returns cfg with zero values replaced by package defaults.
func (cfg Config) Defaults() Config {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.TickIntervalMS <= 0 {
		cfg.TickIntervalMS = int(DefaultTickInterval / time.Millisecond)
	}
	if cfg.OpenTimeoutMS <= 0 {
		cfg.OpenTimeoutMS = int(DefaultOpenTimeout / time.Millisecond)
	}
	if cfg.ActionTimeoutMS <= 0 {
		cfg.ActionTimeoutMS = int(DefaultActionTimeout / time.Millisecond)
	}
	if cfg.PrefetchBytes <= 0 {
		cfg.PrefetchBytes = DefaultPrefetchBytes
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.StartIndex < 0 {
		cfg.StartIndex = 0
	}
	return cfg
}

func (cfg Config) TickInterval() time.Duration {
	return time.Duration(cfg.TickIntervalMS) * time.Millisecond
}

func (cfg Config) OpenTimeout() time.Duration {
	return time.Duration(cfg.OpenTimeoutMS) * time.Millisecond
}

func (cfg Config) ActionTimeout() time.Duration {
	return time.Duration(cfg.ActionTimeoutMS) * time.Millisecond
}
