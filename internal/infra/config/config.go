package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	SearXNG SearXNGConfig `yaml:"searxng"`
	Search  SearchConfig  `yaml:"search"`
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// SearXNGConfig holds the upstream instance settings.
type SearXNGConfig struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// RequestTimeout returns the per-call upstream timeout.
func (c SearXNGConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// SearchConfig holds the web_search tool defaults.
type SearchConfig struct {
	DefaultResultCount int    `yaml:"default_result_count"`
	DefaultLanguage    string `yaml:"default_language"`
	DefaultFormat      string `yaml:"default_format"` // "text" | "json"
}

// ServerConfig holds MCP transport settings.
type ServerConfig struct {
	Transport string `yaml:"transport"` // "stdio" | "http"
	Addr      string `yaml:"addr"`      // listen address for "http"
	// TrustedProxies are peer IPs whose X-Forwarded-For / X-Real-IP headers
	// are believed when logging the client address.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		SearXNG: SearXNGConfig{
			URL:     "http://localhost:8080",
			Timeout: 10,
		},
		Search: SearchConfig{
			DefaultResultCount: 10,
			DefaultLanguage:    "all",
			DefaultFormat:      "text",
		},
		Server: ServerConfig{
			Transport: "stdio",
			Addr:      ":8000",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, loads .env, applies env var overrides and
// validates the result. A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		if err := validatePermissions(absPath); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load()

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps SEARXNG_MCP_* env vars to config fields.
// Malformed numeric values are ignored and left for Validate to judge the
// file/default value.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEARXNG_MCP_SEARXNG_URL"); v != "" {
		cfg.SearXNG.URL = v
	}
	if v := os.Getenv("SEARXNG_MCP_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SearXNG.Timeout = n
		}
	}
	if v := os.Getenv("SEARXNG_MCP_DEFAULT_RESULT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultResultCount = n
		}
	}
	if v := os.Getenv("SEARXNG_MCP_DEFAULT_LANGUAGE"); v != "" {
		cfg.Search.DefaultLanguage = v
	}
	if v := os.Getenv("SEARXNG_MCP_DEFAULT_FORMAT"); v != "" {
		cfg.Search.DefaultFormat = v
	}
	if v := os.Getenv("TRANSPORT_PROTOCOL"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("SEARXNG_MCP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SEARXNG_MCP_TRUSTED_PROXIES"); v != "" {
		cfg.Server.TrustedProxies = splitList(v)
	}
	if v := os.Getenv("SEARXNG_MCP_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("SEARXNG_MCP_LOG_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("SEARXNG_MCP_LOG_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("SEARXNG_MCP_TRACER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracer.Enabled = b
		}
	}
	if v := os.Getenv("SEARXNG_MCP_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// validatePermissions checks the config file is not writable by others.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	if mode&0o022 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (must not be writable by group or others)", path, mode)
	}
	return nil
}
