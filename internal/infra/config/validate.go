package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateSearXNG(cfg, ve)
	validateSearch(cfg, ve)
	validateServer(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateSearXNG(cfg *Config, ve *ValidationError) {
	raw := cfg.SearXNG.URL
	if raw == "" {
		ve.Add("searxng.url must not be empty (set via SEARXNG_MCP_SEARXNG_URL)")
	} else {
		u, err := url.Parse(raw)
		switch {
		case err != nil:
			ve.Add("searxng.url %q is invalid: %v", raw, err)
		case u.Scheme != "http" && u.Scheme != "https":
			ve.Add("searxng.url %q: scheme must be http or https", raw)
		case u.Host == "":
			ve.Add("searxng.url %q: missing host", raw)
		}
	}
	if cfg.SearXNG.Timeout <= 0 {
		ve.Add("searxng.timeout must be > 0 seconds")
	}
}

var validFormats = map[string]bool{
	"text": true,
	"json": true,
}

func validateSearch(cfg *Config, ve *ValidationError) {
	if cfg.Search.DefaultResultCount <= 0 {
		ve.Add("search.default_result_count must be > 0")
	}
	if !validFormats[cfg.Search.DefaultFormat] {
		ve.Add("search.default_format %q is invalid (want: text, json)", cfg.Search.DefaultFormat)
	}
}

var validTransports = map[string]bool{
	"stdio": true,
	"http":  true,
}

func validateServer(cfg *Config, ve *ValidationError) {
	if !validTransports[cfg.Server.Transport] {
		ve.Add("server.transport %q is invalid (want: stdio, http)", cfg.Server.Transport)
		return
	}
	if cfg.Server.Transport == "http" {
		if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
			ve.Add("server.addr %q is invalid: %v", cfg.Server.Addr, err)
		}
	}
	for _, p := range cfg.Server.TrustedProxies {
		if net.ParseIP(p) == nil {
			ve.Add("server.trusted_proxies entry %q is not an IP address", p)
		}
	}
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validLogFormats[strings.ToLower(cfg.Logger.Format)] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
	if cfg.Server.Transport == "stdio" && strings.ToLower(cfg.Logger.Output) == "stdout" {
		ve.Add("logger.output must not be stdout when server.transport is stdio")
	}
}

var validExporters = map[string]bool{
	"":       true,
	"noop":   true,
	"stdout": true,
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !validExporters[cfg.Tracer.Exporter] {
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}
