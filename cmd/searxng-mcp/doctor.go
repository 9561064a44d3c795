package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"searxng-mcp/internal/adapter/tool"
	"searxng-mcp/internal/domain"
	"searxng-mcp/internal/infra/config"
	"searxng-mcp/internal/infra/logger"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

// searxngProbe is the part of the SearXNG backend the doctor exercises.
type searxngProbe interface {
	Ping(ctx context.Context) error
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
}

const doctorTimeout = 10 * time.Second

// runDoctor executes all health checks and reports results.
func runDoctor(out io.Writer) error {
	cfgPath := configPath()
	cfg, cfgErr := config.Load(cfgPath)

	var probe searxngProbe
	if cfg != nil {
		probe = tool.NewSearXNGBackend(cfg.SearXNG.URL, cfg.SearXNG.RequestTimeout(), logger.Discard())
	}
	return doctor(out, cfg, doctorChecks(cfgPath, cfgErr, probe))
}

func doctorChecks(cfgPath string, cfgErr error, probe searxngProbe) []Check {
	return []Check{
		{Name: "Config", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "SearXNG reachable", Fn: checkSearXNG(probe)},
		{Name: "SearXNG JSON API", Fn: checkSearXNGJSON(probe)},
	}
}

func doctor(out io.Writer, cfg *config.Config, checks []Check) error {
	fmt.Fprintln(out, "searxng-mcp doctor")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Fprintf(out, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(out, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintf(out, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		fmt.Fprintln(out, "\nFix the FAIL issues above before connecting an MCP client.")
		return fmt.Errorf("%d check(s) failed", fail)
	}
	if warn > 0 {
		fmt.Fprintln(out, "\nsearxng-mcp should work, but consider addressing the warnings.")
	} else {
		fmt.Fprintln(out, "\nAll checks passed! searxng-mcp is ready to serve.")
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports whether configuration loaded. A missing file is only
// a warning because defaults and environment variables are enough to run.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Check config.yaml syntax and SEARXNG_MCP_* environment variables",
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config file at %s; using defaults and environment", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

// checkSearXNG verifies the instance answers on its base URL.
func checkSearXNG(probe searxngProbe) func(*config.Config) CheckResult {
	return func(cfg *config.Config) CheckResult {
		if cfg == nil || probe == nil {
			return CheckResult{Status: StatusFail, Message: "cannot check: config not loaded"}
		}

		ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
		defer cancel()

		if err := probe.Ping(ctx); err != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("SearXNG not reachable at %s: %v", cfg.SearXNG.URL, err),
				Fix:     "Start SearXNG (docker run -p 8080:8080 searxng/searxng) or set SEARXNG_MCP_SEARXNG_URL",
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("SearXNG reachable at %s", cfg.SearXNG.URL),
		}
	}
}

// checkSearXNGJSON runs one real query and validates the response schema.
func checkSearXNGJSON(probe searxngProbe) func(*config.Config) CheckResult {
	return func(cfg *config.Config) CheckResult {
		if cfg == nil || probe == nil {
			return CheckResult{Status: StatusFail, Message: "cannot check: config not loaded"}
		}

		ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
		defer cancel()

		resp, err := probe.Search(ctx, domain.SearchQuery{
			Query:        "searxng",
			Language:     cfg.Search.DefaultLanguage,
			ResultCount:  1,
			ResultFormat: domain.FormatJSON,
		})
		switch {
		case errors.Is(err, domain.ErrSchemaValidation):
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("unexpected response shape: %v", err),
				Fix:     "Upgrade SearXNG; results must carry engine, template, parsed_url, positions and score",
			}
		case err != nil && strings.Contains(err.Error(), "HTTP 403"):
			return CheckResult{
				Status:  StatusFail,
				Message: "JSON output is disabled on this instance",
				Fix:     "Add json to search.formats in SearXNG settings.yml",
			}
		case err != nil:
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("search failed: %v", err),
			}
		case len(resp.Results) == 0:
			return CheckResult{
				Status:  StatusWarn,
				Message: "JSON API works but returned no results; check enabled engines",
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("JSON API returned %d results (about %d total)", len(resp.Results), resp.NumberOfResults),
		}
	}
}
