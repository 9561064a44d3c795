package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"searxng-mcp/internal/adapter/mcpserver"
	"searxng-mcp/internal/adapter/tool"
	"searxng-mcp/internal/infra/config"
	"searxng-mcp/internal/infra/logger"
	"searxng-mcp/internal/infra/tracer"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
			os.Exit(1)
		}
	case "search":
		if err := runSearch(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "search: %v\n", err)
			os.Exit(1)
		}
	case "doctor":
		if err := runDoctor(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'searxng-mcp --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`searxng-mcp - web search over MCP, backed by SearxNG

USAGE:
    searxng-mcp [COMMAND] [FLAGS]

COMMANDS:
    serve       Run the MCP server (default)
    search      Run one search and print the results
                Flags: --format text|json|summary, --count N, --categories a,b,
                       --language CODE, --time-range day|week|month|year, --pretty
    doctor      Run health checks against the configured SearxNG instance

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml (optional)
    Environment: SEARXNG_MCP_* variables and TRANSPORT_PROTOCOL override config;
                 a .env file in the working directory is loaded first

EXAMPLES:
    searxng-mcp                                   # Serve MCP over stdio
    TRANSPORT_PROTOCOL=http searxng-mcp serve     # Serve streamable HTTP on :8000/mcp
    searxng-mcp search --count 3 golang generics  # One-shot search
    searxng-mcp doctor                            # Check SearxNG connectivity`)
}

// configPath returns the --config flag value, SEARXNG_MCP_CONFIG, or config.yaml.
func configPath() string {
	return configPathFrom(os.Args)
}

func configPathFrom(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("SEARXNG_MCP_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// buildSearch wires the SearXNG backend and the web_search tool into a registry.
func buildSearch(cfg *config.Config, log *slog.Logger) (*tool.Registry, *tool.WebSearchTool, *tool.SearXNGBackend, error) {
	backend := tool.NewSearXNGBackend(cfg.SearXNG.URL, cfg.SearXNG.RequestTimeout(), log)
	webSearch := tool.NewWebSearchTool(backend, cfg.Search, log)

	reg := tool.NewRegistry(log)
	if err := reg.Register(webSearch); err != nil {
		return nil, nil, nil, fmt.Errorf("register %s: %w", webSearch.Name(), err)
	}
	return reg, webSearch, backend, nil
}

func runServe() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	// 2. Logger
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	// 3. Tracer
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// 4. Tools
	reg, _, _, err := buildSearch(cfg, log)
	if err != nil {
		return err
	}

	// 5. Serve
	log.Info("starting searxng-mcp",
		"version", mcpserver.Version,
		"searxng_url", cfg.SearXNG.URL,
		"transport", cfg.Server.Transport,
		"tools", reg.Names(),
	)
	srv := mcpserver.New(reg, cfg.Server, log)
	if err := srv.Serve(ctx); err != nil {
		return err
	}
	log.Info("searxng-mcp stopped")
	return nil
}
