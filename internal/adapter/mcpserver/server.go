// Package mcpserver exposes registered tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"searxng-mcp/internal/domain"
	"searxng-mcp/internal/infra/config"
	"searxng-mcp/internal/infra/middleware"
)

const (
	// Name is the MCP implementation name reported to clients.
	Name = "SearxNG Search"
	// Version is the MCP implementation version reported to clients.
	Version = "1.0.0"

	instructions = "Provides web search capabilities using SearxNG"
	endpointPath = "/mcp"
)

// Server adapts a tool registry to an MCP server.
type Server struct {
	mcp    *server.MCPServer
	tools  domain.ToolExecutor
	cfg    config.ServerConfig
	logger *slog.Logger

	// notify delivers a progress notice to the client behind ctx.
	notify func(ctx context.Context, message string)

	mu      sync.Mutex
	httpSrv *http.Server
}

// New creates an MCP server exposing every tool in tools.
func New(tools domain.ToolExecutor, cfg config.ServerConfig, logger *slog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(Name, Version,
			server.WithToolCapabilities(false),
			server.WithLogging(),
			server.WithRecovery(),
			server.WithInstructions(instructions),
		),
		tools:  tools,
		cfg:    cfg,
		logger: logger,
	}
	s.notify = s.sendLogNotification

	for _, t := range tools.List() {
		schema := t.Schema()
		s.mcp.AddTool(mcp.NewToolWithRawSchema(schema.Name, schema.Description, schema.Parameters), s.handler(t))
	}
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// handler translates an MCP tools/call into a domain tool execution.
func (s *Server) handler(t domain.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		params, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		ctx = domain.ContextWithNotifier(ctx, domain.NotifierFunc(s.notify))
		s.logger.Debug("mcp tool call", "tool", t.Name())

		result, err := t.Execute(ctx, params)
		if err != nil {
			return nil, domain.WrapOp("mcpserver."+t.Name(), err)
		}
		return toCallToolResult(result), nil
	}
}

func toCallToolResult(r *domain.ToolResult) *mcp.CallToolResult {
	switch {
	case r == nil:
		return mcp.NewToolResultError("tool returned no result")
	case r.IsError:
		return mcp.NewToolResultError(r.Content)
	case r.Structured != nil:
		return mcp.NewToolResultStructured(map[string]any{"result": r.Structured}, r.Content)
	default:
		return mcp.NewToolResultText(r.Content)
	}
}

// sendLogNotification emits an info-level notifications/message to the calling client.
// Delivery is best-effort.
func (s *Server) sendLogNotification(ctx context.Context, message string) {
	err := s.mcp.SendNotificationToClient(ctx, "notifications/message", map[string]any{
		"level":  "info",
		"logger": "web_search",
		"data":   message,
	})
	if err != nil {
		s.logger.Debug("notification not delivered", "error", err)
	}
}

// Serve runs the configured transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	switch s.cfg.Transport {
	case "http":
		return s.ServeHTTP(ctx, s.cfg.Addr)
	case "stdio", "":
		return s.ServeStdio(ctx)
	default:
		return fmt.Errorf("unsupported transport %q", s.cfg.Transport)
	}
}

// ServeStdio serves MCP over stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.serveStdio(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("mcp server started", "transport", "stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio serve: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler serving the streamable-HTTP transport at /mcp.
func (s *Server) Handler() http.Handler {
	streamable := server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(endpointPath))

	mux := http.NewServeMux()
	mux.Handle(endpointPath, middleware.Chain(streamable,
		middleware.RequestLogger(s.logger, s.cfg.TrustedProxies),
		middleware.SecurityHeaders,
	))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	return mux
}

// ServeHTTP serves the streamable-HTTP transport on addr. Blocks until ctx is cancelled.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp listen: %w", err)
	}

	httpSrv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.mu.Lock()
	s.httpSrv = httpSrv
	s.mu.Unlock()

	s.logger.Info("mcp server started", "transport", "http", "addr", listener.Addr().String(), "path", endpointPath)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP transport, if running.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpSrv := s.httpSrv
	s.mu.Unlock()
	if httpSrv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
