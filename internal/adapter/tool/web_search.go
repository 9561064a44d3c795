package tool

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"searxng-mcp/internal/domain"
	"searxng-mcp/internal/infra/config"
	"searxng-mcp/internal/infra/tracer"
)

const (
	defaultResultCount = 10
	defaultLanguage    = "all"

	noticeStart       = "Starting web search..."
	noticeErrorPrefix = "Error during search: "
)

// WebSearchTool performs web searches via a pluggable SearchBackend.
type WebSearchTool struct {
	backend  SearchBackend
	defaults config.SearchConfig
	logger   *slog.Logger
}

// NewWebSearchTool creates a web search tool backed by the given SearchBackend.
// Zero-valued defaults fall back to 10 results, language "all" and text output.
func NewWebSearchTool(backend SearchBackend, defaults config.SearchConfig, logger *slog.Logger) *WebSearchTool {
	if defaults.DefaultResultCount <= 0 {
		defaults.DefaultResultCount = defaultResultCount
	}
	if defaults.DefaultLanguage == "" {
		defaults.DefaultLanguage = defaultLanguage
	}
	if defaults.DefaultFormat == "" {
		defaults.DefaultFormat = string(domain.FormatText)
	}
	return &WebSearchTool{backend: backend, defaults: defaults, logger: logger}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Perform a web search using SearxNG and return formatted results.\n\n" +
		"Results are returned in either text format (human-readable) or JSON format " +
		"depending on the result_format parameter selected."
}

func (t *WebSearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The search query string to look for on the web"},
				"result_count": {"type": "integer", "exclusiveMinimum": 0, "description": "Maximum number of results to return"},
				"categories": {"type": ["array", "null"], "items": {"type": "string"}, "description": "Categories to filter by (e.g., 'general', 'images', 'news', 'videos')"},
				"language": {"type": ["string", "null"], "description": "Language code for results (e.g., 'all', 'en', 'ru', 'fr')"},
				"time_range": {"enum": ["day", "week", "month", "year", null], "description": "Time restriction for results"},
				"result_format": {"type": "string", "enum": ["text", "json"], "description": "Output format - 'text' for human-readable, 'json' for structured data"}
			},
			"required": ["query"]
		}`),
	}
}

type webSearchParams struct {
	Query        string   `json:"query"`
	ResultCount  *int     `json:"result_count,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	Language     *string  `json:"language,omitempty"`
	TimeRange    string   `json:"time_range,omitempty"`
	ResultFormat string   `json:"result_format,omitempty"`
}

// query applies the configured defaults to unset params.
func (t *WebSearchTool) query(p webSearchParams) domain.SearchQuery {
	q := domain.SearchQuery{
		Query:        p.Query,
		Categories:   p.Categories,
		Language:     t.defaults.DefaultLanguage,
		TimeRange:    domain.TimeRange(p.TimeRange),
		ResultCount:  t.defaults.DefaultResultCount,
		ResultFormat: domain.ResultFormat(t.defaults.DefaultFormat),
	}
	if p.ResultCount != nil {
		q.ResultCount = *p.ResultCount
	}
	if p.Language != nil {
		q.Language = *p.Language
	}
	if p.ResultFormat != "" {
		q.ResultFormat = domain.ResultFormat(p.ResultFormat)
	}
	return q
}

func (t *WebSearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.web_search", t.logger, params,
		func(ctx context.Context, span trace.Span, p webSearchParams) (any, error) {
			domain.Notify(ctx, noticeStart)

			out, err := t.search(ctx, span, t.query(p))
			if err != nil {
				domain.Notify(ctx, noticeErrorPrefix+err.Error())
				return nil, err
			}
			return out.Value(), nil
		},
	)
}

func (t *WebSearchTool) search(ctx context.Context, span trace.Span, q domain.SearchQuery) (Output, error) {
	span.SetAttributes(
		tracer.StringAttr("tool.query", q.Query),
		tracer.IntAttr("search.result_count", q.ResultCount),
		tracer.StringAttr("search.format", string(q.ResultFormat)),
		tracer.StringsAttr("search.categories", q.Categories),
	)

	if err := q.Validate(); err != nil {
		return Output{}, err
	}

	resp, err := t.backend.Search(ctx, q)
	if err != nil {
		return Output{}, err
	}

	out, err := Render(resp, q.ResultCount, q.ResultFormat)
	if err != nil {
		return Output{}, err
	}

	returned := min(q.ResultCount, len(resp.Results))
	span.SetAttributes(tracer.IntAttr("search.results_returned", returned))
	t.logger.Debug("web search completed",
		"invocation_id", domain.InvocationIDFromContext(ctx),
		"query", q.Query,
		"returned", returned,
		"available", len(resp.Results),
		"format", q.ResultFormat,
	)
	return out, nil
}
