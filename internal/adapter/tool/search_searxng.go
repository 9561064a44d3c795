package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kaptinlin/jsonschema"
	"go.opentelemetry.io/otel/trace"

	"searxng-mcp/internal/domain"
	"searxng-mcp/internal/infra/tracer"
)

const (
	maxSearchBodySize     = 2 << 20 // 2 MiB
	defaultSearchTimeout  = 10 * time.Second
	responseLogPreviewLen = 100
)

// searxngResponseSchema is the strict shape a /search?format=json reply must have.
// thumbnail and publishedDate are optional and untyped.
const searxngResponseSchema = `{
	"type": "object",
	"required": ["query", "number_of_results", "results"],
	"properties": {
		"query": {"type": "string"},
		"number_of_results": {"type": "integer"},
		"results": {"type": "array", "items": {"$ref": "#/$defs/result"}}
	},
	"$defs": {
		"result": {
			"type": "object",
			"required": ["url", "title", "content", "engine", "template", "parsed_url",
				"img_src", "priority", "engines", "positions", "score", "category"],
			"properties": {
				"url": {"type": "string"},
				"title": {"type": "string"},
				"content": {"type": "string"},
				"engine": {"type": "string"},
				"template": {"type": "string"},
				"parsed_url": {"type": "array", "items": {"type": "string"}},
				"img_src": {"type": "string"},
				"priority": {"type": "string"},
				"engines": {"type": "array", "items": {"type": "string"}},
				"positions": {"type": "array", "items": {"type": "integer"}},
				"score": {"type": "number"},
				"category": {"type": "string"}
			}
		}
	}
}`

var compiledResponseSchema = mustCompileSchema(searxngResponseSchema)

func mustCompileSchema(raw string) *jsonschema.Schema {
	schema, err := jsonschema.NewCompiler().Compile([]byte(raw))
	if err != nil {
		panic(fmt.Sprintf("compile searxng response schema: %v", err))
	}
	return schema
}

// searxngResult is the wire form of one hit. Upstream spells the date publishedDate.
type searxngResult struct {
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Thumbnail     json.RawMessage `json:"thumbnail"`
	Engine        string          `json:"engine"`
	Template      string          `json:"template"`
	ParsedURL     []string        `json:"parsed_url"`
	ImgSrc        string          `json:"img_src"`
	Priority      string          `json:"priority"`
	Engines       []string        `json:"engines"`
	Positions     []int           `json:"positions"`
	Score         float64         `json:"score"`
	Category      string          `json:"category"`
	PublishedDate json.RawMessage `json:"publishedDate"`
}

type searxngResponse struct {
	Query           string          `json:"query"`
	NumberOfResults int             `json:"number_of_results"`
	Results         []searxngResult `json:"results"`
}

// SearXNGBackend searches the web via a SearXNG instance.
// It holds no mutable state and is safe for concurrent use.
type SearXNGBackend struct {
	client      *http.Client
	instanceURL string
	timeout     time.Duration
	logger      *slog.Logger
}

// NewSearXNGBackend creates a search backend backed by a SearXNG instance.
// A non-positive timeout falls back to 10 seconds.
func NewSearXNGBackend(instanceURL string, timeout time.Duration, logger *slog.Logger) *SearXNGBackend {
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &SearXNGBackend{
		client:      &http.Client{},
		instanceURL: strings.TrimRight(instanceURL, "/"),
		timeout:     timeout,
		logger:      logger,
	}
}

func (b *SearXNGBackend) Name() string { return "searxng" }

// Search issues one GET {instance}/search and returns the schema-validated response.
// Any missing or mistyped required field rejects the whole response.
func (b *SearXNGBackend) Search(ctx context.Context, q domain.SearchQuery) (resp *domain.SearchResponse, err error) {
	const op = "SearXNG.Search"

	ctx, span := tracer.StartSpan(ctx, "searxng.search",
		trace.WithAttributes(tracer.StringAttr("search.query", q.Query)),
	)
	defer func() { tracer.Finish(span, err) }()

	body, err := b.fetch(ctx, span, op, q)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, upstreamError(op, "decode response", err)
	}
	if result := compiledResponseSchema.Validate(doc); !result.IsValid() {
		return nil, domain.NewSubSystemError("searxng", op, domain.ErrSchemaValidation, "").
			WithCause(fmt.Errorf("%s", result.Error()))
	}

	var wire searxngResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, domain.NewSubSystemError("searxng", op, domain.ErrSchemaValidation, "").WithCause(err)
	}

	resp = &domain.SearchResponse{
		Query:           wire.Query,
		NumberOfResults: wire.NumberOfResults,
		Results:         make([]domain.SearchResult, 0, len(wire.Results)),
	}
	for _, r := range wire.Results {
		resp.Results = append(resp.Results, domain.SearchResult{
			URL:           r.URL,
			Title:         r.Title,
			Content:       r.Content,
			Thumbnail:     optionalRaw(r.Thumbnail),
			Engine:        r.Engine,
			Template:      r.Template,
			ParsedURL:     r.ParsedURL,
			ImgSrc:        r.ImgSrc,
			Priority:      r.Priority,
			Engines:       r.Engines,
			Positions:     r.Positions,
			Score:         r.Score,
			Category:      r.Category,
			PublishedDate: optionalRaw(r.PublishedDate),
		})
	}

	span.SetAttributes(tracer.IntAttr("search.results", len(resp.Results)))
	b.logger.Debug("searxng search completed", "query", q.Query, "results", len(resp.Results))
	return resp, nil
}

// SearchRaw performs the same request as Search but returns the decoded body
// without schema validation.
func (b *SearXNGBackend) SearchRaw(ctx context.Context, q domain.SearchQuery) (data map[string]any, err error) {
	const op = "SearXNG.SearchRaw"

	ctx, span := tracer.StartSpan(ctx, "searxng.search_raw",
		trace.WithAttributes(tracer.StringAttr("search.query", q.Query)),
	)
	defer func() { tracer.Finish(span, err) }()

	body, err := b.fetch(ctx, span, op, q)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, upstreamError(op, "decode response", err)
	}
	return data, nil
}

// Ping checks that the instance answers on its base URL.
func (b *SearXNGBackend) Ping(ctx context.Context) error {
	const op = "SearXNG.Ping"

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.instanceURL+"/", nil)
	if err != nil {
		return upstreamError(op, "create request", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return requestError(op, "request", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSearchBodySize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(op, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}
	return nil
}

// fetch sends the search request and returns the raw body of a 2xx reply.
func (b *SearXNGBackend) fetch(ctx context.Context, span trace.Span, op string, q domain.SearchQuery) ([]byte, error) {
	if !q.TimeRange.Valid() {
		return nil, domain.NewSubSystemError("searxng", op, domain.ErrInvalidInput,
			fmt.Sprintf("invalid time_range %q", q.TimeRange))
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.instanceURL+"/search", nil)
	if err != nil {
		return nil, upstreamError(op, "create request", err)
	}
	req.URL.RawQuery = searchParams(q).Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, requestError(op, "request", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(tracer.IntAttr("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBodySize+1))
	if err != nil {
		return nil, requestError(op, "read response", err)
	}
	if len(body) > maxSearchBodySize {
		return nil, upstreamError(op, fmt.Sprintf("response exceeds %d bytes", maxSearchBodySize), nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(op, fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	b.logger.Debug("searxng response", "preview", preview(body, responseLogPreviewLen))
	return body, nil
}

func searchParams(q domain.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("q", q.Query)
	v.Set("format", "json")
	if len(q.Categories) > 0 {
		v.Set("categories", strings.Join(q.Categories, ","))
	}
	if q.TimeRange != "" {
		v.Set("time_range", string(q.TimeRange))
	}
	if q.Language != "" {
		v.Set("language", q.Language)
	}
	return v
}

func upstreamError(op, detail string, cause error) error {
	de := domain.NewSubSystemError("searxng", op, domain.ErrUpstream, detail)
	if cause != nil {
		de = de.WithCause(cause)
	}
	return de
}

// requestError classifies a transport failure. An expired deadline becomes
// ErrTimeout, which still matches ErrUpstream.
func requestError(op, detail string, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return domain.NewSubSystemError("searxng", op, domain.ErrTimeout, detail).WithCause(cause)
	}
	return upstreamError(op, detail, cause)
}

// optionalRaw maps an absent or JSON null value to nil.
func optionalRaw(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}

func preview(body []byte, n int) string {
	s := string(body)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
