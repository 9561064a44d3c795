package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"searxng-mcp/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// roundTripFunc allows using a function as http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// resultJSON returns one fully populated upstream result object.
func resultJSON(title, url, content string) string {
	return fmt.Sprintf(`{"url":%q,"title":%q,"content":%q,"thumbnail":null,"engine":"duckduckgo",`+
		`"template":"default.html","parsed_url":["https","example.com","/","","",""],"img_src":"",`+
		`"priority":"","engines":["duckduckgo","brave"],"positions":[1,3],"score":2.5,"category":"general"}`,
		url, title, content)
}

func responseJSON(query string, n int, results ...string) string {
	return fmt.Sprintf(`{"query":%q,"number_of_results":%d,"results":[%s]}`, query, n, strings.Join(results, ","))
}

func newTestBackend(rt roundTripFunc) *SearXNGBackend {
	b := NewSearXNGBackend("http://searx.test", 0, newTestLogger())
	b.client = &http.Client{Transport: rt}
	return b
}

// mockBackend is an in-memory SearchBackend.
type mockBackend struct {
	resp  *domain.SearchResponse
	err   error
	calls []domain.SearchQuery
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	m.calls = append(m.calls, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func sampleResults(n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{
			URL:       fmt.Sprintf("https://example.com/%d", i),
			Title:     fmt.Sprintf("Result %d", i),
			Content:   fmt.Sprintf("content %d", i),
			Engine:    "brave",
			ParsedURL: []string{"https", "example.com"},
			Engines:   []string{"brave"},
			Positions: []int{i + 1},
			Score:     1,
			Category:  "general",
		}
	}
	return out
}

// stubTool is a minimal tool for registry and schema tests.
type stubTool struct {
	name   string
	schema json.RawMessage
	result *domain.ToolResult
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{Name: s.name, Description: "stub", Parameters: s.schema}
}
func (s *stubTool) Execute(_ context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	return s.result, nil
}
