package tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"searxng-mcp/internal/domain"
)

// FuzzWebSearchTool checks that arbitrary params never panic or bypass argument validation.
func FuzzWebSearchTool(f *testing.F) {
	ws := newTestWebSearch(&funcBackend{fn: func(_ context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
		return &domain.SearchResponse{Query: q.Query, Results: sampleResults(3)}, nil
	}})

	f.Add(`{"query":"golang tutorial"}`)
	f.Add(`{"query":"","result_count":5}`)
	f.Add(`{"query":"test","result_count":0}`)
	f.Add(`{"query":"test","result_count":-1}`)
	f.Add(`{"query":"test","result_count":100}`)
	f.Add(`{"query":"test","time_range":"invalid"}`)
	f.Add(`{"query":"test","time_range":null}`)
	f.Add(`{"query":"test","result_format":"json"}`)
	f.Add(`{"query":"test","result_format":"yaml"}`)
	f.Add(`{"query":"test\r\nX-Injected: true"}`)
	f.Add(`{"query":"` + strings.Repeat("A", 10*1024) + `"}`)
	f.Add(`malformed json`)
	f.Add(`{"query":"   "}`)
	f.Add(`{"query":"\x00test"}`)
	f.Add(`{"query":"test","categories":["general",""],"language":""}`)

	f.Fuzz(func(t *testing.T, input string) {
		result, err := ws.Execute(context.Background(), json.RawMessage(input))
		if err != nil {
			t.Fatalf("Execute returned Go error: %v", err)
		}
		if result == nil {
			t.Fatal("Execute returned nil result")
		}
		if result.IsError {
			return
		}

		var params webSearchParams
		if json.Unmarshal([]byte(input), &params) != nil {
			t.Fatalf("malformed params succeeded: %q", input)
		}
		if strings.TrimSpace(params.Query) == "" {
			t.Errorf("empty query succeeded")
		}
		if params.ResultCount != nil && *params.ResultCount <= 0 {
			t.Errorf("non-positive result_count %d succeeded", *params.ResultCount)
		}
		if !domain.TimeRange(params.TimeRange).Valid() {
			t.Errorf("invalid time_range %q accepted", params.TimeRange)
		}
		if params.ResultFormat != "" && !domain.ResultFormat(params.ResultFormat).Valid() {
			t.Errorf("invalid result_format %q accepted", params.ResultFormat)
		}
	})
}
