package tool

import (
	"context"

	"searxng-mcp/internal/domain"
)

// SearchBackend abstracts a web search engine.
type SearchBackend interface {
	// Search performs one upstream query and returns the validated response.
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error)
	// Name returns the backend identifier (e.g. "searxng").
	Name() string
}
