package tool

import (
	"fmt"
	"strconv"
	"strings"

	"searxng-mcp/internal/domain"
)

const (
	contentPreviewLen = 200
	ellipsis          = "..."
)

// Output is a rendered search response. Exactly one of Results or Text is
// meaningful, depending on Format.
type Output struct {
	Format  domain.ResultFormat
	Results []domain.SearchResult
	Text    string
}

// Value returns the string for text output or the result slice for json output.
func (o Output) Value() any {
	if o.Format == domain.FormatJSON {
		return o.Results
	}
	return o.Text
}

// Render selects the first resultCount results of resp and renders them in format.
// resp is never modified.
func Render(resp *domain.SearchResponse, resultCount int, format domain.ResultFormat) (Output, error) {
	if resultCount <= 0 {
		return Output{}, domain.NewDomainError("Render", domain.ErrInvalidInput, "result_count must be greater than 0")
	}
	if !format.Valid() {
		return Output{}, domain.NewDomainError("Render", domain.ErrInvalidInput,
			fmt.Sprintf("invalid result_format %q (want: text, json)", format))
	}

	var selected []domain.SearchResult
	if resp != nil {
		selected = resp.Results[:min(resultCount, len(resp.Results))]
	}

	if format == domain.FormatJSON {
		out := make([]domain.SearchResult, len(selected))
		copy(out, selected)
		return Output{Format: format, Results: out}, nil
	}
	return Output{Format: format, Text: ResultList(selected).RenderText()}, nil
}

// TextRenderer is implemented by anything that can render itself as a text block.
type TextRenderer interface {
	RenderText() string
}

// ResultList is a strict, validated result sequence.
type ResultList []domain.SearchResult

// RenderText renders each result as a numbered markdown link followed by an
// indented content preview. The ellipsis is always appended.
func (l ResultList) RenderText() string {
	entries := make([]string, 0, len(l))
	for i, r := range l {
		entries = append(entries, fmt.Sprintf("%d. [%s](%s)\n   %s%s",
			i+1, r.Title, r.URL, truncateRunes(r.Content, contentPreviewLen), ellipsis))
	}
	return strings.Join(entries, "\n\n")
}

// Summary is a loosely-typed upstream payload as decoded from JSON.
type Summary map[string]any

// Limit returns a shallow copy whose results list holds at most n entries.
// s is never modified; a missing or non-list results value is left as is.
func (s Summary) Limit(n int) Summary {
	out := make(Summary, len(s))
	for k, v := range s {
		out[k] = v
	}
	if results, ok := s["results"].([]any); ok && len(results) > n {
		out["results"] = results[:max(n, 0)]
	}
	return out
}

// RenderText is FormatSummary.
func (s Summary) RenderText() string {
	return FormatSummary(s)
}

// FormatSummary renders an unvalidated search payload. Missing fields fall back
// to placeholders instead of failing.
func FormatSummary(data map[string]any) string {
	results, _ := data["results"].([]any)
	if len(results) == 0 {
		return "No results found."
	}

	var info []string
	if q, ok := data["query"]; ok {
		info = append(info, "Query: "+stringify(q))
	}
	if n, ok := data["number_of_results"].(float64); ok && n > 0 {
		info = append(info, "Found approximately "+strconv.FormatFloat(n, 'f', -1, 64)+" results")
	}

	formatted := make([]string, 0, len(results))
	for i, item := range results {
		r, _ := item.(map[string]any)

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n   %s", i+1,
			fieldOr(r, "title", "No title"),
			fieldOr(r, "url", "No URL"),
			fieldOr(r, "content", "No description"))
		if d, ok := r["publishedDate"]; ok && d != nil {
			sb.WriteString("\n   Date: " + stringify(d))
		}
		if score, ok := r["score"].(float64); ok {
			fmt.Fprintf(&sb, "\n   Score: %.2f", score)
		}
		formatted = append(formatted, sb.String())
	}

	return strings.Join(info, "\n") + "\n\n" + strings.Join(formatted, "\n\n")
}

func fieldOr(m map[string]any, key, fallback string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
