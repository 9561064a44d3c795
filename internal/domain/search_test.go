package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRangeValid(t *testing.T) {
	for _, tr := range []TimeRange{"", "day", "week", "month", "year"} {
		assert.True(t, tr.Valid(), "%q should be valid", tr)
	}
	for _, tr := range []TimeRange{"hour", "Day", "decade", " "} {
		assert.False(t, tr.Valid(), "%q should be invalid", tr)
	}
}

func TestResultFormatValid(t *testing.T) {
	assert.True(t, FormatText.Valid())
	assert.True(t, FormatJSON.Valid())
	assert.False(t, ResultFormat("").Valid())
	assert.False(t, ResultFormat("xml").Valid())
}

func TestSearchQueryValidate(t *testing.T) {
	base := SearchQuery{Query: "cats", ResultCount: 5, ResultFormat: FormatText}

	tests := []struct {
		name    string
		mutate  func(q *SearchQuery)
		wantErr bool
	}{
		{"valid", func(*SearchQuery) {}, false},
		{"valid with filters", func(q *SearchQuery) {
			q.Categories = []string{"news"}
			q.TimeRange = TimeRangeWeek
			q.Language = "en"
		}, false},
		{"empty query", func(q *SearchQuery) { q.Query = "   " }, true},
		{"zero count", func(q *SearchQuery) { q.ResultCount = 0 }, true},
		{"negative count", func(q *SearchQuery) { q.ResultCount = -3 }, true},
		{"bad time range", func(q *SearchQuery) { q.TimeRange = "hour" }, true},
		{"bad format", func(q *SearchQuery) { q.ResultFormat = "markdown" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)
			err := q.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.False(t, errors.Is(err, ErrSearchFailed))
		})
	}
}

func TestSearchResultOptionalFields(t *testing.T) {
	r := SearchResult{Title: "t"}
	assert.False(t, r.HasThumbnail())
	assert.False(t, r.HasPublishedDate())

	r.PublishedDate = json.RawMessage(`"2024-01-02T00:00:00"`)
	assert.True(t, r.HasPublishedDate())

	data, err := json.Marshal(SearchResult{URL: "http://a"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "thumbnail")
	assert.NotContains(t, string(data), "published_date")
}

func TestNotify(t *testing.T) {
	// No notifier installed: must be a no-op.
	Notify(context.Background(), "ignored")

	var got []string
	ctx := ContextWithNotifier(context.Background(), NotifierFunc(func(_ context.Context, msg string) {
		got = append(got, msg)
	}))
	Notify(ctx, "Starting web search...")
	assert.Equal(t, []string{"Starting web search..."}, got)
}

func TestInvocationID(t *testing.T) {
	assert.Equal(t, "", InvocationIDFromContext(context.Background()))
	ctx := ContextWithInvocationID(context.Background(), "01HX")
	assert.Equal(t, "01HX", InvocationIDFromContext(ctx))
}
