package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TimeRange restricts results to a recent window. Empty means unrestricted.
type TimeRange string

const (
	TimeRangeDay   TimeRange = "day"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeYear  TimeRange = "year"
)

// TimeRanges lists the recognized time range tokens.
var TimeRanges = []TimeRange{TimeRangeDay, TimeRangeWeek, TimeRangeMonth, TimeRangeYear}

// Valid reports whether t is empty or one of the recognized tokens.
func (t TimeRange) Valid() bool {
	if t == "" {
		return true
	}
	for _, r := range TimeRanges {
		if t == r {
			return true
		}
	}
	return false
}

// ResultFormat selects how results are rendered for the caller.
type ResultFormat string

const (
	FormatText ResultFormat = "text"
	FormatJSON ResultFormat = "json"
)

// Valid reports whether f is a known output format.
func (f ResultFormat) Valid() bool {
	return f == FormatText || f == FormatJSON
}

// SearchQuery is one search request, built and discarded within a single invocation.
type SearchQuery struct {
	Query        string
	Categories   []string
	Language     string
	TimeRange    TimeRange
	ResultCount  int
	ResultFormat ResultFormat
}

// Validate checks the query-independent arguments. It never touches the network.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return NewDomainError("SearchQuery.Validate", ErrInvalidInput, "query must not be empty")
	}
	if q.ResultCount <= 0 {
		return NewDomainError("SearchQuery.Validate", ErrInvalidInput, "result_count must be greater than 0")
	}
	if !q.TimeRange.Valid() {
		return NewDomainError("SearchQuery.Validate", ErrInvalidInput,
			fmt.Sprintf("invalid time_range %q (want: day, week, month, year)", q.TimeRange))
	}
	if !q.ResultFormat.Valid() {
		return NewDomainError("SearchQuery.Validate", ErrInvalidInput,
			fmt.Sprintf("invalid result_format %q (want: text, json)", q.ResultFormat))
	}
	return nil
}

// SearchResult is a single validated upstream hit.
// Thumbnail and PublishedDate are opaque because their upstream shape varies
// between engines; nil means the field was absent or null.
type SearchResult struct {
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Thumbnail     json.RawMessage `json:"thumbnail,omitempty"`
	Engine        string          `json:"engine"`
	Template      string          `json:"template"`
	ParsedURL     []string        `json:"parsed_url"`
	ImgSrc        string          `json:"img_src"`
	Priority      string          `json:"priority"`
	Engines       []string        `json:"engines"`
	Positions     []int           `json:"positions"`
	Score         float64         `json:"score"`
	Category      string          `json:"category"`
	PublishedDate json.RawMessage `json:"published_date,omitempty"`
}

// HasThumbnail reports whether upstream supplied a thumbnail.
func (r SearchResult) HasThumbnail() bool { return len(r.Thumbnail) > 0 }

// HasPublishedDate reports whether upstream supplied a publication date.
func (r SearchResult) HasPublishedDate() bool { return len(r.PublishedDate) > 0 }

// SearchResponse is the validated upstream reply. NumberOfResults is upstream's
// own estimate and may exceed len(Results).
type SearchResponse struct {
	Query           string         `json:"query"`
	NumberOfResults int            `json:"number_of_results"`
	Results         []SearchResult `json:"results"`
}
