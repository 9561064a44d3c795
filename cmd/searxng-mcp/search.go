package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"

	"searxng-mcp/internal/adapter/tool"
	"searxng-mcp/internal/domain"
	"searxng-mcp/internal/infra/config"
	"searxng-mcp/internal/infra/logger"
)

const formatSummary = "summary"

// searchFlags holds the options of the search subcommand.
type searchFlags struct {
	Format     string
	Count      *int // nil when --count was not given
	Categories []string
	Language   string
	TimeRange  string
	Pretty     bool
	Query      string
}

// parseSearchArgs reads search flags; every non-flag argument is part of the query.
func parseSearchArgs(args []string) (searchFlags, error) {
	var f searchFlags
	var words []string

	value := func(i *int, name string) (string, error) {
		arg := args[*i]
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, nil
		}
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, _ := strings.Cut(arg, "=")
		var err error
		switch name {
		case "--format":
			f.Format, err = value(&i, name)
		case "--count":
			var v string
			if v, err = value(&i, name); err == nil {
				var n int
				if n, err = strconv.Atoi(v); err != nil {
					err = fmt.Errorf("--count must be an integer: %q", v)
				} else {
					f.Count = &n
				}
			}
		case "--categories":
			var v string
			if v, err = value(&i, name); err == nil {
				for _, c := range strings.Split(v, ",") {
					if c = strings.TrimSpace(c); c != "" {
						f.Categories = append(f.Categories, c)
					}
				}
			}
		case "--language":
			f.Language, err = value(&i, name)
		case "--time-range":
			f.TimeRange, err = value(&i, name)
		case "--config":
			_, err = value(&i, name)
		case "--pretty":
			f.Pretty = true
		default:
			if strings.HasPrefix(arg, "--") {
				return f, fmt.Errorf("unknown flag %s", name)
			}
			words = append(words, arg)
		}
		if err != nil {
			return f, err
		}
	}

	f.Query = strings.Join(words, " ")
	if strings.TrimSpace(f.Query) == "" {
		return f, errors.New("usage: searxng-mcp search [flags] QUERY")
	}
	switch f.Format {
	case "", string(domain.FormatText), string(domain.FormatJSON), formatSummary:
	default:
		return f, fmt.Errorf("invalid --format %q (want: text, json, summary)", f.Format)
	}
	return f, nil
}

// toolParams converts flags into web_search arguments. Unset flags are omitted
// so the configured defaults apply.
func (f searchFlags) toolParams() json.RawMessage {
	params := map[string]any{"query": f.Query}
	if f.Count != nil {
		params["result_count"] = *f.Count
	}
	if len(f.Categories) > 0 {
		params["categories"] = f.Categories
	}
	if f.Language != "" {
		params["language"] = f.Language
	}
	if f.TimeRange != "" {
		params["time_range"] = f.TimeRange
	}
	if f.Format != "" {
		params["result_format"] = f.Format
	}
	data, _ := json.Marshal(params)
	return data
}

func runSearch(args []string, out io.Writer) error {
	flags, err := parseSearchArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg, _, backend, err := buildSearch(cfg, log)
	if err != nil {
		return err
	}

	content, err := searchOnce(ctx, cfg, reg, backend, flags)
	if err != nil {
		return err
	}

	if flags.Pretty && flags.Format != string(domain.FormatJSON) {
		if content, err = renderPretty(content); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out, content)
	return err
}

// searchOnce runs one search through the registered web_search tool, or through
// the unvalidated summary path for --format summary.
func searchOnce(ctx context.Context, cfg *config.Config, reg *tool.Registry, backend *tool.SearXNGBackend, flags searchFlags) (string, error) {
	if flags.Format == formatSummary {
		q := domain.SearchQuery{
			Query:        flags.Query,
			Categories:   flags.Categories,
			Language:     cfg.Search.DefaultLanguage,
			TimeRange:    domain.TimeRange(flags.TimeRange),
			ResultCount:  cfg.Search.DefaultResultCount,
			ResultFormat: domain.FormatText,
		}
		if flags.Language != "" {
			q.Language = flags.Language
		}
		if flags.Count != nil {
			q.ResultCount = *flags.Count
		}
		if err := q.Validate(); err != nil {
			return "", err
		}
		data, err := backend.SearchRaw(ctx, q)
		if err != nil {
			return "", err
		}
		summary := tool.Summary(data)
		if flags.Count != nil {
			summary = summary.Limit(*flags.Count)
		}
		return summary.RenderText(), nil
	}

	webSearch, err := reg.Get("web_search")
	if err != nil {
		return "", err
	}
	ctx = domain.ContextWithNotifier(ctx, domain.NotifierFunc(func(_ context.Context, msg string) {
		fmt.Fprintln(os.Stderr, msg)
	}))
	result, err := webSearch.Execute(ctx, flags.toolParams())
	if err != nil {
		return "", err
	}
	if result.IsError {
		return "", errors.New(result.Content)
	}
	return result.Content, nil
}

func renderPretty(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(rendered, "\n"), nil
}
