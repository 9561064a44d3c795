package tracer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"searxng-mcp/internal/infra/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: false})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, ok := otel.GetTracerProvider().(noop.TracerProvider)
	assert.True(t, ok, "expected noop provider, got %T", otel.GetTracerProvider())
}

func TestSetupNoopAndEmptyExporter(t *testing.T) {
	for _, exp := range []string{"noop", ""} {
		shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: exp})
		require.NoError(t, err, "exporter %q", exp)
		_, ok := otel.GetTracerProvider().(noop.TracerProvider)
		assert.True(t, ok, "exporter %q should install noop provider", exp)
		require.NoError(t, shutdown(context.Background()))
	}
}

func TestSetupUnsupportedExporter(t *testing.T) {
	_, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "jaeger"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter")
}

func TestStdoutExporterWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "stdout"}, &buf)
	require.NoError(t, err)
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	_, span := StartSpan(context.Background(), "searxng.search")
	span.SetAttributes(StringAttr("search.query", "golang"), IntAttr("search.count", 3))
	Finish(span, nil)

	require.NoError(t, shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, `"Name": "searxng.search"`)
	assert.Contains(t, out, "search.query")
	assert.Contains(t, out, "searxng-mcp")
}

func TestHelpersOnNoopSpan(t *testing.T) {
	otel.SetTracerProvider(noop.NewTracerProvider())

	ctx, span := StartSpan(context.Background(), "test-span")
	assert.NotNil(t, ctx)

	SetOK(span)
	RecordError(span, errors.New("test error"))
	Finish(span, errors.New("boom"))
}

func TestAttrs(t *testing.T) {
	s := StringAttr("k", "v")
	assert.Equal(t, "k", string(s.Key))
	assert.Equal(t, "v", s.Value.AsString())

	i := IntAttr("n", 42)
	assert.Equal(t, int64(42), i.Value.AsInt64())

	ss := StringsAttr("c", []string{"general", "news"})
	assert.Equal(t, []string{"general", "news"}, ss.Value.AsStringSlice())
}
