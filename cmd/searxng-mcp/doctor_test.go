package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searxng-mcp/internal/domain"
	"searxng-mcp/internal/infra/config"
)

type fakeProbe struct {
	pingErr   error
	searchErr error
	results   int
}

func (f *fakeProbe) Ping(context.Context) error { return f.pingErr }

func (f *fakeProbe) Search(context.Context, domain.SearchQuery) (*domain.SearchResponse, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &domain.SearchResponse{Results: make([]domain.SearchResult, f.results), NumberOfResults: 42}, nil
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("searxng:\n  timeout: 3\n"), 0600))
	return path
}

func TestDoctorAllPass(t *testing.T) {
	var out bytes.Buffer
	err := doctor(&out, config.Defaults(), doctorChecks(writeConfig(t), nil, &fakeProbe{results: 1}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Results: 3 passed, 0 warnings, 0 failed")
	assert.Contains(t, out.String(), "All checks passed!")
}

func TestDoctorMissingConfigWarns(t *testing.T) {
	var out bytes.Buffer
	missing := filepath.Join(t.TempDir(), "config.yaml")
	err := doctor(&out, config.Defaults(), doctorChecks(missing, nil, &fakeProbe{results: 1}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[WARN] Config: no config file")
	assert.Contains(t, out.String(), "1 warnings")
}

func TestDoctorConfigError(t *testing.T) {
	var out bytes.Buffer
	err := doctor(&out, nil, doctorChecks("config.yaml", errors.New("parse config: bad"), nil))
	require.Error(t, err)
	assert.Equal(t, "3 check(s) failed", err.Error())
	assert.Contains(t, out.String(), "cannot check: config not loaded")
}

func TestDoctorSearXNGFailures(t *testing.T) {
	tests := []struct {
		name  string
		probe *fakeProbe
		want  string
		fix   string
	}{
		{
			name:  "unreachable",
			probe: &fakeProbe{pingErr: errors.New("connection refused"), searchErr: errors.New("connection refused")},
			want:  "SearXNG not reachable",
			fix:   "SEARXNG_MCP_SEARXNG_URL",
		},
		{
			name:  "json disabled",
			probe: &fakeProbe{searchErr: errors.New("searxng: search: HTTP 403")},
			want:  "JSON output is disabled",
			fix:   "search.formats",
		},
		{
			name:  "schema mismatch",
			probe: &fakeProbe{searchErr: domain.NewSubSystemError("searxng", "Search", domain.ErrSchemaValidation, "missing engine")},
			want:  "unexpected response shape",
			fix:   "Upgrade SearXNG",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := doctor(&out, config.Defaults(), doctorChecks(writeConfig(t), nil, tt.probe))
			require.Error(t, err)
			assert.Contains(t, out.String(), tt.want)
			assert.Contains(t, out.String(), "Fix: ")
			assert.Contains(t, out.String(), tt.fix)
		})
	}
}

func TestDoctorNoResultsWarns(t *testing.T) {
	var out bytes.Buffer
	err := doctor(&out, config.Defaults(), doctorChecks(writeConfig(t), nil, &fakeProbe{}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[WARN] SearXNG JSON API")
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "[PASS]", statusIcon(StatusPass))
	assert.Equal(t, "[WARN]", statusIcon(StatusWarn))
	assert.Equal(t, "[FAIL]", statusIcon(StatusFail))
	assert.Equal(t, "[????]", statusIcon("other"))
}
