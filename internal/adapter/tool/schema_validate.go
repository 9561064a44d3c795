package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"searxng-mcp/internal/domain"
)

// SchemaValidatingTool checks call arguments against the tool's published
// parameter schema before running it. Rejected calls never reach the tool.
type SchemaValidatingTool struct {
	inner  domain.Tool
	schema *jsonschema.Schema
}

// WithSchemaValidation compiles t's parameter schema and wraps t with it.
// A tool without a schema is returned unchanged.
func WithSchemaValidation(t domain.Tool) (domain.Tool, error) {
	params := t.Schema().Parameters
	if len(params) == 0 || string(params) == "null" {
		return t, nil
	}

	resource := t.Name() + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resource, bytes.NewReader(params)); err != nil {
		return nil, fmt.Errorf("load %s: %w", resource, err)
	}
	schema, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", resource, err)
	}
	return &SchemaValidatingTool{inner: t, schema: schema}, nil
}

func (s *SchemaValidatingTool) Name() string              { return s.inner.Name() }
func (s *SchemaValidatingTool) Description() string       { return s.inner.Description() }
func (s *SchemaValidatingTool) Schema() domain.ToolSchema { return s.inner.Schema() }

// Unwrap returns the tool without argument validation.
func (s *SchemaValidatingTool) Unwrap() domain.Tool { return s.inner }

func (s *SchemaValidatingTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	var args any
	if err := json.Unmarshal(params, &args); err != nil {
		return ErrResult("invalid JSON: %v", err)
	}
	if err := s.schema.Validate(args); err != nil {
		return ErrResult("invalid arguments for %s: %s", s.inner.Name(), describeViolations(err))
	}
	return s.inner.Execute(ctx, params)
}

// describeViolations flattens a validation error into "location: message"
// pairs, one per failing leaf.
func describeViolations(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	var parts []string
	var walk func(v *jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) == 0 {
			loc := strings.TrimPrefix(v.InstanceLocation, "/")
			if loc == "" {
				loc = "arguments"
			}
			parts = append(parts, loc+": "+v.Message)
			return
		}
		for _, c := range v.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(parts, "; ")
}
