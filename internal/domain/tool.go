package domain

import (
	"context"
	"encoding/json"
)

// ToolSchema describes a tool for the MCP tools/list response.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolResult is the outcome of executing a tool.
// Structured carries the machine-readable value when the tool produced one;
// Content always holds the text rendering.
type ToolResult struct {
	Content    string `json:"content"`
	Structured any    `json:"structured,omitempty"`
	IsError    bool   `json:"is_error"`
}

// Tool is the interface every tool must implement.
type Tool interface {
	Name() string
	Description() string
	Schema() ToolSchema
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolExecutor abstracts tool lookup and execution.
type ToolExecutor interface {
	Get(name string) (Tool, error)
	List() []Tool
}
