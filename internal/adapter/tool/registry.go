package tool

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"searxng-mcp/internal/domain"
)

// toolNamePattern is the character set MCP clients accept for tool names.
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Registry maps tool names to tools. Registration happens once at startup;
// lookups are concurrent afterwards.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]domain.Tool
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{byName: make(map[string]domain.Tool), logger: logger}
}

// Register validates t's name and argument schema and stores it behind
// argument validation. A schema that does not compile is a registration error.
func (r *Registry) Register(t domain.Tool) error {
	const op = "Registry.Register"

	name := t.Name()
	if !toolNamePattern.MatchString(name) {
		return domain.NewDomainError(op, domain.ErrInvalidInput, fmt.Sprintf("tool name %q", name))
	}
	if schemaName := t.Schema().Name; schemaName != "" && schemaName != name {
		return domain.NewDomainError(op, domain.ErrInvalidInput,
			fmt.Sprintf("schema name %q does not match tool %q", schemaName, name))
	}

	validated, err := WithSchemaValidation(t)
	if err != nil {
		return domain.NewDomainError(op, domain.ErrInvalidInput, "argument schema").WithCause(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return domain.NewDomainError(op, domain.ErrDuplicate, fmt.Sprintf("tool %q", name))
	}
	r.byName[name] = validated

	if r.logger != nil {
		r.logger.Debug("tool registered", "tool", name)
	}
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (domain.Tool, error) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrToolNotFound, name)
	}
	return t, nil
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []domain.Tool {
	r.mu.RLock()
	tools := make([]domain.Tool, 0, len(r.byName))
	for _, t := range r.byName {
		tools = append(tools, t)
	}
	r.mu.RUnlock()

	slices.SortFunc(tools, func(a, b domain.Tool) int { return strings.Compare(a.Name(), b.Name()) })
	return tools
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	tools := r.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

var _ domain.ToolExecutor = (*Registry)(nil)
