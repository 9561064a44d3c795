package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"searxng-mcp/internal/domain"
)

func TestClassifyToolError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		code        domain.ErrorCode
		callerFault bool
		transient   bool
	}{
		{"nil", nil, domain.CodeUnknown, false, false},
		{"invalid input", domain.NewDomainError("op", domain.ErrInvalidInput, "bad"), domain.CodeInvalidInput, true, false},
		{"searxng invalid input", domain.NewSubSystemError("searxng", "op", domain.ErrInvalidInput, "bad"), domain.CodeSearXNGInput, true, false},
		{"schema", domain.NewDomainError("op", domain.ErrSchemaValidation, ""), domain.CodeSchemaValidation, false, false},
		{
			"upstream deadline",
			domain.NewDomainError("op", domain.ErrUpstream, "request").WithCause(context.DeadlineExceeded),
			domain.CodeUpstream, false, true,
		},
		{
			"upstream refused",
			domain.NewDomainError("op", domain.ErrUpstream, "request").WithCause(errors.New("dial tcp: connection refused")),
			domain.CodeUpstream, false, true,
		},
		{"upstream 503", domain.NewDomainError("op", domain.ErrUpstream, "HTTP 503"), domain.CodeUpstream, false, true},
		{"upstream 404", domain.NewDomainError("op", domain.ErrUpstream, "HTTP 404"), domain.CodeUpstream, false, false},
		{"wrapped timeout", fmt.Errorf("outer: %w", domain.ErrTimeout), domain.CodeTimeout, false, true},
		{"plain", errors.New("something broke"), domain.CodeUnknown, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classifyToolError(tt.err)
			assert.Equal(t, tt.code, c.Code)
			assert.Equal(t, tt.callerFault, c.CallerFault)
			assert.Equal(t, tt.transient, c.Transient)
		})
	}
}
