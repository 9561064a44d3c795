package tool

import (
	"context"
	"errors"
	"strings"

	"searxng-mcp/internal/domain"
)

// errorClass describes a failed tool call for logging.
type errorClass struct {
	Code domain.ErrorCode
	// CallerFault is set when the arguments were rejected before any upstream call.
	CallerFault bool
	// Transient is set when the upstream looked unreachable or slow rather than broken.
	Transient bool
}

// transientPatterns are substrings in error messages that indicate a network-level failure.
// Checked case-insensitively.
var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"deadline exceeded",
	"temporarily unavailable",
	"service unavailable",
	"http 502",
	"http 503",
	"http 504",
}

// classifyToolError maps err to its error code and failure class.
func classifyToolError(err error) errorClass {
	if err == nil {
		return errorClass{Code: domain.CodeUnknown}
	}

	c := errorClass{
		Code:        domain.ErrorCodeOf(err),
		CallerFault: errors.Is(err, domain.ErrInvalidInput),
	}
	if c.CallerFault {
		return c
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrTimeout) {
		c.Transient = true
		return c
	}
	lower := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(lower, p) {
			c.Transient = true
			break
		}
	}
	return c
}
