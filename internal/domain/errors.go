package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Pair with NewSubSystemError for subsystem-specific codes.
var (
	ErrDuplicate    = fmt.Errorf("duplicate")
	ErrInvalidInput = fmt.Errorf("invalid input")
)

// Sentinel errors for the domain layer.
var (
	ErrToolNotFound = fmt.Errorf("tool not found")

	// ErrSearchFailed is the single caller-facing kind for a search that could
	// not be completed. Upstream and schema failures both wrap it.
	ErrSearchFailed     = fmt.Errorf("error during search")
	ErrUpstream         = fmt.Errorf("upstream request failed: %w", ErrSearchFailed)
	ErrSchemaValidation = fmt.Errorf("response schema validation failed: %w", ErrSearchFailed)

	// ErrTimeout is an upstream failure where the deadline expired first.
	ErrTimeout = fmt.Errorf("upstream request timed out: %w", ErrUpstream)
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op        string // operation name (e.g., "SearXNG.Search")
	Err       error  // underlying sentinel or wrapped error
	Detail    string // human-readable detail
	SubSystem string // subsystem identifier (e.g., "searxng"); used for ErrorCode dispatch
	Cause     error  // original failure (network, decode, validation), if any
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Err)
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// NewSubSystemError creates a DomainError tagged with a subsystem for ErrorCode dispatch.
func NewSubSystemError(subsystem, op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail, SubSystem: subsystem}
}

// WithCause attaches the original failure and returns the receiver.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for logs and monitoring.
type ErrorCode string

const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	CodeSearchFailed     ErrorCode = "SEARCH_FAILED"
	CodeUpstream         ErrorCode = "UPSTREAM_FAILURE"
	CodeSchemaValidation ErrorCode = "SCHEMA_VALIDATION"

	// Subsystem-specific codes used by subSystemCodeMap.
	CodeSearXNGTimeout ErrorCode = "SEARXNG_TIMEOUT"
	CodeSearXNGInput   ErrorCode = "SEARXNG_INVALID_INPUT"

	// Category codes, used when no subsystem-specific code matches.
	CodeDuplicate    ErrorCode = "DUPLICATE"
	CodeTimeout      ErrorCode = "TIMEOUT"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrDuplicate:    CodeDuplicate,
	ErrTimeout:      CodeTimeout,
	ErrInvalidInput: CodeInvalidInput,

	ErrToolNotFound:     CodeToolNotFound,
	ErrSearchFailed:     CodeSearchFailed,
	ErrUpstream:         CodeUpstream,
	ErrSchemaValidation: CodeSchemaValidation,
}

// subSystemCodeMap maps (category sentinel, subsystem) pairs to specific ErrorCodes.
var subSystemCodeMap = map[error]map[string]ErrorCode{
	ErrTimeout: {
		"searxng": CodeSearXNGTimeout,
	},
	ErrInvalidInput: {
		"searxng": CodeSearXNGInput,
	},
}

// specificity orders sentinels so that wrapping kinds win over what they wrap:
// ErrTimeout over ErrUpstream, and both failure kinds over ErrSearchFailed.
var specificity = []error{
	ErrTimeout,
	ErrUpstream,
	ErrSchemaValidation,
	ErrSearchFailed,
	ErrInvalidInput,
	ErrToolNotFound,
	ErrDuplicate,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code := de.Code(); code != CodeUnknown {
			return code
		}
	}

	for _, sentinel := range specificity {
		if errors.Is(err, sentinel) {
			return errorCodeMap[sentinel]
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
// If SubSystem is set, checks the subSystemCodeMap for a specific code.
func (e *DomainError) Code() ErrorCode {
	if e.SubSystem != "" {
		if subsysMap, ok := subSystemCodeMap[e.Err]; ok {
			if code, ok := subsysMap[e.SubSystem]; ok {
				return code
			}
		}
	}
	if code, ok := errorCodeMap[e.Err]; ok {
		return code
	}
	return CodeUnknown
}
