package domain

import "context"

type ctxKey string

const (
	invocationCtxKey ctxKey = "invocation_id"
	notifierCtxKey   ctxKey = "notifier"
)

// ContextWithInvocationID returns a new context carrying the invocation ID (ULID).
func ContextWithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationCtxKey, id)
}

// InvocationIDFromContext extracts the invocation ID from the context.
// Returns empty string if not set.
func InvocationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(invocationCtxKey).(string); ok {
		return v
	}
	return ""
}

// Notifier delivers best-effort progress messages to whoever invoked a tool.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

// ContextWithNotifier returns a new context carrying n.
func ContextWithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierCtxKey, n)
}

// Notify sends message through the context's notifier, if any.
func Notify(ctx context.Context, message string) {
	if n, ok := ctx.Value(notifierCtxKey).(Notifier); ok && n != nil {
		n.Notify(ctx, message)
	}
}
